// Package completion turns raw backend suggestions into editor-ready
// completion items and lazily enriches a chosen item with documentation,
// additional edits, and call-snippet expansion.
package completion

import (
	"regexp"

	"tsserver-gateway/src/config"
	"tsserver-gateway/src/server/capabilities"
)

// Doc-comment shapes in which a legacy backend still understands '@'.
var (
	docCommentLineRe  = regexp.MustCompile(`^\s*\*\s?@`)
	docCommentBlockRe = regexp.MustCompile(`/\*\*+\s?@`)
)

// ShouldTrigger decides whether a keystroke-triggered completion request
// should be issued at all. It is a pure function of configuration, backend
// version, and text; false is a zero-cost rejection before any network work.
// precedingText is the current-line text up to and including the trigger
// character.
func ShouldTrigger(triggerCharacter, precedingText string, inStringLike bool, cfg config.CompletionConfiguration, api *capabilities.APIVersion) bool {
	switch triggerCharacter {
	case "@":
		// Legacy backends only understand '@' inside string-like regions
		// and at the start of a doc-comment line.
		if api.LT(capabilities.V290) {
			return inStringLike ||
				docCommentLineRe.MatchString(precedingText) ||
				docCommentBlockRe.MatchString(precedingText)
		}
		return true

	case "<":
		return api.GTE(capabilities.V290)

	case " ":
		return cfg.ImportStatementSuggestions &&
			api.LT(capabilities.V430) &&
			precedingText == "import "

	default:
		return true
	}
}
