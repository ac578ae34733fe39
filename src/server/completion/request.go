package completion

import (
	"tsserver-gateway/src/config"
	"tsserver-gateway/src/server/capabilities"
	"tsserver-gateway/src/server/protocol"
)

// newCompletionsArgs assembles the backend request arguments for one
// completion round trip.
func newCompletionsArgs(file string, loc protocol.Location, triggerCharacter string, cfg config.CompletionConfiguration, api *capabilities.APIVersion) protocol.CompletionsArgs {
	return protocol.CompletionsArgs{
		FileLocationArgs: protocol.FileLocationArgs{
			File:   file,
			Line:   loc.Line,
			Offset: loc.Offset,
		},
		TriggerCharacter:             forwardedTriggerCharacter(triggerCharacter, api),
		IncludeExternalModuleExports: cfg.AutoImportSuggestions,
		IncludeInsertTextCompletions: true,
	}
}

// forwardedTriggerCharacter version-gates which trigger character is sent to
// the backend. The raw character the editor reported may differ from the one
// actually forwarded; "" means none is forwarded.
func forwardedTriggerCharacter(triggerCharacter string, api *capabilities.APIVersion) string {
	switch triggerCharacter {
	case "@":
		// Forwarding '@' breaks completions inside the broken window.
		if api.GTE(capabilities.V310) && api.LT(capabilities.V320) {
			return ""
		}
		return "@"

	case "#":
		// Below the floor, '#' broke global completions.
		if api.LT(capabilities.V320) {
			return ""
		}
		return "#"

	case " ":
		if !api.SupportsSpaceTrigger() {
			return ""
		}
		return " "

	case ".", "\"", "'", "`", "/", "<":
		return triggerCharacter

	default:
		return ""
	}
}
