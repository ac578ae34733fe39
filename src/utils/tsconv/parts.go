// Package tsconv converts backend protocol shapes (1-based locations,
// display parts, code edits) into editor-facing LSP types.
package tsconv

import (
	"strings"

	"tsserver-gateway/src/server/protocol"
)

// RenderParts flattens symbol display parts into their plain text.
func RenderParts(parts []protocol.SymbolDisplayPart) string {
	if len(parts) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// RenderTag renders one structured documentation tag as a markdown line.
func RenderTag(tag protocol.JSDocTagInfo) string {
	label := "*@" + tag.Name + "*"
	text := strings.TrimSpace(tag.Text)
	if text == "" {
		return label
	}
	if strings.ContainsAny(text, "\r\n") {
		return label + "  \n" + text
	}
	return label + " " + text
}

// RenderTags renders all tags, one block each.
func RenderTags(tags []protocol.JSDocTagInfo) string {
	if len(tags) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(tags))
	for _, t := range tags {
		rendered = append(rendered, RenderTag(t))
	}
	return strings.Join(rendered, "  \n\n")
}
