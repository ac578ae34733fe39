package tsconv

import (
	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/server/protocol"
)

// Positions are 1-based line/offset on the wire and 0-based in LSP.

// PositionFromLocation converts a backend location to an LSP position.
func PositionFromLocation(loc protocol.Location) lsp.Position {
	line := loc.Line - 1
	if line < 0 {
		line = 0
	}
	char := loc.Offset - 1
	if char < 0 {
		char = 0
	}
	return lsp.Position{Line: uint32(line), Character: uint32(char)}
}

// LocationFromPosition converts an LSP position to a backend location.
func LocationFromPosition(pos lsp.Position) protocol.Location {
	return protocol.Location{Line: int(pos.Line) + 1, Offset: int(pos.Character) + 1}
}

// RangeFromSpan converts a backend text span to an LSP range.
func RangeFromSpan(span protocol.TextSpan) lsp.Range {
	return lsp.Range{
		Start: PositionFromLocation(span.Start),
		End:   PositionFromLocation(span.End),
	}
}

// TextEditFromCodeEdit converts one backend code edit to an LSP text edit.
func TextEditFromCodeEdit(edit protocol.CodeEdit) lsp.TextEdit {
	return lsp.TextEdit{
		Range: lsp.Range{
			Start: PositionFromLocation(edit.Start),
			End:   PositionFromLocation(edit.End),
		},
		NewText: edit.NewText,
	}
}

// TextEditsFromCodeEdits converts a backend edit list, preserving order.
func TextEditsFromCodeEdits(edits []protocol.CodeEdit) []lsp.TextEdit {
	if len(edits) == 0 {
		return nil
	}
	out := make([]lsp.TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, TextEditFromCodeEdit(e))
	}
	return out
}
