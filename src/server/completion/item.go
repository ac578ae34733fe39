package completion

import (
	"encoding/json"

	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/server/protocol"
	"tsserver-gateway/src/utils/jsonutil"
	"tsserver-gateway/src/utils/tsconv"
)

// ApplyCompletionCodeActionID is the editor-facing command id attached to
// items whose code actions could not be applied inline. The owning
// composition root registers the matching handler.
const ApplyCompletionCodeActionID = "tsserverGateway.applyCompletionCodeAction"

// DotAccessorContext describes a trailing accessor token ('.' or '?.')
// immediately before the cursor. It is only ever attached when the backend
// reports a member completion, and is always recomputed from raw text.
type DotAccessorContext struct {
	Range lsp.Range
	Text  string
}

// ResolveData is the correlation record attached to each item. It must
// round-trip unchanged from list assembly to resolution; name alone is not a
// key, so source and the backend's opaque entry data travel with it. The
// mutable IsSnippet flag makes resolution idempotent.
type ResolveData struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Offset int    `json:"offset"`
	Name   string `json:"name"`

	Source    string          `json:"source,omitempty"`
	EntryData json.RawMessage `json:"entryData,omitempty"`

	// CurrentLine is the full current-line text observed at list assembly,
	// carried per item so concurrent resolutions never share state.
	CurrentLine string `json:"currentLine,omitempty"`

	UseCodeSnippet bool `json:"useCodeSnippet,omitempty"`
	IsSnippet      bool `json:"isSnippet,omitempty"`
}

// valid reports whether the required correlation fields are present.
func (d *ResolveData) valid() bool {
	return d.File != "" && d.Line > 0 && d.Offset > 0 && d.Name != ""
}

// decodeResolveData recovers the typed correlation record from an item's
// opaque data field, which may arrive as the original pointer or re-encoded
// JSON after a round trip through the editor.
func decodeResolveData(data interface{}) (*ResolveData, bool) {
	switch v := data.(type) {
	case *ResolveData:
		if v != nil && v.valid() {
			return v, true
		}
		return nil, false
	case nil:
		return nil, false
	default:
		decoded, err := jsonutil.Convert[ResolveData](v)
		if err != nil || !decoded.valid() {
			return nil, false
		}
		return &decoded, true
	}
}

// itemContext carries the per-request inputs for entry-to-item conversion.
// It is built fresh per invocation and superseded entirely on the next one.
type itemContext struct {
	file     string
	position lsp.Position
	line     string

	triggerCharacter        string
	isNewIdentifierLocation bool
	isMemberCompletion      bool
	useCodeSnippets         bool
	commitCharactersValid   bool
	dotAccessor             *DotAccessorContext
}

// newItem converts one surviving backend entry to an editor completion item.
func newItem(entry protocol.CompletionEntry, ctx itemContext) lsp.CompletionItem {
	item := lsp.CompletionItem{
		Label:      entry.Name,
		Kind:       tsconv.ItemKind(entry.Kind),
		SortText:   entry.SortText,
		InsertText: entry.InsertText,
		Preselect:  entry.IsRecommended,
	}
	if item.SortText == "" {
		item.SortText = entry.Name
	}

	switch {
	case entry.ReplacementSpan != nil:
		newText := entry.InsertText
		if newText == "" {
			newText = entry.Name
		}
		item.TextEdit = &lsp.TextEdit{
			Range:   tsconv.RangeFromSpan(*entry.ReplacementSpan),
			NewText: newText,
		}
	case ctx.dotAccessor != nil:
		// Member completions replace the recovered accessor span so that
		// filtering matches what the user actually typed.
		insert := entry.InsertText
		if insert == "" {
			insert = entry.Name
		}
		filter := ctx.dotAccessor.Text + insert
		item.FilterText = filter
		item.TextEdit = &lsp.TextEdit{
			Range: lsp.Range{
				Start: ctx.dotAccessor.Range.Start,
				End:   ctx.position,
			},
			NewText: filter,
		}
	}

	if ctx.commitCharactersValid && !ctx.isNewIdentifierLocation {
		item.CommitCharacters = commitCharacters(entry.Kind)
	}

	item.Data = &ResolveData{
		File:           ctx.file,
		Line:           int(ctx.position.Line) + 1,
		Offset:         int(ctx.position.Character) + 1,
		Name:           entry.Name,
		Source:         entry.Source,
		EntryData:      entry.Data,
		CurrentLine:    ctx.line,
		UseCodeSnippet: ctx.useCodeSnippets && tsconv.IsFunctionKind(entry.Kind),
	}

	return item
}

func commitCharacters(kind string) []string {
	chars := []string{".", ",", ";"}
	if tsconv.IsFunctionKind(kind) {
		chars = append(chars, "(")
	}
	return chars
}
