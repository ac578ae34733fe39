package completion

import (
	"context"
	"encoding/json"
	"strings"

	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/server/protocol"
	"tsserver-gateway/src/utils/tsconv"
)

// Resolve enriches one item on demand with detail text, documentation, code
// actions, and call-snippet expansion. It may be called any number of times
// for the same item and degrades gracefully: every failure path returns the
// item unchanged.
func (p *Provider) Resolve(ctx context.Context, item *lsp.CompletionItem) (*lsp.CompletionItem, error) {
	data, ok := decodeResolveData(item.Data)
	if !ok {
		return item, nil
	}

	// Snapshot for the race check in the snippet step: another resolution
	// may rewrite the insertion text while this one is in flight.
	previousInsert := item.InsertText

	detail, ok := p.requestEntryDetails(ctx, data)
	if !ok {
		return item, nil
	}

	if item.Detail == "" {
		item.Detail = tsconv.RenderParts(detail.DisplayParts)
	}

	if doc := assembleDocumentation(detail); doc != "" {
		item.Documentation = &lsp.MarkupContent{Kind: lsp.Markdown, Value: doc}
	}

	command, edits := splitCodeActions(detail.CodeActions, data.File)
	item.AdditionalTextEdits = edits
	item.Command = command

	if data.UseCodeSnippet && !data.IsSnippet && item.InsertText == previousInsert {
		if p.callCompletionEligible(ctx, data) {
			synthesizeCallSnippet(item, detail.DisplayParts)
		}
		data.IsSnippet = true
		item.Data = data
	}

	return item, nil
}

// requestEntryDetails fetches the full details for the item's correlation
// key. Any backend failure, empty body, or malformed body yields ok=false
// and never an error.
func (p *Provider) requestEntryDetails(ctx context.Context, data *ResolveData) (*protocol.CompletionEntryDetails, bool) {
	args := protocol.CompletionDetailsArgs{
		FileLocationArgs: protocol.FileLocationArgs{
			File:   data.File,
			Line:   data.Line,
			Offset: data.Offset,
		},
		EntryNames: []protocol.CompletionEntryIdentifier{{
			Name:   data.Name,
			Source: data.Source,
			Data:   data.EntryData,
		}},
	}

	raw, err := p.client.Execute(ctx, protocol.CommandCompletionDetails, args)
	if err != nil {
		common.ProviderLogger.Debug("entry details for %q failed: %v", data.Name, err)
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}

	var details []protocol.CompletionEntryDetails
	if err := json.Unmarshal(raw, &details); err != nil || len(details) == 0 {
		return nil, false
	}
	return &details[0], true
}

// assembleDocumentation concatenates, each on its own block: the auto-import
// source line, the rendered description, and the rendered tags. Blank
// segments are dropped; an empty result means documentation stays unset.
func assembleDocumentation(detail *protocol.CompletionEntryDetails) string {
	segments := make([]string, 0, 3)

	if source := tsconv.RenderParts(detail.Source); strings.TrimSpace(source) != "" {
		segments = append(segments, "Auto import from '"+source+"'")
	}
	if desc := tsconv.RenderParts(detail.Documentation); strings.TrimSpace(desc) != "" {
		segments = append(segments, desc)
	}
	if tags := tsconv.RenderTags(detail.Tags); strings.TrimSpace(tags) != "" {
		segments = append(segments, tags)
	}

	return strings.Join(segments, "\n\n")
}
