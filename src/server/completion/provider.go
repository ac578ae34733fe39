package completion

import (
	"context"
	"encoding/json"
	"regexp"

	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/config"
	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/internal/types"
	"tsserver-gateway/src/server/capabilities"
	"tsserver-gateway/src/server/documents"
	"tsserver-gateway/src/server/protocol"
	"tsserver-gateway/src/utils/tsconv"
)

// TypingsStatus reports whether typings acquisition is running; while it is,
// completion requests return an informational placeholder without a backend
// round trip.
type TypingsStatus interface {
	IsAcquiring() bool
}

// Provider is the editor-facing completion surface: list assembly plus lazy
// per-item resolution. It keeps no state across calls; every invocation
// builds a fresh request context.
type Provider struct {
	client  types.Client
	docs    *documents.Manager
	config  *config.Config
	typings TypingsStatus
}

func NewProvider(client types.Client, docs *documents.Manager, cfg *config.Config, typings TypingsStatus) *Provider {
	return &Provider{
		client:  client,
		docs:    docs,
		config:  cfg,
		typings: typings,
	}
}

// Trailing '.' or '?.' accessor, with any whitespace between it and the
// cursor, recovered from raw text rather than trusted from the backend.
var dotAccessorRe = regexp.MustCompile(`(\?\.|\.)\s*$`)

// A lone '.' preceded by whitespace: the start of a spread operator, where
// legacy backends report spurious dot completions.
var spreadDotRe = regexp.MustCompile(`(^|\s)\.$`)

// Completion assembles the completion list for a position.
func (p *Provider) Completion(ctx context.Context, params *lsp.CompletionParams) (*lsp.CompletionList, error) {
	if p.typings.IsAcquiring() {
		// Work in progress; never cached.
		return &lsp.CompletionList{
			Items: []lsp.CompletionItem{{
				Label:  "Acquiring typings...",
				Detail: "Acquiring typings definitions for IntelliSense.",
				Kind:   lsp.CompletionItemKindText,
			}},
		}, nil
	}

	doc := p.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	cfg := p.config.SuggestFor(doc.LanguageID)
	line := doc.Line(params.Position.Line)
	preceding := doc.TextBefore(params.Position)

	var triggerCharacter string
	if params.Context != nil && params.Context.TriggerKind == lsp.CompletionTriggerKindTriggerCharacter {
		triggerCharacter = params.Context.TriggerCharacter
	}

	if triggerCharacter != "" &&
		!ShouldTrigger(triggerCharacter, preceding, doc.InStringLike(params.Position), cfg, p.client.APIVersion()) {
		return nil, nil
	}

	file := doc.Path()
	args := newCompletionsArgs(file, tsconv.LocationFromPosition(params.Position), triggerCharacter, cfg, p.client.APIVersion())

	var raw json.RawMessage
	err := p.client.DeferDiagnostics(ctx, func() error {
		// Pending per-document options must reach the backend before the
		// completion round trip.
		if _, err := p.client.Execute(ctx, protocol.CommandConfigure, protocol.ConfigureArgs{File: file}); err != nil {
			common.ProviderLogger.Debug("configure before completion failed: %v", err)
		}

		var err error
		raw, err = p.requestCompletions(ctx, args)
		return err
	})
	if err != nil {
		if common.IsNoContentError(err) || common.IsCancellationError(err) {
			return nil, nil
		}
		return nil, err
	}

	body, ok := decodeCompletionBody(raw, p.client.APIVersion().SupportsStructuredCompletions())
	if !ok {
		return nil, nil
	}

	var dotAccessor *DotAccessorContext
	if body.IsMemberCompletion {
		dotAccessor = recoverDotAccessor(preceding, params.Position)
	}

	itemCtx := itemContext{
		file:                    file,
		position:                params.Position,
		line:                    line,
		triggerCharacter:        triggerCharacter,
		isNewIdentifierLocation: body.IsNewIdentifierLocation,
		isMemberCompletion:      body.IsMemberCompletion,
		useCodeSnippets:         cfg.UseCodeSnippetsOnMethodSuggest,
		commitCharactersValid:   commitCharactersValid(preceding, p.client.APIVersion()),
		dotAccessor:             dotAccessor,
	}

	entries := filterEntries(body.Entries, cfg)
	items := make([]lsp.CompletionItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, newItem(entry, itemCtx))
	}

	isIncomplete := body.IsIncomplete || (body.Metadata != nil && body.Metadata.IsIncomplete)
	return &lsp.CompletionList{IsIncomplete: isIncomplete, Items: items}, nil
}

// requestCompletions issues the version-selected round trip: structured
// body at or above the floor, bare entry array below it.
func (p *Provider) requestCompletions(ctx context.Context, args protocol.CompletionsArgs) (json.RawMessage, error) {
	command := protocol.CommandCompletionInfo
	if !p.client.APIVersion().SupportsStructuredCompletions() {
		command = protocol.CommandCompletions
	}
	return p.client.Execute(ctx, command, args)
}

// decodeCompletionBody normalizes the two historical response shapes into
// one. Legacy bodies default the flags to new-identifier-location true,
// member completion false, incomplete false. A malformed or absent body is
// an empty result, not an error.
func decodeCompletionBody(raw json.RawMessage, structured bool) (*protocol.CompletionInfoBody, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	if structured {
		var body protocol.CompletionInfoBody
		if err := json.Unmarshal(raw, &body); err != nil {
			common.ProviderLogger.Debug("malformed completion body: %v", err)
			return nil, false
		}
		return &body, true
	}

	var entries []protocol.CompletionEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		common.ProviderLogger.Debug("malformed legacy completion body: %v", err)
		return nil, false
	}
	return &protocol.CompletionInfoBody{
		IsNewIdentifierLocation: true,
		Entries:                 entries,
	}, true
}

// recoverDotAccessor rescans the text immediately before the cursor for a
// trailing accessor token and builds the context from that literal span.
func recoverDotAccessor(preceding string, pos lsp.Position) *DotAccessorContext {
	match := dotAccessorRe.FindString(preceding)
	if match == "" {
		return nil
	}
	return &DotAccessorContext{
		Range: lsp.Range{
			Start: lsp.Position{Line: pos.Line, Character: pos.Character - uint32(len(match))},
			End:   pos,
		},
		Text: match,
	}
}

// commitCharactersValid guards against spurious completion while typing a
// spread operator on legacy backends; at or above the ceiling the check
// always passes.
func commitCharactersValid(preceding string, api *capabilities.APIVersion) bool {
	if api.GTE(capabilities.V320) {
		return true
	}
	return !spreadDotRe.MatchString(preceding)
}
