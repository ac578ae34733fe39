package completion

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/config"
	"tsserver-gateway/src/server/documents"
	"tsserver-gateway/src/server/protocol"
)

func resolveProvider(client *fakeClient) *Provider {
	return NewProvider(client, documents.NewManager(), &config.Config{}, &fakeTypings{})
}

func resolvableItem() *lsp.CompletionItem {
	return &lsp.CompletionItem{
		Label: "readFile",
		Kind:  lsp.CompletionItemKindFunction,
		Data: &ResolveData{
			File:        "/work/app.ts",
			Line:        1,
			Offset:      9,
			Name:        "readFile",
			CurrentLine: "readFile",
		},
	}
}

func detailsBody(details ...string) string {
	body := "["
	for i, d := range details {
		if i > 0 {
			body += ","
		}
		body += d
	}
	return body + "]"
}

func TestResolveFillsDetailAndDocumentation(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [{"text": "function readFile(path: string): void", "kind": "text"}],
		"documentation": [{"text": "Reads a file.", "kind": "text"}],
		"tags": [{"name": "deprecated", "text": "use readFileSync"}]
	}`))

	item, err := resolveProvider(client).Resolve(context.Background(), resolvableItem())
	require.NoError(t, err)

	assert.Equal(t, "function readFile(path: string): void", item.Detail)
	require.NotNil(t, item.Documentation)
	doc, ok := item.Documentation.(*lsp.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, lsp.Markdown, doc.Kind)
	assert.Contains(t, doc.Value, "Reads a file.")
	assert.Contains(t, doc.Value, "*@deprecated*")
}

func TestResolvePreservesExistingDetail(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [{"text": "replacement detail", "kind": "text"}]
	}`))

	item := resolvableItem()
	item.Detail = "already set"
	item, err := resolveProvider(client).Resolve(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "already set", item.Detail)
}

func TestResolveAutoImportSourceLine(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [],
		"source": [{"text": "fs/promises", "kind": "text"}]
	}`))

	item, err := resolveProvider(client).Resolve(context.Background(), resolvableItem())
	require.NoError(t, err)
	require.NotNil(t, item.Documentation)
	doc := item.Documentation.(*lsp.MarkupContent)
	assert.Equal(t, "Auto import from 'fs/promises'", doc.Value)
}

func TestResolveNoDocumentationStaysUnset(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [{"text": "function readFile(): void", "kind": "text"}]
	}`))

	item, err := resolveProvider(client).Resolve(context.Background(), resolvableItem())
	require.NoError(t, err)
	assert.Equal(t, "function readFile(): void", item.Detail)
	assert.Nil(t, item.Documentation)
}

func TestResolveAttachesCodeActions(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [],
		"codeActions": [{
			"description": "Add import",
			"changes": [
				{"fileName": "/work/app.ts", "textChanges": [
					{"start": {"line": 1, "offset": 1}, "end": {"line": 1, "offset": 1}, "newText": "import 'fs';\n"}
				]},
				{"fileName": "/work/other.ts", "textChanges": [
					{"start": {"line": 1, "offset": 1}, "end": {"line": 1, "offset": 1}, "newText": "export {};\n"}
				]}
			]
		}]
	}`))

	item, err := resolveProvider(client).Resolve(context.Background(), resolvableItem())
	require.NoError(t, err)

	require.Len(t, item.AdditionalTextEdits, 1)
	assert.Equal(t, "import 'fs';\n", item.AdditionalTextEdits[0].NewText)
	require.NotNil(t, item.Command)
	assert.Equal(t, ApplyCompletionCodeActionID, item.Command.Command)
}

func TestResolveInvalidDataUnchanged(t *testing.T) {
	client := newFakeClient("4.3.0")
	item := &lsp.CompletionItem{Label: "readFile"}

	resolved, err := resolveProvider(client).Resolve(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, item, resolved)
	assert.Empty(t, client.commands, "no round trip without a valid correlation record")
}

func TestResolveBackendFailureUnchanged(t *testing.T) {
	// No details handler: the fake answers with a failure.
	client := newFakeClient("4.3.0")

	item, err := resolveProvider(client).Resolve(context.Background(), resolvableItem())
	require.NoError(t, err, "resolution failures degrade, they do not propagate")
	assert.Empty(t, item.Detail)
	assert.Nil(t, item.Documentation)
}

func TestResolveSynthesizesCallSnippet(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [
			{"text": "function", "kind": "keyword"},
			{"text": " ", "kind": "space"},
			{"text": "readFile", "kind": "functionName"},
			{"text": "(", "kind": "punctuation"},
			{"text": "path", "kind": "parameterName"},
			{"text": ")", "kind": "punctuation"}
		]
	}`))
	client.respond(protocol.CommandQuickInfo, `{"kind": "function"}`)

	item := resolvableItem()
	data := item.Data.(*ResolveData)
	data.UseCodeSnippet = true

	item, err := resolveProvider(client).Resolve(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, "readFile(${1:path})$2", item.InsertText)
	assert.Equal(t, lsp.InsertTextFormatSnippet, item.InsertTextFormat)

	resolved, ok := decodeResolveData(item.Data)
	require.True(t, ok)
	assert.True(t, resolved.IsSnippet)
}

func TestResolveSnippetIdempotent(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [
			{"text": "readFile", "kind": "functionName"},
			{"text": "(", "kind": "punctuation"},
			{"text": "path", "kind": "parameterName"},
			{"text": ")", "kind": "punctuation"}
		]
	}`))
	client.respond(protocol.CommandQuickInfo, `{"kind": "function"}`)

	item := resolvableItem()
	item.Data.(*ResolveData).UseCodeSnippet = true
	provider := resolveProvider(client)

	item, err := provider.Resolve(context.Background(), item)
	require.NoError(t, err)
	first := item.InsertText

	item, err = provider.Resolve(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, first, item.InsertText, "a second resolution never re-wraps the snippet")
}

func TestResolveSnippetSkippedForVariableSymbol(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [
			{"text": "readFile", "kind": "functionName"},
			{"text": "(", "kind": "punctuation"},
			{"text": "path", "kind": "parameterName"},
			{"text": ")", "kind": "punctuation"}
		]
	}`))
	client.respond(protocol.CommandQuickInfo, `{"kind": "`+protocol.KindVariable+`"}`)

	item := resolvableItem()
	item.Data.(*ResolveData).UseCodeSnippet = true

	item, err := resolveProvider(client).Resolve(context.Background(), item)
	require.NoError(t, err)
	assert.Empty(t, item.InsertText, "a reassignable symbol keeps the plain insertion")

	data, ok := decodeResolveData(item.Data)
	require.True(t, ok)
	assert.True(t, data.IsSnippet, "the decision is still recorded so it is not retried")
}

func TestResolveDataFromEditorJSON(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionDetails, detailsBody(`{
		"name": "readFile",
		"kind": "function",
		"displayParts": [{"text": "detail", "kind": "text"}]
	}`))

	// The editor round trip re-encodes the data field as generic JSON.
	raw, err := json.Marshal(resolvableItem().Data)
	require.NoError(t, err)
	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &generic))

	item := &lsp.CompletionItem{Label: "readFile", Data: generic}
	item, err = resolveProvider(client).Resolve(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "detail", item.Detail)
}
