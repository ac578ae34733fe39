package completion

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lsp "go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"tsserver-gateway/src/config"
	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/server/capabilities"
	"tsserver-gateway/src/server/documents"
	"tsserver-gateway/src/server/protocol"
)

const testURI = uri.URI("file:///work/app.ts")

// fakeClient scripts backend responses per command and records the order of
// executed commands.
type fakeClient struct {
	api      *capabilities.APIVersion
	handlers map[string]func(args interface{}) (json.RawMessage, error)

	commands  []string
	deferrals int
}

func newFakeClient(version string) *fakeClient {
	return &fakeClient{
		api:      capabilities.MustParse(version),
		handlers: make(map[string]func(args interface{}) (json.RawMessage, error)),
	}
}

func (c *fakeClient) handle(command string, fn func(args interface{}) (json.RawMessage, error)) {
	c.handlers[command] = fn
}

func (c *fakeClient) respond(command string, body string) {
	c.handle(command, func(interface{}) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	})
}

func (c *fakeClient) Start(ctx context.Context) error { return nil }
func (c *fakeClient) Stop() error                     { return nil }
func (c *fakeClient) IsActive() bool                  { return true }

func (c *fakeClient) Execute(ctx context.Context, command string, args interface{}) (json.RawMessage, error) {
	c.commands = append(c.commands, command)
	if fn, ok := c.handlers[command]; ok {
		return fn(args)
	}
	return nil, &common.BackendError{Command: command, Message: common.NoContentMessage}
}

func (c *fakeClient) DeferDiagnostics(ctx context.Context, fn func() error) error {
	c.deferrals++
	return fn()
}

func (c *fakeClient) OnEvent(handler func(event string, body json.RawMessage)) {}

func (c *fakeClient) APIVersion() *capabilities.APIVersion { return c.api }

type fakeTypings struct{ acquiring bool }

func (t *fakeTypings) IsAcquiring() bool { return t.acquiring }

func newTestProvider(client *fakeClient, text string) (*Provider, *documents.Manager) {
	docs := documents.NewManager()
	docs.Open(testURI, "typescript", text)
	return NewProvider(client, docs, &config.Config{}, &fakeTypings{}), docs
}

func completionParams(line, character uint32) *lsp.CompletionParams {
	return &lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
			Position:     lsp.Position{Line: line, Character: character},
		},
	}
}

func TestCompletionAssemblesList(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionInfo, `{
		"isNewIdentifierLocation": false,
		"isMemberCompletion": false,
		"entries": [
			{"name": "foo", "kind": "function", "sortText": "11"},
			{"name": "bar", "kind": "const"}
		]
	}`)

	provider, _ := newTestProvider(client, "fo")
	list, err := provider.Completion(context.Background(), completionParams(0, 2))
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Len(t, list.Items, 2)

	assert.False(t, list.IsIncomplete)
	assert.Equal(t, "foo", list.Items[0].Label)
	assert.Equal(t, lsp.CompletionItemKindFunction, list.Items[0].Kind)
	assert.Equal(t, "11", list.Items[0].SortText)
	assert.Equal(t, "bar", list.Items[1].SortText, "missing sortText falls back to the name")

	data, ok := decodeResolveData(list.Items[0].Data)
	require.True(t, ok)
	assert.Equal(t, 1, data.Line)
	assert.Equal(t, 3, data.Offset)
	assert.Equal(t, "fo", data.CurrentLine)
}

func TestCompletionFiltersWarningsWhenNamesOff(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionInfo, `{
		"entries": [
			{"name": "foo", "kind": "warning"},
			{"name": "bar", "kind": "function"}
		]
	}`)

	docs := documents.NewManager()
	docs.Open(testURI, "typescript", "x")
	names := false
	cfg := &config.Config{Suggest: config.SuggestConfig{Names: &names}}
	provider := NewProvider(client, docs, cfg, &fakeTypings{})

	list, err := provider.Completion(context.Background(), completionParams(0, 1))
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "bar", list.Items[0].Label)
}

func TestCompletionConfiguresBeforeRequesting(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandConfigure, `{}`)
	client.respond(protocol.CommandCompletionInfo, `{"entries": []}`)

	provider, _ := newTestProvider(client, "x")
	_, err := provider.Completion(context.Background(), completionParams(0, 1))
	require.NoError(t, err)

	require.Equal(t, []string{protocol.CommandConfigure, protocol.CommandCompletionInfo}, client.commands)
	assert.Equal(t, 1, client.deferrals, "the round trip runs with diagnostics deferred")
}

func TestCompletionLegacyBodyVariant(t *testing.T) {
	client := newFakeClient("2.8.0")
	client.respond(protocol.CommandCompletions, `[{"name": "foo", "kind": "function"}]`)

	provider, _ := newTestProvider(client, "fo")
	list, err := provider.Completion(context.Background(), completionParams(0, 2))
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Len(t, list.Items, 1)

	assert.Contains(t, client.commands, protocol.CommandCompletions)
	assert.NotContains(t, client.commands, protocol.CommandCompletionInfo)
	assert.Empty(t, list.Items[0].CommitCharacters,
		"legacy bodies default to a new-identifier location, which suppresses commit characters")
}

func TestCompletionNoContentYieldsNoList(t *testing.T) {
	client := newFakeClient("4.3.0")
	// No completionInfo handler: the fake answers with a no-content failure.
	client.respond(protocol.CommandConfigure, `{}`)

	provider, _ := newTestProvider(client, "x")
	list, err := provider.Completion(context.Background(), completionParams(0, 1))
	assert.NoError(t, err)
	assert.Nil(t, list)
}

func TestCompletionUnknownDocument(t *testing.T) {
	client := newFakeClient("4.3.0")
	provider := NewProvider(client, documents.NewManager(), &config.Config{}, &fakeTypings{})

	list, err := provider.Completion(context.Background(), completionParams(0, 0))
	assert.NoError(t, err)
	assert.Nil(t, list)
	assert.Empty(t, client.commands)
}

func TestCompletionTypingsPlaceholder(t *testing.T) {
	client := newFakeClient("4.3.0")
	docs := documents.NewManager()
	docs.Open(testURI, "typescript", "x")
	provider := NewProvider(client, docs, &config.Config{}, &fakeTypings{acquiring: true})

	list, err := provider.Completion(context.Background(), completionParams(0, 1))
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Acquiring typings...", list.Items[0].Label)
	assert.Empty(t, client.commands, "no backend round trip while typings install")
}

func TestCompletionRejectedTrigger(t *testing.T) {
	client := newFakeClient("2.8.0")
	provider, _ := newTestProvider(client, "const x = a<")

	params := completionParams(0, 12)
	params.Context = &lsp.CompletionContext{
		TriggerKind:      lsp.CompletionTriggerKindTriggerCharacter,
		TriggerCharacter: "<",
	}

	list, err := provider.Completion(context.Background(), params)
	assert.NoError(t, err)
	assert.Nil(t, list)
	assert.Empty(t, client.commands)
}

func TestCompletionMemberDotAccessor(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionInfo, `{
		"isMemberCompletion": true,
		"entries": [{"name": "length", "kind": "property"}]
	}`)

	provider, _ := newTestProvider(client, "value?.")
	list, err := provider.Completion(context.Background(), completionParams(0, 7))
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	item := list.Items[0]
	assert.Equal(t, "?.length", item.FilterText)
	require.NotNil(t, item.TextEdit)
	assert.Equal(t, "?.length", item.TextEdit.NewText)
	assert.Equal(t, uint32(5), item.TextEdit.Range.Start.Character)
	assert.Equal(t, uint32(7), item.TextEdit.Range.End.Character)
}

func TestCompletionIncompleteFlagFromMetadata(t *testing.T) {
	client := newFakeClient("4.3.0")
	client.respond(protocol.CommandCompletionInfo, `{
		"metadata": {"isIncomplete": true},
		"entries": [{"name": "foo", "kind": "const"}]
	}`)

	provider, _ := newTestProvider(client, "fo")
	list, err := provider.Completion(context.Background(), completionParams(0, 2))
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.True(t, list.IsIncomplete)
}

func TestCommitCharactersSuppressedWhileTypingSpread(t *testing.T) {
	api := capabilities.MustParse("3.1.0")
	assert.False(t, commitCharactersValid("foo(bar, .", api))
	assert.False(t, commitCharactersValid(".", api))
	assert.True(t, commitCharactersValid("value.", api))

	// At or above the ceiling the workaround is off.
	assert.True(t, commitCharactersValid(".", capabilities.MustParse("3.2.0")))
}

func TestRecoverDotAccessor(t *testing.T) {
	pos := lsp.Position{Line: 3, Character: 8}

	ctx := recoverDotAccessor("value?.", pos)
	require.NotNil(t, ctx)
	assert.Equal(t, "?.", ctx.Text)
	assert.Equal(t, uint32(6), ctx.Range.Start.Character)

	ctx = recoverDotAccessor("value.  ", pos)
	require.NotNil(t, ctx)
	assert.Equal(t, ".  ", ctx.Text)

	assert.Nil(t, recoverDotAccessor("value", pos))
}
