package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/internal/types"
	"tsserver-gateway/src/server/completion"
	"tsserver-gateway/src/server/protocol"
	"tsserver-gateway/src/utils/jsonutil"
)

// Chooser presents action descriptions and returns the chosen index, or -1
// when the user cancels.
type Chooser interface {
	Choose(ctx context.Context, descriptions []string) (int, error)
}

// WorkspaceEditApplier applies per-file changes to the workspace.
type WorkspaceEditApplier interface {
	Apply(ctx context.Context, changes []protocol.FileCodeEdits) error
}

// CommandHandler executes one registered command against its decoded
// arguments.
type CommandHandler func(ctx context.Context, args json.RawMessage) error

// CommandRegistry holds the editor-facing command handlers. The composition
// root registers handlers once at startup; execution dispatches by id.
type CommandRegistry struct {
	mu       sync.RWMutex
	handlers map[string]CommandHandler
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{handlers: make(map[string]CommandHandler)}
}

// Register binds a handler to a command id, replacing any previous binding.
func (r *CommandRegistry) Register(id string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = handler
}

// Execute dispatches a command invocation to its handler.
func (r *CommandRegistry) Execute(ctx context.Context, id string, args json.RawMessage) error {
	r.mu.RLock()
	handler, ok := r.handlers[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown command %q", id)
	}
	return handler(ctx, args)
}

// ApplyCodeActionCommand applies deferred completion code actions: given
// zero actions it is a no-op, given one it applies it unconditionally, given
// more it lets the user pick exactly one.
type ApplyCodeActionCommand struct {
	client  types.Client
	chooser Chooser
	applier WorkspaceEditApplier
}

func NewApplyCodeActionCommand(client types.Client, chooser Chooser, applier WorkspaceEditApplier) *ApplyCodeActionCommand {
	return &ApplyCodeActionCommand{client: client, chooser: chooser, applier: applier}
}

// RegisterInto binds the typed handler into the registry. Arguments arrive
// as the JSON-encoded action list the resolution pipeline attached.
func (c *ApplyCodeActionCommand) RegisterInto(registry *CommandRegistry) {
	registry.Register(completion.ApplyCompletionCodeActionID, func(ctx context.Context, args json.RawMessage) error {
		actions, err := jsonutil.Convert[[]protocol.CodeAction](args)
		if err != nil {
			return fmt.Errorf("malformed code action arguments: %w", err)
		}
		return c.Execute(ctx, actions)
	})
}

// Execute applies exactly one of the given actions.
func (c *ApplyCodeActionCommand) Execute(ctx context.Context, actions []protocol.CodeAction) error {
	switch len(actions) {
	case 0:
		return nil
	case 1:
		return c.apply(ctx, actions[0])
	}

	descriptions := make([]string, 0, len(actions))
	for _, a := range actions {
		descriptions = append(descriptions, a.Description)
	}
	idx, err := c.chooser.Choose(ctx, descriptions)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(actions) {
		// User cancel is a no-op, not an error.
		return nil
	}
	return c.apply(ctx, actions[idx])
}

// apply executes the action's backend commands, then applies its remaining
// changes as workspace edits.
func (c *ApplyCodeActionCommand) apply(ctx context.Context, action protocol.CodeAction) error {
	if len(action.Commands) > 0 {
		args := map[string]interface{}{"commands": action.Commands}
		if _, err := c.client.Execute(ctx, protocol.CommandApplyCodeActionCommand, args); err != nil {
			return common.WrapProcessingError("apply code action commands", err)
		}
	}
	if len(action.Changes) > 0 {
		if err := c.applier.Apply(ctx, action.Changes); err != nil {
			return common.WrapProcessingError("apply workspace edits", err)
		}
	}
	return nil
}
