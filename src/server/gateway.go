package server

import (
	"context"
	"fmt"

	"tsserver-gateway/src/config"
	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/internal/types"
	"tsserver-gateway/src/server/completion"
	"tsserver-gateway/src/server/documents"
)

// Gateway is the composition root: it owns the backend client, the open
// document set, the completion provider, and the command registry, and wires
// them together at startup.
type Gateway struct {
	client   types.Client
	docs     *documents.Manager
	typings  *AcquisitionTracker
	provider *completion.Provider
	registry *CommandRegistry
}

// NewGateway builds a gateway around a backend launched from the config.
func NewGateway(cfg *config.Config, chooser Chooser, applier WorkspaceEditApplier) *Gateway {
	client := NewStdioClient(types.ClientConfig{
		Command:    cfg.Backend.Command,
		Args:       cfg.Backend.Args,
		WorkingDir: cfg.Backend.WorkingDir,
	})
	return newGatewayWith(client, cfg, chooser, applier)
}

func newGatewayWith(client types.Client, cfg *config.Config, chooser Chooser, applier WorkspaceEditApplier) *Gateway {
	docs := documents.NewManager()
	typings := NewAcquisitionTracker(client)

	registry := NewCommandRegistry()
	NewApplyCodeActionCommand(client, chooser, applier).RegisterInto(registry)

	return &Gateway{
		client:   client,
		docs:     docs,
		typings:  typings,
		provider: completion.NewProvider(client, docs, cfg, typings),
		registry: registry,
	}
}

// Start launches the backend and negotiates its protocol version.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start backend: %w", err)
	}
	common.TSLogger.Info("Backend started, protocol version %s", g.client.APIVersion())
	return nil
}

// Stop shuts down the backend.
func (g *Gateway) Stop() error {
	return g.client.Stop()
}

// Provider exposes the completion surface.
func (g *Gateway) Provider() *completion.Provider { return g.provider }

// Documents exposes the open document set.
func (g *Gateway) Documents() *documents.Manager { return g.docs }

// Commands exposes the registered editor-facing command handlers.
func (g *Gateway) Commands() *CommandRegistry { return g.registry }

// Client exposes the backend client.
func (g *Gateway) Client() types.Client { return g.client }
