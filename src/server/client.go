package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/internal/types"
	"tsserver-gateway/src/server/capabilities"
	"tsserver-gateway/src/server/protocol"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// fallbackAPIVersion is assumed when the backend does not answer the status
// command; old enough that every legacy workaround stays active.
var fallbackAPIVersion = capabilities.MustParse("2.0.0")

// pendingRequest stores the response channel for an in-flight command.
type pendingRequest struct {
	respCh chan *protocol.Response
}

// StdioClient implements backend communication over STDIO.
type StdioClient struct {
	config types.ClientConfig
	codec  *protocol.Codec

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
	stopCh chan struct{}

	mu       sync.RWMutex
	writeMu  sync.Mutex
	active   bool
	requests map[int]*pendingRequest
	nextSeq  int

	apiVersion *capabilities.APIVersion

	eventMu       sync.RWMutex
	eventHandlers []func(event string, body json.RawMessage)

	// diagDeferrals counts overlapping DeferDiagnostics scopes; the
	// diagnostics scheduler polls it to yield while completions are in
	// flight.
	diagDeferrals atomic.Int32
}

// NewStdioClient creates a new STDIO backend client
func NewStdioClient(config types.ClientConfig) *StdioClient {
	return &StdioClient{
		config:     config,
		codec:      protocol.NewCodec(),
		requests:   make(map[int]*pendingRequest),
		stopCh:     make(chan struct{}),
		apiVersion: fallbackAPIVersion,
	}
}

// Start launches the backend server process and negotiates the protocol
// version.
func (c *StdioClient) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return fmt.Errorf("client already active")
	}
	c.mu.Unlock()

	cmd := exec.Command(c.config.Command, c.config.Args...)
	if c.config.WorkingDir != "" {
		cmd.Dir = c.config.WorkingDir
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return common.NewProcessError(c.config.Command, "start", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return common.NewProcessError(c.config.Command, "start", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return common.NewProcessError(c.config.Command, "start", err)
	}

	if err := cmd.Start(); err != nil {
		return common.NewProcessError(c.config.Command, "start", err)
	}

	c.cmd = cmd
	c.stdin = stdin
	c.stdout = stdout
	c.stderr = stderr

	go func() {
		if err := c.codec.ReadLoop(c.stdout, c, c.stopCh); err != nil && err != io.EOF {
			common.TSLogger.Error("Error handling responses: %v", err)
		}
		c.failPending()
	}()

	go c.logStderr()

	c.mu.Lock()
	c.active = true
	c.mu.Unlock()

	c.negotiateVersion(ctx)

	return nil
}

// Stop terminates the backend server process
func (c *StdioClient) Stop() error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	c.active = false
	c.mu.Unlock()

	close(c.stopCh)

	// Polite exit first; the command has no response.
	_ = c.writeRequest(&protocol.Request{
		Seq:     c.takeSeq(),
		Type:    protocol.TypeRequest,
		Command: protocol.CommandExit,
	})
	_ = c.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		if err := c.cmd.Process.Kill(); err != nil {
			common.TSLogger.Error("Error killing backend process: %v", err)
		}
		<-done
	}

	c.failPending()
	return nil
}

// IsActive returns true if the backend is currently running
func (c *StdioClient) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// APIVersion reports the protocol version negotiated with the backend
func (c *StdioClient) APIVersion() *capabilities.APIVersion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiVersion
}

// Execute sends a command and waits for the matching response. A response
// with success=false is surfaced as a *common.BackendError.
func (c *StdioClient) Execute(ctx context.Context, command string, args interface{}) (json.RawMessage, error) {
	if !c.IsActive() {
		return nil, common.NewProcessError(c.config.Command, "communication", fmt.Errorf("backend not running"))
	}

	seq := c.takeSeq()
	pending := &pendingRequest{respCh: make(chan *protocol.Response, 1)}

	c.mu.Lock()
	c.requests[seq] = pending
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.requests, seq)
		c.mu.Unlock()
	}()

	req := &protocol.Request{
		Seq:       seq,
		Type:      protocol.TypeRequest,
		Command:   command,
		Arguments: args,
	}
	if err := c.writeRequest(req); err != nil {
		return nil, common.NewProcessError(c.config.Command, "communication", err)
	}

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()

	select {
	case resp := <-pending.respCh:
		if resp == nil {
			return nil, common.NewProcessError(c.config.Command, "communication", fmt.Errorf("backend closed connection"))
		}
		if !resp.Success {
			return nil, common.NewBackendError(command, resp.Message)
		}
		return resp.Body, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("timeout waiting for %s response", command)
	case <-c.stopCh:
		return nil, common.NewProcessError(c.config.Command, "communication", fmt.Errorf("client stopped"))
	}
}

// DeferDiagnostics runs fn while diagnostics work is deprioritized.
func (c *StdioClient) DeferDiagnostics(ctx context.Context, fn func() error) error {
	c.diagDeferrals.Add(1)
	defer c.diagDeferrals.Add(-1)
	return fn()
}

// DiagnosticsDeferred reports whether any caller currently holds diagnostics
// priority.
func (c *StdioClient) DiagnosticsDeferred() bool {
	return c.diagDeferrals.Load() > 0
}

// OnEvent registers a handler for backend-initiated events
func (c *StdioClient) OnEvent(handler func(event string, body json.RawMessage)) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()
	c.eventHandlers = append(c.eventHandlers, handler)
}

// HandleResponse routes a decoded response to the matching pending request.
func (c *StdioClient) HandleResponse(resp *protocol.Response) error {
	c.mu.RLock()
	pending, ok := c.requests[resp.RequestSeq]
	c.mu.RUnlock()
	if !ok {
		common.TSLogger.Debug("Dropping response for unknown request seq %d (%s)", resp.RequestSeq, resp.Command)
		return nil
	}
	pending.respCh <- resp
	return nil
}

// HandleEvent dispatches a backend event to registered handlers.
func (c *StdioClient) HandleEvent(ev *protocol.Event) error {
	c.eventMu.RLock()
	handlers := c.eventHandlers
	c.eventMu.RUnlock()
	for _, h := range handlers {
		h(ev.Event, ev.Body)
	}
	return nil
}

func (c *StdioClient) writeRequest(req *protocol.Request) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.codec.WriteRequest(c.stdin, req)
}

func (c *StdioClient) takeSeq() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	return c.nextSeq
}

// negotiateVersion asks the backend for its protocol version. Backends that
// predate the status command keep the conservative fallback.
func (c *StdioClient) negotiateVersion(ctx context.Context) {
	statusCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	body, err := c.Execute(statusCtx, protocol.CommandStatus, nil)
	if err != nil {
		common.TSLogger.Warn("Backend did not report a version, assuming %s: %v", fallbackAPIVersion, err)
		return
	}

	var status protocol.StatusBody
	if err := json.Unmarshal(body, &status); err != nil || status.Version == "" {
		common.TSLogger.Warn("Malformed status response, assuming %s", fallbackAPIVersion)
		return
	}

	parsed, err := capabilities.Parse(status.Version)
	if err != nil {
		common.TSLogger.Warn("Unparseable backend version %q, assuming %s", status.Version, fallbackAPIVersion)
		return
	}

	c.mu.Lock()
	c.apiVersion = parsed
	c.mu.Unlock()
	common.TSLogger.Info("Backend protocol version %s", parsed)
}

// failPending unblocks every in-flight Execute after the read loop exits.
func (c *StdioClient) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for seq, pending := range c.requests {
		select {
		case pending.respCh <- nil:
		default:
		}
		delete(c.requests, seq)
	}
}

func (c *StdioClient) logStderr() {
	scanner := bufio.NewScanner(c.stderr)
	for scanner.Scan() {
		common.TSLogger.Debug("backend stderr: %s", scanner.Text())
	}
}
