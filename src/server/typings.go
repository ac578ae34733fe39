package server

import (
	"encoding/json"
	"sync/atomic"

	"tsserver-gateway/src/internal/types"
	"tsserver-gateway/src/server/protocol"
)

// TypingsStatus reports whether a typings-acquisition background process is
// running. While it is, completion requests short-circuit to a placeholder.
type TypingsStatus interface {
	IsAcquiring() bool
}

// AcquisitionTracker follows the backend's install events to answer
// TypingsStatus. Begin/end events may overlap for independent packages, so
// the tracker keeps a count rather than a flag.
type AcquisitionTracker struct {
	inflight atomic.Int32
}

// NewAcquisitionTracker subscribes to the client's typings install events.
func NewAcquisitionTracker(client types.Client) *AcquisitionTracker {
	t := &AcquisitionTracker{}
	client.OnEvent(func(event string, body json.RawMessage) {
		switch event {
		case protocol.EventBeginInstallTypes:
			t.inflight.Add(1)
		case protocol.EventEndInstallTypes:
			// Never go negative if the backend restarts mid-install.
			if t.inflight.Add(-1) < 0 {
				t.inflight.Store(0)
			}
		}
	})
	return t
}

// IsAcquiring reports whether any install is in progress.
func (t *AcquisitionTracker) IsAcquiring() bool {
	return t.inflight.Load() > 0
}
