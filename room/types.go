// Package room coordinates editing sessions: per-document rooms with client
// bookkeeping, write authorization and event broadcast, layered on the rev
// reconciliation server.
package room

import (
	"context"
	"errors"
	"time"

	"github.com/penmux/penmux/ot"
	"github.com/penmux/penmux/wire"
)

// ErrRoomClosed is returned by Join when the room has been torn down.
// Registry callers never see it; the registry recreates the room and
// retries.
var ErrRoomClosed = errors.New("room: closed")

// Config configures rooms and the Registry.
type Config struct {
	// Authorize reports whether the client may mutate the document. It may
	// block (e.g. consult a remote policy); it runs inside the room's serial
	// section, so no other edit for the same document is processed between
	// the check and the mutation. nil allows all writes.
	Authorize func(ctx context.Context, roomID string, client wire.Client) bool

	// Load provides the initial document when a room is created.
	// nil loads an empty document.
	Load func(ctx context.Context, roomID string) (*ot.Doc, error)

	// ShutdownDelay controls how long an empty room lingers before it is
	// destroyed. Zero keeps empty rooms forever.
	ShutdownDelay time.Duration
}
