package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/penmux/penmux/ot"
	"github.com/penmux/penmux/sock"
)

// Registry is a keyed store of rooms with lifetimes based on their users:
// rooms are created on first join and, with a ShutdownDelay configured,
// destroyed once they have sat empty for that long. A recreated room starts
// a fresh epoch, so returning clients know their history is gone.
type Registry struct {
	cfg Config

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry builds a Registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, rooms: map[string]*Room{}}
}

// Join runs a client session in the named room, creating it if needed.
// It returns when the connection closes.
func (g *Registry) Join(t sock.Transport, roomID string) error {
	for {
		rm, err := g.room(t.Context(), roomID)
		if err != nil {
			return err
		}

		err = rm.Join(t)
		if errors.Is(err, ErrRoomClosed) {
			continue // raced an idle shutdown; recreate and retry
		}
		return err
	}
}

func (g *Registry) room(ctx context.Context, id string) (*Room, error) {
	g.mu.Lock()
	if rm := g.rooms[id]; rm != nil && !rm.isClosed() {
		g.mu.Unlock()
		return rm, nil
	}
	g.mu.Unlock()

	// load outside the lock; Load may be slow
	doc := ot.NewDoc("")
	if g.cfg.Load != nil {
		var err error
		if doc, err = g.cfg.Load(ctx, id); err != nil {
			return nil, err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if rm := g.rooms[id]; rm != nil && !rm.isClosed() {
		return rm, nil // lost the creation race
	}

	rm := NewRoom(id, doc, g.cfg)
	rm.onEmpty = g.scheduleShutdown
	g.rooms[id] = rm
	return rm, nil
}

func (g *Registry) scheduleShutdown(rm *Room) {
	if g.cfg.ShutdownDelay <= 0 {
		return
	}

	time.AfterFunc(g.cfg.ShutdownDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		if g.rooms[rm.id] != rm {
			return
		}
		if rm.closeIfEmpty() {
			delete(g.rooms, rm.id)
		}
	})
}
