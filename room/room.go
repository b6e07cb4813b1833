package room

import (
	"context"
	"log"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/penmux/penmux/ot"
	"github.com/penmux/penmux/rev"
	"github.com/penmux/penmux/sock"
	"github.com/penmux/penmux/wire"
)

// Room is one collaboratively-edited document plus everyone connected to it.
type Room struct {
	id    string
	epoch string
	cfg   Config

	feed *feed

	// mu serializes every read-transform-apply-append for this document,
	// including the write-authorization check for an edit. Every feed
	// publish also happens under mu, so a snapshot plus subscription taken
	// under it observes a consistent cut of the event stream.
	mu      sync.Mutex
	srv     *rev.Server
	clients map[int]*wire.Client
	closed  bool

	// onEmpty, if set, runs after the last client leaves.
	onEmpty func(*Room)
}

// NewRoom builds a standalone room over the given document.
// Rooms served through a Registry are created for you.
func NewRoom(id string, doc *ot.Doc, cfg Config) *Room {
	return &Room{
		id:      id,
		epoch:   uuid.NewString(),
		cfg:     cfg,
		feed:    newFeed(),
		srv:     rev.New(doc, nil),
		clients: map[int]*wire.Client{},
	}
}

// ID returns the room's document id.
func (r *Room) ID() string {
	return r.id
}

// Snapshot returns the room's current catch-up state.
func (r *Room) Snapshot() *wire.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() *wire.Snapshot {
	clients := make(map[int]wire.Client, len(r.clients))
	for id, c := range r.clients {
		clients[id] = *c
	}
	return &wire.Snapshot{
		Epoch:      r.epoch,
		Document:   r.srv.Doc().String(),
		Revision:   r.srv.Revision(),
		Clients:    clients,
		Operations: r.srv.History(0),
	}
}

// Join runs a client session over the transport until the connection closes:
// it registers the client, sends the catch-up snapshot, announces the join,
// then serves inbound events. On return the client record is gone and
// client_left has been broadcast exactly once.
func (r *Room) Join(t sock.Transport) error {
	ctx := t.Context()
	id := <-sessionIDs

	client := &wire.Client{
		ID:        id,
		Name:      strconv.Itoa(id),
		Selection: ot.Selection{{Anchor: 0, Head: 0}},
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomClosed
	}
	sub := r.feed.subscribe(ctx)
	snap := r.snapshotLocked() // excludes the joining client
	r.clients[id] = client
	announced := *client
	r.feed.publish(id, 0, wire.ServerEvent{Type: wire.TypeClientJoin, Join: &announced})
	r.mu.Unlock()

	// The writer goroutine owns all sends after this one.
	if err := t.WriteJSON(wire.ServerEvent{Type: wire.TypeDoc, Doc: snap}); err != nil {
		r.leave(id)
		return err
	}

	go func() {
		for {
			e, ok := sub.next()
			if !ok {
				return
			}
			if e.only != 0 {
				if e.only != id {
					continue
				}
			} else if e.src == id {
				continue
			}
			if t.WriteJSON(e.msg) != nil {
				return // transport cancels itself on write failure
			}
		}
	}()

	for {
		var ev wire.ClientEvent
		if err := t.ReadJSON(&ev); err != nil {
			break
		}

		switch ev.Type {
		case wire.TypeOperation:
			r.handleOperation(ctx, id, ev)
		case wire.TypeSelection:
			r.handleSelection(ctx, id, ev)
		case wire.TypeSetName:
			r.handleSetName(id, ev.Name)
		default:
			log.Printf("room %s: unknown event %q from client %d", r.id, ev.Type, id)
		}
	}

	r.leave(id)
	return nil
}

func (r *Room) leave(id int) {
	r.mu.Lock()
	_, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
		r.feed.publish(id, 0, wire.ServerEvent{Type: wire.TypeClientLeft, Client: id})
	}
	empty := ok && len(r.clients) == 0
	onEmpty := r.onEmpty
	r.mu.Unlock()

	if empty && onEmpty != nil {
		onEmpty(r)
	}
}

func (r *Room) mayWrite(ctx context.Context, client wire.Client) bool {
	if r.cfg.Authorize == nil {
		return true
	}
	return r.cfg.Authorize(ctx, r.id, client)
}

func (r *Room) handleOperation(ctx context.Context, id int, ev wire.ClientEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[id]
	if !ok || r.closed {
		return
	}
	if !r.mayWrite(ctx, *client) {
		log.Printf("room %s: client %d may not write", r.id, id)
		return
	}

	op, err := wire.DecodeOperation(ev.Operation)
	if err != nil {
		log.Printf("room %s: invalid operation from client %d: %v", r.id, id, err)
		return
	}
	sel, err := wire.DecodeSelection(ev.Selection)
	if err != nil {
		log.Printf("room %s: invalid selection from client %d: %v", r.id, id, err)
		return
	}

	rebased, err := r.srv.Receive(ev.Revision, ot.Wrap(op, sel))
	if err != nil {
		log.Printf("room %s: dropping operation from client %d: %v", r.id, id, err)
		return
	}

	client.Selection = rebased.Meta
	r.feed.publish(id, id, wire.ServerEvent{Type: wire.TypeAck})
	r.feed.publish(id, 0, wire.ServerEvent{
		Type:      wire.TypeOperation,
		Client:    id,
		Operation: rebased.Op,
		Selection: rebased.Meta,
	})
}

func (r *Room) handleSelection(ctx context.Context, id int, ev wire.ClientEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[id]
	if !ok || r.closed {
		return
	}
	if !r.mayWrite(ctx, *client) {
		log.Printf("room %s: client %d may not write", r.id, id)
		return
	}

	sel, err := wire.DecodeSelection(ev.Selection)
	if err != nil {
		log.Printf("room %s: invalid selection from client %d: %v", r.id, id, err)
		return
	}

	if sel != nil {
		client.Selection = sel
	}
	// a null selection still broadcasts: it hides the sender's cursor
	r.feed.publish(id, 0, wire.ServerEvent{Type: wire.TypeSelection, Client: id, Selection: sel})
}

func (r *Room) handleSetName(id int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[id]
	if !ok || r.closed {
		return
	}

	client.Name = name
	r.feed.publish(id, 0, wire.ServerEvent{Type: wire.TypeSetName, Client: id, Name: name})
}

func (r *Room) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// closeIfEmpty tears the room down if noone is connected, reporting whether
// it is now closed.
func (r *Room) closeIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return true
	}
	if len(r.clients) > 0 {
		return false
	}

	r.closed = true
	r.feed.close()
	return true
}
