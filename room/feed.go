package room

import (
	"context"
	"sync"

	"github.com/penmux/penmux/wire"
)

// entry is one published event plus its routing: on broadcast the src
// subscriber is skipped; when only is non-zero, just that subscriber
// receives it.
type entry struct {
	src  int
	only int
	msg  wire.ServerEvent
}

// feed is a room's broadcast bus: an in-memory event log with a cursor per
// subscriber. Publishing is fire-and-forget; nothing waits on delivery, and
// events every subscriber has consumed are dropped.
type feed struct {
	cond *sync.Cond

	head    int
	events  []entry
	subs    map[int]int // subscriber -> cursor
	subHigh int
	closed  bool
}

func newFeed() *feed {
	return &feed{
		cond: sync.NewCond(&sync.Mutex{}),
		subs: map[int]int{},
	}
}

func (f *feed) publish(src, only int, msg wire.ServerEvent) {
	f.cond.L.Lock()
	defer f.cond.L.Unlock()

	if f.closed {
		return
	}

	f.head++
	if len(f.subs) == 0 {
		f.events = nil // noone cares, drop everything
		return
	}

	f.events = append(f.events, entry{src: src, only: only, msg: msg})
	f.cond.Broadcast()
}

// subscribe registers a listener receiving everything published after this
// call. The listener dies with the context.
func (f *feed) subscribe(ctx context.Context) *listener {
	f.cond.L.Lock()
	who := f.subHigh
	f.subHigh++
	f.subs[who] = f.head
	f.cond.L.Unlock()

	context.AfterFunc(ctx, func() {
		f.cond.L.Lock()
		defer f.cond.L.Unlock()

		delete(f.subs, who)
		f.trim()
		f.cond.Broadcast() // wake the listener so it notices eviction
	})

	return &listener{f: f, who: who}
}

// close ends the feed; all listeners wake up and report done.
func (f *feed) close() {
	f.cond.L.Lock()
	defer f.cond.L.Unlock()

	f.closed = true
	f.events = nil
	f.cond.Broadcast()
}

// trim drops events every remaining subscriber has consumed.
// Must be called under lock.
func (f *feed) trim() {
	m := f.head
	for _, cur := range f.subs {
		m = min(m, cur)
	}

	start := f.head - len(f.events)
	if strip := m - start; strip > 0 {
		f.events = f.events[strip:]
	}
}

type listener struct {
	f   *feed
	who int
}

// next blocks for the next event, in publish order.
// It returns false once the feed closes or the subscriber is evicted.
func (l *listener) next() (entry, bool) {
	f := l.f

	f.cond.L.Lock()
	defer f.cond.L.Unlock()

	for {
		if f.closed {
			return entry{}, false
		}
		cur, ok := f.subs[l.who]
		if !ok {
			return entry{}, false
		}
		if cur == f.head {
			f.cond.Wait()
			continue
		}

		start := f.head - len(f.events)
		e := f.events[cur-start]
		f.subs[l.who] = cur + 1
		f.trim()
		return e, true
	}
}
