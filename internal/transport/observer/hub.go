package observer

import (
	"context"
	"encoding/json"
	"sync"

	"museumbot/internal/sim/world"
)

// Hub fans published snapshots out to observer connections. Each snapshot is encoded once;
// slow observers only ever see the latest frames.
type Hub struct {
	mu   sync.Mutex
	subs map[uint64]chan []byte
	next uint64

	latest []byte
}

func NewHub() *Hub {
	return &Hub{subs: map[uint64]chan []byte{}}
}

// Run consumes snaps until ctx is done or snaps is closed. Subscriber channels are closed on return.
func (h *Hub) Run(ctx context.Context, snaps <-chan world.Snapshot) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-snaps:
			if !ok {
				return
			}
			b, err := json.Marshal(FrameFromSnapshot(s))
			if err != nil {
				continue
			}
			h.Broadcast(b)
		}
	}
}

func (h *Hub) Broadcast(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = b
	for _, ch := range h.subs {
		sendLatest(ch, b)
	}
}

// Subscribe registers a new observer. The last broadcast frame, if any, is delivered first.
func (h *Hub) Subscribe(buf int) (uint64, <-chan []byte) {
	if buf <= 0 {
		buf = 1
	}
	ch := make(chan []byte, buf)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	if h.subs == nil {
		close(ch)
		return id, ch
	}
	h.subs[id] = ch
	if h.latest != nil {
		ch <- h.latest
	}
	return id, ch
}

func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.subs = nil
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
