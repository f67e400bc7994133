// Package events implements a small pub/sub hub for UserProc status
// transitions, plus an optional websocket server that mirrors every
// published event to connected clients as JSON. A session publishes an
// event each time it finishes a stage for a procedure (decode, decompile,
// code generation); nothing in package proc or package program imports this
// package, so publishing is always the caller's choice.
//
// Each connected client is fed by its own buffered channel, with a
// background goroutine draining it into the underlying connection.
package events

import (
	"sync"
	"time"

	"decomp/internal/ir"
	"decomp/internal/proc"
)

// Event is one procedure status transition.
type Event struct {
	ProcAddr   ir.Addr     `json:"proc_addr"`
	ProcName   string      `json:"proc_name"`
	Status     proc.Status `json:"status"`
	StatusName string      `json:"status_name"`
	Time       time.Time   `json:"time"`
}

// Hub fans out Events to any number of subscribers. The zero value is not
// usable; construct with NewHub.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new listener and returns its channel along with an
// unsubscribe function the caller must call when done listening. The
// channel is buffered; a subscriber that falls behind has its oldest
// pending event dropped rather than blocking Publish.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, 64)
	h.subs[id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Publish emits ev to every current subscriber. It never blocks.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// PublishStatus is a convenience wrapper for the common case of reporting a
// single procedure's new status.
func (h *Hub) PublishStatus(addr ir.Addr, name string, status proc.Status) {
	h.Publish(Event{ProcAddr: addr, ProcName: name, Status: status, StatusName: status.String(), Time: time.Now()})
}
