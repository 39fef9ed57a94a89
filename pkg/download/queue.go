package download

import (
	"context"
	"io"
	"sync"
)

// Emitter accepts events from concurrent producers without blocking.
type Emitter interface {
	Emit(Event)
}

// eventQueue is an unbounded multi-producer queue. Producers never block;
// the single consumer parks on notify until something is appended or the
// queue is closed.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	notify chan struct{}
}

var _ Emitter = &eventQueue{}

func newEventQueue() *eventQueue {
	return &eventQueue{notify: make(chan struct{}, 1)}
}

// Emit appends ev. Events emitted after close are dropped.
func (q *eventQueue) Emit(ev Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.events = append(q.events, ev)
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// next returns the oldest queued event, waiting for one if necessary. It
// returns io.EOF once the queue is closed and empty.
func (q *eventQueue) next(ctx context.Context) (Event, error) {
	for {
		q.mu.Lock()
		if len(q.events) > 0 {
			ev := q.events[0]
			q.events[0] = Event{}
			q.events = q.events[1:]
			q.mu.Unlock()
			return ev, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return Event{}, io.EOF
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}
