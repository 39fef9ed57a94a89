package download

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// JobHandle is returned by Worker.Push. It owns the job's cancellation and
// its event stream.
type JobHandle struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	queue  *eventQueue
	drain  *semaphore.Weighted
	done   chan struct{}
}

func newJobHandle(ctx context.Context) *JobHandle {
	ctx, cancel := context.WithCancel(ctx)
	return &JobHandle{
		id:     uuid.New(),
		ctx:    ctx,
		cancel: cancel,
		queue:  newEventQueue(),
		drain:  semaphore.NewWeighted(1),
		done:   make(chan struct{}),
	}
}

func (h *JobHandle) ID() uuid.UUID {
	return h.id
}

// Cancel stops every task of the job that has not finished yet. Partially
// written files are left in place. Calling Cancel more than once is a no-op.
func (h *JobHandle) Cancel() {
	h.cancel()
}

// Done is closed once every task execution of the job has exited.
func (h *JobHandle) Done() <-chan struct{} {
	return h.done
}

func (h *JobHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain grants exclusive access to the event stream. It blocks while another
// Receiver is held, until that Receiver is released or ctx ends.
func (h *JobHandle) Drain(ctx context.Context) (*Receiver, error) {
	if err := h.drain.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("error waiting for event stream of job %s: %w", h.id, err)
	}
	return &Receiver{queue: h.queue, release: func() { h.drain.Release(1) }}, nil
}

func (h *JobHandle) finish() {
	h.queue.close()
	h.cancel()
	close(h.done)
}

// Receiver is the exclusive consumer of a job's events.
type Receiver struct {
	queue   *eventQueue
	release func()
	once    sync.Once
}

// Recv returns the next event. It returns io.EOF once every task execution
// has exited and all events have been received.
func (r *Receiver) Recv(ctx context.Context) (Event, error) {
	return r.queue.next(ctx)
}

func (r *Receiver) Release() {
	r.once.Do(r.release)
}
