package chip8

import (
	"container/list"
	"errors"
	"sync"
)

// ErrPeerGone is the only error queue.Send can return: the channel has been
// closed because the peer on the other end is no longer there (spec §5, §7
// "a channel error (disconnected peer)").
var ErrPeerGone = errors.New("chip8: channel peer is gone")

// queue is the unbounded, MPSC-style channel the command and answer
// protocols are built on (spec §6): unbounded capacity, a non-blocking
// IsEmpty query, a non-blocking TryRecv, and a Recv that blocks only when
// the core is paused and idle. No channel library in the example pack
// offers an unbounded channel — Go's own chan requires a fixed or zero
// buffer — so this is built directly on container/list and sync.Cond, a
// standard producer/consumer shape, and justified in DESIGN.md.
type queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  list.List
	closed bool
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send enqueues v. It fails with ErrPeerGone once Close has been called.
func (q *queue[T]) Send(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrPeerGone
	}
	q.items.PushBack(v)
	q.cond.Signal()
	return nil
}

// IsEmpty reports whether the queue currently has no pending items.
func (q *queue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len() == 0
}

// TryRecv returns the oldest pending item without blocking.
func (q *queue[T]) TryRecv() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.recvLocked()
}

func (q *queue[T]) recvLocked() (v T, ok bool) {
	front := q.items.Front()
	if front == nil {
		return v, false
	}
	q.items.Remove(front)
	return front.Value.(T), true
}

// Recv blocks until an item is available or the queue is closed and
// drained, in which case ok is false.
func (q *queue[T]) Recv() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.Len() == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.recvLocked()
}

// Closed reports whether Close has been called. Combined with an empty
// TryRecv, this is how a non-blocking caller (the core, while playing)
// notices a disconnected peer without ever calling the blocking Recv.
func (q *queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue as having no further sender (or, from the other
// side, no further receiver). Pending items already queued are still
// delivered; Send after Close fails and Recv/TryRecv return ok=false once
// drained.
func (q *queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
