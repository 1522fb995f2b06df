package chip8

import (
	"testing"
	"time"
)

func TestQueueSendTryRecv(t *testing.T) {
	q := newQueue[int]()

	if !q.IsEmpty() {
		t.Fatal("new queue is not empty")
	}
	if err := q.Send(1); err != nil {
		t.Fatalf("Send returned %v", err)
	}
	if err := q.Send(2); err != nil {
		t.Fatalf("Send returned %v", err)
	}
	if q.IsEmpty() {
		t.Fatal("queue reports empty after two sends")
	}

	v, ok := q.TryRecv()
	if !ok || v != 1 {
		t.Fatalf("TryRecv = (%d, %v); want (1, true)", v, ok)
	}
	v, ok = q.TryRecv()
	if !ok || v != 2 {
		t.Fatalf("TryRecv = (%d, %v); want (2, true)", v, ok)
	}
	if _, ok := q.TryRecv(); ok {
		t.Fatal("TryRecv on an empty queue returned ok=true")
	}
}

func TestQueueRecvBlocksUntilSend(t *testing.T) {
	q := newQueue[string]()
	done := make(chan string, 1)

	go func() {
		v, ok := q.Recv()
		if !ok {
			done <- "closed"
			return
		}
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Recv returned before anything was sent")
	default:
	}

	if err := q.Send("hello"); err != nil {
		t.Fatalf("Send returned %v", err)
	}

	select {
	case v := <-done:
		if v != "hello" {
			t.Fatalf("Recv delivered %q; want %q", v, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("Recv never returned after Send")
	}
}

func TestQueueCloseUnblocksRecv(t *testing.T) {
	q := newQueue[int]()
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Recv()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("Recv reported ok=true after Close with nothing queued")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock a pending Recv")
	}
}

func TestQueueSendAfterCloseFails(t *testing.T) {
	q := newQueue[int]()
	q.Close()
	if err := q.Send(1); err != ErrPeerGone {
		t.Fatalf("Send after Close = %v; want ErrPeerGone", err)
	}
	if !q.Closed() {
		t.Fatal("Closed() = false after Close")
	}
}

func TestQueueCloseStillDeliversQueuedItems(t *testing.T) {
	q := newQueue[int]()
	if err := q.Send(42); err != nil {
		t.Fatalf("Send returned %v", err)
	}
	q.Close()

	v, ok := q.Recv()
	if !ok || v != 42 {
		t.Fatalf("Recv = (%d, %v); want (42, true) for an item queued before Close", v, ok)
	}

	if _, ok := q.Recv(); ok {
		t.Fatal("Recv reported ok=true once the closed queue was drained")
	}
}
