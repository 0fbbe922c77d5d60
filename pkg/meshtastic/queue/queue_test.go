package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEnqueueThenAckResolvesOnce(t *testing.T) {
	q := New(nil)
	done, err := q.Enqueue(1, []byte("payload"))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	q.ProcessAck(1)

	select {
	case res := <-done:
		if res.Err != nil || res.ID != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
	case <-time.After(time.Second):
		t.Fatal("future never resolved")
	}
}

func TestProcessAckOnUnknownIDIsNoop(t *testing.T) {
	q := New(nil)
	q.ProcessAck(999) // must not panic or block
}

func TestDuplicateIDRejected(t *testing.T) {
	q := New(nil)
	if _, err := q.Enqueue(5, []byte("a")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := q.Enqueue(5, []byte("b")); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestDrainWritesInEnqueueOrder(t *testing.T) {
	q := New(nil)
	var order []uint32

	for _, id := range []uint32{1, 2, 3} {
		if _, err := q.Enqueue(id, []byte{byte(id)}); err != nil {
			t.Fatalf("enqueue %d: %v", id, err)
		}
	}

	write := func(ctx context.Context, payload []byte) error {
		order = append(order, uint32(payload[0]))
		return nil
	}

	for i := 0; i < 3; i++ {
		if err := q.Drain(context.Background(), write); err != nil {
			t.Fatalf("drain: %v", err)
		}
	}

	want := []uint32{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order length mismatch: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, order, want)
		}
	}
}

func TestProcessErrorResolvesWithReason(t *testing.T) {
	q := New(nil)
	done, err := q.Enqueue(2, []byte("x"))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	wantErr := errors.New("boom")
	q.ProcessError(2, wantErr)

	res := <-done
	if !errors.Is(res.Err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, res.Err)
	}
}

func TestClearCancelsPendingEntries(t *testing.T) {
	q := New(nil)
	done, err := q.Enqueue(3, []byte("x"))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	q.Clear()

	res := <-done
	if !errors.Is(res.Err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", res.Err)
	}
}

func TestWriteDirectSharesInFlightSlotWithDrain(t *testing.T) {
	q := New(nil)
	if _, err := q.Enqueue(7, []byte{7}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var order []string
	direct := make(chan struct{})
	go func() {
		_ = q.WriteDirect(context.Background(), func(ctx context.Context, payload []byte) error {
			order = append(order, "direct")
			return nil
		}, []byte("control"))
		close(direct)
	}()
	<-direct

	if err := q.Drain(context.Background(), func(ctx context.Context, payload []byte) error {
		order = append(order, "drain")
		return nil
	}); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(order) != 2 || order[0] != "direct" || order[1] != "drain" {
		t.Fatalf("unexpected interleaving: %v", order)
	}
}

func TestDrainSurfacesTransportError(t *testing.T) {
	q := New(nil)
	done, err := q.Enqueue(4, []byte("x"))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	writeErr := errors.New("write failed")
	drainErr := q.Drain(context.Background(), func(ctx context.Context, payload []byte) error {
		return writeErr
	})
	if !errors.Is(drainErr, writeErr) {
		t.Fatalf("expected drain to surface write error, got %v", drainErr)
	}

	res := <-done
	if !errors.Is(res.Err, writeErr) {
		t.Fatalf("expected future error to wrap %v, got %v", writeErr, res.Err)
	}
}
