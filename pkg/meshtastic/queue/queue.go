// Package queue implements the per-packet-id transmit queue: one entry
// per outbound frame, tracked through Pending -> Sent -> {Acked,
// Errored}, with a one-shot completion signal per entry that callers can
// correlate an ack or routing error back to by packet id.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// State is the lifecycle stage of one queue entry.
type State int

const (
	Pending State = iota
	Sent
	Acked
	Errored
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Sent:
		return "sent"
	case Acked:
		return "acked"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrCancelled is delivered to every pending waiter when Clear is called.
var ErrCancelled = errors.New("meshtastic/queue: cleared")

// ErrDuplicateID is returned by Enqueue when an entry for the id is
// already tracked; at most one queue entry exists per id at a time.
var ErrDuplicateID = errors.New("meshtastic/queue: duplicate packet id")

// TransportWriteFunc performs the actual byte-level write. It is called
// by Drain with at most one call in flight at a time.
type TransportWriteFunc func(ctx context.Context, payload []byte) error

// Result is what a queue entry's future resolves to: either the acked
// packet id, or the error that terminated the send.
type Result struct {
	ID  uint32
	Err error
}

type entry struct {
	id      uint32
	payload []byte
	state   State
	done    chan Result
	once    sync.Once
}

func (e *entry) resolve(res Result) {
	e.once.Do(func() {
		e.done <- res
		close(e.done)
	})
}

// Queue is the per-session transmit queue. Zero value is not usable;
// construct with New.
type Queue struct {
	log *slog.Logger

	mu      sync.Mutex
	entries map[uint32]*entry
	order   []uint32 // insertion order, for Drain

	drainMu sync.Mutex // ensures only one in-flight transport write at a time
}

// New returns an empty Queue. A nil logger defaults to slog.Default().
func New(log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		log:     log,
		entries: make(map[uint32]*entry),
	}
}

// Enqueue places payload in Pending state under id and returns a
// channel that receives exactly one Result when the entry reaches a
// terminal state.
func (q *Queue) Enqueue(id uint32, payload []byte) (<-chan Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.entries[id]; exists {
		return nil, ErrDuplicateID
	}

	e := &entry{
		id:      id,
		payload: payload,
		state:   Pending,
		done:    make(chan Result, 1),
	}
	q.entries[id] = e
	q.order = append(q.order, id)
	return e.done, nil
}

// Drain transfers as many Pending entries as write will accept, one at
// a time, transitioning each to Sent before the next is attempted.
// Concurrent Drain calls are safe: they share a single in-flight slot,
// so at most one transport write runs at any moment.
func (q *Queue) Drain(ctx context.Context, write TransportWriteFunc) error {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	for {
		e := q.nextPending()
		if e == nil {
			return nil
		}

		err := write(ctx, e.payload)

		q.mu.Lock()
		if err != nil {
			e.state = Errored
			delete(q.entries, e.id)
			q.mu.Unlock()
			q.log.Warn("transport write failed", "id", e.id, "error", err)
			e.resolve(Result{ID: e.id, Err: fmt.Errorf("meshtastic/queue: transport write: %w", err)})
			return err
		}
		e.state = Sent
		q.mu.Unlock()
	}
}

// WriteDirect performs a single transport write outside the pending-entry
// bookkeeping Enqueue/Drain track, sharing Drain's single in-flight slot
// so a control frame (a configuration request, an XMODEM control
// message) never interleaves with an app-level send mid-write. Used for
// writes that have no queue-entry future of their own to resolve.
func (q *Queue) WriteDirect(ctx context.Context, write TransportWriteFunc, payload []byte) error {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()
	return write(ctx, payload)
}

func (q *Queue) nextPending() *entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range q.order {
		if e, ok := q.entries[id]; ok && e.state == Pending {
			return e
		}
	}
	return nil
}

// ProcessAck transitions the tracked entry matching requestID (Pending or
// Sent) to Acked. Unknown ids are ignored.
func (q *Queue) ProcessAck(requestID uint32) {
	q.mu.Lock()
	e, ok := q.entries[requestID]
	if ok {
		e.state = Acked
		delete(q.entries, requestID)
	}
	q.mu.Unlock()
	if !ok {
		return
	}
	e.resolve(Result{ID: requestID})
}

// ProcessError transitions the entry matching requestID to Errored with
// the given reason. Unknown ids are ignored.
func (q *Queue) ProcessError(requestID uint32, reason error) {
	q.mu.Lock()
	e, ok := q.entries[requestID]
	if ok {
		e.state = Errored
		delete(q.entries, requestID)
	}
	q.mu.Unlock()
	if !ok {
		return
	}
	e.resolve(Result{ID: requestID, Err: reason})
}

// Clear drops every non-terminal entry, releasing its waiter with
// ErrCancelled. Used on disconnect / session reset.
func (q *Queue) Clear() {
	q.mu.Lock()
	pending := make([]*entry, 0, len(q.entries))
	for _, e := range q.entries {
		if e.state == Pending || e.state == Sent {
			pending = append(pending, e)
		}
	}
	q.entries = make(map[uint32]*entry)
	q.order = nil
	q.mu.Unlock()

	for _, e := range pending {
		e.resolve(Result{ID: e.id, Err: ErrCancelled})
	}
}

// State reports the current state of id, if tracked.
func (q *Queue) State(id uint32) (State, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[id]
	if !ok {
		return 0, false
	}
	return e.state, true
}
