// Package eventbus implements the typed publish/subscribe surface a
// session exposes for decoded packets and lifecycle events: synchronous,
// subscription-ordered dispatch, with no guaranteed delivery and no
// reentrant dispatch from within a handler.
//
// Subscribe[T] and Publish[T] are ordinary generic functions parameterized
// by an event's concrete payload type, so a call site that gets the type
// wrong fails to compile rather than silently never matching at dispatch
// time. A secondary, channel-based Tap is also available, backed by
// github.com/cskr/pubsub, for consumers that want decoupled buffered
// delivery instead of a synchronous callback.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/cskr/pubsub"
)

// Topic names one event kind. Each kind carries a single fixed payload
// type; see events.go for the full set and their topics.
type Topic string

// UnsubscribeFunc removes a previously registered callback.
type UnsubscribeFunc func()

type subscriber struct {
	id int
	fn func(any)
}

// Bus is the per-session event surface. The zero value is not usable;
// construct with New.
type Bus struct {
	log *slog.Logger

	mu        sync.Mutex
	nextID    int
	callbacks map[Topic][]subscriber

	tap *pubsub.PubSub
}

// New returns a ready Bus. A nil logger defaults to slog.Default().
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		log:       log,
		callbacks: make(map[Topic][]subscriber),
		tap:       pubsub.New(128),
	}
}

func (b *Bus) subscribeRaw(topic Topic, fn func(any)) UnsubscribeFunc {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.callbacks[topic] = append(b.callbacks[topic], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.callbacks[topic]
		for i, s := range subs {
			if s.id == id {
				b.callbacks[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// publishRaw dispatches event to every callback subscribed to topic, in
// subscription order, synchronously on the calling goroutine, then mirrors
// the event onto the cskr/pubsub tap for channel-based observers. If no
// subscriber is attached, the event is dropped.
func (b *Bus) publishRaw(topic Topic, event any) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.callbacks[topic]))
	copy(subs, b.callbacks[topic])
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(event)
	}

	b.tap.Pub(event, string(topic))
}

// Tap returns a buffered channel that receives every event published to
// topic from this point on, for consumers that want decoupled delivery
// instead of a synchronous callback (e.g. a logging or metrics sink).
// Tap observers see events in publish order but are not part of the
// synchronous dispatch guarantee the callback path gives.
func (b *Bus) Tap(topic Topic) chan any {
	return b.tap.Sub(string(topic))
}

// Untap releases a channel obtained from Tap.
func (b *Bus) Untap(ch chan any, topic Topic) {
	b.tap.Unsub(ch, string(topic))
}

// Close shuts down the tap's background fan-out goroutine. Callback
// subscribers do not need Close; they are plain slices.
func (b *Bus) Close() {
	b.tap.Shutdown()
}

// Subscribe registers fn for every T-typed event published to topic.
// Events of other Go types published (by mistake) to the same topic are
// silently skipped rather than panicking.
func Subscribe[T any](b *Bus, topic Topic, fn func(T)) UnsubscribeFunc {
	return b.subscribeRaw(topic, func(e any) {
		if v, ok := e.(T); ok {
			fn(v)
		}
	})
}

// Publish dispatches event on topic to every subscriber registered via
// Subscribe[T] with a matching T, in subscription order.
func Publish[T any](b *Bus, topic Topic, event T) {
	b.publishRaw(topic, event)
}
