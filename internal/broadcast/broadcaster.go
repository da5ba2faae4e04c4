package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one update published to observers: which device changed, what
// kind of change (a telemetry category or "deviceinfo-update"), and the
// payload — the batch of records as stored, or the full merged info.
type Event struct {
	DeviceID string    `json:"deviceId"`
	Kind     string    `json:"kind"`
	Payload  any       `json:"data"`
	At       time.Time `json:"at"`
}

// Logger is the logging interface used by the Broadcaster.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Subscription is one observer's handle on the event stream.
type Subscription struct {
	id string
	ch chan Event
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Events returns the channel events are delivered on. The channel is
// closed when the subscription is removed from the broadcaster.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Broadcaster delivers every published event to all current subscribers.
//
// The subscriber set has its own mutex, independent of any store lock:
// publishing and (un)subscribing never interact with storage. Holding the
// mutex across the delivery loop serialises Publish calls, which is what
// gives each subscriber the global publish order.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[string]*Subscription
	buffer  int
	dropped uint64
	logger  Logger
}

// New creates a Broadcaster whose subscribers each buffer up to buffer
// events.
func New(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the broadcaster.
// Call before the broadcaster is shared between goroutines.
func (b *Broadcaster) SetLogger(logger Logger) {
	b.logger = logger
}

// Subscribe registers a new observer and returns its subscription handle.
// Events published after Subscribe returns are guaranteed to be offered
// to the new subscriber.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		id: uuid.NewString(),
		ch: make(chan Event, b.buffer),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	n := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("observer subscribed", "subscription_id", sub.id, "subscribers", n)
	return sub
}

// Unsubscribe removes a subscription and closes its event channel.
// It is idempotent: removing an already-removed subscription is a no-op.
// The channel is closed under the broadcaster mutex, so Publish can never
// send on a closed channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, existed := b.subs[sub.id]
	if existed {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
	n := len(b.subs)
	b.mu.Unlock()

	if existed {
		b.logger.Debug("observer unsubscribed", "subscription_id", sub.id, "subscribers", n)
	}
}

// Publish delivers ev to every currently-registered subscriber. Delivery
// to a full buffer is dropped silently and never blocks, fails the caller,
// or prevents delivery to other subscribers.
func (b *Broadcaster) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			// Subscriber buffer full, skip
			b.dropped++
			b.logger.Warn("event dropped for slow observer",
				"subscription_id", sub.id,
				"device_id", ev.DeviceID,
				"kind", ev.Kind,
			)
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns the total number of events dropped for slow observers.
func (b *Broadcaster) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close removes all subscriptions and closes their channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
