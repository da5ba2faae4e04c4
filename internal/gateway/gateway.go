package gateway

import (
	"sync"

	"github.com/davenersa/beacon-core/internal/broadcast"
	"github.com/davenersa/beacon-core/internal/telemetry"
)

// Logger is the logging interface used by the gateway.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Gateway connects observers to the store and broadcaster with the
// subscribe-then-snapshot discipline.
type Gateway struct {
	store       *telemetry.Store
	broadcaster *broadcast.Broadcaster
	logger      Logger
}

// New creates a Gateway over the given store and broadcaster.
func New(store *telemetry.Store, broadcaster *broadcast.Broadcaster) *Gateway {
	return &Gateway{
		store:       store,
		broadcaster: broadcaster,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the gateway.
func (g *Gateway) SetLogger(logger Logger) {
	g.logger = logger
}

// Connect establishes an observer session. It subscribes to the
// broadcaster before taking the store snapshot, so every event published
// after the snapshot was taken is waiting on the session's channel; an
// event racing the connect may be delivered twice (once inside the
// snapshot, once on the stream) but never zero times.
func (g *Gateway) Connect() *Session {
	sub := g.broadcaster.Subscribe()
	snap := g.store.Snapshot()

	g.logger.Debug("observer session established",
		"subscription_id", sub.ID(),
		"devices", len(snap),
	)

	return &Session{
		broadcaster: g.broadcaster,
		sub:         sub,
		snapshot:    snap,
	}
}

// Session is one observer's connection: the snapshot taken at connect
// time plus the live event stream that continues from it.
type Session struct {
	broadcaster *broadcast.Broadcaster
	sub         *broadcast.Subscription
	snapshot    telemetry.Snapshot
	closeOnce   sync.Once
}

// Snapshot returns the point-in-time copy of the store taken when the
// session was established. It never changes after Connect.
func (s *Session) Snapshot() telemetry.Snapshot {
	return s.snapshot
}

// Events returns the live event stream. The channel is closed when the
// session is closed.
func (s *Session) Events() <-chan broadcast.Event {
	return s.sub.Events()
}

// ID returns the session's subscription identifier.
func (s *Session) ID() string {
	return s.sub.ID()
}

// Close unsubscribes the session from the broadcaster. It is idempotent
// and effective immediately for future publishes.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.broadcaster.Unsubscribe(s.sub)
	})
}
