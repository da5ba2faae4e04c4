package metrics

import (
	"context"
	"sync"

	"github.com/davenersa/beacon-core/internal/broadcast"
	"github.com/davenersa/beacon-core/internal/telemetry"
)

// Writer is the metric sink the recorder writes to.
// Satisfied by *influxdb.Client.
type Writer interface {
	WriteIngestMetric(deviceID string, kind string, count int)
}

// Logger is the logging interface used by the recorder.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Recorder consumes the event stream and writes one ingest point per
// event: device id, kind, and the number of records the event carried.
type Recorder struct {
	broadcaster *broadcast.Broadcaster
	writer      Writer
	logger      Logger

	wg   sync.WaitGroup
	stop context.CancelFunc
}

// New creates a Recorder over the given broadcaster and writer.
func New(broadcaster *broadcast.Broadcaster, writer Writer) *Recorder {
	return &Recorder{
		broadcaster: broadcaster,
		writer:      writer,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the recorder.
// Call before Start.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// Start subscribes to the broadcaster and begins recording in a
// background goroutine. Recording continues until ctx is cancelled or
// Stop is called.
func (r *Recorder) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.stop = cancel

	sub := r.broadcaster.Subscribe()
	r.logger.Debug("metrics recorder started", "subscription_id", sub.ID())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.broadcaster.Unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				r.record(ev)
			}
		}
	}()
}

// Stop ends recording and waits for the background goroutine to exit.
func (r *Recorder) Stop() {
	if r.stop != nil {
		r.stop()
	}
	r.wg.Wait()
}

func (r *Recorder) record(ev broadcast.Event) {
	r.writer.WriteIngestMetric(ev.DeviceID, ev.Kind, payloadCount(ev.Payload))
}

// payloadCount reports how many records an event payload carries. Info
// merges count as one.
func payloadCount(payload any) int {
	switch p := payload.(type) {
	case []telemetry.Record:
		return len(p)
	default:
		return 1
	}
}
