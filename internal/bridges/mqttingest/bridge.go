package mqttingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davenersa/beacon-core/internal/infrastructure/mqtt"
	"github.com/davenersa/beacon-core/internal/ingest"
	"github.com/davenersa/beacon-core/internal/telemetry"
)

// ingestTopicParts is the expected part count of beacon/ingest/{deviceId}.
const ingestTopicParts = 3

// Subscriber is the MQTT surface the bridge needs.
// Satisfied by *mqtt.Client; an interface so tests can inject a fake.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Logger is the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Bridge routes device submissions arriving on beacon/ingest/{deviceId}
// into the store. The topic's device id is authoritative: it overrides
// whatever id the payload body carries, so a device publishing on its own
// topic cannot write another device's data.
type Bridge struct {
	store  *telemetry.Store
	client Subscriber
	qos    byte
	logger Logger
}

// New creates a bridge over the given store and MQTT client.
func New(store *telemetry.Store, client Subscriber, qos byte) *Bridge {
	return &Bridge{
		store:  store,
		client: client,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the bridge.
// Call before Start.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// Start subscribes to the ingest topic pattern. Messages are handled on
// the MQTT client's goroutines; Start itself returns immediately.
func (b *Bridge) Start() error {
	topic := mqtt.Topics{}.IngestAll()
	if err := b.client.Subscribe(topic, b.qos, b.handleMessage); err != nil {
		return fmt.Errorf("mqttingest: subscribe %s: %w", topic, err)
	}
	b.logger.Debug("ingest bridge started", "topic", topic)
	return nil
}

// Stop unsubscribes from the ingest topic pattern.
func (b *Bridge) Stop() error {
	topic := mqtt.Topics{}.IngestAll()
	if err := b.client.Unsubscribe(topic); err != nil {
		return fmt.Errorf("mqttingest: unsubscribe %s: %w", topic, err)
	}
	return nil
}

// handleMessage decodes one submission message and applies it.
//
// Returned errors are logged by the MQTT client wrapper; a malformed
// message never affects other messages or the subscription.
func (b *Bridge) handleMessage(topic string, payload []byte) error {
	deviceID, err := deviceIDFromTopic(topic)
	if err != nil {
		return err
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return fmt.Errorf("mqttingest: decode payload on %s: %w", topic, err)
	}

	// Topic identity wins over the body's.
	body["deviceId"] = deviceID

	sub, err := ingest.Parse(body)
	if err != nil {
		return fmt.Errorf("mqttingest: %s: %w", topic, err)
	}

	accepted, err := ingest.Apply(b.store, sub)
	if err != nil {
		return fmt.Errorf("mqttingest: apply %s: %w", topic, err)
	}

	b.logger.Debug("mqtt submission applied",
		"device_id", deviceID,
		"records", accepted,
	)
	return nil
}

// deviceIDFromTopic extracts the device id from beacon/ingest/{deviceId}.
func deviceIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != ingestTopicParts || parts[ingestTopicParts-1] == "" {
		return "", fmt.Errorf("mqttingest: unexpected topic %q", topic)
	}
	return parts[ingestTopicParts-1], nil
}
