package mqtt

import "fmt"

// Topic prefixes for the Beacon MQTT namespace.
//
// Ingest topics carry device submissions: beacon/ingest/{deviceId}.
// The payload is the same JSON envelope accepted on the HTTP submit
// endpoint, with the device id taken from the topic.
const (
	// TopicPrefixIngest is the base for device submission topics.
	TopicPrefixIngest = "beacon/ingest"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "beacon/system"
)

// Topics provides builders for Beacon MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.Ingest("device-42")
//	// Returns: "beacon/ingest/device-42"
type Topics struct{}

// Ingest returns the submission topic for a specific device.
//
// Example: beacon/ingest/device-42
func (Topics) Ingest(deviceID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixIngest, deviceID)
}

// IngestAll returns a pattern matching submissions from all devices.
//
// Pattern: beacon/ingest/+
func (Topics) IngestAll() string {
	return TopicPrefixIngest + "/+"
}

// SystemStatus returns the collector status topic.
//
// Online/offline payloads (including the LWT) are published here retained,
// so subscribers always see the collector's last known state.
//
// Example: beacon/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
