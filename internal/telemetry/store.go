package telemetry

import (
	"fmt"

	"github.com/davenersa/beacon-core/internal/broadcast"
)

// EventKindInfo is the event kind published when device info is merged.
// Batch events use the category name as their kind.
const EventKindInfo = "deviceinfo-update"

// EventSink receives one event per completed store mutation.
// *broadcast.Broadcaster satisfies this interface.
type EventSink interface {
	Publish(ev broadcast.Event)
}

// Store composes the device registry and per-category logs behind the
// ingestion and query operations, and publishes one event per mutation.
//
// Events are published only after the mutation is visible to readers: an
// observer can receive an event whose data is already in a concurrent
// snapshot (a tolerated duplicate), but never an event whose data a
// snapshot taken afterwards would lack.
//
// All methods are safe for concurrent use.
type Store struct {
	registry *Registry
	sink     EventSink
	logger   Logger
}

// NewStore creates a Store over the given registry. sink may be nil, in
// which case mutations are stored but not announced.
func NewStore(registry *Registry, sink EventSink) *Store {
	return &Store{
		registry: registry,
		sink:     sink,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Submit appends a batch of records to the addressed device and category
// and publishes one event carrying the batch as stored (server timestamps
// included, so pulled history and streamed events have identical shapes).
//
// Returns the new log length. An empty batch mutates nothing and publishes
// nothing. Validation failures (empty device id, unknown category, nil
// record) leave the store unchanged.
func (s *Store) Submit(deviceID string, cat Category, records []Record) (int, error) {
	if deviceID == "" {
		return 0, ErrEmptyDeviceID
	}
	if !cat.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	for _, rec := range records {
		if rec == nil {
			return 0, ErrInvalidRecord
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	device := s.registry.Ensure(deviceID)

	// Append and publish under one lock so event stream order matches
	// log order. The sink's own locking is independent and it never
	// calls back into the store, so there is no deadlock path.
	device.announceMu.Lock()
	stored, n := device.Log(cat).AppendMany(records)
	s.publish(broadcast.Event{
		DeviceID: deviceID,
		Kind:     string(cat),
		Payload:  stored,
	})
	device.announceMu.Unlock()

	s.logger.Debug("batch stored",
		"device_id", deviceID,
		"category", cat,
		"records", len(stored),
		"log_length", n,
	)
	return n, nil
}

// MergeInfo merges fields into the device's info with last-write-wins
// semantics per key, stamps LastUpdatedField, and publishes a
// deviceinfo-update event carrying the full merged info.
func (s *Store) MergeInfo(deviceID string, fields map[string]any) (Info, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}

	device := s.registry.Ensure(deviceID)

	device.announceMu.Lock()
	merged := device.mergeInfo(fields)
	s.publish(broadcast.Event{
		DeviceID: deviceID,
		Kind:     EventKindInfo,
		Payload:  merged,
	})
	device.announceMu.Unlock()

	s.logger.Debug("device info merged", "device_id", deviceID, "fields", len(fields))
	return merged, nil
}

// Query returns records for a category. With a device id, only that
// device's records are returned, in append order; an unknown device
// yields an empty result, never an error. With an empty device id, the
// result is the concatenation across all known devices — per-device order
// preserved, cross-device order unspecified.
func (s *Store) Query(cat Category, deviceID string) ([]TaggedRecord, error) {
	if !cat.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}

	if deviceID != "" {
		device, ok := s.registry.Get(deviceID)
		if !ok {
			return []TaggedRecord{}, nil
		}
		return tagRecords(deviceID, device.Log(cat).Snapshot()), nil
	}

	out := []TaggedRecord{}
	for _, id := range s.registry.IDs() {
		device, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		out = append(out, tagRecords(id, device.Log(cat).Snapshot())...)
	}
	return out, nil
}

// ListDevices returns all known devices with their merged info.
func (s *Store) ListDevices() []DeviceSummary {
	ids := s.registry.IDs()
	out := make([]DeviceSummary, 0, len(ids))
	for _, id := range ids {
		device, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		out = append(out, DeviceSummary{
			DeviceID: id,
			Info:     device.infoSnapshot(),
		})
	}
	return out
}

// DeviceIDs returns the currently known device ids.
func (s *Store) DeviceIDs() []string {
	return s.registry.IDs()
}

// Snapshot returns an immutable point-in-time copy of the entire registry:
// every device, every category, every record. Each device's state is
// internally consistent; appends racing the snapshot either appear in it
// or in the event stream that follows (possibly both, never neither, when
// the caller subscribed before snapshotting).
func (s *Store) Snapshot() Snapshot {
	snap := make(Snapshot)
	for _, id := range s.registry.IDs() {
		device, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		snap[id] = device.snapshot()
	}
	return snap
}

func (s *Store) publish(ev broadcast.Event) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(ev)
}

func tagRecords(deviceID string, records []Record) []TaggedRecord {
	out := make([]TaggedRecord, len(records))
	for i, rec := range records {
		out[i] = TaggedRecord{DeviceID: deviceID, Record: rec}
	}
	return out
}
