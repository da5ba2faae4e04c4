// Package telemetry provides the device event store for Beacon Core.
//
// The store is the single owner of all telemetry state: one record per
// device, each holding merged device info and one append-only log per
// telemetry category (contacts, sms, calllog, location, screenshot, audio).
// Devices are created on first reference and never deleted for the lifetime
// of the process; records are never removed or reordered.
//
// # Key Types
//
//   - Registry: device map with idempotent creation
//   - Log: append-only, ordered record sequence for one device/category
//   - Store: composes Registry and Logs, publishes one broadcast event per
//     submitted batch
//   - Record: open string-keyed map; a server timestamp is assigned at
//     append time if the producer did not supply one
//
// # Usage
//
//	registry := telemetry.NewRegistry()
//	store := telemetry.NewStore(registry, broadcaster)
//
//	_, err := store.Submit("d1", telemetry.CategorySMS, []telemetry.Record{
//	    {"from": "+4479...", "body": "hello"},
//	})
//
//	records, _ := store.Query(telemetry.CategorySMS, "d1")
//	snap := store.Snapshot()
//
// # Thread Safety
//
// All exported operations are safe for concurrent use. The registry map and
// each log are guarded independently, so appends for unrelated devices do
// not serialise against each other. Events are published only after the
// corresponding mutation is visible to readers.
package telemetry
