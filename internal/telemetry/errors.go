package telemetry

import "errors"

// Domain errors for the telemetry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, telemetry.ErrEmptyDeviceID) {
//	    // reject the submission, nothing was stored
//	}
var (
	// ErrEmptyDeviceID is returned when a mutating call carries no device
	// identity. The store is left unchanged and no event is published.
	ErrEmptyDeviceID = errors.New("telemetry: device id required")

	// ErrUnknownCategory is returned when a category value is not recognised.
	ErrUnknownCategory = errors.New("telemetry: unknown category")

	// ErrInvalidRecord is returned when a batch contains a nil record.
	ErrInvalidRecord = errors.New("telemetry: invalid record")
)
