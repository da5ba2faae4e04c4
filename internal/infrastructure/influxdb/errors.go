package influxdb

import "errors"

// Sentinel errors for the metrics sink, checked with errors.Is.
var (
	// ErrNotConnected: a write or health check reached a closed client.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed: the initial ping did not succeed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled: Connect was called with the sink disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
