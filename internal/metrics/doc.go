// Package metrics records ingest throughput to InfluxDB.
//
// The recorder is just another observer: it subscribes to the broadcaster
// like a WebSocket client would and turns each event into a time-series
// point. It shares the drop-on-overflow contract with every other
// subscriber, so a slow InfluxDB can never stall ingestion.
package metrics
