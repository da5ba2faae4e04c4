// Package influxdb provides time-series metric recording for Beacon Core.
//
// It wraps the official InfluxDB v2 client with connection management,
// non-blocking batched writes, and health monitoring. Beacon uses it to
// record ingest throughput (records accepted per device and category) and
// observer connection counts.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteIngestMetric("device-42", "sms", 12)
//
// Writes are batched and flushed asynchronously. Errors from async writes
// are delivered via the callback registered with SetOnError.
package influxdb
