package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteIngestMetric records an accepted device submission.
//
// One point per submission batch: the device it came from, the record
// kind (contacts, sms, calllog, location, screenshot, audio), and how
// many records the batch carried. The write is non-blocking; data is
// batched and sent asynchronously.
//
// Example:
//
//	client.WriteIngestMetric("device-42", "sms", 12)
func (c *Client) WriteIngestMetric(deviceID string, kind string, count int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"ingest",
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
		},
		map[string]interface{}{
			"count": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteObserverMetric records the current number of connected observers.
//
// Written on observer connect and disconnect so dashboards can track
// live connection counts over time.
func (c *Client) WriteObserverMetric(connected int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"observers",
		nil,
		map[string]interface{}{
			"connected": connected,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
