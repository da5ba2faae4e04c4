// Package mqttingest accepts device submissions over MQTT.
//
// Devices publish the same JSON envelope used on the HTTP submit endpoint
// to beacon/ingest/{deviceId}. The bridge decodes each message, takes the
// device identity from the topic (overriding any id in the body), and
// applies the submission to the store. Stored batches flow to observers
// exactly as HTTP submissions do.
package mqttingest
