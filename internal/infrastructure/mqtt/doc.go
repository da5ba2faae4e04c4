// Package mqtt provides MQTT broker connectivity for Beacon Core.
//
// It wraps paho.mqtt.golang with connection management, automatic
// reconnection with exponential backoff, subscription restoration after
// reconnect, and Last Will and Testament publication so other services
// can detect when the collector goes offline.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.IngestAll(), 1,
//	    func(topic string, payload []byte) error {
//	        // decode and store
//	        return nil
//	    })
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Handlers run on paho's goroutines and should not block for long.
package mqtt
