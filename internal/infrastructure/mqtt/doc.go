// Package mqtt provides MQTT client connectivity for LabCheck Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// LabCheck uses MQTT as the transport between door/entrance sensor
// firmware and the Core. Sensors publish raw readings; Core subscribes,
// resolves sensors to rooms and publishes room status back out for
// displays and other consumers.
//
//	Sensor Firmware → MQTT Broker → LabCheck Core → Room Status Topics
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all door sensor readings
//	err = client.Subscribe(mqtt.Topics{}.AllSensorDoors(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish room status (retained so displays get state on connect)
//	topic := mqtt.Topics{}.RoomStatus("room-a1b2c3d4")
//	client.PublishRetained(topic, statusJSON)
package mqtt
