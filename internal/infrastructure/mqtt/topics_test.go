package mqtt

import "testing"

func TestSensorTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"SensorDoor", topics.SensorDoor("esp32"), "labcheck/esp32/door"},
		{"SensorEntrance", topics.SensorEntrance("esp32"), "labcheck/esp32/entrance"},
		{"SensorEvent", topics.SensorEvent("lab-2-east"), "labcheck/lab-2-east/event"},
		{"RoomStatus", topics.RoomStatus("room-a1b2c3d4"), "labcheck/core/room/room-a1b2c3d4/status"},
		{"SystemStatus", topics.SystemStatus(), "labcheck/system/status"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestWildcardPatterns(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"AllSensorDoors", topics.AllSensorDoors(), "labcheck/+/door"},
		{"AllSensorEntrances", topics.AllSensorEntrances(), "labcheck/+/entrance"},
		{"AllSensorEvents", topics.AllSensorEvents(), "labcheck/+/event"},
		{"AllRoomStatuses", topics.AllRoomStatuses(), "labcheck/core/room/+/status"},
		{"AllTopics", topics.AllTopics(), "labcheck/#"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestPublishValidation(t *testing.T) {
	// A zero-value client is enough to exercise input validation,
	// which runs before any connection state is consulted.
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("Publish with empty topic = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("labcheck/esp32/door", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("Publish with QoS 3 = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Subscribe("", 1, func(string, []byte) error { return nil }); err != ErrInvalidTopic {
		t.Errorf("Subscribe with empty topic = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("labcheck/+/door", 1, nil); err == nil {
		t.Error("Subscribe with nil handler expected error")
	}
}
