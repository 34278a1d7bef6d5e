package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Topic grammar: labcheck/{externalID}/{kind}, exactly three segments.
const (
	topicPrefix   = "labcheck"
	topicSegments = 3

	kindDoor     = "door"
	kindEntrance = "entrance"
	kindEvent    = "event"
)

// structuredPayload is the JSON envelope of the labcheck/{id}/event family.
type structuredPayload struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type doorData struct {
	Open *bool `json:"open"`
}

type passageData struct {
	Direction string `json:"direction"`
}

// Decode parses a raw MQTT message into an Event.
//
// Decode is pure: it touches no storage and uses receivedAt as the event
// time when the payload does not carry its own timestamp.
//
// Errors are ErrMalformedTopic for topics outside the
// labcheck/{externalID}/{door|entrance|event} grammar and
// ErrInvalidPayload for unparseable payloads. Both mean drop the message.
func Decode(topic string, payload []byte, receivedAt time.Time) (Event, error) {
	externalID, kind, err := splitTopic(topic)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindDoor:
		open, err := parseBinary(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: door payload %q", ErrInvalidPayload, payload)
		}
		return DoorStateEvent{ExternalID: externalID, IsOpen: open, Timestamp: receivedAt}, nil

	case kindEntrance:
		entering, err := parseBinary(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: entrance payload %q", ErrInvalidPayload, payload)
		}
		dir := DirectionExit
		if entering {
			dir = DirectionEnter
		}
		return PassageEvent{ExternalID: externalID, Direction: dir, Timestamp: receivedAt}, nil

	case kindEvent:
		return decodeStructured(externalID, payload, receivedAt)

	default:
		return nil, fmt.Errorf("%w: unknown kind %q in %q", ErrMalformedTopic, kind, topic)
	}
}

// splitTopic validates the topic grammar and extracts the external ID and kind.
func splitTopic(topic string) (externalID, kind string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != topicSegments {
		return "", "", fmt.Errorf("%w: %q has %d segments, want %d", ErrMalformedTopic, topic, len(parts), topicSegments)
	}
	if parts[0] != topicPrefix {
		return "", "", fmt.Errorf("%w: %q does not start with %q", ErrMalformedTopic, topic, topicPrefix)
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("%w: %q has empty external ID", ErrMalformedTopic, topic)
	}
	return parts[1], parts[2], nil
}

// parseBinary interprets the firmware's single-character payloads.
func parseBinary(payload []byte) (bool, error) {
	switch string(payload) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, ErrInvalidPayload
	}
}

// decodeStructured parses the JSON envelope of the event family.
func decodeStructured(externalID string, payload []byte, receivedAt time.Time) (Event, error) {
	var env structuredPayload
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ts := receivedAt
	if env.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, env.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrInvalidPayload, env.Timestamp)
		}
		ts = parsed
	}

	switch env.Type {
	case "door":
		var d doorData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.Open == nil {
			return nil, fmt.Errorf("%w: door event needs data.open", ErrInvalidPayload)
		}
		return DoorStateEvent{ExternalID: externalID, IsOpen: *d.Open, Timestamp: ts}, nil

	case "passage":
		var p passageData
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("%w: passage event needs data.direction", ErrInvalidPayload)
		}
		switch Direction(p.Direction) {
		case DirectionEnter, DirectionExit:
			return PassageEvent{ExternalID: externalID, Direction: Direction(p.Direction), Timestamp: ts}, nil
		default:
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidPayload, p.Direction)
		}

	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidPayload, env.Type)
	}
}
