package status

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labcheck/labcheck-core/internal/infrastructure/logging"
	"github.com/labcheck/labcheck-core/internal/infrastructure/mqtt"
	"github.com/labcheck/labcheck-core/internal/room"
)

// Broadcaster pushes a payload to WebSocket subscribers of a channel.
// Implemented by api.Hub.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Publisher publishes retained MQTT messages.
// Implemented by mqtt.Client.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// MetricWriter records occupancy points in the time-series store.
// Implemented by tsdb.Client.
type MetricWriter interface {
	WriteRoomOccupancy(roomID string, occupancy, capacity int, isOpen bool)
}

// ChannelRoomStatus is the WebSocket channel room snapshots go out on.
const ChannelRoomStatus = "room.status_changed"

// snapshotTimeout bounds the room re-read so a wedged store cannot hang
// the post-commit fanout path.
const snapshotTimeout = 5 * time.Second

// Notifier fans committed room changes out to displays and telemetry.
//
// Any of the three sinks may be nil, in which case that leg is skipped.
// All fanout failures are logged and swallowed.
type Notifier struct {
	rooms       *room.Registry
	broadcaster Broadcaster
	publisher   Publisher
	metrics     MetricWriter
	logger      *logging.Logger
}

// NewNotifier creates a change notifier.
func NewNotifier(rooms *room.Registry, broadcaster Broadcaster, publisher Publisher, metrics MetricWriter, logger *logging.Logger) *Notifier {
	return &Notifier{
		rooms:       rooms,
		broadcaster: broadcaster,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger.With("component", "status"),
	}
}

// NotifyRoomChanged publishes the current state of a room.
//
// The room row is re-read so the snapshot always reflects committed
// state, never a value cached from before the transaction.
func (n *Notifier) NotifyRoomChanged(roomID string) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	st, err := n.Snapshot(ctx, roomID)
	if err != nil {
		n.logger.Warn("skipping status fanout, room read failed",
			"room", roomID, "error", err)
		return
	}

	if n.broadcaster != nil {
		n.broadcaster.Broadcast(ChannelRoomStatus, st)
	}

	if n.publisher != nil {
		payload, err := json.Marshal(st)
		if err != nil {
			n.logger.Warn("marshalling room status", "room", roomID, "error", err)
		} else if err := n.publisher.PublishRetained(mqtt.Topics{}.RoomStatus(roomID), payload); err != nil {
			n.logger.Warn("publishing room status", "room", roomID, "error", err)
		}
	}

	if n.metrics != nil {
		n.metrics.WriteRoomOccupancy(st.RoomID, st.CurrentOccupancy, st.MaxOccupancy, st.IsOpen)
	}
}

// Snapshot builds the public status of a room from its committed row.
func (n *Notifier) Snapshot(ctx context.Context, roomID string) (*Status, error) {
	rm, err := n.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return StatusOf(rm), nil
}

// StatusOf shapes a room row into its public status.
func StatusOf(rm *room.Room) *Status {
	return &Status{
		RoomID:           rm.ID,
		RoomName:         rm.Name,
		IsOpen:           rm.IsOpen,
		CurrentOccupancy: rm.Occupancy,
		MaxOccupancy:     rm.MaxCapacity,
		Color:            ColorFor(rm.Occupancy, rm.MaxCapacity, rm.IsOpen),
		Timestamp:        time.Now().UTC(),
	}
}
