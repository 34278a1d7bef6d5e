package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/labcheck/labcheck-core/internal/infrastructure/logging"
	"github.com/labcheck/labcheck-core/internal/infrastructure/mqtt"
)

// Subscriber is the slice of the MQTT client the consumer needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Applier applies decoded events to room state.
// Implemented by occupancy.Engine.
type Applier interface {
	Apply(ctx context.Context, ev Event) error
}

// Consumer subscribes to the sensor topic families and pumps decoded
// events into the occupancy engine.
//
// Failures never stop the consumer: decode failures are warned and
// dropped, apply failures are logged as errors and dropped. MQTT QoS 1
// gives at-least-once delivery; duplicates are accepted as occasional
// double counts rather than holding the pipeline for exactly-once.
type Consumer struct {
	engine Applier
	logger *logging.Logger
	qos    byte
}

// NewConsumer creates an ingestion consumer.
func NewConsumer(engine Applier, logger *logging.Logger, qos byte) *Consumer {
	return &Consumer{
		engine: engine,
		logger: logger.With("component", "ingest"),
		qos:    qos,
	}
}

// Start subscribes to the three sensor topic families.
// Subscriptions survive broker reconnects (the MQTT client restores them).
func (c *Consumer) Start(ctx context.Context, sub Subscriber) error {
	topics := mqtt.Topics{}
	for _, pattern := range []string{
		topics.AllSensorDoors(),
		topics.AllSensorEntrances(),
		topics.AllSensorEvents(),
	} {
		if err := sub.Subscribe(pattern, c.qos, c.handleMessage(ctx)); err != nil {
			return fmt.Errorf("subscribing to %s: %w", pattern, err)
		}
		c.logger.Info("subscribed to sensor topic", "pattern", pattern)
	}
	return nil
}

// handleMessage returns the MQTT handler for sensor messages.
//
// The returned error is intentionally always nil: the MQTT layer would
// only log it anyway, and logging happens here with more context.
func (c *Consumer) handleMessage(ctx context.Context) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		ev, err := Decode(topic, payload, time.Now().UTC())
		if err != nil {
			c.logger.Warn("dropping undecodable message",
				"topic", topic,
				"payload_bytes", len(payload),
				"error", err,
			)
			return nil
		}

		if err := c.engine.Apply(ctx, ev); err != nil {
			c.logger.Error("dropping event after apply failure",
				"topic", topic,
				"sensor", ev.SensorExternalID(),
				"error", err,
			)
			return nil
		}

		return nil
	}
}
