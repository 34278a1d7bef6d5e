// Package ingest turns raw MQTT messages into typed sensor events and
// feeds them to the occupancy engine.
//
// Two wire families are supported. The binary family is what the ESP32
// firmware publishes: single-character payloads on labcheck/{id}/door and
// labcheck/{id}/entrance. The structured family carries a JSON envelope
// on labcheck/{id}/event for richer firmware.
//
// Decode is pure and has no side effects; the Consumer owns the
// subscriptions and the drop-on-failure policy. A malformed message is
// logged and dropped, never retried, and never stops the consumer.
package ingest
