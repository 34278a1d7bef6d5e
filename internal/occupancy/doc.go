// Package occupancy applies decoded sensor events to room state.
//
// The engine is the single writer of room occupancy and door state. Each
// event becomes one SQLite transaction that re-reads the room row, writes
// the new state and appends an event log entry; the three either commit
// together or not at all. Combined with the single-connection database
// pool this rules out lost updates: no two passage transitions can
// compute from the same stale occupancy read.
//
// Bounds violations are not errors. A passage that would push occupancy
// outside [0, max_capacity] is clamped to the boundary and logged, on the
// grounds that a miscounting sensor should degrade the count, not stall
// the pipeline.
package occupancy
