// Package room manages the rooms whose occupancy LabCheck tracks.
//
// A room carries the live occupancy state machine inputs: current person
// count, maximum capacity, door state and entrance orientation. Rooms are
// persisted in SQLite; the occupancy engine mutates room state through
// transaction-scoped helpers so counter updates and event log appends
// commit atomically.
//
// The Registry layers auto-provisioning on top of the Repository: sensors
// that publish before being assigned to a room land in a default room
// created on first use.
package room
