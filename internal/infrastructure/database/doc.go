// Package database manages the SQLite connection and schema migrations.
//
// The pool is restricted to a single connection: SQLite supports one writer
// at a time, and the occupancy engine depends on serialised writes for its
// transactional read-modify-write updates. Migrations are embedded into the
// binary by the migrations package and applied on startup.
package database
