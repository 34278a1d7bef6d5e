// Package logging provides the structured logger used across LabCheck Core.
//
// It is a thin wrapper over log/slog that applies configuration (level,
// format, destination) and attaches default service fields. Components
// derive their own loggers via With("component", ...).
package logging
