// Package config loads and validates LabCheck Core configuration.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// LABCHECK_* environment variable overrides. Load returns an error rather
// than a partially valid configuration.
package config
