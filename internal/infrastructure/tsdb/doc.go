// Package tsdb provides time-series telemetry for LabCheck Core via InfluxDB.
//
// Every occupancy transition is recorded as a point so occupancy history
// can be graphed and fed to the prediction service without querying the
// operational SQLite database.
//
// Writes are non-blocking and batched; the integration is optional and
// controlled by influxdb.enabled in config.yaml. When disabled, Connect
// returns ErrDisabled and callers run without telemetry.
package tsdb
