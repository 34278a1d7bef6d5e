package sensor

import "errors"

// Sentinel errors for sensor operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrSensorNotFound is returned when a sensor lookup finds no row.
	ErrSensorNotFound = errors.New("sensor: not found")

	// ErrSensorExists is returned when creating a sensor whose external ID is taken.
	ErrSensorExists = errors.New("sensor: external ID already exists")

	// ErrInvalidSensor is returned when a sensor fails validation.
	ErrInvalidSensor = errors.New("sensor: invalid sensor")
)
