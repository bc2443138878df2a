package discharge

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMeasurement is returned for negative, NaN or infinite widths, depths and velocities
	ErrInvalidMeasurement = errors.New("invalid measurement")

	// ErrInvalidPointCount is returned when a run is requested with no sections
	ErrInvalidPointCount = errors.New("invalid point count")

	// ErrInvalidConversionFactor is returned for surface conversion factors outside [0,1]
	ErrInvalidConversionFactor = errors.New("invalid conversion factor")

	// ErrUnknownMethod is returned when a method name cannot be parsed
	ErrUnknownMethod = errors.New("unknown method")

	// ErrMethodMismatch is returned when a section is added to a run of another method
	ErrMethodMismatch = errors.New("section does not match run method")

	// ErrRunComplete is returned when a run already holds all of its sections
	ErrRunComplete = errors.New("run is complete")
)

// MeasurementError describes the offending field of a rejected section.
// Section is the 1-based measurement point; zero means a run-wide value.
type MeasurementError struct {
	Section int
	Field   string
	Value   float64
}

func (e *MeasurementError) Error() string {
	if e.Section == 0 {
		return fmt.Sprintf("%v: %s = %v", ErrInvalidMeasurement, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: section %d %s = %v", ErrInvalidMeasurement, e.Section, e.Field, e.Value)
}

// Is lets errors.Is match a MeasurementError against ErrInvalidMeasurement
func (e *MeasurementError) Is(target error) bool {
	return target == ErrInvalidMeasurement
}
