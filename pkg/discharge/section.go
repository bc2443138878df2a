package discharge

import (
	"fmt"
	"math"
)

// Section is the strip of channel between two measurement verticals
type Section struct {
	Width       float64 `json:"width"`
	DepthFirst  float64 `json:"depth_first"`
	DepthSecond float64 `json:"depth_second"`
}

// MeanDepth is the average of the two vertical depths
func (s Section) MeanDepth() float64 {
	return (s.DepthFirst + s.DepthSecond) / 2
}

// Area is the section treated as a rectangle of mean depth
func (s Section) Area() float64 {
	return ((s.DepthFirst + s.DepthSecond) / 2) * s.Width
}

// Section06Y carries the 0.6 depth velocity at each vertical
type Section06Y struct {
	Section
	VelocityFirst  float64 `json:"velocity_first"`
	VelocitySecond float64 `json:"velocity_second"`
}

// Velocity is the mean of the two 0.6 depth samples
func (s Section06Y) Velocity() float64 {
	return (s.VelocityFirst + s.VelocitySecond) / 2
}

// Section08Y02Y carries the 0.8 and 0.2 depth velocities at each vertical
type Section08Y02Y struct {
	Section
	Velocity08First  float64 `json:"velocity_08_first"`
	Velocity08Second float64 `json:"velocity_08_second"`
	Velocity02First  float64 `json:"velocity_02_first"`
	Velocity02Second float64 `json:"velocity_02_second"`
}

// Velocity averages each depth fraction across the section first, then the
// two fractions. The order matters for reproducing reference outputs.
func (s Section08Y02Y) Velocity() float64 {
	avg08 := (s.Velocity08First + s.Velocity08Second) / 2
	avg02 := (s.Velocity02First + s.Velocity02Second) / 2
	return (avg08 + avg02) / 2
}

// SectionResult is the computed, immutable outcome for one section
type SectionResult struct {
	Index     int     `json:"index"`
	Width     float64 `json:"width"`
	MeanDepth float64 `json:"mean_depth"`
	Area      float64 `json:"area"`
	Velocity  float64 `json:"velocity"`
	Discharge float64 `json:"discharge"`
}

func checkValue(section int, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return &MeasurementError{Section: section, Field: field, Value: v}
	}
	return nil
}

func (s Section) validate(section int) error {
	if err := checkValue(section, "width", s.Width); err != nil {
		return err
	}
	if err := checkValue(section, "depth_first", s.DepthFirst); err != nil {
		return err
	}
	return checkValue(section, "depth_second", s.DepthSecond)
}

func (s Section06Y) validate(section int) error {
	if err := s.Section.validate(section); err != nil {
		return err
	}
	if err := checkValue(section, "velocity_first", s.VelocityFirst); err != nil {
		return err
	}
	return checkValue(section, "velocity_second", s.VelocitySecond)
}

func (s Section08Y02Y) validate(section int) error {
	if err := s.Section.validate(section); err != nil {
		return err
	}
	velocities := []struct {
		field string
		value float64
	}{
		{"velocity_08_first", s.Velocity08First},
		{"velocity_08_second", s.Velocity08Second},
		{"velocity_02_first", s.Velocity02First},
		{"velocity_02_second", s.Velocity02Second},
	}
	for _, v := range velocities {
		if err := checkValue(section, v.field, v.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSurface checks the run-wide parameters of the surface velocity method
func ValidateSurface(conversionFactor, surfaceVelocity float64) error {
	if math.IsNaN(conversionFactor) || conversionFactor < 0 || conversionFactor > 1 {
		return fmt.Errorf("%w: %v is outside [0,1]", ErrInvalidConversionFactor, conversionFactor)
	}
	return checkValue(0, "surface_velocity", surfaceVelocity)
}
