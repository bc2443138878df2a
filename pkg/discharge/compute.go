package discharge

import (
	"fmt"
	"math"
)

// Result is the outcome of a discharge computation. Partials holds the
// unrounded running total after each section; ReportedTotal is Total rounded
// to the method's decimal places.
type Result struct {
	Method           Method          `json:"method"`
	Sections         []SectionResult `json:"sections"`
	Partials         []float64       `json:"partials"`
	Total            float64         `json:"total"`
	ReportedTotal    float64         `json:"reported_total"`
	ConversionFactor float64         `json:"conversion_factor,omitempty"`
	SurfaceVelocity  float64         `json:"surface_velocity,omitempty"`
}

// ComputeMidSection06Y computes discharge with the 0.6Y method. The whole
// batch is validated before any section is computed.
func ComputeMidSection06Y(sections []Section06Y) (*Result, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", ErrInvalidPointCount)
	}
	for i, s := range sections {
		if err := s.validate(i + 1); err != nil {
			return nil, err
		}
	}

	run, err := NewRun(Method06Y, len(sections))
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if _, err := run.Add06Y(s); err != nil {
			return nil, err
		}
	}
	return run.Result(), nil
}

// ComputeMidSection08Y02Y computes discharge with the 0.8Y/0.2Y method
func ComputeMidSection08Y02Y(sections []Section08Y02Y) (*Result, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", ErrInvalidPointCount)
	}
	for i, s := range sections {
		if err := s.validate(i + 1); err != nil {
			return nil, err
		}
	}

	run, err := NewRun(Method08Y02Y, len(sections))
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if _, err := run.Add08Y02Y(s); err != nil {
			return nil, err
		}
	}
	return run.Result(), nil
}

// ComputeSurfaceVelocity computes discharge with the surface velocity method.
// Section discharges are accumulated one by one rather than by scaling the
// summed area, which gives the same final total up to rounding.
func ComputeSurfaceVelocity(sections []Section, conversionFactor, surfaceVelocity float64) (*Result, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", ErrInvalidPointCount)
	}
	if err := ValidateSurface(conversionFactor, surfaceVelocity); err != nil {
		return nil, err
	}
	for i, s := range sections {
		if err := s.validate(i + 1); err != nil {
			return nil, err
		}
	}

	run, err := NewRun(MethodSurface, len(sections), WithSurface(conversionFactor, surfaceVelocity))
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if _, err := run.AddSurface(s); err != nil {
			return nil, err
		}
	}
	return run.Result(), nil
}

// Round rounds x to the given number of decimal places, halves away from zero.
// It is applied to reported totals only and never fed back into a sum.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
