// Package survey reads gauging survey files and feeds their measurements
// to the discharge engine, either as a batch or section by section.
package survey

import (
	"errors"
	"fmt"

	"github.com/chrissnell/streamflow/pkg/discharge"
)

// ErrPointCount is returned when a survey lists more sections than its point count
var ErrPointCount = errors.New("section count exceeds point count")

// Survey is one discharge measurement of a cross section
type Survey struct {
	Name             string           `json:"name,omitempty" yaml:"name,omitempty"`
	Method           discharge.Method `json:"method" yaml:"method"`
	Points           int              `json:"points,omitempty" yaml:"points,omitempty"`
	ConversionFactor *float64         `json:"conversion_factor,omitempty" yaml:"conversion-factor,omitempty"`
	SurfaceVelocity  *float64         `json:"surface_velocity,omitempty" yaml:"surface-velocity,omitempty"`
	Sections         []Measurement    `json:"sections" yaml:"sections"`
}

// Measurement is the raw field record for one section. Only the velocities
// of the survey's method are read.
type Measurement struct {
	Width            float64 `json:"width" yaml:"width"`
	DepthFirst       float64 `json:"depth_first" yaml:"depth-first"`
	DepthSecond      float64 `json:"depth_second" yaml:"depth-second"`
	VelocityFirst    float64 `json:"velocity_first,omitempty" yaml:"velocity-first,omitempty"`
	VelocitySecond   float64 `json:"velocity_second,omitempty" yaml:"velocity-second,omitempty"`
	Velocity08First  float64 `json:"velocity_08_first,omitempty" yaml:"velocity-08-first,omitempty"`
	Velocity08Second float64 `json:"velocity_08_second,omitempty" yaml:"velocity-08-second,omitempty"`
	Velocity02First  float64 `json:"velocity_02_first,omitempty" yaml:"velocity-02-first,omitempty"`
	Velocity02Second float64 `json:"velocity_02_second,omitempty" yaml:"velocity-02-second,omitempty"`
}

// Section returns the geometry of the measurement
func (m Measurement) Section() discharge.Section {
	return discharge.Section{Width: m.Width, DepthFirst: m.DepthFirst, DepthSecond: m.DepthSecond}
}

// Section06Y returns the measurement as a 0.6Y section
func (m Measurement) Section06Y() discharge.Section06Y {
	return discharge.Section06Y{
		Section:        m.Section(),
		VelocityFirst:  m.VelocityFirst,
		VelocitySecond: m.VelocitySecond,
	}
}

// Section08Y02Y returns the measurement as a 0.8Y/0.2Y section
func (m Measurement) Section08Y02Y() discharge.Section08Y02Y {
	return discharge.Section08Y02Y{
		Section:          m.Section(),
		Velocity08First:  m.Velocity08First,
		Velocity08Second: m.Velocity08Second,
		Velocity02First:  m.Velocity02First,
		Velocity02Second: m.Velocity02Second,
	}
}

// Defaults fill in what a survey file leaves out
type Defaults struct {
	Method           discharge.Method
	ConversionFactor float64
	SurfaceVelocity  float64
}

// ApplyDefaults sets the method, conversion factor and surface velocity when
// the survey does not specify them. Values given in the survey, zero
// included, are kept.
func (s *Survey) ApplyDefaults(d Defaults) {
	if s.Method == "" {
		s.Method = d.Method
	}
	if s.Method != discharge.MethodSurface {
		return
	}
	if s.ConversionFactor == nil {
		f := d.ConversionFactor
		s.ConversionFactor = &f
	}
	if s.SurfaceVelocity == nil {
		v := d.SurfaceVelocity
		s.SurfaceVelocity = &v
	}
}

// Factor returns the conversion factor, or the customary default when unset
func (s *Survey) Factor() float64 {
	if s.ConversionFactor == nil {
		return discharge.DefaultConversionFactor
	}
	return *s.ConversionFactor
}

// Velocity returns the surface velocity, zero when unset
func (s *Survey) Velocity() float64 {
	if s.SurfaceVelocity == nil {
		return 0
	}
	return *s.SurfaceVelocity
}

// PointCount is the declared point count, or the number of sections
func (s *Survey) PointCount() int {
	if s.Points > 0 {
		return s.Points
	}
	return len(s.Sections)
}

// Compute validates every section and returns the batch result
func (s *Survey) Compute() (*discharge.Result, error) {
	if err := s.checkPoints(); err != nil {
		return nil, err
	}

	switch s.Method {
	case discharge.Method06Y:
		sections := make([]discharge.Section06Y, len(s.Sections))
		for i, m := range s.Sections {
			sections[i] = m.Section06Y()
		}
		return discharge.ComputeMidSection06Y(sections)
	case discharge.Method08Y02Y:
		sections := make([]discharge.Section08Y02Y, len(s.Sections))
		for i, m := range s.Sections {
			sections[i] = m.Section08Y02Y()
		}
		return discharge.ComputeMidSection08Y02Y(sections)
	case discharge.MethodSurface:
		sections := make([]discharge.Section, len(s.Sections))
		for i, m := range s.Sections {
			sections[i] = m.Section()
		}
		return discharge.ComputeSurfaceVelocity(sections, s.Factor(), s.Velocity())
	}
	return nil, fmt.Errorf("%w: %q", discharge.ErrUnknownMethod, string(s.Method))
}

// NewRun starts an empty incremental run for the survey's method and point count
func (s *Survey) NewRun() (*discharge.Run, error) {
	var opts []discharge.RunOption
	if s.Method == discharge.MethodSurface {
		opts = append(opts, discharge.WithSurface(s.Factor(), s.Velocity()))
	}
	return discharge.NewRun(s.Method, s.PointCount(), opts...)
}

// Stream adds the sections one at a time and calls fn with each snapshot.
// Sections are validated as they arrive, so when one is rejected fn has
// already seen every earlier snapshot and the partial result is returned
// along with the error.
func (s *Survey) Stream(fn func(discharge.Snapshot) error) (*discharge.Result, error) {
	if err := s.checkPoints(); err != nil {
		return nil, err
	}
	run, err := s.NewRun()
	if err != nil {
		return nil, err
	}

	for _, m := range s.Sections {
		snap, err := Append(run, m)
		if err != nil {
			return run.Result(), err
		}
		if fn != nil {
			if err := fn(snap); err != nil {
				return run.Result(), err
			}
		}
	}
	return run.Result(), nil
}

func (s *Survey) checkPoints() error {
	if s.Points > 0 && len(s.Sections) > s.Points {
		return fmt.Errorf("%w: %d sections, %d points", ErrPointCount, len(s.Sections), s.Points)
	}
	return nil
}

// Append adds a raw measurement to a run using the run's method
func Append(run *discharge.Run, m Measurement) (discharge.Snapshot, error) {
	switch run.Method() {
	case discharge.Method06Y:
		return run.Add06Y(m.Section06Y())
	case discharge.Method08Y02Y:
		return run.Add08Y02Y(m.Section08Y02Y())
	default:
		return run.AddSurface(m.Section())
	}
}
