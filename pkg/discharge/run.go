package discharge

import (
	"fmt"
)

// Run accumulates section results for one method in measurement order.
// Sections are only ever appended; totals already reported are never
// revised. A Run is not safe for concurrent use.
type Run struct {
	method           Method
	points           int
	conversionFactor float64
	surfaceVelocity  float64
	surfaceSet       bool

	sections []SectionResult
	partials []float64
	total    float64
}

// RunOption configures a Run
type RunOption func(*Run)

// WithSurface sets the conversion factor and surface velocity shared by every
// section of a surface velocity run
func WithSurface(conversionFactor, surfaceVelocity float64) RunOption {
	return func(r *Run) {
		r.conversionFactor = conversionFactor
		r.surfaceVelocity = surfaceVelocity
		r.surfaceSet = true
	}
}

// Snapshot is the state of a run right after a section was added
type Snapshot struct {
	Section       SectionResult `json:"section"`
	RunningTotal  float64       `json:"running_total"`
	ReportedTotal float64       `json:"reported_total"`
	Remaining     int           `json:"remaining"`
}

// NewRun starts an empty run expecting the given number of sections
func NewRun(method Method, points int, opts ...RunOption) (*Run, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPointCount, points)
	}

	r := &Run{
		method:   method,
		points:   points,
		sections: make([]SectionResult, 0, points),
		partials: make([]float64, 0, points),
	}
	for _, opt := range opts {
		opt(r)
	}

	if method == MethodSurface {
		if !r.surfaceSet {
			return nil, fmt.Errorf("%w: surface run needs a conversion factor and surface velocity", ErrInvalidConversionFactor)
		}
		if err := ValidateSurface(r.conversionFactor, r.surfaceVelocity); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Method returns the run's method
func (r *Run) Method() Method { return r.method }

// Points returns the number of sections the run expects
func (r *Run) Points() int { return r.points }

// Len returns the number of sections added so far
func (r *Run) Len() int { return len(r.sections) }

// Complete reports whether every expected section has been added
func (r *Run) Complete() bool { return len(r.sections) >= r.points }

// Total is the unrounded running total discharge
func (r *Run) Total() float64 { return r.total }

// ReportedTotal is the running total rounded for display
func (r *Run) ReportedTotal() float64 { return Round(r.total, r.method.Decimals()) }

// SurfaceParameters returns the conversion factor and surface velocity of a surface run
func (r *Run) SurfaceParameters() (conversionFactor, surfaceVelocity float64) {
	return r.conversionFactor, r.surfaceVelocity
}

// Add06Y validates and appends a 0.6Y section
func (r *Run) Add06Y(s Section06Y) (Snapshot, error) {
	if err := r.accepts(Method06Y); err != nil {
		return Snapshot{}, err
	}
	if err := s.validate(r.next()); err != nil {
		return Snapshot{}, err
	}
	velocity := s.Velocity()
	area := s.Area()
	return r.append(s.Section, area, velocity, float64(area*velocity)), nil
}

// Add08Y02Y validates and appends a 0.8Y/0.2Y section
func (r *Run) Add08Y02Y(s Section08Y02Y) (Snapshot, error) {
	if err := r.accepts(Method08Y02Y); err != nil {
		return Snapshot{}, err
	}
	if err := s.validate(r.next()); err != nil {
		return Snapshot{}, err
	}
	velocity := s.Velocity()
	area := s.Area()
	return r.append(s.Section, area, velocity, float64(area*velocity)), nil
}

// AddSurface validates and appends a surface velocity section. The section
// discharge is factor * area * surface velocity and is added to the running
// total straight away, so every snapshot carries a meaningful partial total.
func (r *Run) AddSurface(s Section) (Snapshot, error) {
	if err := r.accepts(MethodSurface); err != nil {
		return Snapshot{}, err
	}
	if err := s.validate(r.next()); err != nil {
		return Snapshot{}, err
	}
	area := s.Area()
	q := float64(r.conversionFactor * area * r.surfaceVelocity)
	return r.append(s, area, r.conversionFactor*r.surfaceVelocity, q), nil
}

// Result returns the sections added so far in the batch result shape
func (r *Run) Result() *Result {
	res := &Result{
		Method:        r.method,
		Sections:      append([]SectionResult(nil), r.sections...),
		Partials:      append([]float64(nil), r.partials...),
		Total:         r.total,
		ReportedTotal: r.ReportedTotal(),
	}
	if r.method == MethodSurface {
		res.ConversionFactor = r.conversionFactor
		res.SurfaceVelocity = r.surfaceVelocity
	}
	return res
}

func (r *Run) next() int {
	return len(r.sections) + 1
}

func (r *Run) accepts(m Method) error {
	if r.method != m {
		return fmt.Errorf("%w: run is %s, section is %s", ErrMethodMismatch, r.method, m)
	}
	if r.Complete() {
		return fmt.Errorf("%w: all %d sections recorded", ErrRunComplete, r.points)
	}
	return nil
}

// append records a section. Callers pass q through an explicit float64
// conversion so the multiply is never fused into the running sum.
func (r *Run) append(s Section, area, velocity, q float64) Snapshot {
	sr := SectionResult{
		Index:     r.next(),
		Width:     s.Width,
		MeanDepth: s.MeanDepth(),
		Area:      area,
		Velocity:  velocity,
		Discharge: q,
	}
	r.total += q
	r.sections = append(r.sections, sr)
	r.partials = append(r.partials, r.total)

	return Snapshot{
		Section:       sr,
		RunningTotal:  r.total,
		ReportedTotal: r.ReportedTotal(),
		Remaining:     r.points - len(r.sections),
	}
}
