package discharge

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Profile holds the per-point series a plotting front end draws for a run:
// depth, velocity, area, discharge and cumulative discharge against the
// measurement point number.
type Profile struct {
	Method     Method    `json:"method"`
	Points     []float64 `json:"points"`
	Depths     []float64 `json:"depths"`
	Velocities []float64 `json:"velocities"`
	Areas      []float64 `json:"areas"`
	Discharges []float64 `json:"discharges"`
	Cumulative []float64 `json:"cumulative"`
	Summary    Summary   `json:"summary"`
}

// Summary describes the cross section as a whole
type Summary struct {
	Sections      int       `json:"sections"`
	TotalArea     float64   `json:"total_area"`
	MeanDepth     float64   `json:"mean_depth"`
	MaxDepth      float64   `json:"max_depth"`
	MeanVelocity  float64   `json:"mean_velocity"` // area weighted, i.e. Q/A
	MaxVelocity   float64   `json:"max_velocity"`
	MaxDischarge  float64   `json:"max_discharge"`
	PeakSection   int       `json:"peak_section"`
	Shares        []float64 `json:"shares"` // fraction of total discharge per section
	ReportedTotal float64   `json:"reported_total"`
}

// NewProfile builds the plotting series and summary for a result
func NewProfile(res *Result) Profile {
	n := len(res.Sections)
	p := Profile{
		Method:     res.Method,
		Points:     make([]float64, n),
		Depths:     make([]float64, n),
		Velocities: make([]float64, n),
		Areas:      make([]float64, n),
		Discharges: make([]float64, n),
		Cumulative: make([]float64, n),
	}
	for i, s := range res.Sections {
		p.Points[i] = float64(s.Index)
		p.Depths[i] = s.MeanDepth
		p.Velocities[i] = s.Velocity
		p.Areas[i] = s.Area
		p.Discharges[i] = s.Discharge
	}
	floats.CumSum(p.Cumulative, p.Discharges)

	p.Summary = Summary{
		Sections:      n,
		Shares:        make([]float64, n),
		ReportedTotal: res.ReportedTotal,
	}
	if n == 0 {
		return p
	}

	p.Summary.TotalArea = floats.Sum(p.Areas)
	p.Summary.MeanDepth = stat.Mean(p.Depths, nil)
	p.Summary.MaxDepth = floats.Max(p.Depths)
	p.Summary.MaxVelocity = floats.Max(p.Velocities)
	peak := floats.MaxIdx(p.Discharges)
	p.Summary.MaxDischarge = p.Discharges[peak]
	p.Summary.PeakSection = res.Sections[peak].Index

	if p.Summary.TotalArea > 0 {
		p.Summary.MeanVelocity = stat.Mean(p.Velocities, p.Areas)
	}
	if res.Total > 0 {
		floats.ScaleTo(p.Summary.Shares, 1/res.Total, p.Discharges)
	}
	return p
}
