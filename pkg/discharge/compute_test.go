package discharge

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference channel: 20 ft strip between verticals 4'-10" and 3'-10" deep.
var referenceSection = Section{Width: 20, DepthFirst: 4.833, DepthSecond: 3.833}

func TestComputeMidSection06Y(t *testing.T) {
	res, err := ComputeMidSection06Y([]Section06Y{
		{Section: referenceSection, VelocityFirst: 2.5, VelocitySecond: 2.3},
	})
	require.NoError(t, err)
	require.Len(t, res.Sections, 1)

	s := res.Sections[0]
	assert.Equal(t, 1, s.Index)
	assert.InDelta(t, 86.66, s.Area, 1e-9)
	assert.InDelta(t, 2.4, s.Velocity, 1e-12)
	assert.InDelta(t, 207.984, s.Discharge, 1e-9)
	assert.Equal(t, 207.984, res.ReportedTotal)
	assert.Equal(t, Method06Y, res.Method)
}

func TestComputeMidSection08Y02Y(t *testing.T) {
	res, err := ComputeMidSection08Y02Y([]Section08Y02Y{
		{
			Section:          referenceSection,
			Velocity08First:  2.6,
			Velocity08Second: 2.4,
			Velocity02First:  2.3,
			Velocity02Second: 2.1,
		},
	})
	require.NoError(t, err)

	s := res.Sections[0]
	assert.InDelta(t, 86.66, s.Area, 1e-9)
	assert.InDelta(t, 2.35, s.Velocity, 1e-12)
	assert.InDelta(t, 203.651, s.Discharge, 1e-9)
	assert.Equal(t, 203.651, res.ReportedTotal)
}

func TestComputeSurfaceVelocity(t *testing.T) {
	res, err := ComputeSurfaceVelocity([]Section{referenceSection}, 0.85, 3.0)
	require.NoError(t, err)

	s := res.Sections[0]
	assert.InDelta(t, 86.66, s.Area, 1e-9)
	assert.InDelta(t, 2.55, s.Velocity, 1e-12)
	assert.InDelta(t, 220.983, s.Discharge, 1e-9)
	assert.Equal(t, 220.983, res.ReportedTotal)
	assert.Equal(t, 0.85, res.ConversionFactor)
	assert.Equal(t, 3.0, res.SurfaceVelocity)
}

func TestSingleSectionFormulaIsExact(t *testing.T) {
	tests := []struct {
		name string
		in   [5]float64 // width, depth1, depth2, v1, v2
	}{
		{"reference", [5]float64{20, 4.833, 3.833, 2.5, 2.3}},
		{"zero width", [5]float64{0, 3, 4, 1, 2}},
		{"dry vertical", [5]float64{5, 0, 1.2, 0, 0.7}},
		{"fractional", [5]float64{3.3, 1.1, 0.7, 0.13, 0.29}},
		{"wide", [5]float64{125.5, 12.25, 9.75, 4.4, 3.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			width, depth1, depth2, v1, v2 := tt.in[0], tt.in[1], tt.in[2], tt.in[3], tt.in[4]
			res, err := ComputeMidSection06Y([]Section06Y{{
				Section:        Section{Width: width, DepthFirst: depth1, DepthSecond: depth2},
				VelocityFirst:  v1,
				VelocitySecond: v2,
			}})
			require.NoError(t, err)

			want := ((depth1 + depth2) / 2 * width) * ((v1 + v2) / 2)
			assert.Equal(t, want, res.Sections[0].Discharge)
			assert.Equal(t, want, res.Total)
		})
	}
}

func TestTotalIsSumOfSections(t *testing.T) {
	sections := []Section06Y{
		{Section: Section{Width: 4, DepthFirst: 0, DepthSecond: 1.6}, VelocityFirst: 0, VelocitySecond: 0.9},
		{Section: Section{Width: 6, DepthFirst: 1.6, DepthSecond: 2.9}, VelocityFirst: 0.9, VelocitySecond: 1.7},
		{Section: Section{Width: 6, DepthFirst: 2.9, DepthSecond: 3.4}, VelocityFirst: 1.7, VelocitySecond: 2.2},
		{Section: Section{Width: 5, DepthFirst: 3.4, DepthSecond: 2.1}, VelocityFirst: 2.2, VelocitySecond: 1.4},
		{Section: Section{Width: 3, DepthFirst: 2.1, DepthSecond: 0}, VelocityFirst: 1.4, VelocitySecond: 0},
	}

	res, err := ComputeMidSection06Y(sections)
	require.NoError(t, err)
	require.Len(t, res.Partials, len(sections))

	sum := 0.0
	for i, s := range res.Sections {
		sum += s.Discharge
		assert.Equal(t, sum, res.Partials[i], "partial %d", i+1)
	}
	assert.Equal(t, sum, res.Total)
	assert.Equal(t, Round(sum, 3), res.ReportedTotal)

	reversed := make([]Section06Y, len(sections))
	for i, s := range sections {
		reversed[len(sections)-1-i] = s
	}
	rev, err := ComputeMidSection06Y(reversed)
	require.NoError(t, err)
	assert.InDelta(t, res.Total, rev.Total, 1e-9)
}

func TestComputeIsIdempotent(t *testing.T) {
	sections := []Section08Y02Y{
		{Section: Section{Width: 10, DepthFirst: 2, DepthSecond: 2.5}, Velocity08First: 1.1, Velocity08Second: 1.3, Velocity02First: 1.9, Velocity02Second: 2.0},
		{Section: Section{Width: 10, DepthFirst: 2.5, DepthSecond: 1.5}, Velocity08First: 1.3, Velocity08Second: 0.8, Velocity02First: 2.0, Velocity02Second: 1.4},
	}

	first, err := ComputeMidSection08Y02Y(sections)
	require.NoError(t, err)
	second, err := ComputeMidSection08Y02Y(sections)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTwoStageAverageMatchesFlatMean(t *testing.T) {
	tests := []struct {
		name     string
		v08, v02 [2]float64
		expected float64
	}{
		{"uniform", [2]float64{4, 4}, [2]float64{0, 0}, 2.0},
		{"skewed 0.8y", [2]float64{6, 2}, [2]float64{0, 0}, 2.0},
		{"split", [2]float64{6, 0}, [2]float64{2, 0}, 2.0},
		{"crossed pairing", [2]float64{8, 0}, [2]float64{0, 4}, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Section08Y02Y{
				Velocity08First:  tt.v08[0],
				Velocity08Second: tt.v08[1],
				Velocity02First:  tt.v02[0],
				Velocity02Second: tt.v02[1],
			}
			flat := (tt.v08[0] + tt.v08[1] + tt.v02[0] + tt.v02[1]) / 4
			assert.Equal(t, tt.expected, s.Velocity())
			assert.Equal(t, flat, s.Velocity())
		})
	}
}

func TestSurfaceIncrementalMatchesAreaFirst(t *testing.T) {
	sections := []Section{
		{Width: 4, DepthFirst: 0, DepthSecond: 1.6},
		{Width: 6, DepthFirst: 1.6, DepthSecond: 2.9},
		{Width: 6, DepthFirst: 2.9, DepthSecond: 3.4},
		referenceSection,
	}
	const factor, velocity = 0.85, 3.0

	res, err := ComputeSurfaceVelocity(sections, factor, velocity)
	require.NoError(t, err)

	totalArea := 0.0
	for i, s := range sections {
		totalArea += s.Area()
		assert.InDelta(t, factor*totalArea*velocity, res.Partials[i], 1e-9)
	}
	assert.InDelta(t, factor*totalArea*velocity, res.Total, 1e-9)
	assert.Equal(t, Round(factor*totalArea*velocity, 4), res.ReportedTotal)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		compute func() (*Result, error)
		want    error
		section int
		field   string
	}{
		{
			name: "negative width",
			compute: func() (*Result, error) {
				return ComputeMidSection06Y([]Section06Y{{Section: Section{Width: -1, DepthFirst: 1, DepthSecond: 1}}})
			},
			want:    ErrInvalidMeasurement,
			section: 1,
			field:   "width",
		},
		{
			name: "nan depth in second section",
			compute: func() (*Result, error) {
				return ComputeMidSection06Y([]Section06Y{
					{Section: referenceSection, VelocityFirst: 1, VelocitySecond: 1},
					{Section: Section{Width: 1, DepthFirst: 1, DepthSecond: math.NaN()}},
				})
			},
			want:    ErrInvalidMeasurement,
			section: 2,
			field:   "depth_second",
		},
		{
			name: "infinite 0.2y velocity",
			compute: func() (*Result, error) {
				return ComputeMidSection08Y02Y([]Section08Y02Y{{Section: referenceSection, Velocity02Second: math.Inf(1)}})
			},
			want:    ErrInvalidMeasurement,
			section: 1,
			field:   "velocity_02_second",
		},
		{
			name: "negative surface velocity",
			compute: func() (*Result, error) {
				return ComputeSurfaceVelocity([]Section{referenceSection}, 0.85, -3)
			},
			want:  ErrInvalidMeasurement,
			field: "surface_velocity",
		},
		{
			name: "conversion factor above one",
			compute: func() (*Result, error) {
				return ComputeSurfaceVelocity([]Section{referenceSection}, 1.2, 3)
			},
			want: ErrInvalidConversionFactor,
		},
		{
			name: "empty 0.6y batch",
			compute: func() (*Result, error) {
				return ComputeMidSection06Y(nil)
			},
			want: ErrInvalidPointCount,
		},
		{
			name: "empty surface batch",
			compute: func() (*Result, error) {
				return ComputeSurfaceVelocity(nil, 0.85, 3)
			},
			want: ErrInvalidPointCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.compute()
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var me *MeasurementError
			if tt.field != "" {
				require.True(t, errors.As(err, &me))
				assert.Equal(t, tt.section, me.Section)
				assert.Equal(t, tt.field, me.Field)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x        float64
		decimals int
		expected float64
	}{
		{207.98400000000001, 3, 207.984},
		{1.23456, 4, 1.2346},
		{1.23454, 4, 1.2345},
		{2.5, 0, 3},
		{0, 3, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Round(tt.x, tt.decimals))
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"1", Method06Y},
		{"0.6Y", Method06Y},
		{"2", Method08Y02Y},
		{"0.8y/0.2y", Method08Y02Y},
		{"3", MethodSurface},
		{" Surface ", MethodSurface},
	}
	for _, tt := range tests {
		m, err := ParseMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, m)
	}

	_, err := ParseMethod("4")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	assert.Equal(t, 3, Method06Y.Decimals())
	assert.Equal(t, 4, Method08Y02Y.Decimals())
	assert.Equal(t, 4, MethodSurface.Decimals())
}
