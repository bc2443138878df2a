package restserver

import (
	"github.com/chrissnell/streamflow/internal/session"
	"github.com/chrissnell/streamflow/pkg/discharge"
)

// MethodInfo describes a supported method for clients building input forms
type MethodInfo struct {
	Method     discharge.Method `json:"method"`
	Title      string           `json:"title"`
	Decimals   int              `json:"decimals"`
	Velocities []string         `json:"velocities"`
}

// DischargeRequest is the body of a batch computation. The method comes from
// the URL path.
type DischargeRequest struct {
	Name             string               `json:"name,omitempty"`
	Points           int                  `json:"points,omitempty"`
	ConversionFactor *float64             `json:"conversion_factor,omitempty"`
	SurfaceVelocity  *float64             `json:"surface_velocity,omitempty"`
	Sections         []MeasurementPayload `json:"sections"`
}

// MeasurementPayload mirrors survey.Measurement for JSON and MessagePack clients
type MeasurementPayload struct {
	Width            float64 `json:"width"`
	DepthFirst       float64 `json:"depth_first"`
	DepthSecond      float64 `json:"depth_second"`
	VelocityFirst    float64 `json:"velocity_first,omitempty"`
	VelocitySecond   float64 `json:"velocity_second,omitempty"`
	Velocity08First  float64 `json:"velocity_08_first,omitempty"`
	Velocity08Second float64 `json:"velocity_08_second,omitempty"`
	Velocity02First  float64 `json:"velocity_02_first,omitempty"`
	Velocity02Second float64 `json:"velocity_02_second,omitempty"`
}

// DischargeResponse carries the computed series, total and plotting profile
type DischargeResponse struct {
	Name    string            `json:"name,omitempty"`
	Result  *discharge.Result `json:"result"`
	Profile discharge.Profile `json:"profile"`
}

// RunResponse describes an incremental run and its sections so far
type RunResponse struct {
	Run    session.Info      `json:"run"`
	Result *discharge.Result `json:"result,omitempty"`
	Reset  bool              `json:"reset,omitempty"`
}

// SnapshotResponse is returned after a section is appended to a run
type SnapshotResponse struct {
	Run      session.Info       `json:"run"`
	Snapshot discharge.Snapshot `json:"snapshot"`
}
