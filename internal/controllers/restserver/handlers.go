package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chrissnell/streamflow/internal/constants"
	"github.com/chrissnell/streamflow/internal/session"
	"github.com/chrissnell/streamflow/internal/survey"
	"github.com/chrissnell/streamflow/pkg/discharge"
	"github.com/chrissnell/streamflow/pkg/responseformat"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

var methodVelocities = map[discharge.Method][]string{
	discharge.Method06Y:     {"velocity_first", "velocity_second"},
	discharge.Method08Y02Y:  {"velocity_08_first", "velocity_08_second", "velocity_02_first", "velocity_02_second"},
	discharge.MethodSurface: nil,
}

// GetHealth reports that the server is up
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]any{
		"status":  "ok",
		"version": constants.Version,
		"runs":    len(h.controller.Registry.List()),
	})
}

// GetMethods lists the supported methods and their reporting precision
func (h *Handlers) GetMethods(w http.ResponseWriter, req *http.Request) {
	methods := make([]MethodInfo, 0, len(discharge.Methods))
	for _, m := range discharge.Methods {
		methods = append(methods, MethodInfo{
			Method:     m,
			Title:      m.Title(),
			Decimals:   m.Decimals(),
			Velocities: methodVelocities[m],
		})
	}
	h.formatter.WriteResponse(w, req, map[string]any{
		"default": h.controller.defaultMethod,
		"methods": methods,
	})
}

// ComputeDischarge runs a batch computation over every section in the body
func (h *Handlers) ComputeDischarge(w http.ResponseWriter, req *http.Request) {
	method, err := discharge.ParseMethod(mux.Vars(req)["method"])
	if err != nil {
		h.sendError(w, req, err)
		return
	}

	var body DischargeRequest
	if !h.decode(w, req, &body) {
		return
	}

	s := &survey.Survey{
		Name:             body.Name,
		Method:           method,
		Points:           body.Points,
		ConversionFactor: body.ConversionFactor,
		SurfaceVelocity:  body.SurfaceVelocity,
		Sections:         make([]survey.Measurement, len(body.Sections)),
	}
	for i, m := range body.Sections {
		s.Sections[i] = survey.Measurement(m)
	}
	s.ApplyDefaults(survey.Defaults{ConversionFactor: h.controller.Registry.DefaultFactor()})

	res, err := s.Compute()
	if err != nil {
		h.sendError(w, req, err)
		return
	}

	h.formatter.WriteResponse(w, req, DischargeResponse{
		Name:    s.Name,
		Result:  res,
		Profile: discharge.NewProfile(res),
	})
}

// ListRuns lists the open runs
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]any{
		"runs": h.controller.Registry.List(),
	})
}

// CreateRun starts an incremental run
func (h *Handlers) CreateRun(w http.ResponseWriter, req *http.Request) {
	var p session.Params
	if !h.decode(w, req, &p) {
		return
	}
	if p.Method == "" {
		p.Method = h.controller.defaultMethod
	} else if m, err := discharge.ParseMethod(string(p.Method)); err == nil {
		p.Method = m
	}

	info, err := h.controller.Registry.Create(p)
	if err != nil {
		h.sendError(w, req, err)
		return
	}
	w.Header().Set("Location", "/api/runs/"+info.ID.String())
	h.formatter.WriteStatus(w, req, http.StatusCreated, RunResponse{Run: info})
}

// GetRun returns a run with its sections so far
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	id, ok := h.runID(w, req)
	if !ok {
		return
	}
	info, res, err := h.controller.Registry.Get(id)
	if err != nil {
		h.sendError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, RunResponse{Run: info, Result: res})
}

// ReselectRun changes the method or point count, discarding recorded sections
func (h *Handlers) ReselectRun(w http.ResponseWriter, req *http.Request) {
	id, ok := h.runID(w, req)
	if !ok {
		return
	}
	var p session.Params
	if !h.decode(w, req, &p) {
		return
	}
	if m, err := discharge.ParseMethod(string(p.Method)); err == nil {
		p.Method = m
	}

	info, reset, err := h.controller.Registry.Reselect(id, p)
	if err != nil {
		h.sendError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, RunResponse{Run: info, Reset: reset})
}

// AppendSection adds the next section to a run
func (h *Handlers) AppendSection(w http.ResponseWriter, req *http.Request) {
	id, ok := h.runID(w, req)
	if !ok {
		return
	}
	var m MeasurementPayload
	if !h.decode(w, req, &m) {
		return
	}

	snap, info, err := h.controller.Registry.Append(id, survey.Measurement(m))
	if err != nil {
		h.sendError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, SnapshotResponse{Run: info, Snapshot: snap})
}

// GetProfile returns the plotting series of a run
func (h *Handlers) GetProfile(w http.ResponseWriter, req *http.Request) {
	id, ok := h.runID(w, req)
	if !ok {
		return
	}
	_, res, err := h.controller.Registry.Get(id)
	if err != nil {
		h.sendError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, discharge.NewProfile(res))
}

// DeleteRun discards a run
func (h *Handlers) DeleteRun(w http.ResponseWriter, req *http.Request) {
	id, ok := h.runID(w, req)
	if !ok {
		return
	}
	if err := h.controller.Registry.Delete(id); err != nil {
		h.sendError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) runID(w http.ResponseWriter, req *http.Request) (uuid.UUID, bool) {
	id, err := session.ParseID(mux.Vars(req)["id"])
	if err != nil {
		h.sendError(w, req, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) decode(w http.ResponseWriter, req *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "Invalid JSON payload", err)
		return false
	}
	return true
}

// sendError maps engine and registry errors to HTTP status codes
func (h *Handlers) sendError(w http.ResponseWriter, req *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, session.ErrNotFound):
		status, message = http.StatusNotFound, "run not found"
	case errors.Is(err, discharge.ErrRunComplete):
		status, message = http.StatusConflict, "run is complete"
	case errors.Is(err, discharge.ErrInvalidMeasurement):
		status, message = http.StatusBadRequest, "invalid measurement"
	case errors.Is(err, discharge.ErrInvalidPointCount), errors.Is(err, survey.ErrPointCount):
		status, message = http.StatusBadRequest, "invalid point count"
	case errors.Is(err, discharge.ErrInvalidConversionFactor):
		status, message = http.StatusBadRequest, "invalid conversion factor"
	case errors.Is(err, discharge.ErrUnknownMethod):
		status, message = http.StatusBadRequest, "unknown method"
	}

	if status == http.StatusInternalServerError {
		h.controller.logger.Errorw("request failed", "path", req.URL.Path, "error", err)
	}
	if werr := h.formatter.WriteError(w, req, status, message, err); werr != nil {
		h.controller.logger.Warnw("could not write error response", "error", fmt.Sprint(werr))
	}
}
