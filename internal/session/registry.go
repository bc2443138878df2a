// Package session keeps the incremental discharge runs of interactive
// clients. Each run belongs to exactly one session entry; changing the method
// or point count discards the run and starts a new one.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chrissnell/streamflow/internal/survey"
	"github.com/chrissnell/streamflow/pkg/discharge"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown run ids
var ErrNotFound = errors.New("run not found")

// Params selects the method and point count of a run
type Params struct {
	Name             string           `json:"name,omitempty"`
	Method           discharge.Method `json:"method"`
	Points           int              `json:"points"`
	ConversionFactor *float64         `json:"conversion_factor,omitempty"`
	SurfaceVelocity  float64          `json:"surface_velocity,omitempty"`
}

// Info describes a run without its section series
type Info struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name,omitempty"`
	Method           discharge.Method `json:"method"`
	Points           int              `json:"points"`
	Recorded         int              `json:"recorded"`
	Complete         bool             `json:"complete"`
	RunningTotal     float64          `json:"running_total"`
	ReportedTotal    float64          `json:"reported_total"`
	ConversionFactor float64          `json:"conversion_factor,omitempty"`
	SurfaceVelocity  float64          `json:"surface_velocity,omitempty"`
	Created          time.Time        `json:"created"`
	Updated          time.Time        `json:"updated"`
}

type entry struct {
	id      uuid.UUID
	name    string
	run     *discharge.Run
	created time.Time
	updated time.Time
}

// Registry holds runs in memory. It is safe for concurrent use; runs in
// different entries never interact.
type Registry struct {
	mu     sync.Mutex
	runs   map[uuid.UUID]*entry
	logger *zap.SugaredLogger
	now    func() time.Time

	defaultFactor float64
}

// NewRegistry creates an empty registry. defaultFactor is used for surface
// runs created without a conversion factor.
func NewRegistry(logger *zap.SugaredLogger, defaultFactor float64) *Registry {
	return &Registry{
		runs:          make(map[uuid.UUID]*entry),
		logger:        logger,
		now:           time.Now,
		defaultFactor: defaultFactor,
	}
}

// DefaultFactor is the conversion factor used when a surface run omits one
func (r *Registry) DefaultFactor() float64 {
	return r.defaultFactor
}

// ParseID parses a run id
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return id, nil
}

// Create starts a new run
func (r *Registry) Create(p Params) (Info, error) {
	run, err := r.newRun(p)
	if err != nil {
		return Info{}, err
	}

	now := r.now()
	e := &entry{
		id:      uuid.New(),
		name:    p.Name,
		run:     run,
		created: now,
		updated: now,
	}

	r.mu.Lock()
	r.runs[e.id] = e
	r.mu.Unlock()

	r.logger.Debugw("run created", "run_id", e.id, "method", p.Method, "points", p.Points)
	return e.info(), nil
}

// Reselect changes the method or point count of a run. When either differs
// the recorded sections are discarded and an empty run replaces them; the
// returned bool reports whether that happened.
func (r *Registry) Reselect(id uuid.UUID, p Params) (Info, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.runs[id]
	if !ok {
		return Info{}, false, ErrNotFound
	}
	if !r.changes(e.run, p) {
		return e.info(), false, nil
	}

	run, err := r.newRun(p)
	if err != nil {
		return Info{}, false, err
	}
	r.logger.Infow("run reset", "run_id", id, "discarded_sections", e.run.Len(),
		"from_method", e.run.Method(), "to_method", p.Method, "points", p.Points)

	e.run = run
	if p.Name != "" {
		e.name = p.Name
	}
	e.updated = r.now()
	return e.info(), true, nil
}

// Append adds a measurement to a run. It returns the snapshot after it and
// the run's description at that same point.
func (r *Registry) Append(id uuid.UUID, m survey.Measurement) (discharge.Snapshot, Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.runs[id]
	if !ok {
		return discharge.Snapshot{}, Info{}, ErrNotFound
	}
	snap, err := survey.Append(e.run, m)
	if err != nil {
		return discharge.Snapshot{}, Info{}, err
	}
	e.updated = r.now()
	return snap, e.info(), nil
}

// Get returns a run's description and its result so far
func (r *Registry) Get(id uuid.UUID) (Info, *discharge.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.runs[id]
	if !ok {
		return Info{}, nil, ErrNotFound
	}
	return e.info(), e.run.Result(), nil
}

// Delete discards a run
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return ErrNotFound
	}
	delete(r.runs, id)
	return nil
}

// List returns every run, oldest first
func (r *Registry) List() []Info {
	r.mu.Lock()
	infos := make([]Info, 0, len(r.runs))
	for _, e := range r.runs {
		infos = append(infos, e.info())
	}
	r.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Created.Equal(infos[j].Created) {
			return infos[i].ID.String() < infos[j].ID.String()
		}
		return infos[i].Created.Before(infos[j].Created)
	})
	return infos
}

// changes reports whether p selects something other than the current run.
// For surface runs the shared factor and velocity count as part of the selection.
func (r *Registry) changes(run *discharge.Run, p Params) bool {
	if run.Method() != p.Method || run.Points() != p.Points {
		return true
	}
	if p.Method != discharge.MethodSurface {
		return false
	}
	factor, velocity := run.SurfaceParameters()
	return factor != r.factor(p) || velocity != p.SurfaceVelocity
}

func (r *Registry) factor(p Params) float64 {
	if p.ConversionFactor != nil {
		return *p.ConversionFactor
	}
	return r.defaultFactor
}

func (r *Registry) newRun(p Params) (*discharge.Run, error) {
	var opts []discharge.RunOption
	if p.Method == discharge.MethodSurface {
		opts = append(opts, discharge.WithSurface(r.factor(p), p.SurfaceVelocity))
	}
	return discharge.NewRun(p.Method, p.Points, opts...)
}

func (e *entry) info() Info {
	info := Info{
		ID:            e.id,
		Name:          e.name,
		Method:        e.run.Method(),
		Points:        e.run.Points(),
		Recorded:      e.run.Len(),
		Complete:      e.run.Complete(),
		RunningTotal:  e.run.Total(),
		ReportedTotal: e.run.ReportedTotal(),
		Created:       e.created,
		Updated:       e.updated,
	}
	if info.Method == discharge.MethodSurface {
		info.ConversionFactor, info.SurfaceVelocity = e.run.SurfaceParameters()
	}
	return info
}
