package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/chrissnell/streamflow/internal/survey"
	"github.com/chrissnell/streamflow/pkg/discharge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var reference = survey.Measurement{
	Width: 20, DepthFirst: 4.833, DepthSecond: 3.833,
	VelocityFirst: 2.5, VelocitySecond: 2.3,
	Velocity08First: 2.6, Velocity08Second: 2.4, Velocity02First: 2.3, Velocity02Second: 2.1,
}

func newRegistry() *Registry {
	return NewRegistry(zap.NewNop().Sugar(), discharge.DefaultConversionFactor)
}

func TestCreateAppendGet(t *testing.T) {
	r := newRegistry()
	info, err := r.Create(Params{Name: "upstream", Method: discharge.Method06Y, Points: 2})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, info.ID)
	assert.Equal(t, 0, info.Recorded)
	assert.False(t, info.Complete)

	snap, _, err := r.Append(info.ID, reference)
	require.NoError(t, err)
	assert.Equal(t, 207.984, snap.ReportedTotal)
	assert.Equal(t, 1, snap.Remaining)

	_, _, err = r.Append(info.ID, reference)
	require.NoError(t, err)
	_, _, err = r.Append(info.ID, reference)
	assert.ErrorIs(t, err, discharge.ErrRunComplete)

	got, res, err := r.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, "upstream", got.Name)
	assert.Equal(t, 2, got.Recorded)
	assert.True(t, got.Complete)
	require.Len(t, res.Sections, 2)
	assert.Equal(t, res.Total, got.RunningTotal)
}

func TestSurfaceRunUsesDefaultFactor(t *testing.T) {
	r := newRegistry()
	info, err := r.Create(Params{Method: discharge.MethodSurface, Points: 1, SurfaceVelocity: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.85, info.ConversionFactor)

	snap, _, err := r.Append(info.ID, reference)
	require.NoError(t, err)
	assert.Equal(t, 220.983, snap.ReportedTotal)

	factor := 1.5
	_, err = r.Create(Params{Method: discharge.MethodSurface, Points: 1, ConversionFactor: &factor, SurfaceVelocity: 3})
	assert.ErrorIs(t, err, discharge.ErrInvalidConversionFactor)
}

func TestReselectDiscardsRun(t *testing.T) {
	r := newRegistry()
	info, err := r.Create(Params{Method: discharge.Method06Y, Points: 3})
	require.NoError(t, err)
	_, _, err = r.Append(info.ID, reference)
	require.NoError(t, err)

	same, reset, err := r.Reselect(info.ID, Params{Method: discharge.Method06Y, Points: 3})
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, 1, same.Recorded)

	changed, reset, err := r.Reselect(info.ID, Params{Method: discharge.Method08Y02Y, Points: 3})
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, info.ID, changed.ID)
	assert.Equal(t, discharge.Method08Y02Y, changed.Method)
	assert.Zero(t, changed.Recorded)
	assert.Zero(t, changed.RunningTotal)

	recount, reset, err := r.Reselect(info.ID, Params{Method: discharge.Method08Y02Y, Points: 5})
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, 5, recount.Points)

	_, _, err = r.Reselect(info.ID, Params{Method: discharge.Method08Y02Y, Points: 0})
	assert.ErrorIs(t, err, discharge.ErrInvalidPointCount)
	kept, _, err := r.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, kept.Points)
}

func TestUnknownRun(t *testing.T) {
	r := newRegistry()
	id := uuid.New()

	_, _, err := r.Append(id, reference)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = r.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = r.Reselect(id, Params{Method: discharge.Method06Y, Points: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete(id), ErrNotFound)

	_, err = ParseID("not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndList(t *testing.T) {
	r := newRegistry()
	a, err := r.Create(Params{Method: discharge.Method06Y, Points: 1})
	require.NoError(t, err)
	b, err := r.Create(Params{Method: discharge.Method08Y02Y, Points: 1})
	require.NoError(t, err)

	assert.Len(t, r.List(), 2)
	require.NoError(t, r.Delete(a.ID))

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestConcurrentRunsDoNotInteract(t *testing.T) {
	r := newRegistry()
	const runs, points = 8, 25

	ids := make([]uuid.UUID, runs)
	for i := range ids {
		info, err := r.Create(Params{Name: fmt.Sprintf("run-%d", i), Method: discharge.Method06Y, Points: points})
		require.NoError(t, err)
		ids[i] = info.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for j := 0; j < points; j++ {
				if _, _, err := r.Append(id, reference); err != nil {
					t.Error(err)
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		info, res, err := r.Get(id)
		require.NoError(t, err)
		assert.True(t, info.Complete)
		assert.Len(t, res.Sections, points)
		assert.InDelta(t, 207.984*points, info.RunningTotal, 1e-6)
	}
}

func TestReselectSurfaceParameters(t *testing.T) {
	r := newRegistry()
	info, err := r.Create(Params{Method: discharge.MethodSurface, Points: 2, SurfaceVelocity: 3})
	require.NoError(t, err)
	_, _, err = r.Append(info.ID, reference)
	require.NoError(t, err)

	_, reset, err := r.Reselect(info.ID, Params{Method: discharge.MethodSurface, Points: 2, SurfaceVelocity: 3})
	require.NoError(t, err)
	assert.False(t, reset)

	factor := 0.9
	got, reset, err := r.Reselect(info.ID, Params{Method: discharge.MethodSurface, Points: 2, ConversionFactor: &factor, SurfaceVelocity: 3})
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, 0.9, got.ConversionFactor)
	assert.Zero(t, got.Recorded)
}

func TestAppendInfoMatchesSnapshot(t *testing.T) {
	r := newRegistry()
	const points = 40
	info, err := r.Create(Params{Method: discharge.Method06Y, Points: points})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < points/4; j++ {
				snap, got, err := r.Append(info.ID, reference)
				if err != nil {
					t.Error(err)
					return
				}
				assert.Equal(t, snap.Section.Index, got.Recorded)
				assert.Equal(t, snap.RunningTotal, got.RunningTotal)
				assert.Equal(t, snap.Remaining == 0, got.Complete)
			}
		}()
	}
	wg.Wait()

	final, _, err := r.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, points, final.Recorded)
}
