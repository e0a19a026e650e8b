package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_tracker/internal/geo"
)

func TestActivate(t *testing.T) {
	r := readyRoute(t)

	assert.ErrorIs(t, r.Activate(len(r.Waypoints)), ErrIndexOutOfRange)
	assert.ErrorIs(t, r.Activate(-1), ErrIndexOutOfRange)
	assert.Nil(t, r.ActiveIndex)

	require.NoError(t, r.Activate(3))
	assert.Equal(t, 3, *r.ActiveIndex)
	assert.Equal(t, StateActive, r.State())

	r.ClearProgress()
	assert.Nil(t, r.ActiveIndex)
	assert.Equal(t, StateReady, r.State())

	empty := &Route{ID: 2}
	assert.ErrorIs(t, empty.Activate(0), ErrInvalidState)
}

func TestElapsedSubpath(t *testing.T) {
	r := readyRoute(t)
	assert.Empty(t, r.ElapsedSubpath())

	require.NoError(t, r.Activate(2))
	sub := r.ElapsedSubpath()
	require.Len(t, sub, 4)
	assert.Equal(t, varnaStart, sub[0])
	assert.Equal(t, r.Waypoints[2].Coord, sub[3])
}

func TestSplitDistances_NoProgress(t *testing.T) {
	r := readyRoute(t)
	s := r.SplitDistances()
	assert.InDelta(t, geo.PathDistance(r.Path()), s.Total, 1e-9)
	assert.Nil(t, s.Elapsed)
	assert.Nil(t, s.Remaining)
}

func TestSplitDistances_SumsToTotal(t *testing.T) {
	r := readyRoute(t)
	for i := range r.Waypoints {
		require.NoError(t, r.Activate(i))
		s := r.SplitDistances()
		require.NotNil(t, s.Elapsed)
		require.NotNil(t, s.Remaining)
		assert.InDelta(t, s.Total, *s.Elapsed+*s.Remaining, 1e-6, "index %d", i)
		assert.Greater(t, *s.Elapsed, 0.0)
		assert.Greater(t, *s.Remaining, 0.0)
	}
}

// A straight north-south route of ~10 km with nine waypoints.
func TestSplitDistances_ScenarioB(t *testing.T) {
	start := geo.Coord{Lat: 43.0, Lng: 27.9}
	end := geo.Coord{Lat: 43.0 + 10000.0/111195.0, Lng: 27.9}
	r := &Route{
		ID:    1,
		Start: &Anchor{RouteID: 1, Role: RoleStart, Coord: start},
		End:   &Anchor{RouteID: 1, Role: RoleEnd, Coord: end},
	}
	for i := 1; i <= 9; i++ {
		r.Waypoints = append(r.Waypoints, Waypoint{Coord: geo.Interpolate(start, end, float64(i)/10)})
	}

	require.NoError(t, r.Activate(4))
	s := r.SplitDistances()
	assert.InDelta(t, 10.0, s.Total/1000, 0.01)
	assert.InDelta(t, 10.0, (*s.Elapsed+*s.Remaining)/1000, 0.01)
	assert.InDelta(t, 5.0, *s.Elapsed/1000, 0.01)
}
