package editor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_tracker/internal/geo"
	"route_tracker/internal/models"
	"route_tracker/internal/persist"
	"route_tracker/internal/render"
	"route_tracker/internal/storage"
)

var (
	startPt = geo.Coord{Lat: 43.200, Lng: 27.900}
	endPt   = geo.Coord{Lat: 43.220, Lng: 27.930}
)

func newEditor(t *testing.T) (*Editor, *render.Scene, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	scene := render.NewScene(nil)
	e := New(scene, persist.NewSaver(store), DefaultSpeed)
	require.NoError(t, e.Load(context.Background()))
	return e, scene, store
}

func readyRoute(t *testing.T, e *Editor) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := e.NewRoute(ctx)
	require.NoError(t, err)
	require.NoError(t, e.MapClick(ctx, startPt))
	require.NoError(t, e.MapClick(ctx, endPt))
	return id
}

func savedRoutes(t *testing.T, store storage.Store) []map[string]any {
	t.Helper()
	blob, ok, err := store.Get(context.Background(), persist.StorageKey)
	require.NoError(t, err)
	require.True(t, ok, "nothing saved")
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &out))
	return out
}

// Scenario A: two clicks make a ready route with evenly spaced waypoints.
func TestMapClick_CreatesReadyRoute(t *testing.T) {
	e, scene, store := newEditor(t)
	ctx := context.Background()

	id, err := e.NewRoute(ctx)
	require.NoError(t, err)
	require.NoError(t, e.MapClick(ctx, startPt))

	d, err := e.Route(id)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingEnd.String(), d.State)
	assert.Equal(t, 1, scene.LayerCount())

	require.NoError(t, e.MapClick(ctx, endPt))
	d, err = e.Route(id)
	require.NoError(t, err)
	assert.Equal(t, models.StateReady.String(), d.State)
	require.Len(t, d.Waypoints, 10)
	assert.InDelta(t, 3.3, e.Info().TotalKm, 0.1)
	assert.Equal(t, 1+2+10, scene.LayerCount())

	saved := savedRoutes(t, store)
	require.Len(t, saved, 1)
	assert.Len(t, saved[0]["mid"], 10)

	err = e.MapClick(ctx, geo.Coord{Lat: 43.3, Lng: 27.9})
	assert.ErrorIs(t, err, models.ErrInvalidState)
	d2, _ := e.Route(id)
	assert.Equal(t, d, d2)
}

func TestMapClick_Ignored(t *testing.T) {
	e, _, store := newEditor(t)
	ctx := context.Background()

	require.NoError(t, e.MapClick(ctx, startPt))
	_, ok, _ := store.Get(ctx, persist.StorageKey)
	assert.False(t, ok, "click without a route must not save")

	id, err := e.NewRoute(ctx)
	require.NoError(t, err)
	require.NoError(t, e.SetVisible(ctx, id, false))
	require.NoError(t, e.MapClick(ctx, startPt))
	d, _ := e.Route(id)
	assert.Nil(t, d.Start)

	assert.ErrorIs(t, e.MapClick(ctx, geo.Coord{Lat: 91, Lng: 0}), models.ErrInvalidCoord)
}

// Scenario B: progress splits the distance.
func TestActivate_SplitsDistance(t *testing.T) {
	e, scene, store := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	require.NoError(t, e.Activate(ctx, id, 4))
	info := e.Info()
	require.NotNil(t, info.ElapsedKm)
	assert.InDelta(t, info.TotalKm, *info.ElapsedKm+*info.RemainingKm, 1e-9)
	assert.Equal(t, 2+2+10, scene.LayerCount())
	assert.Equal(t, float64(4), savedRoutes(t, store)[0]["activeIndex"])

	assert.ErrorIs(t, e.Activate(ctx, id, 10), models.ErrIndexOutOfRange)
	assert.ErrorIs(t, e.Activate(ctx, 12345, 0), models.ErrNotFound)

	require.NoError(t, e.ResetProgress(ctx))
	assert.Nil(t, e.Info().ElapsedKm)
	assert.Nil(t, savedRoutes(t, store)[0]["activeIndex"])
}

// Scenario C: a zero speed never yields NaN.
func TestSetSpeed_ZeroShowsPlaceholder(t *testing.T) {
	e, scene, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)
	require.NoError(t, e.Activate(ctx, id, 2))

	require.NoError(t, e.SetSpeed(ctx, 0))
	assert.Equal(t, render.NoTimePlaceholder, e.Info().Time)
	assert.Equal(t, render.NoTimePlaceholder, scene.Last().Info.Time)

	require.NoError(t, e.SetSpeed(ctx, 60))
	assert.NotEqual(t, render.NoTimePlaceholder, e.Info().Time)
	assert.Equal(t, 60.0, e.Snapshot().Speed)
}

// Dragging a waypoint keeps progress and saves every move.
func TestDrag_Waypoint(t *testing.T) {
	e, scene, store := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)
	require.NoError(t, e.Activate(ctx, id, 5))
	before := savedRoutes(t, store)

	ref := models.PointRef{RouteID: id, Kind: models.PointWaypoint, Index: 3}
	require.NoError(t, e.BeginDrag(ctx, ref))
	assert.False(t, scene.PanEnabled())
	assert.ErrorIs(t, e.BeginDrag(ctx, ref), models.ErrInvalidState)

	moved := geo.Coord{Lat: 43.215, Lng: 27.905}
	require.NoError(t, e.DragTo(ctx, moved))
	d, _ := e.Route(id)
	assert.Equal(t, moved, d.Waypoints[3].Coord)
	require.NotNil(t, d.ActiveIndex)
	assert.Equal(t, 5, *d.ActiveIndex)
	mid := savedRoutes(t, store)[0]["mid"].([]any)
	assert.Equal(t, moved.Lat, mid[3].(map[string]any)["lat"])

	require.NoError(t, e.EndDrag(ctx))
	assert.True(t, scene.PanEnabled())
	assert.NotEqual(t, before, savedRoutes(t, store))
	require.NoError(t, e.EndDrag(ctx))

	assert.ErrorIs(t, e.DragTo(ctx, moved), models.ErrInvalidState)
}

func TestDrag_AnchorRegenerates(t *testing.T) {
	e, _, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)
	require.NoError(t, e.Activate(ctx, id, 2))

	require.NoError(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointEnd}))
	require.NoError(t, e.DragTo(ctx, geo.Coord{Lat: 43.240, Lng: 27.960}))
	require.NoError(t, e.EndDrag(ctx))

	d, _ := e.Route(id)
	assert.Nil(t, d.ActiveIndex)
	assert.Greater(t, len(d.Waypoints), 10)
}

func TestDrag_StartedFromScene(t *testing.T) {
	e, scene, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	var fc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(scene.Last().Scene, &fc))
	var startHandle render.Handle
	for _, f := range fc.Features {
		if f.Properties["point"] == "start" {
			startHandle = render.Handle(f.Properties["layer"].(float64))
		}
	}
	require.NotZero(t, startHandle)

	require.NoError(t, scene.Dispatch(startHandle, render.EventDragStart, startPt))
	ref, ok := e.Dragging()
	require.True(t, ok)
	assert.Equal(t, models.PointRef{RouteID: id, Kind: models.PointStart}, ref)
	assert.False(t, scene.PanEnabled())

	require.NoError(t, e.DeleteRoute(ctx, id))
	_, ok = e.Dragging()
	assert.False(t, ok)
	assert.True(t, scene.PanEnabled())
}

func TestBeginDrag_Validates(t *testing.T) {
	e, scene, _ := newEditor(t)
	ctx := context.Background()
	id, err := e.NewRoute(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointStart}), models.ErrInvalidState)
	assert.ErrorIs(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointWaypoint}), models.ErrIndexOutOfRange)
	assert.ErrorIs(t, e.BeginDrag(ctx, models.PointRef{RouteID: 1, Kind: models.PointStart}), models.ErrNotFound)
	assert.True(t, scene.PanEnabled())
}

func TestWaypointMenu(t *testing.T) {
	e, _, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	assert.ErrorIs(t, e.WaypointMenuAction(ctx, ActionDelete, ""), models.ErrInvalidState)

	require.NoError(t, e.OpenWaypointMenu(ctx, id, 2))
	assert.ErrorIs(t, e.WaypointMenuAction(ctx, ActionRename, "   "), models.ErrEmptyInput)
	require.NotNil(t, e.Snapshot().Menu, "failed action keeps the menu open")

	require.NoError(t, e.WaypointMenuAction(ctx, ActionRename, " Bridge "))
	assert.Nil(t, e.Snapshot().Menu)
	d, _ := e.Route(id)
	assert.Equal(t, "Bridge", d.Waypoints[2].Name)

	require.NoError(t, e.OpenWaypointMenu(ctx, id, 2))
	require.NoError(t, e.MenuAction(ctx, ActionAddBefore, ""))
	d, _ = e.Route(id)
	require.Len(t, d.Waypoints, 11)
	assert.Equal(t, "Bridge", d.Waypoints[3].Name)

	require.NoError(t, e.OpenWaypointMenu(ctx, id, 3))
	require.NoError(t, e.WaypointMenuAction(ctx, ActionDelete, ""))
	d, _ = e.Route(id)
	assert.Len(t, d.Waypoints, 10)

	assert.ErrorIs(t, e.OpenWaypointMenu(ctx, id, 10), models.ErrIndexOutOfRange)

	require.NoError(t, e.OpenWaypointMenu(ctx, id, 0))
	e.CloseMenu()
	assert.Nil(t, e.Snapshot().Menu)
}

func TestRouteMenu(t *testing.T) {
	e, _, store := newEditor(t)
	ctx := context.Background()
	first := readyRoute(t, e)
	second, err := e.NewRoute(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, e.Snapshot().Selected)

	require.NoError(t, e.OpenRouteMenu(ctx, first))
	assert.Equal(t, first, e.Snapshot().Selected)
	assert.ErrorIs(t, e.RouteMenuAction(ctx, ActionActivate, ""), models.ErrInvalidState)

	require.NoError(t, e.MenuAction(ctx, ActionRenameRoute, "Morning run"))
	d, _ := e.Route(first)
	assert.Equal(t, "Morning run", d.Name)

	require.NoError(t, e.OpenRouteMenu(ctx, first))
	require.NoError(t, e.RouteMenuAction(ctx, ActionDeleteRoute, ""))
	snap := e.Snapshot()
	require.Len(t, snap.Routes, 1)
	assert.Equal(t, second, snap.Selected)
	assert.Nil(t, snap.Menu)
	assert.Len(t, savedRoutes(t, store), 1)
}

func TestClearAll(t *testing.T) {
	e, scene, store := newEditor(t)
	ctx := context.Background()
	readyRoute(t, e)

	require.NoError(t, e.ClearAll(ctx))
	assert.Empty(t, e.Snapshot().Routes)
	assert.Zero(t, scene.LayerCount())
	assert.Equal(t, render.NoRouteSelected, e.Info().Name)
	_, ok, err := store.Get(ctx, persist.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Scenario E: a reload restores colors, names and the route in progress.
func TestLoad_RestoresSession(t *testing.T) {
	e, _, store := newEditor(t)
	ctx := context.Background()
	first := readyRoute(t, e)
	second := readyRoute(t, e)
	require.NoError(t, e.RenameRoute(ctx, first, "Harbour loop"))
	require.NoError(t, e.Activate(ctx, second, 3))
	require.NoError(t, e.Select(ctx, first))
	want := e.Snapshot()

	scene := render.NewScene(nil)
	reloaded := New(scene, persist.NewSaver(store), DefaultSpeed)
	require.NoError(t, reloaded.Load(ctx))
	got := reloaded.Snapshot()

	require.Len(t, got.Routes, 2)
	for i := range want.Routes {
		assert.Equal(t, want.Routes[i].ID, got.Routes[i].ID)
		assert.Equal(t, want.Routes[i].Name, got.Routes[i].Name)
		assert.Equal(t, want.Routes[i].Color, got.Routes[i].Color)
		assert.Equal(t, want.Routes[i].ActiveIndex, got.Routes[i].ActiveIndex)
	}
	assert.Equal(t, second, got.Selected)
	// first: line, two pins, ten waypoints; second adds its progress line
	assert.Equal(t, 13+14, scene.LayerCount())

	next, err := reloaded.NewRoute(ctx)
	require.NoError(t, err)
	assert.Greater(t, next, second)
}

func TestLoad_CorruptStartsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, persist.StorageKey, "{not json"))

	e := New(render.NewScene(nil), persist.NewSaver(store), DefaultSpeed)
	require.NoError(t, e.Load(ctx))
	assert.Empty(t, e.Snapshot().Routes)

	blob, ok, err := store.Get(ctx, persist.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{not json", blob, "load must not overwrite storage")
}

func TestRenameRoute_RejectsBlank(t *testing.T) {
	e, _, _ := newEditor(t)
	ctx := context.Background()
	id, err := e.NewRoute(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, e.RenameRoute(ctx, id, "\t"), models.ErrEmptyInput)
	d, _ := e.Route(id)
	assert.Equal(t, "Route 1", d.Name)
}

// Scenario D: deleting the only route leaves nothing selected.
func TestDeleteRoute_OnlyRoute(t *testing.T) {
	e, scene, store := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	require.NoError(t, e.DeleteRoute(ctx, id))
	assert.Equal(t, render.NoRouteSelected, e.Info().Name)
	snap := e.Snapshot()
	assert.Equal(t, models.NoSelection, snap.Selected)
	assert.Empty(t, snap.Routes)
	assert.Zero(t, scene.LayerCount())
	assert.Empty(t, savedRoutes(t, store))
}

func TestDragTo_AnchorMoveIsSaved(t *testing.T) {
	e, _, store := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	moved := geo.Coord{Lat: 43.30, Lng: 28.10}
	require.NoError(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointEnd}))
	require.NoError(t, e.DragTo(ctx, moved))

	reloaded := New(render.NewScene(nil), persist.NewSaver(store), DefaultSpeed)
	require.NoError(t, reloaded.Load(ctx))
	d, err := reloaded.Route(id)
	require.NoError(t, err)
	require.NotNil(t, d.End)
	assert.Equal(t, moved, *d.End)
}

func TestDrag_FollowsShiftedWaypoint(t *testing.T) {
	e, _, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)
	d, _ := e.Route(id)
	target := d.Waypoints[3].Coord

	require.NoError(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointWaypoint, Index: 3}))
	require.NoError(t, e.DeleteWaypoint(ctx, id, 1))
	ref, ok := e.Dragging()
	require.True(t, ok)
	assert.Equal(t, 2, ref.Index)

	require.NoError(t, e.AddBefore(ctx, id, 0))
	ref, _ = e.Dragging()
	assert.Equal(t, 3, ref.Index)

	require.NoError(t, e.AddAfter(ctx, id, 5))
	ref, _ = e.Dragging()
	assert.Equal(t, 3, ref.Index)

	moved := geo.Coord{Lat: 43.25, Lng: 27.95}
	require.NoError(t, e.DragTo(ctx, moved))
	d, _ = e.Route(id)
	assert.Equal(t, moved, d.Waypoints[3].Coord)
	for i, wp := range d.Waypoints {
		assert.NotEqual(t, target, wp.Coord, "waypoint %d still at the old spot", i)
	}
}

func TestDeleteWaypoint_ReleasesDragOnIt(t *testing.T) {
	e, scene, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	require.NoError(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointWaypoint, Index: 3}))
	require.NoError(t, e.DeleteWaypoint(ctx, id, 3))
	_, ok := e.Dragging()
	assert.False(t, ok)
	assert.True(t, scene.PanEnabled())

	before, _ := e.Route(id)
	assert.ErrorIs(t, e.DragTo(ctx, geo.Coord{Lat: 10, Lng: 10}), models.ErrInvalidState)
	after, _ := e.Route(id)
	assert.Equal(t, before, after)
}

func TestWaypointMenu_FollowsEdits(t *testing.T) {
	e, _, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)
	d, _ := e.Route(id)
	target := d.Waypoints[5].Coord

	require.NoError(t, e.OpenWaypointMenu(ctx, id, 5))
	require.NoError(t, e.DeleteWaypoint(ctx, id, 1))
	require.NotNil(t, e.Snapshot().Menu)
	assert.Equal(t, 4, e.Snapshot().Menu.Index)

	require.NoError(t, e.MenuAction(ctx, ActionActivate, ""))
	d, _ = e.Route(id)
	require.NotNil(t, d.ActiveIndex)
	assert.Equal(t, target, d.Waypoints[*d.ActiveIndex].Coord)

	require.NoError(t, e.OpenWaypointMenu(ctx, id, 2))
	require.NoError(t, e.DeleteWaypoint(ctx, id, 2))
	assert.Nil(t, e.Snapshot().Menu)
	assert.ErrorIs(t, e.MenuAction(ctx, ActionDelete, ""), models.ErrInvalidState)
	d2, _ := e.Route(id)
	assert.Len(t, d2.Waypoints, 8)
}

func TestAnchorDrag_ClosesWaypointMenu(t *testing.T) {
	e, _, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	require.NoError(t, e.OpenWaypointMenu(ctx, id, 2))
	require.NoError(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointStart}))
	require.NoError(t, e.DragTo(ctx, geo.Coord{Lat: 43.190, Lng: 27.890}))
	assert.Nil(t, e.Snapshot().Menu)

	ref, ok := e.Dragging()
	require.True(t, ok)
	assert.Equal(t, models.PointStart, ref.Kind)
}

func TestSetVisible_HidingReleasesDrag(t *testing.T) {
	e, scene, _ := newEditor(t)
	ctx := context.Background()
	id := readyRoute(t, e)

	require.NoError(t, e.BeginDrag(ctx, models.PointRef{RouteID: id, Kind: models.PointEnd}))
	require.NoError(t, e.SetVisible(ctx, id, true))
	_, ok := e.Dragging()
	assert.True(t, ok, "showing a route keeps the drag")

	require.NoError(t, e.SetVisible(ctx, id, false))
	_, ok = e.Dragging()
	assert.False(t, ok)
	assert.True(t, scene.PanEnabled())
	assert.ErrorIs(t, e.DragTo(ctx, geo.Coord{Lat: 43.3, Lng: 28.0}), models.ErrInvalidState)
}
