package persist

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_tracker/internal/geo"
	"route_tracker/internal/models"
	"route_tracker/internal/storage"
)

func sampleCollection(t *testing.T) *models.Collection {
	t.Helper()
	c := models.NewCollection()

	a := c.CreateRoute()
	require.NoError(t, a.SetAnchor(models.RoleStart, geo.Coord{Lat: 43.2, Lng: 27.9}))
	require.NoError(t, a.SetAnchor(models.RoleEnd, geo.Coord{Lat: 43.22, Lng: 27.93}))
	require.NoError(t, a.RenameWaypoint(1, "Lighthouse"))
	require.NoError(t, a.MoveWaypoint(2, geo.Coord{Lat: 43.2071, Lng: 27.9112}))
	require.NoError(t, a.Activate(5))

	b := c.CreateRoute()
	require.NoError(t, b.Rename("Evening walk"))
	require.NoError(t, b.SetAnchor(models.RoleStart, geo.Coord{Lat: -33.8688, Lng: 151.2093}))
	b.Visible = false

	c.CreateRoute()
	return c
}

func TestRoundTrip(t *testing.T) {
	c := sampleCollection(t)
	c.MenuTarget = &models.MenuTarget{Kind: models.MenuWaypoint, RouteID: c.Routes[0].ID, Index: 2}

	blob, err := Serialize(c)
	require.NoError(t, err)

	routes, err := Deserialize(blob)
	require.NoError(t, err)
	assert.Equal(t, c.Routes, routes)
}

func TestSerialize_RecordShape(t *testing.T) {
	c := sampleCollection(t)
	blob, err := Serialize(c)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &raw))
	require.Len(t, raw, 3)

	first := raw[0]
	for _, key := range []string{"id", "name", "visible", "color", "start", "end", "mid", "activeIndex"} {
		assert.Contains(t, first, key)
	}
	assert.Equal(t, float64(5), first["activeIndex"])
	mid := first["mid"].([]any)
	assert.Equal(t, "Lighthouse", mid[1].(map[string]any)["name"])

	second := raw[1]
	assert.Nil(t, second["end"])
	assert.Nil(t, second["activeIndex"])
	assert.Equal(t, false, second["visible"])
	assert.Empty(t, second["mid"])
}

func TestDeserialize_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":         `{{{`,
		"object not list":  `{"id": 1}`,
		"wrong type":       `[{"id": "one", "color": "#FFFFFF"}]`,
		"missing id":       `[{"name": "a", "color": "#FFFFFF", "mid": []}]`,
		"bad color":        `[{"id": 1, "color": "green", "mid": []}]`,
		"end only":         `[{"id": 1, "color": "#00FF00", "end": {"lat": 1, "lng": 2}, "mid": []}]`,
		"lat out of range": `[{"id": 1, "color": "#00FF00", "start": {"lat": 123, "lng": 2}, "mid": []}]`,
		"waypoint no lng":  `[{"id": 1, "color": "#00FF00", "mid": [{"lat": 1}]}]`,
		"duplicate ids":    `[{"id": 1, "color": "#00FF00", "mid": []}, {"id": 1, "color": "#0000FF", "mid": []}]`,
	}

	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			routes, err := Deserialize(blob)
			assert.ErrorIs(t, err, ErrCorruptData)
			assert.Nil(t, routes)
		})
	}
}

func TestDeserialize_EmptyIsNoState(t *testing.T) {
	for _, blob := range []string{"", "  ", "null", "[]"} {
		routes, err := Deserialize(blob)
		require.NoError(t, err)
		assert.Empty(t, routes)
	}
}

func TestDeserialize_LegacyRegeneratesWaypoints(t *testing.T) {
	blob := `[{"id": 1700000000000, "name": "Old", "visible": true, "color": "#abcdef",
		"start": {"lat": 43.2, "lng": 27.9}, "end": {"lat": 43.22, "lng": 27.93}}]`

	routes, err := Deserialize(blob)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Len(t, routes[0].Waypoints, 10)
	assert.Equal(t, "#abcdef", routes[0].Color)
}

func TestDeserialize_KeepsHandEditedWaypoints(t *testing.T) {
	blob := `[{"id": 1, "name": "Edited", "visible": true, "color": "#ABCDEF",
		"start": {"lat": 43.2, "lng": 27.9}, "end": {"lat": 43.22, "lng": 27.93},
		"mid": [{"lat": 43.21, "lng": 27.95, "name": "Detour"}], "activeIndex": 0}]`

	routes, err := Deserialize(blob)
	require.NoError(t, err)
	require.Len(t, routes[0].Waypoints, 1)
	assert.Equal(t, "Detour", routes[0].Waypoints[0].Name)
	assert.Equal(t, 0, *routes[0].ActiveIndex)
}

func TestDeserialize_DropsStaleActiveIndex(t *testing.T) {
	blob := `[{"id": 1, "name": "r", "visible": true, "color": "#ABCDEF",
		"start": {"lat": 43.2, "lng": 27.9}, "end": {"lat": 43.22, "lng": 27.93},
		"mid": [{"lat": 43.21, "lng": 27.91, "name": ""}], "activeIndex": 4}]`

	routes, err := Deserialize(blob)
	require.NoError(t, err)
	assert.Nil(t, routes[0].ActiveIndex)
}

func TestSaver(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	saver := NewSaver(store)

	routes, err := saver.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, routes)

	c := sampleCollection(t)
	require.NoError(t, saver.Save(ctx, c))

	routes, err = saver.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Routes, routes)

	require.NoError(t, store.Set(ctx, StorageKey, "garbage"))
	_, err = saver.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptData)

	require.NoError(t, saver.Clear(ctx))
	_, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
