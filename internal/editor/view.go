package editor

import (
	"route_tracker/internal/geo"
	"route_tracker/internal/models"
	"route_tracker/internal/render"
)

// RouteSummary is one row of the sidebar list.
type RouteSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Visible     bool   `json:"visible"`
	Selected    bool   `json:"selected"`
	State       string `json:"state"`
	Waypoints   int    `json:"waypoints"`
	ActiveIndex *int   `json:"active_index,omitempty"`
}

// Snapshot is a read-only copy of what the page shows.
type Snapshot struct {
	Routes   []RouteSummary     `json:"routes"`
	Selected int64              `json:"selected"`
	Menu     *models.MenuTarget `json:"menu,omitempty"`
	Dragging *models.PointRef   `json:"dragging,omitempty"`
	Speed    float64            `json:"speed_kmh"`
	Info     render.Info        `json:"info"`
}

// RouteDetail is a copy of one route with its points.
type RouteDetail struct {
	RouteSummary
	Start     *geo.Coord        `json:"start"`
	End       *geo.Coord        `json:"end"`
	Waypoints []models.Waypoint `json:"waypoints"`
}

func summarize(r *models.Route, selected int64) RouteSummary {
	s := RouteSummary{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		Visible:   r.Visible,
		Selected:  r.ID == selected,
		State:     r.State().String(),
		Waypoints: len(r.Waypoints),
	}
	if r.ActiveIndex != nil {
		i := *r.ActiveIndex
		s.ActiveIndex = &i
	}
	return s
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Routes:   make([]RouteSummary, 0, len(e.routes.Routes)),
		Selected: e.routes.Selected,
		Speed:    e.speed,
		Info:     e.info,
	}
	for _, r := range e.routes.Routes {
		snap.Routes = append(snap.Routes, summarize(r, e.routes.Selected))
	}
	if t := e.routes.MenuTarget; t != nil {
		m := *t
		snap.Menu = &m
	}
	if e.drag != nil {
		d := *e.drag
		snap.Dragging = &d
	}
	return snap
}

// Info returns the info panel of the last render pass.
func (e *Editor) Info() render.Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info
}

// Route returns a copy of route id.
func (e *Editor) Route(id int64) (RouteDetail, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.routes.Route(id)
	if err != nil {
		return RouteDetail{}, err
	}
	d := RouteDetail{
		RouteSummary: summarize(r, e.routes.Selected),
		Waypoints:    make([]models.Waypoint, len(r.Waypoints)),
	}
	copy(d.Waypoints, r.Waypoints)
	if r.Start != nil {
		c := r.Start.Coord
		d.Start = &c
	}
	if r.End != nil {
		c := r.End.Coord
		d.End = &c
	}
	return d, nil
}
