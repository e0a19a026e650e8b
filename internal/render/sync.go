package render

import (
	"route_tracker/internal/geo"
	"route_tracker/internal/models"
)

const (
	progressColor     = "green"
	visitedFillColor  = "lightgreen"
	waypointFillColor = "#fff"
	routeLineWeight   = 3
	progressWeight    = 5
	defaultPointLabel = "Point"
)

// Handlers receive the marker events bound during a render pass.
type Handlers struct {
	DragStart   func(ref models.PointRef)
	ContextMenu func(ref models.PointRef)
}

// Synchronizer redraws the whole collection on every call. It remembers the
// handles of the previous pass so nothing drawn earlier survives.
type Synchronizer struct {
	r        Renderer
	handlers Handlers
	drawn    map[int64][]Handle
}

func NewSynchronizer(r Renderer, h Handlers) *Synchronizer {
	return &Synchronizer{
		r:        r,
		handlers: h,
		drawn:    make(map[int64][]Handle),
	}
}

// Sync removes the previous pass, draws every visible route, shows the info
// panel of the selected route and flushes. It is safe to call after any
// mutation.
func (s *Synchronizer) Sync(c *models.Collection, speed float64) Info {
	for id, handles := range s.drawn {
		for _, h := range handles {
			s.r.RemoveLayer(h)
		}
		delete(s.drawn, id)
	}

	for _, route := range c.Routes {
		if !route.Visible {
			continue
		}
		s.drawn[route.ID] = s.drawRoute(route)
	}

	info := BuildInfo(c.SelectedRoute(), speed)
	s.r.ShowInfo(info)
	s.r.Flush()
	return info
}

func (s *Synchronizer) drawRoute(route *models.Route) []Handle {
	var handles []Handle

	if path := route.Path(); len(path) >= 2 {
		handles = append(handles, s.r.DrawLine(path, LineOptions{
			Kind:    LineRoute,
			RouteID: route.ID,
			Color:   route.Color,
			Weight:  routeLineWeight,
		}))
	}
	if elapsed := route.ElapsedSubpath(); len(elapsed) >= 2 {
		handles = append(handles, s.r.DrawLine(elapsed, LineOptions{
			Kind:    LineProgress,
			RouteID: route.ID,
			Color:   progressColor,
			Weight:  progressWeight,
		}))
	}

	for _, a := range []*models.Anchor{route.Start, route.End} {
		if a == nil {
			continue
		}
		ref := models.PointRef{RouteID: route.ID, Kind: models.PointKind(a.Role)}
		h := s.r.PlaceMarker(a.Coord, MarkerOptions{
			Kind:      MarkerPin,
			Draggable: true,
			Style:     Style{Color: route.Color},
			Ref:       ref,
		})
		s.r.BindLabel(h, a.Role.Label(), true)
		s.bind(h, ref)
		handles = append(handles, h)
	}

	for i, w := range route.Waypoints {
		ref := models.PointRef{RouteID: route.ID, Kind: models.PointWaypoint, Index: i}
		h := s.r.PlaceMarker(w.Coord, MarkerOptions{
			Kind:      MarkerCircle,
			Draggable: true,
			Style:     Style{Color: route.Color, FillColor: waypointFillColor},
			Ref:       ref,
		})
		if route.ActiveIndex != nil && i <= *route.ActiveIndex {
			s.r.SetStyle(h, Style{Color: progressColor, FillColor: visitedFillColor})
		}
		label := w.Name
		if label == "" {
			label = defaultPointLabel
		}
		s.r.BindLabel(h, label, false)
		s.bind(h, ref)
		s.r.OnEvent(h, EventContextMenu, func(geo.Coord) {
			if s.handlers.ContextMenu != nil {
				s.handlers.ContextMenu(ref)
			}
		})
		handles = append(handles, h)
	}
	return handles
}

func (s *Synchronizer) bind(h Handle, ref models.PointRef) {
	s.r.OnEvent(h, EventDragStart, func(geo.Coord) {
		if s.handlers.DragStart != nil {
			s.handlers.DragStart(ref)
		}
	})
}
