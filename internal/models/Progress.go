package models

import (
	"fmt"

	"route_tracker/internal/geo"
)

// Split is the distance breakdown of a route in meters. Elapsed and
// Remaining are nil when no progress is recorded.
type Split struct {
	Total     float64  `json:"total"`
	Elapsed   *float64 `json:"elapsed"`
	Remaining *float64 `json:"remaining"`
}

// Activate records index as the last passed waypoint.
func (r *Route) Activate(index int) error {
	if len(r.Waypoints) == 0 {
		return fmt.Errorf("route %d has no waypoints: %w", r.ID, ErrInvalidState)
	}
	if err := r.checkIndex(index); err != nil {
		return err
	}
	r.ActiveIndex = &index
	return nil
}

// ClearProgress forgets the recorded progress.
func (r *Route) ClearProgress() {
	r.ActiveIndex = nil
}

// ElapsedSubpath returns start plus every waypoint up to and including the
// active one. It is empty without progress.
func (r *Route) ElapsedSubpath() []geo.Coord {
	if r.ActiveIndex == nil {
		return nil
	}
	pts := make([]geo.Coord, 0, *r.ActiveIndex+2)
	if r.Start != nil {
		pts = append(pts, r.Start.Coord)
	}
	for _, w := range r.Waypoints[:*r.ActiveIndex+1] {
		pts = append(pts, w.Coord)
	}
	return pts
}

// SplitDistances measures the full path and, with progress, the elapsed and
// remaining parts.
func (r *Route) SplitDistances() Split {
	s := Split{Total: geo.PathDistance(r.Path())}
	if r.ActiveIndex == nil {
		return s
	}
	elapsed := geo.PathDistance(r.ElapsedSubpath())
	remaining := s.Total - elapsed
	s.Elapsed = &elapsed
	s.Remaining = &remaining
	return s
}
