package models

import (
	"fmt"
	"strings"

	"route_tracker/internal/geo"
)

// State is the editing stage a route is in.
type State int

const (
	StateEmpty       State = iota // no start
	StateAwaitingEnd              // start only
	StateReady                    // start and end
	StateActive                   // ready with progress recorded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateAwaitingEnd:
		return "AWAITING_END"
	case StateReady:
		return "READY"
	case StateActive:
		return "ACTIVE"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Route is a named, colored travel path drawn by the user.
// Waypoints are ordered from start to end; ActiveIndex indexes into them.
type Route struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Start       *Anchor    `json:"start,omitempty"`
	End         *Anchor    `json:"end,omitempty"`
	Waypoints   []Waypoint `json:"waypoints"`
	Color       string     `json:"color"`
	Visible     bool       `json:"visible"`
	ActiveIndex *int       `json:"active_index"`
}

// State derives the editing stage from anchors and progress.
func (r *Route) State() State {
	switch {
	case r.Start == nil:
		return StateEmpty
	case r.End == nil:
		return StateAwaitingEnd
	case r.ActiveIndex != nil:
		return StateActive
	}
	return StateReady
}

// Path returns the full ordered path: start, waypoints, end. Missing
// anchors are left out.
func (r *Route) Path() []geo.Coord {
	pts := make([]geo.Coord, 0, len(r.Waypoints)+2)
	if r.Start != nil {
		pts = append(pts, r.Start.Coord)
	}
	for _, w := range r.Waypoints {
		pts = append(pts, w.Coord)
	}
	if r.End != nil {
		pts = append(pts, r.End.Coord)
	}
	return pts
}

// Anchor returns the anchor for role, or nil.
func (r *Route) Anchor(role Role) *Anchor {
	if role == RoleEnd {
		return r.End
	}
	return r.Start
}

// SetAnchor places an anchor for the first time. Placement only moves
// forward: start, then end. Placing the end generates waypoints.
func (r *Route) SetAnchor(role Role, c geo.Coord) error {
	switch role {
	case RoleStart:
		if r.Start != nil {
			return fmt.Errorf("start already placed: %w", ErrInvalidState)
		}
		r.Start = &Anchor{RouteID: r.ID, Role: RoleStart, Coord: c}
	case RoleEnd:
		if r.Start == nil {
			return fmt.Errorf("end before start: %w", ErrInvalidState)
		}
		if r.End != nil {
			return fmt.Errorf("end already placed: %w", ErrInvalidState)
		}
		r.End = &Anchor{RouteID: r.ID, Role: RoleEnd, Coord: c}
		r.RegenerateWaypoints()
	default:
		return fmt.Errorf("unknown anchor role %q: %w", role, ErrInvalidState)
	}
	return nil
}

// MoveAnchor overwrites an existing anchor (the drag path) and regenerates
// the waypoints between the anchors.
func (r *Route) MoveAnchor(role Role, c geo.Coord) error {
	a := r.Anchor(role)
	if a == nil {
		return fmt.Errorf("no %s anchor to move: %w", role, ErrInvalidState)
	}
	a.Coord = c
	r.RegenerateWaypoints()
	return nil
}

// RegenerateWaypoints discards the current waypoints and, when both anchors
// exist, generates evenly spaced ones. Progress is cleared because the old
// indices no longer name the same points.
func (r *Route) RegenerateWaypoints() {
	r.Waypoints = nil
	r.ActiveIndex = nil
	if r.Start == nil || r.End == nil {
		return
	}
	for _, c := range geo.GenerateWaypoints(r.Start.Coord, r.End.Coord) {
		r.Waypoints = append(r.Waypoints, Waypoint{Coord: c})
	}
}

// InsertWaypoint inserts c at index, clamped to [0, len(Waypoints)].
// An active index at or after the insertion point shifts up so it keeps
// naming the same waypoint.
func (r *Route) InsertWaypoint(index int, c geo.Coord) int {
	if index < 0 {
		index = 0
	}
	if index > len(r.Waypoints) {
		index = len(r.Waypoints)
	}
	r.Waypoints = append(r.Waypoints, Waypoint{})
	copy(r.Waypoints[index+1:], r.Waypoints[index:])
	r.Waypoints[index] = Waypoint{Coord: c}

	if r.ActiveIndex != nil && index <= *r.ActiveIndex {
		shifted := *r.ActiveIndex + 1
		r.ActiveIndex = &shifted
	}
	return index
}

// AddBefore inserts a waypoint halfway between waypoint index and its
// predecessor, or the start anchor when index is the first waypoint.
func (r *Route) AddBefore(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	var neighbor geo.Coord
	switch {
	case index > 0:
		neighbor = r.Waypoints[index-1].Coord
	case r.Start != nil:
		neighbor = r.Start.Coord
	default:
		return fmt.Errorf("no neighbor before waypoint %d: %w", index, ErrInvalidState)
	}
	r.InsertWaypoint(index, geo.Midpoint(r.Waypoints[index].Coord, neighbor))
	return nil
}

// AddAfter inserts a waypoint halfway between waypoint index and its
// successor, or the end anchor when index is the last waypoint.
func (r *Route) AddAfter(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	var neighbor geo.Coord
	switch {
	case index+1 < len(r.Waypoints):
		neighbor = r.Waypoints[index+1].Coord
	case r.End != nil:
		neighbor = r.End.Coord
	default:
		return fmt.Errorf("no neighbor after waypoint %d: %w", index, ErrInvalidState)
	}
	r.InsertWaypoint(index+1, geo.Midpoint(r.Waypoints[index].Coord, neighbor))
	return nil
}

// DeleteWaypoint removes the waypoint at index.
//
// Progress follows the waypoint that was activated: deleting an earlier
// waypoint shifts the active index down, deleting the activated waypoint
// itself clears progress, deleting a later one leaves it alone.
func (r *Route) DeleteWaypoint(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	r.Waypoints = append(r.Waypoints[:index], r.Waypoints[index+1:]...)
	if len(r.Waypoints) == 0 {
		r.Waypoints = nil
	}

	if r.ActiveIndex != nil {
		switch active := *r.ActiveIndex; {
		case index < active:
			shifted := active - 1
			r.ActiveIndex = &shifted
		case index == active:
			r.ActiveIndex = nil
		}
	}
	return nil
}

// MoveWaypoint repositions the waypoint at index. Progress is kept.
func (r *Route) MoveWaypoint(index int, c geo.Coord) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	r.Waypoints[index].Coord = c
	return nil
}

// RenameWaypoint labels the waypoint at index. Blank labels are rejected.
func (r *Route) RenameWaypoint(index int, label string) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyInput
	}
	r.Waypoints[index].Name = label
	return nil
}

// Rename sets the display name. Blank names are rejected.
func (r *Route) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyInput
	}
	r.Name = name
	return nil
}

func (r *Route) checkIndex(index int) error {
	if index < 0 || index >= len(r.Waypoints) {
		return fmt.Errorf("route %d waypoint %d of %d: %w", r.ID, index, len(r.Waypoints), ErrIndexOutOfRange)
	}
	return nil
}
