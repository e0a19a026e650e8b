package models

import (
	"route_tracker/internal/geo"
)

// Waypoint is an intermediate, user-editable point between a route's anchors.
// Name is the optional label set through rename; empty means unlabelled.
type Waypoint struct {
	Coord geo.Coord `json:"coord"`
	Name  string    `json:"name"`
}

// Role tells the two anchors of a route apart.
type Role string

const (
	RoleStart Role = "start"
	RoleEnd   Role = "end"
)

// Label is the permanent tooltip text shown on an anchor marker.
func (r Role) Label() string {
	if r == RoleEnd {
		return "End"
	}
	return "Start"
}

// Anchor is the start or end point of a route. RouteID links the anchor
// back to the route that owns it.
type Anchor struct {
	RouteID int64     `json:"route_id"`
	Role    Role      `json:"role"`
	Coord   geo.Coord `json:"coord"`
}

// PointKind tells which kind of route point a PointRef names.
type PointKind string

const (
	PointStart    PointKind = "start"
	PointEnd      PointKind = "end"
	PointWaypoint PointKind = "waypoint"
)

// PointRef names a single point of a route: one of its anchors, or the
// waypoint at Index.
type PointRef struct {
	RouteID int64     `json:"route_id"`
	Kind    PointKind `json:"kind"`
	Index   int       `json:"index"`
}

// Role returns the anchor role for anchor refs.
func (p PointRef) Role() (Role, bool) {
	switch p.Kind {
	case PointStart:
		return RoleStart, true
	case PointEnd:
		return RoleEnd, true
	}
	return "", false
}
