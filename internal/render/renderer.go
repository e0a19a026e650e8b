// Package render derives every visual artifact of the route collection and
// hands it to a Renderer.
package render

import (
	"route_tracker/internal/geo"
	"route_tracker/internal/models"
)

// Handle identifies one drawn layer.
type Handle int64

// MarkerKind is the marker shape.
type MarkerKind string

const (
	MarkerPin    MarkerKind = "pin"    // anchors
	MarkerCircle MarkerKind = "circle" // waypoints
)

// LineKind tells base lines from progress overlays.
type LineKind string

const (
	LineRoute    LineKind = "route"
	LineProgress LineKind = "progress"
)

// EventType is a pointer event raised on a layer.
type EventType string

const (
	EventDragStart   EventType = "dragstart"
	EventContextMenu EventType = "contextmenu"
)

// EventFunc handles a layer event at the given map position.
type EventFunc func(at geo.Coord)

// Style is the stroke and fill color of a marker.
type Style struct {
	Color     string `json:"color"`
	FillColor string `json:"fill_color,omitempty"`
}

type MarkerOptions struct {
	Kind      MarkerKind
	Draggable bool
	Style     Style
	Ref       models.PointRef
}

type LineOptions struct {
	Kind        LineKind
	RouteID     int64
	Color       string
	Weight      int
	Interactive bool
}

// Renderer is the drawing surface. Handles are only valid until removed.
type Renderer interface {
	PlaceMarker(at geo.Coord, opts MarkerOptions) Handle
	BindLabel(h Handle, text string, persistent bool)
	SetStyle(h Handle, s Style)
	DrawLine(points []geo.Coord, opts LineOptions) Handle
	RemoveLayer(h Handle)
	OnEvent(h Handle, ev EventType, fn EventFunc)
	DisablePan()
	EnablePan()
	ShowInfo(info Info)
	// Flush ends a render pass.
	Flush()
}
