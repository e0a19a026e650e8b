package editor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"route_tracker/internal/geo"
	"route_tracker/internal/models"
)

// BeginDrag starts dragging ref. Map panning stays disabled until EndDrag.
func (e *Editor) BeginDrag(ctx context.Context, ref models.PointRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.drag != nil {
		return reject("begin_drag", fmt.Errorf("drag already active: %w", models.ErrInvalidState))
	}
	r, err := e.routes.Route(ref.RouteID)
	if err != nil {
		return reject("begin_drag", err)
	}
	if role, ok := ref.Role(); ok {
		if r.Anchor(role) == nil {
			return reject("begin_drag", fmt.Errorf("no %s anchor: %w", role, models.ErrInvalidState))
		}
	} else if ref.Kind != models.PointWaypoint {
		return reject("begin_drag", fmt.Errorf("unknown point kind %q: %w", ref.Kind, models.ErrInvalidState))
	} else if ref.Index < 0 || ref.Index >= len(r.Waypoints) {
		return reject("begin_drag", fmt.Errorf("waypoint %d: %w", ref.Index, models.ErrIndexOutOfRange))
	}

	e.drag = &ref
	e.renderer.DisablePan()
	logrus.WithFields(logrus.Fields{
		"route_id": ref.RouteID,
		"kind":     ref.Kind,
		"index":    ref.Index,
	}).Debug("Editor: drag started")
	return e.commit(ctx, false)
}

// DragTo moves the dragged point to at and saves. Anchor moves regenerate
// the waypoints.
func (e *Editor) DragTo(ctx context.Context, at geo.Coord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.drag == nil {
		return reject("drag_to", fmt.Errorf("no drag active: %w", models.ErrInvalidState))
	}
	if !at.Valid() {
		return reject("drag_to", fmt.Errorf("%v: %w", at, models.ErrInvalidCoord))
	}
	r, err := e.routes.Route(e.drag.RouteID)
	if err != nil {
		return reject("drag_to", err)
	}
	if role, ok := e.drag.Role(); ok {
		if err = r.MoveAnchor(role, at); err == nil {
			e.retarget(r.ID, regenerated)
		}
	} else {
		err = r.MoveWaypoint(e.drag.Index, at)
	}
	if err != nil {
		return reject("drag_to", err)
	}
	return e.commit(ctx, true)
}

// EndDrag releases the drag, re-enables panning and saves. Calling it with
// no drag active does nothing.
func (e *Editor) EndDrag(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return nil
	}
	e.releaseDrag()
	return e.commit(ctx, true)
}

// Dragging reports the point being dragged, if any.
func (e *Editor) Dragging() (models.PointRef, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return models.PointRef{}, false
	}
	return *e.drag, true
}

// releaseDrag must be called with e.mu held.
func (e *Editor) releaseDrag() {
	if e.drag == nil {
		return
	}
	e.drag = nil
	e.renderer.EnablePan()
}
