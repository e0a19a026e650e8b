package editor

import (
	"context"
	"fmt"

	"route_tracker/internal/models"
)

// MenuAction is an entry of a context menu.
type MenuAction string

const (
	ActionActivate    MenuAction = "activate"
	ActionAddBefore   MenuAction = "add-before"
	ActionAddAfter    MenuAction = "add-after"
	ActionDelete      MenuAction = "delete"
	ActionRename      MenuAction = "rename"
	ActionRenameRoute MenuAction = "rename-route"
	ActionDeleteRoute MenuAction = "delete-route"
)

// routeOp runs fn on route id under the lock and commits on success.
func (e *Editor) routeOp(ctx context.Context, op string, id int64, fn func(r *models.Route) error) error {
	r, err := e.routes.Route(id)
	if err != nil {
		return reject(op, err)
	}
	if err := fn(r); err != nil {
		return reject(op, err)
	}
	return e.commit(ctx, true)
}

// Activate marks waypoint index as the last one reached.
func (e *Editor) Activate(ctx context.Context, id int64, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routeOp(ctx, "activate", id, func(r *models.Route) error {
		return r.Activate(index)
	})
}

func (e *Editor) AddBefore(ctx context.Context, id int64, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routeOp(ctx, "add_before", id, func(r *models.Route) error {
		return e.addBefore(r, index)
	})
}

func (e *Editor) AddAfter(ctx context.Context, id int64, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routeOp(ctx, "add_after", id, func(r *models.Route) error {
		return e.addAfter(r, index)
	})
}

func (e *Editor) DeleteWaypoint(ctx context.Context, id int64, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routeOp(ctx, "delete_waypoint", id, func(r *models.Route) error {
		return e.deleteWaypoint(r, index)
	})
}

func (e *Editor) addBefore(r *models.Route, index int) error {
	if err := r.AddBefore(index); err != nil {
		return err
	}
	e.retarget(r.ID, inserted(index))
	return nil
}

func (e *Editor) addAfter(r *models.Route, index int) error {
	if err := r.AddAfter(index); err != nil {
		return err
	}
	e.retarget(r.ID, inserted(index+1))
	return nil
}

func (e *Editor) deleteWaypoint(r *models.Route, index int) error {
	if err := r.DeleteWaypoint(index); err != nil {
		return err
	}
	e.retarget(r.ID, deleted(index))
	return nil
}

// shiftFunc maps a waypoint index from before an edit to after it. ok is
// false when that waypoint no longer exists.
type shiftFunc func(index int) (shifted int, ok bool)

func inserted(at int) shiftFunc {
	return func(i int) (int, bool) {
		if i >= at {
			return i + 1, true
		}
		return i, true
	}
}

func deleted(at int) shiftFunc {
	return func(i int) (int, bool) {
		switch {
		case i < at:
			return i, true
		case i == at:
			return 0, false
		}
		return i - 1, true
	}
}

func regenerated(int) (int, bool) { return 0, false }

// retarget keeps the drag and the waypoint menu on the same waypoint after
// the waypoints of route id changed, and drops them when it is gone. Must
// hold e.mu.
func (e *Editor) retarget(id int64, shift shiftFunc) {
	if d := e.drag; d != nil && d.RouteID == id && d.Kind == models.PointWaypoint {
		if i, ok := shift(d.Index); ok {
			d.Index = i
		} else {
			e.releaseDrag()
		}
	}
	if t := e.routes.MenuTarget; t != nil && t.RouteID == id && t.Kind == models.MenuWaypoint {
		if i, ok := shift(t.Index); ok {
			t.Index = i
		} else {
			e.routes.MenuTarget = nil
		}
	}
}

func (e *Editor) RenameWaypoint(ctx context.Context, id int64, index int, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routeOp(ctx, "rename_waypoint", id, func(r *models.Route) error {
		return r.RenameWaypoint(index, name)
	})
}

// OpenWaypointMenu records the waypoint a context menu was opened on.
func (e *Editor) OpenWaypointMenu(ctx context.Context, id int64, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.routes.Route(id)
	if err != nil {
		return reject("open_waypoint_menu", err)
	}
	if index < 0 || index >= len(r.Waypoints) {
		return reject("open_waypoint_menu", fmt.Errorf("waypoint %d: %w", index, models.ErrIndexOutOfRange))
	}
	e.routes.MenuTarget = &models.MenuTarget{Kind: models.MenuWaypoint, RouteID: id, Index: index}
	return e.commit(ctx, false)
}

// OpenRouteMenu selects route id and opens its context menu.
func (e *Editor) OpenRouteMenu(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.routes.Select(id); err != nil {
		return reject("open_route_menu", err)
	}
	e.routes.MenuTarget = &models.MenuTarget{Kind: models.MenuRoute, RouteID: id}
	return e.commit(ctx, false)
}

func (e *Editor) CloseMenu() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routes.MenuTarget = nil
}

func (e *Editor) menuTarget(kind models.MenuKind) (models.MenuTarget, error) {
	t := e.routes.MenuTarget
	if t == nil || t.Kind != kind {
		return models.MenuTarget{}, fmt.Errorf("no %s menu open: %w", kind, models.ErrInvalidState)
	}
	return *t, nil
}

// MenuAction applies action to whatever menu is open.
func (e *Editor) MenuAction(ctx context.Context, action MenuAction, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.routes.MenuTarget == nil {
		return reject("menu_action", fmt.Errorf("no menu open: %w", models.ErrInvalidState))
	}
	if e.routes.MenuTarget.Kind == models.MenuRoute {
		return e.routeMenuAction(ctx, action, name)
	}
	return e.waypointMenuAction(ctx, action, name)
}

// WaypointMenuAction applies action to the waypoint whose menu is open and
// closes the menu. name is used by ActionRename only.
func (e *Editor) WaypointMenuAction(ctx context.Context, action MenuAction, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waypointMenuAction(ctx, action, name)
}

func (e *Editor) waypointMenuAction(ctx context.Context, action MenuAction, name string) error {
	t, err := e.menuTarget(models.MenuWaypoint)
	if err != nil {
		return reject("waypoint_menu", err)
	}
	var fn func(r *models.Route) error
	switch action {
	case ActionActivate:
		fn = func(r *models.Route) error { return r.Activate(t.Index) }
	case ActionAddBefore:
		fn = func(r *models.Route) error { return e.addBefore(r, t.Index) }
	case ActionAddAfter:
		fn = func(r *models.Route) error { return e.addAfter(r, t.Index) }
	case ActionDelete:
		fn = func(r *models.Route) error { return e.deleteWaypoint(r, t.Index) }
	case ActionRename:
		fn = func(r *models.Route) error { return r.RenameWaypoint(t.Index, name) }
	default:
		return reject("waypoint_menu", fmt.Errorf("unknown waypoint action %q: %w", action, models.ErrInvalidState))
	}
	return e.routeOp(ctx, "waypoint_menu", t.RouteID, func(r *models.Route) error {
		if err := fn(r); err != nil {
			return err
		}
		e.routes.MenuTarget = nil
		return nil
	})
}

// RouteMenuAction renames or deletes the route whose menu is open.
func (e *Editor) RouteMenuAction(ctx context.Context, action MenuAction, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routeMenuAction(ctx, action, name)
}

func (e *Editor) routeMenuAction(ctx context.Context, action MenuAction, name string) error {
	t, err := e.menuTarget(models.MenuRoute)
	if err != nil {
		return reject("route_menu", err)
	}
	switch action {
	case ActionRenameRoute:
		return e.routeOp(ctx, "route_menu", t.RouteID, func(r *models.Route) error {
			if err := r.Rename(name); err != nil {
				return err
			}
			e.routes.MenuTarget = nil
			return nil
		})
	case ActionDeleteRoute:
		return e.deleteRoute(ctx, t.RouteID)
	}
	return reject("route_menu", fmt.Errorf("unknown route action %q: %w", action, models.ErrInvalidState))
}
