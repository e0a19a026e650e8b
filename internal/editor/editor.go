// Package editor turns user gestures into model mutations. Every exported
// call is one turn: mutate, redraw, save.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"route_tracker/internal/geo"
	"route_tracker/internal/models"
	"route_tracker/internal/persist"
	"route_tracker/internal/render"
)

// DefaultSpeed is the travel speed in km/h used when none is configured.
const DefaultSpeed = 5.0

type Editor struct {
	mu       sync.Mutex
	routes   *models.Collection
	syncer   *render.Synchronizer
	saver    *persist.Saver
	renderer render.Renderer
	speed    float64
	drag     *models.PointRef
	info     render.Info
}

// New wires an editor to r. saver may be nil, in which case nothing is
// persisted.
func New(r render.Renderer, saver *persist.Saver, speed float64) *Editor {
	e := &Editor{
		routes:   models.NewCollection(),
		saver:    saver,
		renderer: r,
		speed:    speed,
		info:     render.Info{Name: render.NoRouteSelected},
	}
	e.syncer = render.NewSynchronizer(r, render.Handlers{
		DragStart: func(ref models.PointRef) {
			if err := e.BeginDrag(context.Background(), ref); err != nil {
				logrus.WithError(err).Debug("Editor: dragstart ignored")
			}
		},
		ContextMenu: func(ref models.PointRef) {
			if err := e.OpenWaypointMenu(context.Background(), ref.RouteID, ref.Index); err != nil {
				logrus.WithError(err).Debug("Editor: contextmenu ignored")
			}
		},
	})
	return e
}

// commit redraws and, when save is set, persists. Must hold e.mu.
func (e *Editor) commit(ctx context.Context, save bool) error {
	e.info = e.syncer.Sync(e.routes, e.speed)
	if !save || e.saver == nil {
		return nil
	}
	if err := e.saver.Save(ctx, e.routes); err != nil {
		logrus.WithError(err).Error("Editor: failed to save routes")
		return err
	}
	return nil
}

func reject(op string, err error) error {
	logrus.WithFields(logrus.Fields{"op": op}).WithError(err).Debug("Editor: rejected")
	return err
}

// Load restores the saved collection. Corrupt data is logged and replaced by
// an empty collection; nothing is written back.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var routes []*models.Route
	if e.saver != nil {
		var err error
		routes, err = e.saver.Load(ctx)
		switch {
		case errors.Is(err, persist.ErrCorruptData):
			logrus.WithError(err).Warn("Editor: saved routes unreadable, starting empty")
			routes = nil
		case err != nil:
			logrus.WithError(err).Error("Editor: failed to load routes")
			return err
		}
	}

	e.releaseDrag()
	e.routes.Replace(routes)
	logrus.WithFields(logrus.Fields{
		"routes":   len(routes),
		"selected": e.routes.Selected,
	}).Info("Editor: routes loaded")
	return e.commit(ctx, false)
}

// NewRoute appends an empty route and selects it.
func (e *Editor) NewRoute(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.routes.CreateRoute()
	return r.ID, e.commit(ctx, true)
}

// ClearAll drops every route and removes the saved state.
func (e *Editor) ClearAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseDrag()
	e.routes.Clear()
	e.info = e.syncer.Sync(e.routes, e.speed)
	if e.saver == nil {
		return nil
	}
	if err := e.saver.Clear(ctx); err != nil {
		logrus.WithError(err).Error("Editor: failed to clear saved routes")
		return err
	}
	return nil
}

// ResetProgress clears progress on every route.
func (e *Editor) ResetProgress(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routes.ClearAllProgress()
	return e.commit(ctx, true)
}

// SetSpeed changes the travel speed used for time estimates. Any value is
// accepted; a non-positive speed shows the placeholder.
func (e *Editor) SetSpeed(ctx context.Context, kmh float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = kmh
	return e.commit(ctx, false)
}

func (e *Editor) Select(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.routes.Select(id); err != nil {
		return reject("select", err)
	}
	return e.commit(ctx, false)
}

func (e *Editor) SetVisible(ctx context.Context, id int64, visible bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.routes.Route(id)
	if err != nil {
		return reject("set_visible", err)
	}
	r.Visible = visible
	if !visible && e.drag != nil && e.drag.RouteID == id {
		e.releaseDrag()
	}
	return e.commit(ctx, true)
}

func (e *Editor) RenameRoute(ctx context.Context, id int64, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.routes.Route(id)
	if err != nil {
		return reject("rename_route", err)
	}
	if err := r.Rename(name); err != nil {
		return reject("rename_route", err)
	}
	return e.commit(ctx, true)
}

func (e *Editor) DeleteRoute(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteRoute(ctx, id)
}

func (e *Editor) deleteRoute(ctx context.Context, id int64) error {
	if err := e.routes.DeleteRoute(id); err != nil {
		return reject("delete_route", err)
	}
	if e.drag != nil && e.drag.RouteID == id {
		e.releaseDrag()
	}
	return e.commit(ctx, true)
}

// MapClick places the next anchor of the selected route. Clicks with no
// selection or on a hidden route are ignored.
func (e *Editor) MapClick(ctx context.Context, at geo.Coord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !at.Valid() {
		return reject("map_click", fmt.Errorf("%v: %w", at, models.ErrInvalidCoord))
	}
	r := e.routes.SelectedRoute()
	if r == nil || !r.Visible {
		return nil
	}

	var err error
	switch r.State() {
	case models.StateEmpty:
		err = r.SetAnchor(models.RoleStart, at)
	case models.StateAwaitingEnd:
		err = r.SetAnchor(models.RoleEnd, at)
	default:
		err = fmt.Errorf("route %d already has both anchors: %w", r.ID, models.ErrInvalidState)
	}
	if err != nil {
		return reject("map_click", err)
	}
	return e.commit(ctx, true)
}
