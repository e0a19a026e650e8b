package models

import (
	"fmt"
	"math/rand"
	"time"
)

// NoSelection is the Selected value when no route is selected.
const NoSelection int64 = 0

// MenuKind tells which context menu is open.
type MenuKind string

const (
	MenuWaypoint MenuKind = "waypoint"
	MenuRoute    MenuKind = "route"
)

// MenuTarget is what the open context menu acts on. Index is only
// meaningful for waypoint menus.
type MenuTarget struct {
	Kind    MenuKind `json:"kind"`
	RouteID int64    `json:"route_id"`
	Index   int      `json:"index"`
}

// Collection is the ordered set of routes in one session plus the
// ephemeral UI state. Selected and MenuTarget are never persisted.
type Collection struct {
	Routes     []*Route
	Selected   int64
	MenuTarget *MenuTarget

	// Now and Color are overridable for deterministic tests.
	Now   func() time.Time
	Color func() string

	lastID int64
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{
		Now:   time.Now,
		Color: RandomColor,
	}
}

// RandomColor returns a random "#RRGGBB" display color.
func RandomColor() string {
	return fmt.Sprintf("#%06X", rand.Intn(1<<24))
}

func (c *Collection) nextID() int64 {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	id := now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// CreateRoute appends a new empty route and selects it.
func (c *Collection) CreateRoute() *Route {
	color := RandomColor
	if c.Color != nil {
		color = c.Color
	}
	r := &Route{
		ID:      c.nextID(),
		Name:    fmt.Sprintf("Route %d", len(c.Routes)+1),
		Color:   color(),
		Visible: true,
	}
	c.Routes = append(c.Routes, r)
	c.Selected = r.ID
	return r
}

// Find returns the route with id and its position, or nil and -1.
func (c *Collection) Find(id int64) (*Route, int) {
	for i, r := range c.Routes {
		if r.ID == id {
			return r, i
		}
	}
	return nil, -1
}

// Route returns the route with id or ErrNotFound.
func (c *Collection) Route(id int64) (*Route, error) {
	r, _ := c.Find(id)
	if r == nil {
		return nil, fmt.Errorf("route %d: %w", id, ErrNotFound)
	}
	return r, nil
}

// SelectedRoute returns the selected route, or nil.
func (c *Collection) SelectedRoute() *Route {
	if c.Selected == NoSelection {
		return nil
	}
	r, _ := c.Find(c.Selected)
	return r
}

// Select makes id the selected route.
func (c *Collection) Select(id int64) error {
	if _, err := c.Route(id); err != nil {
		return err
	}
	c.Selected = id
	return nil
}

// DeleteRoute removes the route with id. A deleted selection moves to the
// first remaining route, or to none.
func (c *Collection) DeleteRoute(id int64) error {
	_, idx := c.Find(id)
	if idx < 0 {
		return fmt.Errorf("route %d: %w", id, ErrNotFound)
	}
	c.Routes = append(c.Routes[:idx], c.Routes[idx+1:]...)

	if c.Selected == id {
		c.Selected = NoSelection
		if len(c.Routes) > 0 {
			c.Selected = c.Routes[0].ID
		}
	}
	if c.MenuTarget != nil && c.MenuTarget.RouteID == id {
		c.MenuTarget = nil
	}
	return nil
}

// Clear drops every route and all UI state.
func (c *Collection) Clear() {
	c.Routes = nil
	c.Selected = NoSelection
	c.MenuTarget = nil
}

// ClearAllProgress forgets progress on every route.
func (c *Collection) ClearAllProgress() {
	for _, r := range c.Routes {
		r.ClearProgress()
	}
}

// Replace swaps in a restored set of routes. Selection goes to the first
// route with progress, else the first route.
func (c *Collection) Replace(routes []*Route) {
	c.Routes = routes
	c.MenuTarget = nil
	c.Selected = RestoreSelection(routes)
	for _, r := range routes {
		if r.ID > c.lastID {
			c.lastID = r.ID
		}
	}
}

// RestoreSelection picks the route to select after a reload.
func RestoreSelection(routes []*Route) int64 {
	for _, r := range routes {
		if r.ActiveIndex != nil {
			return r.ID
		}
	}
	if len(routes) > 0 {
		return routes[0].ID
	}
	return NoSelection
}
