// Package persist turns a route collection into the flat record blob kept in
// storage and back.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"route_tracker/internal/geo"
	"route_tracker/internal/models"
)

// ErrCorruptData marks a blob that cannot be read back. Callers treat it as
// "no saved state".
var ErrCorruptData = errors.New("corrupt saved routes")

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type pointRecord struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type midRecord struct {
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	Name string   `json:"name"`
}

type routeRecord struct {
	ID          *int64       `json:"id"`
	Name        string       `json:"name"`
	Visible     *bool        `json:"visible"`
	Color       string       `json:"color"`
	Start       *pointRecord `json:"start"`
	End         *pointRecord `json:"end"`
	Mid         []midRecord  `json:"mid"`
	ActiveIndex *int         `json:"activeIndex"`
}

// Serialize encodes every route of c. Selection and the menu target are not
// part of the record.
func Serialize(c *models.Collection) (string, error) {
	records := make([]routeRecord, 0, len(c.Routes))
	for _, r := range c.Routes {
		records = append(records, toRecord(r))
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode routes: %w", err)
	}
	return string(b), nil
}

func toRecord(r *models.Route) routeRecord {
	id, visible := r.ID, r.Visible
	rec := routeRecord{
		ID:      &id,
		Name:    r.Name,
		Visible: &visible,
		Color:   r.Color,
		Start:   anchorRecord(r.Start),
		End:     anchorRecord(r.End),
		Mid:     make([]midRecord, 0, len(r.Waypoints)),
	}
	for _, w := range r.Waypoints {
		lat, lng := w.Coord.Lat, w.Coord.Lng
		rec.Mid = append(rec.Mid, midRecord{Lat: &lat, Lng: &lng, Name: w.Name})
	}
	if r.ActiveIndex != nil {
		active := *r.ActiveIndex
		rec.ActiveIndex = &active
	}
	return rec
}

func anchorRecord(a *models.Anchor) *pointRecord {
	if a == nil {
		return nil
	}
	lat, lng := a.Coord.Lat, a.Coord.Lng
	return &pointRecord{Lat: &lat, Lng: &lng}
}

// Deserialize rebuilds routes from a blob written by Serialize. Any parse
// failure or schema mismatch is reported as ErrCorruptData.
func Deserialize(blob string) ([]*models.Route, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" || blob == "null" {
		return nil, nil
	}

	var records []routeRecord
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	routes := make([]*models.Route, 0, len(records))
	seen := make(map[int64]bool, len(records))
	for i, rec := range records {
		r, err := fromRecord(i, rec)
		if err != nil {
			return nil, fmt.Errorf("%w: route %d: %v", ErrCorruptData, i, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate route id %d", ErrCorruptData, r.ID)
		}
		seen[r.ID] = true
		routes = append(routes, r)
	}
	return routes, nil
}

func fromRecord(i int, rec routeRecord) (*models.Route, error) {
	if rec.ID == nil || *rec.ID <= 0 {
		return nil, errors.New("missing id")
	}
	if !colorPattern.MatchString(rec.Color) {
		return nil, fmt.Errorf("bad color %q", rec.Color)
	}

	r := &models.Route{
		ID:      *rec.ID,
		Name:    strings.TrimSpace(rec.Name),
		Color:   rec.Color,
		Visible: rec.Visible == nil || *rec.Visible,
	}
	if r.Name == "" {
		r.Name = fmt.Sprintf("Route %d", i+1)
	}

	var err error
	if r.Start, err = fromAnchorRecord(r.ID, models.RoleStart, rec.Start); err != nil {
		return nil, err
	}
	if r.End, err = fromAnchorRecord(r.ID, models.RoleEnd, rec.End); err != nil {
		return nil, err
	}
	if r.End != nil && r.Start == nil {
		return nil, errors.New("end without start")
	}

	for j, m := range rec.Mid {
		if m.Lat == nil || m.Lng == nil {
			return nil, fmt.Errorf("waypoint %d missing coordinate", j)
		}
		c := geo.Coord{Lat: *m.Lat, Lng: *m.Lng}
		if !c.Valid() {
			return nil, fmt.Errorf("waypoint %d out of range", j)
		}
		r.Waypoints = append(r.Waypoints, models.Waypoint{Coord: c, Name: strings.TrimSpace(m.Name)})
	}

	// Routes saved before waypoints existed, or between placing the end and
	// generating points, come back with anchors only.
	if r.Start != nil && r.End != nil && len(r.Waypoints) == 0 {
		r.RegenerateWaypoints()
	}

	if rec.ActiveIndex != nil && *rec.ActiveIndex >= 0 && *rec.ActiveIndex < len(r.Waypoints) {
		active := *rec.ActiveIndex
		r.ActiveIndex = &active
	}
	return r, nil
}

func fromAnchorRecord(routeID int64, role models.Role, p *pointRecord) (*models.Anchor, error) {
	if p == nil {
		return nil, nil
	}
	if p.Lat == nil || p.Lng == nil {
		return nil, fmt.Errorf("%s missing coordinate", role)
	}
	c := geo.Coord{Lat: *p.Lat, Lng: *p.Lng}
	if !c.Valid() {
		return nil, fmt.Errorf("%s out of range", role)
	}
	return &models.Anchor{RouteID: routeID, Role: role, Coord: c}, nil
}
