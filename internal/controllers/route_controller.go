package controllers

import (
	"encoding/binary"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"route_tracker/internal/editor"
	"route_tracker/internal/geo"
)

// RouteController serves the sidebar list and route-level actions.
type RouteController struct {
	ed *editor.Editor
}

func NewRouteController(ed *editor.Editor) *RouteController {
	return &RouteController{ed: ed}
}

type coordInput struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (in coordInput) coord() geo.Coord {
	return geo.Coord{Lat: *in.Lat, Lng: *in.Lng}
}

func (rc *RouteController) ListRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, rc.ed.Snapshot())
}

func (rc *RouteController) CreateRoute(c *gin.Context) {
	id, err := rc.ed.NewRoute(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	d, err := rc.ed.Route(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (rc *RouteController) ClearRoutes(c *gin.Context) {
	if err := rc.ed.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *RouteController) GetRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	d, err := rc.ed.Route(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// UpdateRoute renames and/or shows or hides a route.
func (rc *RouteController) UpdateRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	var body struct {
		Name    *string `json:"name"`
		Visible *bool   `json:"visible"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if body.Name != nil {
		if err := rc.ed.RenameRoute(ctx, id, *body.Name); err != nil {
			respondError(c, err)
			return
		}
	}
	if body.Visible != nil {
		if err := rc.ed.SetVisible(ctx, id, *body.Visible); err != nil {
			respondError(c, err)
			return
		}
	}
	rc.GetRoute(c)
}

func (rc *RouteController) DeleteRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	if err := rc.ed.DeleteRoute(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *RouteController) SelectRoute(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	if err := rc.ed.Select(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Info())
}

// GetRoutePath returns the full path as a GeoJSON LineString, or as
// hex-encoded WKB with ?format=wkb.
func (rc *RouteController) GetRoutePath(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	d, err := rc.ed.Route(id)
	if err != nil {
		respondError(c, err)
		return
	}

	flat := make([]float64, 0, 2*(len(d.Waypoints)+2))
	if d.Start != nil {
		flat = append(flat, d.Start.Lng, d.Start.Lat)
	}
	for _, w := range d.Waypoints {
		flat = append(flat, w.Coord.Lng, w.Coord.Lat)
	}
	if d.End != nil {
		flat = append(flat, d.End.Lng, d.End.Lat)
	}
	if len(flat) < 4 {
		c.JSON(http.StatusConflict, gin.H{"error": "route has no path yet"})
		return
	}
	line := geom.NewLineStringFlat(geom.XY, flat)

	if c.Query("format") == "wkb" {
		b, err := wkb.Marshal(line, binary.LittleEndian)
		if err != nil {
			logrus.WithError(err).WithField("route_id", id).Error("GetRoutePath: failed to encode WKB")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode path"})
			return
		}
		c.String(http.StatusOK, hex.EncodeToString(b))
		return
	}

	b, err := gjson.Marshal(line)
	if err != nil {
		logrus.WithError(err).WithField("route_id", id).Error("GetRoutePath: failed to encode GeoJSON")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode path"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", b)
}

func (rc *RouteController) MapClick(c *gin.Context) {
	var body coordInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.ed.MapClick(c.Request.Context(), body.coord()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Info())
}

func (rc *RouteController) ResetProgress(c *gin.Context) {
	if err := rc.ed.ResetProgress(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *RouteController) SetSpeed(c *gin.Context) {
	var body struct {
		Kmh *float64 `json:"kmh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.ed.SetSpeed(c.Request.Context(), *body.Kmh); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Info())
}

func (rc *RouteController) GetInfo(c *gin.Context) {
	c.JSON(http.StatusOK, rc.ed.Info())
}
