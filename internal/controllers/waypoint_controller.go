package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"route_tracker/internal/editor"
	"route_tracker/internal/models"
)

// AddWaypoint inserts a waypoint before or after an existing one.
func (rc *RouteController) AddWaypoint(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	var body struct {
		Index    *int   `json:"index" binding:"required"`
		Position string `json:"position" binding:"required,oneof=before after"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var err error
	if body.Position == "before" {
		err = rc.ed.AddBefore(ctx, id, *body.Index)
	} else {
		err = rc.ed.AddAfter(ctx, id, *body.Index)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	rc.GetRoute(c)
}

func (rc *RouteController) RenameWaypoint(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	index, ok := waypointIndex(c)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.ed.RenameWaypoint(c.Request.Context(), id, index, body.Name); err != nil {
		respondError(c, err)
		return
	}
	rc.GetRoute(c)
}

func (rc *RouteController) DeleteWaypoint(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	index, ok := waypointIndex(c)
	if !ok {
		return
	}
	if err := rc.ed.DeleteWaypoint(c.Request.Context(), id, index); err != nil {
		respondError(c, err)
		return
	}
	rc.GetRoute(c)
}

func (rc *RouteController) ActivateWaypoint(c *gin.Context) {
	id, ok := routeID(c)
	if !ok {
		return
	}
	index, ok := waypointIndex(c)
	if !ok {
		return
	}
	if err := rc.ed.Activate(c.Request.Context(), id, index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Info())
}

func (rc *RouteController) OpenWaypointMenu(c *gin.Context) {
	var body struct {
		RouteID int64 `json:"route_id" binding:"required"`
		Index   *int  `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.ed.OpenWaypointMenu(c.Request.Context(), body.RouteID, *body.Index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Snapshot().Menu)
}

func (rc *RouteController) OpenRouteMenu(c *gin.Context) {
	var body struct {
		RouteID int64 `json:"route_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.ed.OpenRouteMenu(c.Request.Context(), body.RouteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Snapshot().Menu)
}

// MenuAction runs an entry of whichever context menu is open.
func (rc *RouteController) MenuAction(c *gin.Context) {
	var body struct {
		Action string `json:"action" binding:"required"`
		Name   string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.ed.MenuAction(c.Request.Context(), editor.MenuAction(body.Action), body.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Snapshot())
}

func (rc *RouteController) CloseMenu(c *gin.Context) {
	rc.ed.CloseMenu()
	c.Status(http.StatusNoContent)
}

func (rc *RouteController) BeginDrag(c *gin.Context) {
	var body struct {
		RouteID int64  `json:"route_id" binding:"required"`
		Role    string `json:"role" binding:"required,oneof=start end waypoint"`
		Index   int    `json:"index"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref := models.PointRef{RouteID: body.RouteID, Kind: models.PointKind(body.Role), Index: body.Index}
	if err := rc.ed.BeginDrag(c.Request.Context(), ref); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (rc *RouteController) DragMove(c *gin.Context) {
	var body coordInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := rc.ed.DragTo(c.Request.Context(), body.coord()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.ed.Info())
}

func (rc *RouteController) EndDrag(c *gin.Context) {
	if err := rc.ed.EndDrag(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
