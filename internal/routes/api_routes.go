package routes

import (
	"github.com/gin-gonic/gin"

	"route_tracker/internal/controllers"
)

func APIRoutes(r *gin.Engine, rc *controllers.RouteController, auth gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(auth)
	{
		api.GET("/routes", rc.ListRoutes)
		api.POST("/routes", rc.CreateRoute)
		api.DELETE("/routes", rc.ClearRoutes)
		api.GET("/routes/:id", rc.GetRoute)
		api.PATCH("/routes/:id", rc.UpdateRoute)
		api.DELETE("/routes/:id", rc.DeleteRoute)
		api.POST("/routes/:id/select", rc.SelectRoute)
		api.GET("/routes/:id/path", rc.GetRoutePath)

		api.POST("/routes/:id/waypoints", rc.AddWaypoint)
		api.PATCH("/routes/:id/waypoints/:index", rc.RenameWaypoint)
		api.DELETE("/routes/:id/waypoints/:index", rc.DeleteWaypoint)
		api.POST("/routes/:id/waypoints/:index/activate", rc.ActivateWaypoint)
		api.DELETE("/progress", rc.ResetProgress)

		api.POST("/map/click", rc.MapClick)

		api.POST("/menu/waypoint", rc.OpenWaypointMenu)
		api.POST("/menu/route", rc.OpenRouteMenu)
		api.POST("/menu/action", rc.MenuAction)
		api.DELETE("/menu", rc.CloseMenu)

		api.POST("/drag/begin", rc.BeginDrag)
		api.POST("/drag/move", rc.DragMove)
		api.POST("/drag/end", rc.EndDrag)

		api.PUT("/speed", rc.SetSpeed)
		api.GET("/info", rc.GetInfo)
	}
}
