package routes

import (
	"github.com/gin-gonic/gin"

	"route_tracker/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine, sc *controllers.SceneController, auth gin.HandlerFunc) {
	r.GET("/api/scene", auth, sc.GetScene)

	wsRoutes := r.Group("/ws")
	wsRoutes.Use(auth)
	{
		wsRoutes.GET("/scene", sc.HandleSceneWebSocket)
	}
}
