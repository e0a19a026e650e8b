package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"route_tracker/internal/config"
	"route_tracker/internal/controllers"
	"route_tracker/internal/editor"
	"route_tracker/internal/middleware"
	"route_tracker/internal/render"
)

// Deps is everything the router needs.
type Deps struct {
	Config config.Config
	Editor *editor.Editor
	Scene  *render.Scene
	Hub    *controllers.SceneHub
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(logrus.StandardLogger().Writer()),
		ginlog.WithSkipPath([]string{"/ws/scene"}),
	))

	auth := middleware.RequireAuth([]byte(d.Config.JWTSecret), d.Config.AuthEnabled())

	AuthRoutes(r, controllers.NewAuthController(d.Config.PasswordHash, []byte(d.Config.JWTSecret)))
	APIRoutes(r, controllers.NewRouteController(d.Editor), auth)
	WebSocketRoutes(r, controllers.NewSceneController(d.Editor, d.Scene, d.Hub), auth)

	return r
}
