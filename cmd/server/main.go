package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"route_tracker/internal/config"
	"route_tracker/internal/controllers"
	"route_tracker/internal/editor"
	"route_tracker/internal/logger"
	"route_tracker/internal/middleware"
	"route_tracker/internal/persist"
	"route_tracker/internal/render"
	"route_tracker/internal/routes"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	logger.Setup(cfg.LogFile, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := config.OpenStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).WithField("driver", cfg.StorageDriver).Fatal("failed to open storage")
	}
	defer closeStore()

	hub := controllers.NewSceneHub()
	defer hub.Close()

	scene := render.NewScene(hub)
	ed := editor.New(scene, persist.NewSaver(store), cfg.DefaultSpeed)
	if err := ed.Load(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to load saved routes")
	}

	r := routes.SetupRouter(routes.Deps{Config: cfg, Editor: ed, Scene: scene, Hub: hub})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.CORS(cfg.CORSOrigins)(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    cfg.HTTPAddr,
			"storage": cfg.StorageDriver,
			"auth":    cfg.AuthEnabled(),
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
