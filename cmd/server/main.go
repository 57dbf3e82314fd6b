package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/polystage/polystage/internal/config"
	"github.com/polystage/polystage/internal/export"
	"github.com/polystage/polystage/internal/live"
	"github.com/polystage/polystage/internal/logging"
	mw "github.com/polystage/polystage/internal/middleware"
	"github.com/polystage/polystage/internal/scene"
	"github.com/polystage/polystage/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logCloser := logging.Setup(os.Stdout, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		slog.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	hub := live.NewHub(st, live.Config{
		SceneKey:        cfg.SceneKey,
		Zoom:            cfg.ZoomPolicy(),
		AutosaveOnClose: cfg.AutosaveOnClose,
	})
	go hub.Run()

	sceneHandler := scene.NewHandler(scene.NewService(st, cfg.SceneKey))
	exportHandler := export.NewHandler(st, cfg.SceneKey)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stored scene
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scene", sceneHandler.Get).Methods("GET")
	api.HandleFunc("/scene", sceneHandler.Put).Methods("PUT", "OPTIONS")
	api.HandleFunc("/scene", sceneHandler.Delete).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/export/png", exportHandler.ExportPNG).Methods("GET")

	// Live editor sessions
	r.HandleFunc("/ws/editor", hub.ServeWS(mw.OriginHosts(cfg.Origins())))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so sessions can autosave
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
