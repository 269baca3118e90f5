package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arkive-app/arkive/internal/app"
	"github.com/arkive-app/arkive/internal/capture"
	"github.com/arkive-app/arkive/internal/config"
	"github.com/arkive-app/arkive/internal/domain"
	"github.com/arkive-app/arkive/internal/filesystem"
	arkivehttp "github.com/arkive-app/arkive/internal/http"
	"github.com/arkive-app/arkive/internal/httpclient"
	"github.com/arkive-app/arkive/internal/jobs"
	"github.com/arkive-app/arkive/internal/logger"
	"github.com/arkive-app/arkive/internal/queue"
	"github.com/arkive-app/arkive/internal/store"
	"github.com/arkive-app/arkive/web"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Archive directory must exist before the store gates on its mtime
	if err := filesystem.EnsureDir(cfg.ArchiveDir); err != nil {
		appLogger.Error("Failed to create archive directory", "error", err)
		os.Exit(1)
	}

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if pruned, err := db.PruneSessions(); err == nil && pruned > 0 {
		appLogger.Info("Pruned expired sessions", "count", pruned)
	}

	// Initialize Services
	registry := jobs.NewRegistry(appLogger)
	captureQueue := queue.New(cfg.Concurrency)
	capturers := map[domain.JobMode]capture.Capturer{
		domain.JobModeWebpage: capture.NewMonolithCapturer(appLogger),
		domain.JobModeVideo:   capture.NewYtdlpCapturer(appLogger),
	}

	jobService := app.NewJobService(db, registry, captureQueue,
		httpclient.New(nil), capturers, cfg.ArchiveDir, appLogger)
	archiveService := app.NewArchiveService(db, cfg.ArchiveDir, appLogger)
	authService := app.NewAuthService(db, appLogger)

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Serve Static Files from embedded filesystem
	r.Handle("/static/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := "static" + r.URL.Path[len("/static"):]
		data, err := web.Files.ReadFile(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		contentType := "application/octet-stream"
		switch {
		case strings.HasSuffix(path, ".css"):
			contentType = "text/css"
		case strings.HasSuffix(path, ".js"):
			contentType = "application/javascript"
		case strings.HasSuffix(path, ".png"):
			contentType = "image/png"
		case strings.HasSuffix(path, ".svg"):
			contentType = "image/svg+xml"
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}))

	// Routes
	h := arkivehttp.NewHandler(jobService, archiveService, authService,
		registry, cfg.ArchiveDir, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
