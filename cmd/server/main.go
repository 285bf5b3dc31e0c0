package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vitrina/internal/catalog"
	"vitrina/internal/config"
	"vitrina/internal/db"
	"vitrina/internal/models"
	"vitrina/internal/storage"
	"vitrina/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// грузим .env из нескольких мест: текущая папка, родительская, корень репо
	config.LoadEnvFiles()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.SessionSecret == config.DefaultSessionSecret {
		slog.Warn("SESSION_SECRET is not set, using the development fallback")
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run owns every resource opened after config is loaded, so they are
// released on each return path.
func run(cfg *config.Config) error {
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.Migrate(gdb); err != nil {
		return err
	}

	images, err := storage.NewImageStore(cfg.UploadDir(), config.UploadURLPrefix, cfg.AllowedImageExts)
	if err != nil {
		return err
	}

	svc := catalog.NewService(models.NewProductsRepository(gdb), images)
	router, err := web.NewServer(cfg, gdb, svc, models.NewAdminsRepository(gdb)).Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	slog.Info("server listening", "addr", srv.Addr, "static", cfg.StaticDir, "db_driver", cfg.Database.Driver)
	return serve(srv, quit)
}

// serve runs srv until it fails or a value arrives on quit, then shuts it
// down gracefully. A listener error is returned to the caller.
func serve(srv *http.Server, quit <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-quit:
	}

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
