package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sidhant-sriv/db-auth/config"
	"github.com/sidhant-sriv/db-auth/db"
	"github.com/sidhant-sriv/db-auth/logging"
	"github.com/sidhant-sriv/db-auth/middleware"
	"github.com/sidhant-sriv/db-auth/routes"
	"github.com/sidhant-sriv/db-auth/session"
	"github.com/sidhant-sriv/db-auth/upload"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "db-auth:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	if cfg.SessionSecret == config.DefaultSessionSecret {
		log.Warn("SESSION_SECRET not set, using the development default")
	}
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Nothing listens until the database is reachable.
	gdb, err := db.Connect(ctx, db.PostgresOpener(cfg), db.NewBackoff(cfg.ConnectRetries, cfg.ConnectDelay), log)
	if err != nil {
		log.Error("could not connect to database, exiting", "err", err)
		return err
	}
	store := db.NewStore(gdb)
	defer func() { _ = store.Close() }()

	if err := db.Migrate(gdb); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := routes.New(routes.Deps{
		Store: store,
		Sessions: session.NewManager(store, session.Options{
			Secret:     cfg.SessionSecret,
			CookieName: cfg.SessionCookieName,
			TTL:        cfg.SessionTTL,
		}),
		Uploads:   upload.New(cfg.UploadDir, cfg.UploadMaxBytes),
		PublicDir: cfg.PublicDir,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Log:       log,
	})
	router := setupRouter(handler, middleware.NewMetrics(reg), log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("shutdown complete")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// setupRouter builds the gin engine with recovery, request logging and
// metrics ahead of the application routes.
func setupRouter(h *routes.Handler, metrics *middleware.Metrics, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.Handler())
	h.Mount(router)
	return router
}
