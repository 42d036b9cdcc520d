package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"querygpt/cache"
	"querygpt/db"
	"querygpt/handlers"
	"querygpt/service"
)

// guardSlack keeps an in-flight guard alive a little past the backend timeout
// so it cannot expire while its request is still running.
const guardSlack = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web frontend",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	sessions := cache.New(cfg.SessionTTL, cfg.RequestTimeout+guardSlack)
	backend := service.NewBackendClient(cfg.BackendURL, cfg.RequestTimeout, logger)

	h := handlers.New(database, backend, sessions, cfg.MaxUploadBytes(), logger)
	router, err := handlers.NewRouter(h, cfg.AllowedOrigins)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("backend", backend.BaseURL()),
			zap.String("db", cfg.DBPath))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
