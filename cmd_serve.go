package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volmap/handlers"
	"volmap/render"
	"volmap/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	table, err := loadTable()
	if err != nil {
		return err
	}

	orgService := services.NewOrganizationService(table, log)
	if cfg.RedisAddr != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Warn("Redis unavailable, nearby search runs in memory", zap.Error(err))
		} else {
			defer client.Close()
			orgService.RedisClient = client
			if err := orgService.IndexGeo(ctx); err != nil {
				log.Warn("Failed to index organizations, nearby search runs in memory", zap.Error(err))
				orgService.RedisClient = nil
			}
		}
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		return err
	}
	router := handlers.NewRouter(orgService, renderer, handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Viewport:       cfg.Map,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
