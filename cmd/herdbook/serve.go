package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/scheduler"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/server/router"
	herdsvc "github.com/mamadbah2/herdbook/internal/service/herd"
	"github.com/mamadbah2/herdbook/internal/storage/attachments"
)

func getServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP API and the weekly report scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, migrate bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close database", zap.Error(err))
		}
	}()

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		baseLogger.Info("database migrated")
	}

	files, err := attachments.Open(ctx, cfg.Attachments)
	if err != nil {
		return fmt.Errorf("failed to init attachment store: %w", err)
	}

	rec := metrics.New()
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer)
	herdService := herdsvc.NewService(store, files, rec, baseLogger.Named("svc.herd"))

	reportingService, closeSinks, err := newReporting(ctx, store, rec)
	if err != nil {
		return err
	}
	defer closeSinks()

	engine := router.New(router.Deps{
		Herd:     handlers.NewHerdHandler(herdService, baseLogger.Named("handlers.herd")),
		Reports:  handlers.NewReportHandler(reportingService, baseLogger.Named("handlers.reports")),
		Verifier: tokens,
		Metrics:  rec,
	}, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingService, baseLogger.Named("scheduler"))
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server crashed: %w", err)
		}
	case <-ctx.Done():
		baseLogger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	return nil
}
