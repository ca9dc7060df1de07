package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/mongodb"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
	reportingsvc "github.com/mamadbah2/herdbook/internal/service/reporting"
	whatsappclient "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
)

// newReporting wires the report service to every sink the configuration
// enables. The returned func releases them.
func newReporting(ctx context.Context, store repository.FarmStore, rec reportingsvc.Recorder) (*reportingsvc.Service, func(), error) {
	closeFn := func() {}
	opts := []reportingsvc.Option{reportingsvc.WithRecorder(rec)}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, closeFn, fmt.Errorf("load report timezone %q: %w", cfg.Reporting.Timezone, err)
	}
	opts = append(opts, reportingsvc.WithLocation(loc))

	if cfg.MongoEnabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to init mongodb repository: %w", err)
		}
		closeFn = func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
		opts = append(opts, reportingsvc.WithArchive(mongoRepo))
	} else {
		baseLogger.Warn("mongodb uri missing, report archive disabled")
	}

	if cfg.SheetsEnabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			closeFn()
			return nil, func() {}, fmt.Errorf("failed to init sheets repository: %w", err)
		}
		opts = append(opts, reportingsvc.WithExporter(sheetsRepo))
	}

	if cfg.WhatsAppEnabled() {
		opts = append(opts, reportingsvc.WithNotifier(whatsappclient.NewClient(cfg.WhatsApp)))
		baseLogger.Info("whatsapp report delivery enabled")
	}

	return reportingsvc.NewService(store, baseLogger.Named("svc.reporting"), opts...), closeFn, nil
}

func getReportCmd() *cobra.Command {
	var farmID uint
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Publishes the weekly herd report now",
		Long:  "Publishes the weekly herd report of one farm (--farm) or of every farm.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			svc, closeSinks, err := newReporting(cmd.Context(), store, nil)
			if err != nil {
				return err
			}
			defer closeSinks()

			if farmID == 0 {
				return svc.PublishAll(cmd.Context(), time.Now())
			}
			report, err := svc.Publish(cmd.Context(), farmID, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reportingsvc.FormatReport(report))
			return nil
		},
	}
	cmd.Flags().UintVar(&farmID, "farm", 0, "only this farm")
	return cmd
}
