package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Repository defines the export operations supported by the Google Sheets adapter.
type Repository interface {
	AppendReport(ctx context.Context, report models.HerdReport) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	reportRange   string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		reportRange:   cfg.ReportRange,
		logger:        logger,
	}, nil
}

// AppendReport writes one row per report into the configured range.
func (r *GoogleSheetRepository) AppendReport(ctx context.Context, report models.HerdReport) error {
	return r.writeRow(ctx, r.reportRange, ReportRow(report))
}

func (r *GoogleSheetRepository) writeRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// ReportRow lays a report out as the A:H columns: period end, farm, animals,
// pregnant animals, services, pregnant checks, open checks, milk.
func ReportRow(report models.HerdReport) []interface{} {
	var herd int64
	for _, n := range report.StateCounts {
		herd += n
	}
	return []interface{}{
		report.PeriodEnd.Format(dateLayout),
		report.FarmName,
		herd,
		report.StateCounts[models.StatePregnant],
		report.Services,
		report.PregnantChecks,
		report.OpenChecks,
		report.MilkTotal.StringFixed(2),
	}
}
