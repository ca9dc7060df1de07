package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const (
	dateLayout   = "2006-01-02"
	reportPeriod = 7 * 24 * time.Hour
)

// Archive keeps generated reports. The MongoDB repository satisfies it.
type Archive interface {
	SaveHerdReport(ctx context.Context, report models.HerdReport) error
}

// Exporter mirrors reports elsewhere. The Google Sheets repository satisfies it.
type Exporter interface {
	AppendReport(ctx context.Context, report models.HerdReport) error
}

// Notifier delivers the formatted report. The WhatsApp client satisfies it.
type Notifier interface {
	SendText(ctx context.Context, to, body string) error
}

// Recorder counts report outcomes.
type Recorder interface {
	Report(outcome string)
}

// Service builds weekly herd summaries and fans them out to the configured sinks.
type Service struct {
	store    repository.FarmStore
	archive  Archive
	exporter Exporter
	notifier Notifier
	metrics  Recorder
	location *time.Location
	logger   *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

func WithArchive(a Archive) Option   { return func(s *Service) { s.archive = a } }
func WithExporter(e Exporter) Option { return func(s *Service) { s.exporter = e } }
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }
func WithRecorder(r Recorder) Option { return func(s *Service) { s.metrics = r } }

func WithLocation(l *time.Location) Option {
	return func(s *Service) {
		if l != nil {
			s.location = l
		}
	}
}

// NewService wires a new reporting service instance. Sinks left unset are skipped.
func NewService(store repository.FarmStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, location: time.UTC, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Period returns the seven days ending at the close of now's day.
func (s *Service) Period(now time.Time) (time.Time, time.Time) {
	local := now.In(s.location)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location).AddDate(0, 0, 1)
	return end.Add(-reportPeriod), end
}

// GenerateWeeklyReport summarizes one farm over the week ending today.
func (s *Service) GenerateWeeklyReport(ctx context.Context, farmID uint, now time.Time) (models.HerdReport, error) {
	farm, err := s.store.GetFarm(ctx, farmID)
	if err != nil {
		return models.HerdReport{}, fmt.Errorf("load farm: %w", err)
	}

	start, end := s.Period(now)
	stats, err := s.store.HerdStats(ctx, farm.ID, start.UTC(), end.UTC())
	if err != nil {
		return models.HerdReport{}, fmt.Errorf("herd stats: %w", err)
	}

	counts := make(map[models.State]int64, len(stats.StateCounts))
	for state, n := range stats.StateCounts {
		counts[state] = n
	}

	return models.HerdReport{
		FarmID:         farm.ID,
		FarmName:       farm.Name,
		PeriodStart:    start,
		PeriodEnd:      end,
		StateCounts:    counts,
		MilkTotal:      stats.MilkTotal,
		Services:       stats.Services,
		PregnantChecks: stats.PregnantChecks,
		OpenChecks:     stats.OpenChecks,
		Births:         stats.Births,
		CreatedAt:      now.UTC(),
	}, nil
}

// FormatReport renders the report as a short text message.
func FormatReport(r models.HerdReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Herd report for %s (%s to %s)\n", r.FarmName,
		r.PeriodStart.Format(dateLayout), r.PeriodEnd.AddDate(0, 0, -1).Format(dateLayout))

	var herd int64
	for _, state := range models.States {
		herd += r.StateCounts[state]
	}
	fmt.Fprintf(&b, "Animals: %d", herd)
	for _, state := range models.States {
		if n := r.StateCounts[state]; n > 0 {
			fmt.Fprintf(&b, ", %s %d", state, n)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Services: %d\n", r.Services)
	fmt.Fprintf(&b, "Pregnancy checks: %d pregnant, %d open\n", r.PregnantChecks, r.OpenChecks)
	fmt.Fprintf(&b, "Births: %d\n", r.Births)
	fmt.Fprintf(&b, "Milk: %s", r.MilkTotal.StringFixed(2))
	return b.String()
}

// Publish generates one farm's report and hands it to every configured sink.
// A failing sink does not stop the others; their errors are joined.
func (s *Service) Publish(ctx context.Context, farmID uint, now time.Time) (models.HerdReport, error) {
	report, err := s.GenerateWeeklyReport(ctx, farmID, now)
	if err != nil {
		s.count("failed")
		return models.HerdReport{}, err
	}
	logger := s.logger.With(zap.Uint("farm_id", farmID))

	var (
		errs  []error
		sinks int
	)
	if s.archive != nil {
		sinks++
		if err := s.archive.SaveHerdReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("archive report: %w", err))
		}
	}
	if s.exporter != nil {
		sinks++
		if err := s.exporter.AppendReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("export report: %w", err))
		}
	}
	if s.notifier != nil {
		farm, err := s.store.GetFarm(ctx, farmID)
		switch {
		case err != nil:
			sinks++
			errs = append(errs, fmt.Errorf("load farm contact: %w", err))
		case farm.Phone == "":
			logger.Debug("farm has no phone, skip report delivery")
		default:
			sinks++
			if err := s.notifier.SendText(ctx, farm.Phone, FormatReport(report)); err != nil {
				errs = append(errs, fmt.Errorf("deliver report: %w", err))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		if len(errs) == sinks {
			s.count("failed")
			logger.Error("weekly report reached no sink", zap.Error(err))
		} else {
			s.count("partial")
			logger.Warn("weekly report published with errors", zap.Error(err))
		}
		return report, err
	}
	s.count("ok")
	logger.Info("weekly report published")
	return report, nil
}

// PublishAll publishes the weekly report of every farm.
func (s *Service) PublishAll(ctx context.Context, now time.Time) error {
	farms, err := s.store.ListFarms(ctx)
	if err != nil {
		return fmt.Errorf("list farms: %w", err)
	}

	var errs []error
	for _, farm := range farms {
		if _, err := s.Publish(ctx, farm.ID, now); err != nil {
			errs = append(errs, fmt.Errorf("farm %d: %w", farm.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.Report(outcome)
	}
}
