package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
)

const runTimeout = 2 * time.Minute

// Publisher produces the weekly reports. *reporting.Service satisfies it.
type Publisher interface {
	PublishAll(ctx context.Context, now time.Time) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, publisher Publisher, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load report timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	// Standard five-field cron expressions: minute, hour, day of month, month, day of week.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		spec:      cfg.CronSchedule,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start registers the weekly report and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.sendWeeklyReports); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReports() {
	s.logger.Info("generating weekly reports")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.publisher.PublishAll(ctx, s.now()); err != nil {
		s.logger.Error("failed to publish weekly reports", zap.Error(err))
		return
	}
	s.logger.Info("weekly reports published successfully")
}
