package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/config"
)

type fakePublisher struct {
	calls []time.Time
	err   error
}

func (f *fakePublisher) PublishAll(ctx context.Context, now time.Time) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	f.calls = append(f.calls, now)
	return f.err
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "Mars/Olympus"}, &fakePublisher{}, nil)
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "every friday"}, &fakePublisher{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "UTC"}, &fakePublisher{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestSendWeeklyReportsUsesClockAndDeadline(t *testing.T) {
	pub := &fakePublisher{err: errors.New("partial")}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * 5"}, pub, nil)
	require.NoError(t, err)
	fixed := time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.sendWeeklyReports()
	require.Len(t, pub.calls, 1)
	assert.Equal(t, fixed, pub.calls[0])
}
