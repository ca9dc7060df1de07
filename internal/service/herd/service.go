// Package herd holds the breeding and lactation record rules: lifecycle
// triggers, record derivation and the per-animal detail view.
package herd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/storage/attachments"
)

const dateLayout = "2006-01-02"

var (
	// ErrMissingParentReference rejects sub-record requests without a resolvable animal.
	ErrMissingParentReference = errors.New("Animal Id is required") //nolint:staticcheck // shown to users verbatim
	// ErrServiceMismatch rejects a pregnancy check pointing at another animal's service.
	ErrServiceMismatch = errors.New("service belongs to a different animal")
	// ErrInvalidInput wraps values that passed binding but make no sense together.
	ErrInvalidInput = errors.New("invalid input")
)

// Recorder receives domain counters. *metrics.Recorder satisfies it.
type Recorder interface {
	Transition(from, to string)
	RecordCreated(kind string)
}

type nopRecorder struct{}

func (nopRecorder) Transition(string, string) {}
func (nopRecorder) RecordCreated(string)      {}

// Service applies the herd rules on top of a repository.Store.
type Service struct {
	store   repository.Store
	files   attachments.Store
	metrics Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new herd service instance.
func NewService(store repository.Store, files attachments.Store, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if files == nil {
		files = attachments.NewMemory()
	}
	return &Service{
		store:   store,
		files:   files,
		metrics: recorder,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ResolveParent turns the raw ?animal= value into the parent animal. An absent,
// malformed, unknown or foreign id all yield ErrMissingParentReference.
func (s *Service) ResolveParent(ctx context.Context, actor auth.Actor, raw string) (*models.Animal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingParentReference
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrMissingParentReference
	}

	animal, err := s.store.GetAnimal(ctx, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMissingParentReference
	}
	if err != nil {
		return nil, fmt.Errorf("resolve parent animal: %w", err)
	}
	if !ownsAnimal(actor, animal) {
		return nil, ErrMissingParentReference
	}
	return animal, nil
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// transition moves the animal inside tx and reports the move once committed.
func (s *Service) transition(ctx context.Context, tx repository.Store, animal *models.Animal, to models.State, actor uint) (func(), error) {
	from := animal.State
	if err := animal.TransitionTo(to); err != nil {
		return nil, err
	}
	if err := tx.SetAnimalState(ctx, animal.ID, to, actor); err != nil {
		return nil, fmt.Errorf("transition animal %d to %s: %w", animal.ID, to, err)
	}
	return func() {
		s.metrics.Transition(string(from), string(to))
		s.logger.Info("animal state changed",
			zap.Uint("animal_id", animal.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}, nil
}

func ownsAnimal(actor auth.Actor, a *models.Animal) bool {
	return a.FarmID == nil || *a.FarmID == actor.FarmID
}

func ownsRecord(actor auth.Actor, a models.Audit) bool {
	return a.CreatedByID == actor.FarmID
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%s %d: %w", what, id, repository.ErrNotFound)
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a %s date", ErrInvalidInput, field, dateLayout)
	}
	return t, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateOrToday parses raw, defaulting to today when empty.
func (s *Service) dateOrToday(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.today(), nil
	}
	return parseDate(field, raw)
}
