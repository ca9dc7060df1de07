package herd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

var (
	maxAmount    = decimal.RequireFromString("999.99")
	maxButterfat = decimal.RequireFromString("99.999")
)

// MilkInput is the validated milk production form. AnimalID is read from the
// body on the generic endpoint and ignored when the animal comes from the query.
type MilkInput struct {
	AnimalID  uint                `json:"animal_id"`
	Time      models.MilkingTime  `json:"time" binding:"required,oneof=am pm"`
	Amount    decimal.Decimal     `json:"amount"`
	Butterfat decimal.NullDecimal `json:"butterfat"`
	Date      string              `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

func (in MilkInput) validate() error {
	if !in.Amount.IsPositive() || in.Amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: amount must be between 0 and %s", ErrInvalidInput, maxAmount)
	}
	if in.Butterfat.Valid && (in.Butterfat.Decimal.IsNegative() || in.Butterfat.Decimal.GreaterThan(maxButterfat)) {
		return fmt.Errorf("%w: butterfat must be between 0 and %s", ErrInvalidInput, maxButterfat)
	}
	return nil
}

// CreateMilkProduction records milk for the animal named in the body.
func (s *Service) CreateMilkProduction(ctx context.Context, actor auth.Actor, in MilkInput) (*models.MilkProduction, error) {
	if in.AnimalID == 0 {
		return nil, fmt.Errorf("%w: animal_id is required", ErrInvalidInput)
	}
	animal, err := s.GetAnimal(ctx, actor, in.AnimalID)
	if err != nil {
		return nil, err
	}
	return s.recordMilk(ctx, actor, animal, in)
}

// CreateAnimalMilkProduction records milk for the animal given as ?animal=.
func (s *Service) CreateAnimalMilkProduction(ctx context.Context, actor auth.Actor, parentRef string, in MilkInput) (*models.MilkProduction, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}
	return s.recordMilk(ctx, actor, parent, in)
}

func (s *Service) recordMilk(ctx context.Context, actor auth.Actor, animal *models.Animal, in MilkInput) (*models.MilkProduction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, err := s.dateOrToday("date", in.Date)
	if err != nil {
		return nil, err
	}

	record := &models.MilkProduction{
		AnimalID:  animal.ID,
		Time:      in.Time,
		Amount:    in.Amount.Round(2),
		Butterfat: in.Butterfat,
		Date:      date,
	}
	if record.Butterfat.Valid {
		record.Butterfat.Decimal = record.Butterfat.Decimal.Round(3)
	}
	record.Stamp(actor.FarmID)

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.CreateMilkProduction(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCreated("milk_production")
	return record, nil
}

// ListMilkProduction pages the actor's milk records across all animals.
func (s *Service) ListMilkProduction(ctx context.Context, actor auth.Actor, page models.Page) (models.List[models.MilkProduction], error) {
	farm := actor.FarmID
	rows, total, err := s.store.ListMilkProduction(ctx, repository.RecordFilter{FarmID: &farm, Page: page})
	if err != nil {
		return models.List[models.MilkProduction]{}, err
	}
	return models.NewList(rows, total, page), nil
}

// WeeklyTotal is the milk produced in the ISO week starting on Week.
type WeeklyTotal struct {
	Week     string          `json:"week"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
	Milkings int             `json:"milkings"`
}

// Dashboard charts an animal's production.
type Dashboard struct {
	Animal            *models.Animal      `json:"animal"`
	AllTimeProduction decimal.NullDecimal `json:"all_time_production"`
	Weekly            []WeeklyTotal       `json:"weekly"`
}

// Dashboard buckets an animal's milk records by ISO week, oldest first.
func (s *Service) Dashboard(ctx context.Context, actor auth.Actor, id uint) (*Dashboard, error) {
	animal, err := s.GetAnimal(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	series, err := s.store.MilkSeries(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.store.TotalMilkProduction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Animal: animal, AllTimeProduction: total, Weekly: weeklyTotals(series)}, nil
}

func weeklyTotals(series []models.MilkProduction) []WeeklyTotal {
	weeks := []WeeklyTotal{}
	index := map[string]int{}
	for _, m := range series {
		start := weekStart(m.Date)
		key := start.Format(dateLayout)
		i, ok := index[key]
		if !ok {
			year, week := start.ISOWeek()
			weeks = append(weeks, WeeklyTotal{
				Week:  key,
				Label: fmt.Sprintf("%d-W%02d", year, week),
				Total: decimal.Zero,
			})
			i = len(weeks) - 1
			index[key] = i
		}
		weeks[i].Total = weeks[i].Total.Add(m.Amount)
		weeks[i].Milkings++
	}
	return weeks
}

// weekStart returns the Monday of t's ISO week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
