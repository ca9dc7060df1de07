package herd

import (
	"context"
	"fmt"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// ParentInput is the validated sire or dam form.
type ParentInput struct {
	Name      string `json:"name" form:"name" binding:"required,max=30"`
	Code      string `json:"code" form:"code" binding:"max=10"`
	BreedID   *uint  `json:"breed_id" form:"breed_id"`
	BirthDate string `json:"birth_date" form:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	BreederID *uint  `json:"breeder_id" form:"breeder_id"`
}

// NameInput is the form for breeds, colors and breeders.
type NameInput struct {
	Name string `json:"name" form:"name" binding:"required,max=30"`
}

func (s *Service) CreateSire(ctx context.Context, actor auth.Actor, in ParentInput) (*models.Sire, error) {
	birth, err := parseOptionalDate("birth_date", in.BirthDate)
	if err != nil {
		return nil, err
	}
	sire := &models.Sire{Name: in.Name, Code: in.Code, BreedID: in.BreedID, BirthDate: birth, BreederID: in.BreederID}
	sire.Stamp(actor.FarmID)
	if err := s.store.CreateSire(ctx, sire); err != nil {
		return nil, err
	}
	s.metrics.RecordCreated("sire")
	return sire, nil
}

func (s *Service) ListSires(ctx context.Context, page models.Page) (models.List[models.Sire], error) {
	return listOf(ctx, page, s.store.ListSires)
}

// CreateDam records an external dam. Dams of tracked animals are mirrored on
// animal creation instead.
func (s *Service) CreateDam(ctx context.Context, actor auth.Actor, in ParentInput) (*models.Dam, error) {
	birth, err := parseOptionalDate("birth_date", in.BirthDate)
	if err != nil {
		return nil, err
	}
	dam := &models.Dam{Name: in.Name, Code: in.Code, BreedID: in.BreedID, BirthDate: birth, BreederID: in.BreederID}
	dam.Stamp(actor.FarmID)
	if err := s.store.CreateDam(ctx, dam); err != nil {
		return nil, err
	}
	s.metrics.RecordCreated("dam")
	return dam, nil
}

func (s *Service) ListDams(ctx context.Context, page models.Page) (models.List[models.Dam], error) {
	return listOf(ctx, page, s.store.ListDams)
}

func (s *Service) CreateBreed(ctx context.Context, actor auth.Actor, in NameInput) (*models.Breed, error) {
	breed := &models.Breed{Name: in.Name}
	breed.Stamp(actor.FarmID)
	if err := s.store.CreateBreed(ctx, breed); err != nil {
		return nil, err
	}
	return breed, nil
}

func (s *Service) ListBreeds(ctx context.Context, page models.Page) (models.List[models.Breed], error) {
	return listOf(ctx, page, s.store.ListBreeds)
}

func (s *Service) CreateColor(ctx context.Context, actor auth.Actor, in NameInput) (*models.Color, error) {
	color := &models.Color{Name: in.Name}
	color.Stamp(actor.FarmID)
	if err := s.store.CreateColor(ctx, color); err != nil {
		return nil, err
	}
	return color, nil
}

func (s *Service) ListColors(ctx context.Context, page models.Page) (models.List[models.Color], error) {
	return listOf(ctx, page, s.store.ListColors)
}

func (s *Service) CreateBreeder(ctx context.Context, actor auth.Actor, in NameInput) (*models.Breeder, error) {
	breeder := &models.Breeder{Name: in.Name}
	breeder.Stamp(actor.FarmID)
	if err := s.store.CreateBreeder(ctx, breeder); err != nil {
		return nil, err
	}
	return breeder, nil
}

func (s *Service) ListBreeders(ctx context.Context, page models.Page) (models.List[models.Breeder], error) {
	return listOf(ctx, page, s.store.ListBreeders)
}

func listOf[T any](ctx context.Context, page models.Page, fetch func(context.Context, models.Page) ([]T, int64, error)) (models.List[T], error) {
	items, total, err := fetch(ctx, page)
	if err != nil {
		return models.List[T]{}, err
	}
	return models.NewList(items, total, page), nil
}

// CloseLactationInput ends a lactation period; an empty date means today.
type CloseLactationInput struct {
	EndDate string `json:"end_date" form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// CloseLactation sets the end date of an open lactation period.
func (s *Service) CloseLactation(ctx context.Context, actor auth.Actor, id uint, in CloseLactationInput) (*models.LactationPeriod, error) {
	end, err := s.dateOrToday("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}

	var period *models.LactationPeriod
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		period, err = tx.GetLactation(ctx, id)
		if err != nil {
			return err
		}
		if !ownsRecord(actor, period.Audit) {
			return notFound("lactation period", id)
		}
		if period.EndDate != nil {
			return fmt.Errorf("%w: lactation period %d is already closed", ErrInvalidInput, id)
		}
		if end.Before(period.StartDate) {
			return fmt.Errorf("%w: end_date precedes start_date", ErrInvalidInput)
		}
		period.EndDate = &end
		period.Stamp(actor.FarmID)
		return tx.SaveLactation(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	return period, nil
}
