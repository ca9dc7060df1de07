package herd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// AnimalInput is the validated animal form.
type AnimalInput struct {
	EarTag         string     `json:"ear_tag" form:"ear_tag" binding:"required,max=30"`
	Name           string     `json:"name" form:"name" binding:"required,max=30"`
	Sex            models.Sex `json:"sex" form:"sex" binding:"omitempty,oneof=female male"`
	ColorID        *uint      `json:"color_id" form:"color_id"`
	BreedID        *uint      `json:"breed_id" form:"breed_id"`
	SireID         *uint      `json:"sire_id" form:"sire_id"`
	DamID          *uint      `json:"dam_id" form:"dam_id"`
	BreederID      *uint      `json:"breeder_id" form:"breeder_id"`
	BirthDate      string     `json:"birth_date" form:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	BirthWeight    *int       `json:"birth_weight" form:"birth_weight" binding:"omitempty,min=0"`
	WeaningDate    string     `json:"weaning_date" form:"weaning_date" binding:"omitempty,datetime=2006-01-02"`
	WeaningWeight  *int       `json:"weaning_weight" form:"weaning_weight" binding:"omitempty,min=0"`
	YearlingDate   string     `json:"yearling_date" form:"yearling_date" binding:"omitempty,datetime=2006-01-02"`
	YearlingWeight *int       `json:"yearling_weight" form:"yearling_weight" binding:"omitempty,min=0"`
}

func (in AnimalInput) apply(a *models.Animal) error {
	birth, err := parseOptionalDate("birth_date", in.BirthDate)
	if err != nil {
		return err
	}
	weaning, err := parseOptionalDate("weaning_date", in.WeaningDate)
	if err != nil {
		return err
	}
	yearling, err := parseOptionalDate("yearling_date", in.YearlingDate)
	if err != nil {
		return err
	}

	a.EarTag = in.EarTag
	a.Name = in.Name
	a.Sex = in.Sex
	a.ColorID = in.ColorID
	a.BreedID = in.BreedID
	a.SireID = in.SireID
	a.DamID = in.DamID
	a.BreederID = in.BreederID
	a.BirthDate = birth
	a.BirthWeight = in.BirthWeight
	a.WeaningDate = weaning
	a.WeaningWeight = in.WeaningWeight
	a.YearlingDate = yearling
	a.YearlingWeight = in.YearlingWeight
	return nil
}

// CreateAnimal stores a new animal owned by the actor's farm. For a female
// the mirrored Dam is created in the same transaction and returned.
func (s *Service) CreateAnimal(ctx context.Context, actor auth.Actor, in AnimalInput) (*models.Animal, *models.Dam, error) {
	var (
		animal *models.Animal
		dam    *models.Dam
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		animal, dam, err = s.createAnimal(ctx, tx, actor, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordCreated("animal")
	if dam != nil {
		s.metrics.RecordCreated("dam")
	}
	s.logger.Info("animal created", zap.Uint("animal_id", animal.ID), zap.Bool("mirrored_dam", dam != nil))
	return animal, dam, nil
}

func (s *Service) createAnimal(ctx context.Context, tx repository.Store, actor auth.Actor, in AnimalInput) (*models.Animal, *models.Dam, error) {
	farm := actor.FarmID
	animal := &models.Animal{State: models.StateOpen, FarmID: &farm}
	if err := in.apply(animal); err != nil {
		return nil, nil, err
	}
	animal.Stamp(actor.FarmID)

	if err := tx.CreateAnimal(ctx, animal); err != nil {
		return nil, nil, err
	}
	if !animal.IsFemale() {
		return animal, nil, nil
	}

	dam := animal.MirrorDam()
	if err := tx.CreateDam(ctx, dam); err != nil {
		return nil, nil, fmt.Errorf("mirror dam for animal %d: %w", animal.ID, err)
	}
	return animal, dam, nil
}

// GetAnimal loads one of the actor's animals.
func (s *Service) GetAnimal(ctx context.Context, actor auth.Actor, id uint) (*models.Animal, error) {
	animal, err := s.store.GetAnimal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsAnimal(actor, animal) {
		return nil, notFound("animal", id)
	}
	return animal, nil
}

// UpdateAnimal rewrites the animal's fields. Lifecycle state and the mirrored
// Dam are left alone.
func (s *Service) UpdateAnimal(ctx context.Context, actor auth.Actor, id uint, in AnimalInput) (*models.Animal, error) {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		animal, err := tx.GetAnimal(ctx, id)
		if err != nil {
			return err
		}
		if !ownsAnimal(actor, animal) {
			return notFound("animal", id)
		}
		if err := in.apply(animal); err != nil {
			return err
		}
		animal.Stamp(actor.FarmID)
		return tx.SaveAnimal(ctx, animal)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetAnimal(ctx, id)
}

// ListAnimals pages the actor's animals, optionally filtered by a search term.
func (s *Service) ListAnimals(ctx context.Context, actor auth.Actor, search string, page models.Page) (models.List[models.Animal], error) {
	animals, total, err := s.store.ListAnimals(ctx, repository.AnimalFilter{
		FarmID: actor.FarmID,
		Search: search,
		Page:   page,
	})
	if err != nil {
		return models.List[models.Animal]{}, err
	}
	return models.NewList(animals, total, page), nil
}

// TransitionAnimal applies a manual lifecycle move such as disposal.
func (s *Service) TransitionAnimal(ctx context.Context, actor auth.Actor, id uint, state string) (*models.Animal, error) {
	target, err := models.ParseState(state)
	if err != nil {
		return nil, err
	}

	var report func()
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		animal, err := tx.GetAnimal(ctx, id)
		if err != nil {
			return err
		}
		if !ownsAnimal(actor, animal) {
			return notFound("animal", id)
		}
		report, err = s.transition(ctx, tx, animal, target, actor.FarmID)
		return err
	})
	if err != nil {
		return nil, err
	}
	report()
	return s.store.GetAnimal(ctx, id)
}

// OffspringForm holds the defaults offered when recording a calf.
type OffspringForm struct {
	Parent    *models.Animal `json:"parent"`
	BirthDate string         `json:"birth_date"`
	SireID    *uint          `json:"sire_id,omitempty"`
	DamID     *uint          `json:"dam_id,omitempty"`
}

// OffspringDefaults pre-fills a calf from the parent's most recent service.
// Without any service both sire and dam stay unset.
func (s *Service) OffspringDefaults(ctx context.Context, actor auth.Actor, parentRef string) (*OffspringForm, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}

	form := &OffspringForm{Parent: parent, BirthDate: s.today().Format(dateLayout)}

	latest, err := s.store.LatestService(ctx, parent.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return form, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest service for offspring form: %w", err)
	}
	sire := latest.SireID
	form.SireID = &sire

	dam, err := s.store.MirroredDam(ctx, parent.ID)
	switch {
	case err == nil:
		form.DamID = &dam.ID
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("mirrored dam for offspring form: %w", err)
	}
	return form, nil
}

// Offspring is the outcome of recording a calf.
type Offspring struct {
	Calf      *models.Animal          `json:"calf"`
	CalfDam   *models.Dam             `json:"mirrored_dam,omitempty"`
	Parent    *models.Animal          `json:"parent"`
	Lactation *models.LactationPeriod `json:"lactation"`
}

// AddOffspring records a calf for the parent animal, moves the parent to
// lactating and files the calf under the parent's open lactation period.
func (s *Service) AddOffspring(ctx context.Context, actor auth.Actor, parentRef string, in AnimalInput) (*Offspring, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}

	out := &Offspring{}
	var report func()
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if in.DamID == nil {
			mirror, err := tx.MirroredDam(ctx, parent.ID)
			switch {
			case err == nil:
				in.DamID = &mirror.ID
			case !errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("mirrored dam of parent %d: %w", parent.ID, err)
			}
		}

		calf, dam, err := s.createAnimal(ctx, tx, actor, in)
		if err != nil {
			return err
		}
		out.Calf, out.CalfDam = calf, dam

		if report, err = s.transition(ctx, tx, parent, models.StateLactating, actor.FarmID); err != nil {
			return err
		}

		lactation, err := tx.OpenLactation(ctx, parent.ID)
		if errors.Is(err, repository.ErrNotFound) {
			start := s.today()
			if calf.BirthDate != nil {
				start = *calf.BirthDate
			}
			lactation = &models.LactationPeriod{AnimalID: parent.ID, StartDate: start}
			lactation.Stamp(actor.FarmID)
			err = tx.CreateLactation(ctx, lactation)
		}
		if err != nil {
			return fmt.Errorf("lactation period of animal %d: %w", parent.ID, err)
		}
		if err := tx.AddCalf(ctx, lactation.ID, calf.ID); err != nil {
			return err
		}
		out.Lactation = lactation
		return nil
	})
	if err != nil {
		return nil, err
	}

	report()
	s.metrics.RecordCreated("animal")
	if out.CalfDam != nil {
		s.metrics.RecordCreated("dam")
	}
	out.Parent = parent
	s.logger.Info("offspring recorded",
		zap.Uint("parent_id", parent.ID),
		zap.Uint("calf_id", out.Calf.ID),
		zap.Uint("lactation_id", out.Lactation.ID),
	)
	return out, nil
}

// ParseID parses a path identifier.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad id %q", ErrInvalidInput, raw)
	}
	return uint(id), nil
}
