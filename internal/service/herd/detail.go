package herd

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// DetailPages selects the page of each section of the animal detail view.
type DetailPages struct {
	Services        int
	PregnancyChecks int
	Treatments      int
	Notes           int
	MilkProduction  int
	Offspring       int
}

// AnimalStats are the breeding and production figures shown with an animal.
type AnimalStats struct {
	NumberOfServices           int64               `json:"number_of_services"`
	NumberOfSuccessfulServices int64               `json:"number_of_successful_services"`
	NumberOfFailedServices     int64               `json:"number_of_failed_services"`
	DateOfFirstService         *time.Time          `json:"date_of_first_service"`
	AllTimeProduction          decimal.NullDecimal `json:"all_time_production"`
}

// AnimalDetail is the read view of one animal. A nil section means the actor
// may not list it, it has no rows, or it failed to load.
type AnimalDetail struct {
	Animal          *models.Animal                      `json:"animal"`
	Fertile         bool                                `json:"fertile"`
	Stats           AnimalStats                         `json:"stats"`
	Services        *models.List[ServiceRow]            `json:"services,omitempty"`
	PregnancyChecks *models.List[models.PregnancyCheck] `json:"pregnancy_checks,omitempty"`
	Treatments      *models.List[models.Treatment]      `json:"treatments,omitempty"`
	Notes           *models.List[models.Note]           `json:"notes,omitempty"`
	MilkProduction  *models.List[models.MilkProduction] `json:"milk_production,omitempty"`
	Offspring       *models.List[models.Animal]         `json:"offspring,omitempty"`
	Lactations      []models.LactationPeriod            `json:"lactations,omitempty"`
}

// AnimalDetail assembles the animal with each section the actor may see.
func (s *Service) AnimalDetail(ctx context.Context, actor auth.Actor, id uint, pages DetailPages) (*AnimalDetail, error) {
	animal, err := s.GetAnimal(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	detail := &AnimalDetail{Animal: animal, Fertile: animal.IsFemale()}
	detail.Stats = s.animalStats(ctx, id)

	animalID := &animal.ID
	page := func(n int) models.Page { return models.Page{Number: n, Size: models.DefaultPageSize} }
	log := s.logger.With(zap.Uint("animal_id", id))

	if actor.Can(auth.ServiceList) {
		list, err := s.serviceRows(ctx, repository.RecordFilter{AnimalID: animalID, Page: page(pages.Services)})
		detail.Services = section(log, "services", list, err)
	}
	if actor.Can(auth.PregnancyCheckList) {
		items, total, err := s.store.ListPregnancyChecks(ctx, repository.RecordFilter{AnimalID: animalID, Page: page(pages.PregnancyChecks)})
		detail.PregnancyChecks = section(log, "pregnancy_checks", models.NewList(items, total, page(pages.PregnancyChecks)), err)
	}
	if actor.Can(auth.TreatmentList) {
		items, total, err := s.store.ListTreatments(ctx, repository.RecordFilter{AnimalID: animalID, Page: page(pages.Treatments)})
		detail.Treatments = section(log, "treatments", models.NewList(items, total, page(pages.Treatments)), err)
	}
	if actor.Can(auth.NoteList) {
		items, total, err := s.store.ListNotes(ctx, repository.RecordFilter{AnimalID: animalID, Page: page(pages.Notes)})
		detail.Notes = section(log, "notes", models.NewList(items, total, page(pages.Notes)), err)
	}
	if actor.Can(auth.MilkProductionList) {
		items, total, err := s.store.ListMilkProduction(ctx, repository.RecordFilter{AnimalID: animalID, Page: page(pages.MilkProduction)})
		detail.MilkProduction = section(log, "milk_production", models.NewList(items, total, page(pages.MilkProduction)), err)
	}
	if actor.Can(auth.AnimalList) {
		items, total, err := s.store.ListAnimals(ctx, repository.AnimalFilter{FarmID: actor.FarmID, OffspringOf: animalID, Page: page(pages.Offspring)})
		detail.Offspring = section(log, "offspring", models.NewList(items, total, page(pages.Offspring)), err)
	}
	if actor.Can(auth.LactationList) {
		periods, err := s.store.ListLactations(ctx, id)
		if err != nil {
			log.Warn("omit detail section", zap.String("section", "lactations"), zap.Error(err))
		} else if len(periods) > 0 {
			detail.Lactations = periods
		}
	}

	return detail, nil
}

// section keeps a loaded list, dropping it when empty or failed.
func section[T any](log *zap.Logger, name string, list models.List[T], err error) *models.List[T] {
	if err != nil {
		log.Warn("omit detail section", zap.String("section", name), zap.Error(err))
		return nil
	}
	if list.Total == 0 {
		return nil
	}
	return &list
}

// animalStats collects the figures independently; a failed query leaves its
// figure at zero and is logged.
func (s *Service) animalStats(ctx context.Context, id uint) AnimalStats {
	var stats AnimalStats
	log := s.logger.With(zap.Uint("animal_id", id))
	warn := func(stat string, err error) {
		log.Warn("animal stat unavailable", zap.String("stat", stat), zap.Error(err))
	}

	var err error
	if stats.NumberOfServices, err = s.store.CountServices(ctx, id); err != nil {
		warn("number_of_services", err)
	}
	if stats.NumberOfSuccessfulServices, err = s.store.CountServiceOutcomes(ctx, id, models.ResultPregnant); err != nil {
		warn("number_of_successful_services", err)
	}
	if stats.NumberOfFailedServices, err = s.store.CountServiceOutcomes(ctx, id, models.ResultOpen); err != nil {
		warn("number_of_failed_services", err)
	}
	if stats.DateOfFirstService, err = s.store.EarliestServiceDate(ctx, id); err != nil {
		warn("date_of_first_service", err)
	}
	if stats.AllTimeProduction, err = s.store.TotalMilkProduction(ctx, id); err != nil {
		warn("all_time_production", err)
	}
	return stats
}
