package herd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// ServiceInput is the validated breeding service form.
type ServiceInput struct {
	SireID uint                 `json:"sire_id" form:"sire_id" binding:"required"`
	Method models.ServiceMethod `json:"method" form:"method" binding:"omitempty,oneof=artificial_insemination natural_service"`
	Date   string               `json:"date" form:"date" binding:"omitempty,datetime=2006-01-02"`
	Notes  string               `json:"notes" form:"notes" binding:"max=200"`
}

// ServiceForm holds the defaults offered when recording a service.
type ServiceForm struct {
	Animal *models.Animal       `json:"animal"`
	Method models.ServiceMethod `json:"method"`
	Date   string               `json:"date"`
}

// ServiceRow is a service with the outcome of its latest pregnancy check.
type ServiceRow struct {
	models.Service
	Status string `json:"status"`
}

// ServiceDetail is a service with its pregnancy checks.
type ServiceDetail struct {
	Service         ServiceRow                         `json:"service"`
	PregnancyChecks models.List[models.PregnancyCheck] `json:"pregnancy_checks"`
}

func (s *Service) serviceFields(ctx context.Context, tx repository.Store, svc *models.Service, in ServiceInput) error {
	if _, err := tx.GetSire(ctx, in.SireID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: unknown sire %d", ErrInvalidInput, in.SireID)
		}
		return err
	}
	date, err := s.dateOrToday("date", in.Date)
	if err != nil {
		return err
	}
	method := in.Method
	if method == "" {
		method = models.MethodArtificialInsemination
	}

	svc.SireID = in.SireID
	svc.Method = method
	svc.Date = date
	svc.Notes = in.Notes
	return nil
}

// ServiceDefaults returns the defaults for a new service on the parent animal.
func (s *Service) ServiceDefaults(ctx context.Context, actor auth.Actor, parentRef string) (*ServiceForm, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}
	return &ServiceForm{
		Animal: parent,
		Method: models.MethodArtificialInsemination,
		Date:   s.today().Format(dateLayout),
	}, nil
}

// CreateService records a breeding event and marks the animal served.
func (s *Service) CreateService(ctx context.Context, actor auth.Actor, parentRef string, in ServiceInput) (*models.Service, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}

	svc := &models.Service{AnimalID: parent.ID}
	var report func()
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := s.serviceFields(ctx, tx, svc, in); err != nil {
			return err
		}
		svc.Stamp(actor.FarmID)
		if err := tx.CreateService(ctx, svc); err != nil {
			return err
		}
		var err error
		report, err = s.transition(ctx, tx, parent, models.StateServed, actor.FarmID)
		return err
	})
	if err != nil {
		return nil, err
	}

	report()
	s.metrics.RecordCreated("service")
	s.logger.Info("service recorded", zap.Uint("service_id", svc.ID), zap.Uint("animal_id", parent.ID))
	return svc, nil
}

// UpdateService edits a service. The animal's state is not touched.
func (s *Service) UpdateService(ctx context.Context, actor auth.Actor, id uint, in ServiceInput) (*models.Service, error) {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		svc, err := tx.GetService(ctx, id)
		if err != nil {
			return err
		}
		if !ownsRecord(actor, svc.Audit) {
			return notFound("service", id)
		}
		if err := s.serviceFields(ctx, tx, svc, in); err != nil {
			return err
		}
		svc.Stamp(actor.FarmID)
		return tx.SaveService(ctx, svc)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetService(ctx, id)
}

// GetService returns the service with its checks, newest first.
func (s *Service) GetService(ctx context.Context, actor auth.Actor, id uint, page models.Page) (*ServiceDetail, error) {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsRecord(actor, svc.Audit) {
		return nil, notFound("service", id)
	}

	checks, total, err := s.store.ListPregnancyChecks(ctx, repository.RecordFilter{ServiceID: &svc.ID, Page: page})
	if err != nil {
		return nil, err
	}
	row, err := s.serviceRow(ctx, *svc)
	if err != nil {
		return nil, err
	}
	return &ServiceDetail{Service: row, PregnancyChecks: models.NewList(checks, total, page)}, nil
}

// ListServices pages the actor's services across all animals.
func (s *Service) ListServices(ctx context.Context, actor auth.Actor, page models.Page) (models.List[ServiceRow], error) {
	farm := actor.FarmID
	return s.serviceRows(ctx, repository.RecordFilter{FarmID: &farm, Page: page})
}

func (s *Service) serviceRows(ctx context.Context, f repository.RecordFilter) (models.List[ServiceRow], error) {
	services, total, err := s.store.ListServices(ctx, f)
	if err != nil {
		return models.List[ServiceRow]{}, err
	}
	rows := make([]ServiceRow, 0, len(services))
	for _, svc := range services {
		row, err := s.serviceRow(ctx, svc)
		if err != nil {
			return models.List[ServiceRow]{}, err
		}
		rows = append(rows, row)
	}
	return models.NewList(rows, total, f.Page), nil
}

// serviceRow labels a service with its latest check result, or nothing when unchecked.
func (s *Service) serviceRow(ctx context.Context, svc models.Service) (ServiceRow, error) {
	row := ServiceRow{Service: svc}
	check, err := s.store.LatestCheckForService(ctx, svc.ID)
	switch {
	case err == nil:
		row.Status = check.Result.Label()
	case !errors.Is(err, repository.ErrNotFound):
		return row, err
	}
	return row, nil
}

// PregnancyCheckInput is the validated pregnancy check form. ServiceID is
// optional; without it the animal's latest service is linked.
type PregnancyCheckInput struct {
	ServiceID   *uint              `json:"service_id" form:"service_id"`
	Result      models.CheckResult `json:"result" form:"result" binding:"required,oneof=pregnant open"`
	CheckMethod models.CheckMethod `json:"check_method" form:"check_method" binding:"omitempty,oneof=palpation ultrasound observation blood"`
	Date        string             `json:"date" form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// PregnancyCheckForm holds the defaults offered when recording a check.
type PregnancyCheckForm struct {
	Animal    *models.Animal `json:"animal"`
	ServiceID *uint          `json:"service_id,omitempty"`
	Date      string         `json:"date"`
}

// PregnancyCheckDefaults pre-selects the animal's latest service, if any.
func (s *Service) PregnancyCheckDefaults(ctx context.Context, actor auth.Actor, parentRef string) (*PregnancyCheckForm, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}
	form := &PregnancyCheckForm{Animal: parent, Date: s.today().Format(dateLayout)}
	latest, err := s.store.LatestService(ctx, parent.ID)
	switch {
	case err == nil:
		form.ServiceID = &latest.ID
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return form, nil
}

// CreatePregnancyCheck records a check, links it to a service and moves the
// animal to pregnant or open according to the result.
func (s *Service) CreatePregnancyCheck(ctx context.Context, actor auth.Actor, parentRef string, in PregnancyCheckInput) (*models.PregnancyCheck, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}

	var target models.State
	switch in.Result {
	case models.ResultPregnant:
		target = models.StatePregnant
	case models.ResultOpen:
		target = models.StateOpen
	default:
		return nil, fmt.Errorf("%w: unknown result %q", ErrInvalidInput, in.Result)
	}
	date, err := s.dateOrToday("date", in.Date)
	if err != nil {
		return nil, err
	}

	check := &models.PregnancyCheck{
		AnimalID:    parent.ID,
		Result:      in.Result,
		CheckMethod: in.CheckMethod,
		Date:        date,
	}
	var report func()
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		serviceID, err := linkService(ctx, tx, parent.ID, in.ServiceID)
		if err != nil {
			return err
		}
		check.ServiceID = serviceID
		check.Stamp(actor.FarmID)
		if err := tx.CreatePregnancyCheck(ctx, check); err != nil {
			return err
		}
		report, err = s.transition(ctx, tx, parent, target, actor.FarmID)
		return err
	})
	if err != nil {
		return nil, err
	}

	report()
	s.metrics.RecordCreated("pregnancy_check")
	s.logger.Info("pregnancy check recorded",
		zap.Uint("check_id", check.ID),
		zap.Uint("animal_id", parent.ID),
		zap.String("result", string(check.Result)),
		zap.Bool("linked", check.ServiceID != nil),
	)
	return check, nil
}

// linkService validates an explicit service or falls back to the latest one.
// No service at all leaves the link unset.
func linkService(ctx context.Context, tx repository.Store, animalID uint, explicit *uint) (*uint, error) {
	if explicit != nil {
		svc, err := tx.GetService(ctx, *explicit)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown service %d", ErrInvalidInput, *explicit)
		}
		if err != nil {
			return nil, err
		}
		if svc.AnimalID != animalID {
			return nil, ErrServiceMismatch
		}
		return &svc.ID, nil
	}

	latest, err := tx.LatestService(ctx, animalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest service of animal %d: %w", animalID, err)
	}
	return &latest.ID, nil
}

// GetPregnancyCheck loads one of the actor's checks.
func (s *Service) GetPregnancyCheck(ctx context.Context, actor auth.Actor, id uint) (*models.PregnancyCheck, error) {
	check, err := s.store.GetPregnancyCheck(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsRecord(actor, check.Audit) {
		return nil, notFound("pregnancy check", id)
	}
	return check, nil
}
