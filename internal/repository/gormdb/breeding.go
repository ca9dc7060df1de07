package gormdb

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const latestFirst = "created_at DESC, id DESC"

func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	return s.create(ctx, "service", svc)
}

func (s *Store) SaveService(ctx context.Context, svc *models.Service) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(svc).Error; err != nil {
		return fmt.Errorf("save service %d: %w", svc.ID, err)
	}
	return nil
}

func (s *Store) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	if err := s.conn(ctx).Preload("Sire").Where("is_active = true").First(&svc, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("service %d", id))
	}
	return &svc, nil
}

// ListServices pages services newest first.
func (s *Store) ListServices(ctx context.Context, f repository.RecordFilter) ([]models.Service, int64, error) {
	build := func() *gorm.DB {
		q := s.conn(ctx).Model(&models.Service{}).Where(active("services"))
		if f.AnimalID != nil {
			q = q.Where("services.animal_id = ?", *f.AnimalID)
		}
		if f.FarmID != nil {
			q = q.Joins("JOIN animals ON animals.id = services.animal_id").
				Where("animals.farm_id = ?", *f.FarmID)
		}
		return q
	}
	return listPage[models.Service](build, f.Page, "services.id DESC", "Sire")
}

// LatestService orders by creation, so a backdated entry still wins if it was
// recorded last.
func (s *Store) LatestService(ctx context.Context, animalID uint) (*models.Service, error) {
	var svc models.Service
	err := s.conn(ctx).
		Preload("Sire").
		Where("animal_id = ? AND is_active = true", animalID).
		Order(latestFirst).
		First(&svc).Error
	if err != nil {
		return nil, lookupErr(err, fmt.Sprintf("latest service of animal %d", animalID))
	}
	return &svc, nil
}

// EarliestServiceDate returns nil when the animal was never served.
func (s *Store) EarliestServiceDate(ctx context.Context, animalID uint) (*time.Time, error) {
	var first models.Service
	err := s.conn(ctx).
		Select("date").
		Where("animal_id = ? AND is_active = true", animalID).
		Order("date ASC").
		Limit(1).
		Find(&first).Error
	if err != nil {
		return nil, fmt.Errorf("first service of animal %d: %w", animalID, err)
	}
	if first.Date.IsZero() {
		return nil, nil
	}
	return &first.Date, nil
}

func (s *Store) CountServices(ctx context.Context, animalID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Service{}).
		Where("animal_id = ? AND is_active = true", animalID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count services of animal %d: %w", animalID, err)
	}
	return n, nil
}

func (s *Store) CreatePregnancyCheck(ctx context.Context, c *models.PregnancyCheck) error {
	return s.create(ctx, "pregnancy check", c)
}

func (s *Store) GetPregnancyCheck(ctx context.Context, id uint) (*models.PregnancyCheck, error) {
	var c models.PregnancyCheck
	if err := s.conn(ctx).Preload("Service").Where("is_active = true").First(&c, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("pregnancy check %d", id))
	}
	return &c, nil
}

func (s *Store) ListPregnancyChecks(ctx context.Context, f repository.RecordFilter) ([]models.PregnancyCheck, int64, error) {
	build := func() *gorm.DB {
		q := s.conn(ctx).Model(&models.PregnancyCheck{}).Where("is_active = true")
		if f.AnimalID != nil {
			q = q.Where("animal_id = ?", *f.AnimalID)
		}
		if f.ServiceID != nil {
			q = q.Where("service_id = ?", *f.ServiceID)
		}
		return q
	}
	return listPage[models.PregnancyCheck](build, f.Page, "id DESC")
}

func (s *Store) LatestCheckForService(ctx context.Context, serviceID uint) (*models.PregnancyCheck, error) {
	var c models.PregnancyCheck
	err := s.conn(ctx).
		Where("service_id = ? AND is_active = true", serviceID).
		Order(latestFirst).
		First(&c).Error
	if err != nil {
		return nil, lookupErr(err, fmt.Sprintf("latest check of service %d", serviceID))
	}
	return &c, nil
}

// CountServiceOutcomes ignores checks that were never tied to a service.
func (s *Store) CountServiceOutcomes(ctx context.Context, animalID uint, result models.CheckResult) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.PregnancyCheck{}).
		Where("animal_id = ? AND result = ? AND service_id IS NOT NULL AND is_active = true", animalID, result).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count %s checks of animal %d: %w", result, animalID, err)
	}
	return n, nil
}

func (s *Store) CreateLactation(ctx context.Context, l *models.LactationPeriod) error {
	return s.create(ctx, "lactation period", l)
}

func (s *Store) SaveLactation(ctx context.Context, l *models.LactationPeriod) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(l).Error; err != nil {
		return fmt.Errorf("save lactation period %d: %w", l.ID, err)
	}
	return nil
}

func (s *Store) GetLactation(ctx context.Context, id uint) (*models.LactationPeriod, error) {
	var l models.LactationPeriod
	if err := s.conn(ctx).Preload("Calves").Where("is_active = true").First(&l, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("lactation period %d", id))
	}
	return &l, nil
}

// OpenLactation returns the animal's newest lactation period without an end date.
func (s *Store) OpenLactation(ctx context.Context, animalID uint) (*models.LactationPeriod, error) {
	var l models.LactationPeriod
	err := s.conn(ctx).
		Where("animal_id = ? AND end_date IS NULL AND is_active = true", animalID).
		Order("start_date DESC, id DESC").
		First(&l).Error
	if err != nil {
		return nil, lookupErr(err, fmt.Sprintf("open lactation of animal %d", animalID))
	}
	return &l, nil
}

func (s *Store) AddCalf(ctx context.Context, lactationID, calfID uint) error {
	row := map[string]any{"lactation_period_id": lactationID, "animal_id": calfID}
	if err := s.conn(ctx).Table("lactation_calves").Create(row).Error; err != nil {
		return fmt.Errorf("attach calf %d to lactation %d: %w", calfID, lactationID, err)
	}
	return nil
}

func (s *Store) ListLactations(ctx context.Context, animalID uint) ([]models.LactationPeriod, error) {
	var periods []models.LactationPeriod
	err := s.conn(ctx).
		Preload("Calves").
		Where("animal_id = ? AND is_active = true", animalID).
		Order("start_date DESC, id DESC").
		Find(&periods).Error
	if err != nil {
		return nil, fmt.Errorf("lactations of animal %d: %w", animalID, err)
	}
	return periods, nil
}
