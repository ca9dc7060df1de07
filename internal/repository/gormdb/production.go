package gormdb

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateMilkProduction(ctx context.Context, m *models.MilkProduction) error {
	return s.create(ctx, "milk production", m)
}

func (s *Store) ListMilkProduction(ctx context.Context, f repository.RecordFilter) ([]models.MilkProduction, int64, error) {
	build := func() *gorm.DB {
		q := s.conn(ctx).Model(&models.MilkProduction{}).Where(active("milk_productions"))
		if f.AnimalID != nil {
			q = q.Where("milk_productions.animal_id = ?", *f.AnimalID)
		}
		if f.FarmID != nil {
			q = q.Joins("JOIN animals ON animals.id = milk_productions.animal_id").
				Where("animals.farm_id = ?", *f.FarmID)
		}
		return q
	}
	return listPage[models.MilkProduction](build, f.Page, "milk_productions.date DESC, milk_productions.id DESC")
}

// TotalMilkProduction leaves the result invalid when there is nothing to sum.
func (s *Store) TotalMilkProduction(ctx context.Context, animalID uint) (decimal.NullDecimal, error) {
	var total decimal.NullDecimal
	err := s.conn(ctx).Model(&models.MilkProduction{}).
		Select("SUM(amount)").
		Where("animal_id = ? AND is_active = true", animalID).
		Row().Scan(&total)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("milk total of animal %d: %w", animalID, err)
	}
	if total.Valid {
		total.Decimal = total.Decimal.Round(2)
	}
	return total, nil
}

// MilkSeries returns every record of the animal in chronological order.
func (s *Store) MilkSeries(ctx context.Context, animalID uint) ([]models.MilkProduction, error) {
	var rows []models.MilkProduction
	err := s.conn(ctx).
		Where("animal_id = ? AND is_active = true", animalID).
		Order("date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("milk series of animal %d: %w", animalID, err)
	}
	return rows, nil
}
