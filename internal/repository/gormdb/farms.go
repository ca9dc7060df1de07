package gormdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func (s *Store) CreateFarm(ctx context.Context, f *models.Farm) error {
	if err := s.conn(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("create farm: %w", err)
	}
	return nil
}

func (s *Store) GetFarm(ctx context.Context, id uint) (*models.Farm, error) {
	var f models.Farm
	if err := s.conn(ctx).First(&f, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("farm %d", id))
	}
	return &f, nil
}

// FarmNameTaken compares names case-insensitively.
func (s *Store) FarmNameTaken(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Farm{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check farm name: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListFarms(ctx context.Context) ([]models.Farm, error) {
	var farms []models.Farm
	if err := s.conn(ctx).Order("id").Find(&farms).Error; err != nil {
		return nil, fmt.Errorf("list farms: %w", err)
	}
	return farms, nil
}

// HerdStats summarizes a farm's herd over [from, to).
func (s *Store) HerdStats(ctx context.Context, farmID uint, from, to time.Time) (repository.HerdStats, error) {
	stats := repository.HerdStats{StateCounts: make(map[models.State]int64)}

	var groups []struct {
		State models.State
		Total int64
	}
	err := s.conn(ctx).Model(&models.Animal{}).
		Select("state, COUNT(*) AS total").
		Where("farm_id = ? AND is_active = true", farmID).
		Group("state").
		Scan(&groups).Error
	if err != nil {
		return stats, fmt.Errorf("state counts of farm %d: %w", farmID, err)
	}
	for _, g := range groups {
		stats.StateCounts[g.State] = g.Total
	}

	herd := func(db *gorm.DB, table string) *gorm.DB {
		return db.Joins(fmt.Sprintf("JOIN animals ON animals.id = %s.animal_id", table)).
			Where("animals.farm_id = ?", farmID).
			Where(active(table)).
			Where(table+".date >= ? AND "+table+".date < ?", from, to)
	}

	var milk decimal.NullDecimal
	err = herd(s.conn(ctx).Model(&models.MilkProduction{}), "milk_productions").
		Select("SUM(milk_productions.amount)").
		Row().Scan(&milk)
	if err != nil {
		return stats, fmt.Errorf("milk total of farm %d: %w", farmID, err)
	}
	if milk.Valid {
		stats.MilkTotal = milk.Decimal.Round(2)
	}

	if err := herd(s.conn(ctx).Model(&models.Service{}), "services").Count(&stats.Services).Error; err != nil {
		return stats, fmt.Errorf("services of farm %d: %w", farmID, err)
	}

	checks := func(result models.CheckResult, dst *int64) error {
		return herd(s.conn(ctx).Model(&models.PregnancyCheck{}), "pregnancy_checks").
			Where("pregnancy_checks.result = ?", result).
			Count(dst).Error
	}
	if err := checks(models.ResultPregnant, &stats.PregnantChecks); err != nil {
		return stats, fmt.Errorf("pregnant checks of farm %d: %w", farmID, err)
	}
	if err := checks(models.ResultOpen, &stats.OpenChecks); err != nil {
		return stats, fmt.Errorf("open checks of farm %d: %w", farmID, err)
	}

	err = s.conn(ctx).Model(&models.Animal{}).
		Where("farm_id = ? AND is_active = true AND birth_date >= ? AND birth_date < ?", farmID, from, to).
		Count(&stats.Births).Error
	if err != nil {
		return stats, fmt.Errorf("births of farm %d: %w", farmID, err)
	}

	return stats, nil
}
