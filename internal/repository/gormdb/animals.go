package gormdb

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateAnimal inserts the animal without touching its associations.
func (s *Store) CreateAnimal(ctx context.Context, a *models.Animal) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return fmt.Errorf("create animal: %w", err)
	}
	return nil
}

// SaveAnimal writes every column of an existing animal.
func (s *Store) SaveAnimal(ctx context.Context, a *models.Animal) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(a).Error; err != nil {
		return fmt.Errorf("save animal %d: %w", a.ID, err)
	}
	return nil
}

// SetAnimalState persists a lifecycle transition.
func (s *Store) SetAnimalState(ctx context.Context, id uint, state models.State, actor uint) error {
	res := s.conn(ctx).Model(&models.Animal{}).
		Where("id = ?", id).
		Updates(map[string]any{"state": state, "modified_by_id": actor})
	if res.Error != nil {
		return fmt.Errorf("set animal %d state: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("animal %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

// GetAnimal loads an active animal with its lookup associations.
func (s *Store) GetAnimal(ctx context.Context, id uint) (*models.Animal, error) {
	var a models.Animal
	err := s.conn(ctx).
		Preload("Breed").Preload("Color").Preload("Sire").Preload("Dam").Preload("Breeder").
		Where(active("animals")).
		First(&a, id).Error
	if err != nil {
		return nil, lookupErr(err, fmt.Sprintf("animal %d", id))
	}
	return &a, nil
}

// ListAnimals returns one page of a farm's animals.
func (s *Store) ListAnimals(ctx context.Context, f repository.AnimalFilter) ([]models.Animal, int64, error) {
	build := func() *gorm.DB {
		q := s.conn(ctx).Model(&models.Animal{}).Where(active("animals"))
		if f.FarmID != 0 {
			q = q.Where("animals.farm_id = ?", f.FarmID)
		}
		if f.OffspringOf != nil {
			mirrors := s.conn(ctx).Model(&models.Dam{}).Select("id").Where("animal_id = ?", *f.OffspringOf)
			q = q.Where("animals.dam_id IN (?)", mirrors)
		}
		if term := strings.TrimSpace(f.Search); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			q = q.Joins("LEFT JOIN breeds ON breeds.id = animals.breed_id").
				Joins("LEFT JOIN dams ON dams.id = animals.dam_id").
				Joins("LEFT JOIN sires ON sires.id = animals.sire_id").
				Where("(LOWER(animals.name) LIKE ? OR LOWER(animals.ear_tag) LIKE ? OR LOWER(breeds.name) LIKE ? OR LOWER(dams.name) LIKE ? OR LOWER(sires.name) LIKE ?)",
					like, like, like, like, like)
		}
		return q
	}

	animals, total, err := listPage[models.Animal](build, f.Page, "animals.id", "Breed", "Sire", "Dam")
	if err != nil {
		return nil, 0, fmt.Errorf("animals: %w", err)
	}
	return animals, total, nil
}
