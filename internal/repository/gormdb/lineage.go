package gormdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

func (s *Store) create(ctx context.Context, what string, record any) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		return fmt.Errorf("create %s: %w", what, err)
	}
	return nil
}

func (s *Store) lookupList(ctx context.Context, model any) func() *gorm.DB {
	return func() *gorm.DB {
		return s.conn(ctx).Model(model).Where("is_active = true")
	}
}

func (s *Store) CreateSire(ctx context.Context, sire *models.Sire) error {
	return s.create(ctx, "sire", sire)
}

func (s *Store) GetSire(ctx context.Context, id uint) (*models.Sire, error) {
	var sire models.Sire
	if err := s.conn(ctx).Preload("Breed").Preload("Breeder").Where("is_active = true").First(&sire, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("sire %d", id))
	}
	return &sire, nil
}

func (s *Store) ListSires(ctx context.Context, p models.Page) ([]models.Sire, int64, error) {
	return listPage[models.Sire](s.lookupList(ctx, &models.Sire{}), p, "id", "Breeder")
}

func (s *Store) CreateDam(ctx context.Context, dam *models.Dam) error {
	return s.create(ctx, "dam", dam)
}

func (s *Store) GetDam(ctx context.Context, id uint) (*models.Dam, error) {
	var dam models.Dam
	if err := s.conn(ctx).Preload("Breed").Where("is_active = true").First(&dam, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("dam %d", id))
	}
	return &dam, nil
}

func (s *Store) ListDams(ctx context.Context, p models.Page) ([]models.Dam, int64, error) {
	return listPage[models.Dam](s.lookupList(ctx, &models.Dam{}), p, "id", "Breeder")
}

// MirroredDam returns the newest dam whose backlink is the animal.
func (s *Store) MirroredDam(ctx context.Context, animalID uint) (*models.Dam, error) {
	var dam models.Dam
	err := s.conn(ctx).
		Where("animal_id = ? AND is_active = true", animalID).
		Order("id DESC").
		First(&dam).Error
	if err != nil {
		return nil, lookupErr(err, fmt.Sprintf("dam mirroring animal %d", animalID))
	}
	return &dam, nil
}

func (s *Store) CountMirroredDams(ctx context.Context, animalID uint) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.Dam{}).Where("animal_id = ?", animalID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count dams for animal %d: %w", animalID, err)
	}
	return n, nil
}

func (s *Store) CreateBreed(ctx context.Context, b *models.Breed) error {
	return s.create(ctx, "breed", b)
}

func (s *Store) ListBreeds(ctx context.Context, p models.Page) ([]models.Breed, int64, error) {
	return listPage[models.Breed](s.lookupList(ctx, &models.Breed{}), p, "name")
}

func (s *Store) CreateColor(ctx context.Context, c *models.Color) error {
	return s.create(ctx, "color", c)
}

func (s *Store) ListColors(ctx context.Context, p models.Page) ([]models.Color, int64, error) {
	return listPage[models.Color](s.lookupList(ctx, &models.Color{}), p, "name")
}

func (s *Store) CreateBreeder(ctx context.Context, b *models.Breeder) error {
	return s.create(ctx, "breeder", b)
}

func (s *Store) ListBreeders(ctx context.Context, p models.Page) ([]models.Breeder, int64, error) {
	return listPage[models.Breeder](s.lookupList(ctx, &models.Breeder{}), p, "name")
}
