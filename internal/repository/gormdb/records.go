package gormdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// link writes join rows directly; associations are never saved through gorm.
func (s *Store) link(ctx context.Context, table, column string, id uint, animalIDs []uint) error {
	for _, animalID := range animalIDs {
		row := map[string]any{column: id, "animal_id": animalID}
		if err := s.conn(ctx).Table(table).Create(row).Error; err != nil {
			return fmt.Errorf("link animal %d in %s: %w", animalID, table, err)
		}
	}
	return nil
}

func (s *Store) CreateTreatment(ctx context.Context, t *models.Treatment, animalIDs ...uint) error {
	if err := s.create(ctx, "treatment", t); err != nil {
		return err
	}
	return s.link(ctx, "treatment_animals", "treatment_id", t.ID, animalIDs)
}

func (s *Store) SaveTreatment(ctx context.Context, t *models.Treatment) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(t).Error; err != nil {
		return fmt.Errorf("save treatment %d: %w", t.ID, err)
	}
	return nil
}

func (s *Store) GetTreatment(ctx context.Context, id uint) (*models.Treatment, error) {
	var t models.Treatment
	if err := s.conn(ctx).Preload("Animals").Where("is_active = true").First(&t, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("treatment %d", id))
	}
	return &t, nil
}

func (s *Store) ListTreatments(ctx context.Context, f repository.RecordFilter) ([]models.Treatment, int64, error) {
	build := func() *gorm.DB {
		q := s.conn(ctx).Model(&models.Treatment{}).Where(active("treatments"))
		if f.AnimalID != nil {
			q = q.Joins("JOIN treatment_animals ON treatment_animals.treatment_id = treatments.id").
				Where("treatment_animals.animal_id = ?", *f.AnimalID)
		}
		return q
	}
	return listPage[models.Treatment](build, f.Page, "treatments.date DESC, treatments.id DESC")
}

func (s *Store) CreateNote(ctx context.Context, n *models.Note, animalIDs ...uint) error {
	if err := s.create(ctx, "note", n); err != nil {
		return err
	}
	return s.link(ctx, "note_animals", "note_id", n.ID, animalIDs)
}

func (s *Store) GetNote(ctx context.Context, id uint) (*models.Note, error) {
	var n models.Note
	if err := s.conn(ctx).Preload("Animals").Where("is_active = true").First(&n, id).Error; err != nil {
		return nil, lookupErr(err, fmt.Sprintf("note %d", id))
	}
	return &n, nil
}

func (s *Store) ListNotes(ctx context.Context, f repository.RecordFilter) ([]models.Note, int64, error) {
	build := func() *gorm.DB {
		q := s.conn(ctx).Model(&models.Note{}).Where(active("notes"))
		if f.AnimalID != nil {
			q = q.Joins("JOIN note_animals ON note_animals.note_id = notes.id").
				Where("note_animals.animal_id = ?", *f.AnimalID)
		}
		return q
	}
	return listPage[models.Note](build, f.Page, "notes.date DESC, notes.id DESC")
}
