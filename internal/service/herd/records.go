package herd

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/storage/attachments"
)

// TreatmentInput is the validated treatment form.
type TreatmentInput struct {
	Type        string `json:"type" form:"type" binding:"max=50"`
	Date        string `json:"date" form:"date" binding:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" form:"description" binding:"required,max=200"`
	Notes       string `json:"notes" form:"notes"`
}

func (s *Service) treatmentFields(t *models.Treatment, in TreatmentInput) error {
	date, err := s.dateOrToday("date", in.Date)
	if err != nil {
		return err
	}
	t.Type = in.Type
	t.Date = date
	t.Description = in.Description
	t.Notes = in.Notes
	return nil
}

// CreateTreatment records a treatment applied to the parent animal.
func (s *Service) CreateTreatment(ctx context.Context, actor auth.Actor, parentRef string, in TreatmentInput) (*models.Treatment, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}

	treatment := &models.Treatment{}
	if err := s.treatmentFields(treatment, in); err != nil {
		return nil, err
	}
	treatment.Stamp(actor.FarmID)

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.CreateTreatment(ctx, treatment, parent.ID)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCreated("treatment")
	return treatment, nil
}

// UpdateTreatment edits a treatment's fields; linked animals are kept.
func (s *Service) UpdateTreatment(ctx context.Context, actor auth.Actor, id uint, in TreatmentInput) (*models.Treatment, error) {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		treatment, err := tx.GetTreatment(ctx, id)
		if err != nil {
			return err
		}
		if !ownsRecord(actor, treatment.Audit) {
			return notFound("treatment", id)
		}
		if err := s.treatmentFields(treatment, in); err != nil {
			return err
		}
		treatment.Stamp(actor.FarmID)
		return tx.SaveTreatment(ctx, treatment)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetTreatment(ctx, id)
}

func (s *Service) GetTreatment(ctx context.Context, actor auth.Actor, id uint) (*models.Treatment, error) {
	treatment, err := s.store.GetTreatment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsRecord(actor, treatment.Audit) {
		return nil, notFound("treatment", id)
	}
	return treatment, nil
}

// NoteInput is the validated note form.
type NoteInput struct {
	Date    string `json:"date" form:"date" binding:"omitempty,datetime=2006-01-02"`
	Details string `json:"details" form:"details" binding:"required"`
}

// Upload is a file sent along with a note.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateNote records a note for the parent animal. The attachment, if any, is
// stored before the note row; a failed upload writes no row and a failed row
// removes the stored file.
func (s *Service) CreateNote(ctx context.Context, actor auth.Actor, parentRef string, in NoteInput, file *Upload) (*models.Note, error) {
	parent, err := s.ResolveParent(ctx, actor, parentRef)
	if err != nil {
		return nil, err
	}
	date, err := s.dateOrToday("date", in.Date)
	if err != nil {
		return nil, err
	}

	note := &models.Note{Date: date, Details: in.Details}
	if file != nil {
		key := attachments.NewKey(actor.FarmID, file.Filename)
		info, err := s.files.Put(ctx, key, file.Body, file.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store note attachment: %w", err)
		}
		note.AttachmentKey = info.Key
		s.logger.Debug("note attachment stored", zap.String("key", info.Key), zap.Int64("size", info.Size))
	}
	note.Stamp(actor.FarmID)

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.CreateNote(ctx, note, parent.ID)
	})
	if err != nil {
		if note.AttachmentKey != "" {
			if _, derr := s.files.Delete(ctx, note.AttachmentKey); derr != nil {
				s.logger.Warn("orphaned note attachment", zap.String("key", note.AttachmentKey), zap.Error(derr))
			}
		}
		return nil, err
	}
	s.metrics.RecordCreated("note")
	return note, nil
}

func (s *Service) GetNote(ctx context.Context, actor auth.Actor, id uint) (*models.Note, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsRecord(actor, note.Audit) {
		return nil, notFound("note", id)
	}
	return note, nil
}

// OpenAttachment streams a note's file. The caller closes the reader.
func (s *Service) OpenAttachment(ctx context.Context, actor auth.Actor, noteID uint) (attachments.Info, io.ReadCloser, error) {
	note, err := s.GetNote(ctx, actor, noteID)
	if err != nil {
		return attachments.Info{}, nil, err
	}
	if note.AttachmentKey == "" {
		return attachments.Info{}, nil, notFound("attachment of note", noteID)
	}
	return s.files.Get(ctx, note.AttachmentKey)
}
