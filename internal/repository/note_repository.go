package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "notas/internal/errors"
	"notas/internal/model"
)

// NoteFields are the client controlled columns of a new nota.
type NoteFields struct {
	Title          string
	Description    *string
	Labels         *string
	ImagePath      *string
	ExpirationDate *time.Time
}

// NotePatch lists the columns an update may change; nil means unchanged.
// The Clear flags write NULL to nullable columns. There is no owner field.
type NotePatch struct {
	Title          *string
	Description    *string
	Labels         *string
	ImagePath      *string
	ExpirationDate *time.Time

	ClearDescription    bool
	ClearLabels         bool
	ClearExpirationDate bool
}

func (p NotePatch) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	switch {
	case p.Description != nil:
		cols["description"] = *p.Description
	case p.ClearDescription:
		cols["description"] = nil
	}
	switch {
	case p.Labels != nil:
		cols["labels"] = *p.Labels
	case p.ClearLabels:
		cols["labels"] = nil
	}
	if p.ImagePath != nil {
		cols["image_path"] = *p.ImagePath
	}
	switch {
	case p.ExpirationDate != nil:
		cols["expiration_date"] = *p.ExpirationDate
	case p.ClearExpirationDate:
		cols["expiration_date"] = nil
	}
	return cols
}

// NoteRepository defines nota persistence operations. Methods return values,
// not pointers into shared state.
type NoteRepository interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Note, error)
	Create(ctx context.Context, ownerID uint, fields NoteFields) (model.Note, error)
	FindByID(ctx context.Context, id uint) (model.Note, error)
	Update(ctx context.Context, id uint, patch NotePatch) (model.Note, error)
	Delete(ctx context.Context, id uint) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new nota repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// ListByOwner returns every nota owned by ownerID.
func (r *noteRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Note, error) {
	notes := make([]model.Note, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("id").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notas for user %d: %w", ownerID, err)
	}
	return notes, nil
}

// Create inserts a nota owned by ownerID.
func (r *noteRepository) Create(ctx context.Context, ownerID uint, fields NoteFields) (model.Note, error) {
	note := model.Note{
		Title:          fields.Title,
		Description:    fields.Description,
		UserID:         ownerID,
		Labels:         fields.Labels,
		ImagePath:      fields.ImagePath,
		ExpirationDate: fields.ExpirationDate,
	}
	if err := r.db.WithContext(ctx).Create(&note).Error; err != nil {
		return model.Note{}, fmt.Errorf("create nota: %w", err)
	}
	return note, nil
}

// FindByID finds a nota by ID.
func (r *noteRepository) FindByID(ctx context.Context, id uint) (model.Note, error) {
	return findNote(ctx, r.db, id)
}

// Update applies patch and returns the stored row as it is after the write.
func (r *noteRepository) Update(ctx context.Context, id uint, patch NotePatch) (model.Note, error) {
	var updated model.Note
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cols := patch.columns(); len(cols) > 0 {
			res := tx.Model(&model.Note{}).Where("id = ?", id).Updates(cols)
			if res.Error != nil {
				return fmt.Errorf("update nota %d: %w", id, res.Error)
			}
		}
		note, err := findNote(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = note
		return nil
	})
	if err != nil {
		return model.Note{}, err
	}
	return updated, nil
}

// Delete removes the nota.
func (r *noteRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Note{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete nota %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNoteNotFound
	}
	return nil
}

func findNote(ctx context.Context, db *gorm.DB, id uint) (model.Note, error) {
	var note model.Note
	if err := db.WithContext(ctx).First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Note{}, apperrors.ErrNoteNotFound
		}
		return model.Note{}, fmt.Errorf("find nota %d: %w", id, err)
	}
	return note, nil
}
