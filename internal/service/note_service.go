package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"notas/internal/auth"
	apperrors "notas/internal/errors"
	"notas/internal/model"
	"notas/internal/repository"
	"notas/internal/validation"
)

// ImageDir is the blob directory nota images are written to.
const ImageDir = "notas"

// NoteInput is the client payload for creating or replacing a nota. It has
// no owner or image_path field: those are never taken from the client.
type NoteInput struct {
	Title          string  `json:"title" validate:"required,max=255"`
	Description    *string `json:"description"`
	Labels         *string `json:"labels"`
	ExpirationDate *string `json:"expiration_date" validate:"omitempty,date"`
	Image          *string `json:"image"`

	// keys present in the decoded body, null ones included
	sent map[string]bool
}

// UnmarshalJSON decodes the body and remembers which keys it carried, so an
// update can tell an explicit null from a missing key.
func (in *NoteInput) UnmarshalJSON(data []byte) error {
	type plain NoteInput
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	*in = NoteInput(decoded)
	in.sent = make(map[string]bool, len(keys))
	for k := range keys {
		in.sent[k] = true
	}
	return nil
}

// Sent reports whether key was present in the decoded body.
func (in NoteInput) Sent(key string) bool {
	return in.sent[key]
}

// normalized trims string fields and turns blank optional ones into nil.
func (in NoteInput) normalized() NoteInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = blankToNil(in.Description)
	in.Labels = blankToNil(in.Labels)
	in.ExpirationDate = blankToNil(in.ExpirationDate)
	if in.Image != nil && strings.TrimSpace(*in.Image) == "" {
		in.Image = nil
	}
	return in
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ImageStorer persists an image payload and returns its URL.
type ImageStorer interface {
	Store(ctx context.Context, payload, dir string) (string, error)
}

// NoteService handles nota operations on behalf of an authenticated caller.
// Every method that addresses a single nota loads it and checks ownership
// before it reads, validates or writes anything else.
type NoteService interface {
	List(ctx context.Context, caller auth.Identity) ([]model.Note, error)
	Create(ctx context.Context, caller auth.Identity, in NoteInput) (model.Note, error)
	Get(ctx context.Context, caller auth.Identity, noteID uint) (model.Note, error)
	Update(ctx context.Context, caller auth.Identity, noteID uint, in NoteInput) (model.Note, error)
	Delete(ctx context.Context, caller auth.Identity, noteID uint) error
}

type noteService struct {
	notes     repository.NoteRepository
	images    ImageStorer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewNoteService creates a new nota service.
func NewNoteService(
	notes repository.NoteRepository,
	images ImageStorer,
	validator *validation.Validator,
	logger *slog.Logger,
) NoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &noteService{
		notes:     notes,
		images:    images,
		validator: validator,
		logger:    logger,
	}
}

// List returns the caller's notas.
func (s *noteService) List(ctx context.Context, caller auth.Identity) ([]model.Note, error) {
	if caller.UserID == 0 {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.notes.ListByOwner(ctx, caller.UserID)
}

// Create validates in, stores its image if any, then inserts a nota owned
// by the caller.
func (s *noteService) Create(ctx context.Context, caller auth.Identity, in NoteInput) (model.Note, error) {
	if caller.UserID == 0 {
		return model.Note{}, apperrors.ErrUnauthenticated
	}
	in = in.normalized()
	expiration, err := s.validate(in)
	if err != nil {
		return model.Note{}, err
	}

	imagePath, err := s.storeImage(ctx, caller, in.Image)
	if err != nil {
		return model.Note{}, err
	}

	note, err := s.notes.Create(ctx, caller.UserID, repository.NoteFields{
		Title:          in.Title,
		Description:    in.Description,
		Labels:         in.Labels,
		ImagePath:      imagePath,
		ExpirationDate: expiration,
	})
	if err != nil {
		return model.Note{}, err
	}
	s.logger.InfoContext(ctx, "nota created", "nota_id", note.ID, "user_id", caller.UserID)
	return note, nil
}

// Get returns the nota if the caller owns it.
func (s *noteService) Get(ctx context.Context, caller auth.Identity, noteID uint) (model.Note, error) {
	return s.authorize(ctx, caller, noteID)
}

// Update replaces the fields present in in. A nullable field sent as null
// or blank is cleared. The owner never changes.
func (s *noteService) Update(ctx context.Context, caller auth.Identity, noteID uint, in NoteInput) (model.Note, error) {
	if _, err := s.authorize(ctx, caller, noteID); err != nil {
		return model.Note{}, err
	}
	in = in.normalized()
	expiration, err := s.validate(in)
	if err != nil {
		return model.Note{}, err
	}

	imagePath, err := s.storeImage(ctx, caller, in.Image)
	if err != nil {
		return model.Note{}, err
	}

	title := in.Title
	note, err := s.notes.Update(ctx, noteID, repository.NotePatch{
		Title:          &title,
		Description:    in.Description,
		Labels:         in.Labels,
		ImagePath:      imagePath,
		ExpirationDate: expiration,

		ClearDescription:    in.Sent("description") && in.Description == nil,
		ClearLabels:         in.Sent("labels") && in.Labels == nil,
		ClearExpirationDate: in.Sent("expiration_date") && expiration == nil,
	})
	if err != nil {
		return model.Note{}, err
	}
	s.logger.InfoContext(ctx, "nota updated", "nota_id", note.ID, "user_id", caller.UserID)
	return note, nil
}

// Delete removes the nota if the caller owns it.
func (s *noteService) Delete(ctx context.Context, caller auth.Identity, noteID uint) error {
	if _, err := s.authorize(ctx, caller, noteID); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "nota deleted", "nota_id", noteID, "user_id", caller.UserID)
	return nil
}

// authorize loads the nota and checks the caller owns it.
func (s *noteService) authorize(ctx context.Context, caller auth.Identity, noteID uint) (model.Note, error) {
	if caller.UserID == 0 {
		return model.Note{}, apperrors.ErrUnauthenticated
	}
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return model.Note{}, err
	}
	if !note.OwnedBy(caller.UserID) {
		s.logger.WarnContext(ctx, "nota access denied", "nota_id", noteID, "user_id", caller.UserID)
		return model.Note{}, apperrors.ErrForbidden
	}
	return note, nil
}

// validate checks in and returns the parsed expiration date.
func (s *noteService) validate(in NoteInput) (*time.Time, error) {
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}
	if in.ExpirationDate == nil {
		return nil, nil
	}
	t, err := validation.ParseDate(*in.ExpirationDate)
	if err != nil {
		// unreachable after the date tag passed
		return nil, fmt.Errorf("parse expiration date: %w", err)
	}
	return &t, nil
}

// storeImage writes a non-empty payload and returns its URL; nil means the
// nota's image is left as is.
func (s *noteService) storeImage(ctx context.Context, caller auth.Identity, payload *string) (*string, error) {
	if payload == nil {
		return nil, nil
	}
	url, err := s.images.Store(ctx, *payload, ImageDir)
	if err != nil {
		s.logger.ErrorContext(ctx, "store nota image", "user_id", caller.UserID, "err", err)
		return nil, err
	}
	return &url, nil
}
