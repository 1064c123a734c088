package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"notas/internal/model"
	"notas/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStore.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Note, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteRepository) Create(ctx context.Context, ownerID uint, fields repository.NoteFields) (model.Note, error) {
	args := m.Called(ctx, ownerID, fields)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) FindByID(ctx context.Context, id uint) (model.Note, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, id uint, patch repository.NotePatch) (model.Note, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockImageStorer is a mock implementation of ImageStorer.
type MockImageStorer struct {
	mock.Mock
}

func (m *MockImageStorer) Store(ctx context.Context, payload, dir string) (string, error) {
	args := m.Called(ctx, payload, dir)
	return args.String(0), args.Error(1)
}
