package service

import (
	"Inbox/internal/crypto"
	"Inbox/internal/model"
	"Inbox/internal/repo"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// итерации PBKDF2 в тестах занижены, чтобы не тратить время
const testIterations = 1000

func newTestHasher() *crypto.Hasher { return crypto.NewHasher(testIterations) }

// newTestDB — отдельная in-memory SQLite на каждый тест
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	return db
}

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, *model.User) *model.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.ImageRepository
type mockImageRepo struct{ mock.Mock }

func (m *mockImageRepo) Create(ctx context.Context, img *model.Image) error {
	return m.Called(ctx, img).Error(0)
}

func (m *mockImageRepo) GetByID(ctx context.Context, id string) (*model.Image, error) {
	args := m.Called(ctx, id)
	if img, ok := args.Get(0).(*model.Image); ok {
		return img, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ImageRepository = (*mockImageRepo)(nil)

// countingHasher считает вызовы настоящего хешера
type countingHasher struct {
	*crypto.Hasher
	verify, dummy int
}

func (h *countingHasher) Verify(password, encoded string) bool {
	h.verify++
	return h.Hasher.Verify(password, encoded)
}

func (h *countingHasher) VerifyDummy(password string) {
	h.dummy++
	h.Hasher.VerifyDummy(password)
}
