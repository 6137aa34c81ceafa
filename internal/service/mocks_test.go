package service

import (
	"context"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/storage"
	"github.com/utafrali/FoodStore/pkg/logger"
)

// --- Mock Repositories ---

type mockFoodRepository struct {
	mock.Mock
}

func (m *mockFoodRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockFoodRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockFoodRepository) Create(ctx context.Context, food *domain.Product) error {
	args := m.Called(ctx, food)
	return args.Error(0)
}

func (m *mockFoodRepository) Delete(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockFoodRepository) SetStock(ctx context.Context, id string, inStock bool) error {
	args := m.Called(ctx, id, inStock)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (domain.CartItems, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CartItems), args.Error(1)
}

func (m *mockCartRepository) Increment(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CartItems), args.Error(1)
}

func (m *mockCartRepository) Decrement(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CartItems), args.Error(1)
}

// --- Mock Storage ---

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStorage) GetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishFoodAdded(ctx context.Context, food *domain.Product) error {
	return m.Called(ctx, food).Error(0)
}

func (m *mockPublisher) PublishFoodRemoved(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPublisher) PublishFoodStockUpdated(ctx context.Context, id string, inStock bool) error {
	return m.Called(ctx, id, inStock).Error(0)
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, userID string, items domain.CartItems) error {
	return m.Called(ctx, userID, items).Error(0)
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return logger.Discard()
}
