package repository

import (
	"context"

	"github.com/utafrali/FoodStore/internal/domain"
)

// FoodRepository defines the interface for catalog persistence operations.
type FoodRepository interface {
	// List returns every food in insertion order.
	List(ctx context.Context) ([]domain.Product, error)

	// GetByID retrieves a food by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Create inserts a new food.
	Create(ctx context.Context, food *domain.Product) error

	// Delete removes a food and returns the image key it referenced.
	Delete(ctx context.Context, id string) (string, error)

	// SetStock updates the availability flag of a food.
	SetStock(ctx context.Context, id string, inStock bool) error
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CartRepository defines the interface for cart persistence operations.
// Every method returns the cart as it is after the operation.
type CartRepository interface {
	// Get returns the user's cart. A missing cart is empty, not an error.
	Get(ctx context.Context, userID string) (domain.CartItems, error)

	// Increment adds one unit of key.
	Increment(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error)

	// Decrement removes one unit of key, dropping the line at zero.
	Decrement(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error)
}
