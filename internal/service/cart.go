package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/event"
	"github.com/utafrali/FoodStore/internal/repository"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
)

// Messages returned by the cart endpoints.
const (
	MsgAddedToCart     = "Added To Cart"
	MsgRemovedFromCart = "Removed From Cart"
	MsgFoodNotFound    = "Food not found"
	MsgOutOfStock      = "Food is out of stock"
)

// CartService implements the business logic for user carts.
type CartService struct {
	carts     repository.CartRepository
	foods     repository.FoodRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartRepository,
	foods repository.FoodRepository,
	publisher event.Publisher,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:     carts,
		foods:     foods,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns the user's cart.
func (s *CartService) Get(ctx context.Context, userID string) (domain.CartItems, error) {
	items, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return items, nil
}

// Add puts one unit of key into the cart. The product must exist and be in
// stock, and a non-empty size must be one of its packing sizes.
func (s *CartService) Add(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error) {
	food, err := s.foods.GetByID(ctx, key.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage(MsgFoodNotFound)
		}
		return nil, fmt.Errorf("load food: %w", err)
	}
	if !food.InStock {
		return nil, apperrors.Conflict(MsgOutOfStock)
	}
	if key.Size != "" {
		if _, ok := food.FindSize(key.Size); !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown packing size %q", key.Size))
		}
	}

	items, err := s.carts.Increment(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	s.publishUpdated(ctx, userID, items)
	s.logger.InfoContext(ctx, "cart item added",
		slog.String("user_id", userID),
		slog.String("key", key.String()),
		slog.Int("quantity", items[key]),
	)
	return items, nil
}

// Remove takes one unit of key out of the cart. Removing an absent key
// returns the cart unchanged.
func (s *CartService) Remove(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error) {
	items, err := s.carts.Decrement(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}

	s.publishUpdated(ctx, userID, items)
	s.logger.InfoContext(ctx, "cart item removed",
		slog.String("user_id", userID),
		slog.String("key", key.String()),
		slog.Int("quantity", items[key]),
	)
	return items, nil
}

func (s *CartService) publishUpdated(ctx context.Context, userID string, items domain.CartItems) {
	if err := s.publisher.PublishCartUpdated(ctx, userID, items); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
