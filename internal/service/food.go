package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/event"
	"github.com/utafrali/FoodStore/internal/repository"
	"github.com/utafrali/FoodStore/internal/storage"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
	"github.com/utafrali/FoodStore/pkg/slug"
	"github.com/utafrali/FoodStore/pkg/validator"
)

// Messages returned by the food endpoints.
const (
	MsgFoodAdded    = "Food Added"
	MsgFoodRemoved  = "Food Removed"
	MsgStockUpdated = "Stock Updated"
)

var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// FoodService implements the business logic for the catalog.
type FoodService struct {
	repo      repository.FoodRepository
	storage   storage.Storage
	publisher event.Publisher
	logger    *slog.Logger
}

// NewFoodService creates a new food service.
func NewFoodService(
	repo repository.FoodRepository,
	store storage.Storage,
	publisher event.Publisher,
	logger *slog.Logger,
) *FoodService {
	return &FoodService{
		repo:      repo,
		storage:   store,
		publisher: publisher,
		logger:    logger,
	}
}

// AddFoodInput holds the parameters for adding a food.
type AddFoodInput struct {
	Name         string               `json:"name" validate:"notblank"`
	Description  string               `json:"description" validate:"notblank"`
	Category     string               `json:"category" validate:"notblank"`
	PackingSizes []domain.PackingSize `json:"packingSizes" validate:"min=1"`

	ImageName   string    `json:"image" validate:"notblank"`
	ContentType string    `json:"-"`
	ImageSize   int64     `json:"-"`
	Image       io.Reader `json:"-" validate:"required"`
}

// List returns the whole catalog.
func (s *FoodService) List(ctx context.Context) ([]domain.Product, error) {
	foods, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

// Add validates the input, stores the image and inserts the food. The image
// is removed again when the insert fails.
func (s *FoodService) Add(ctx context.Context, input *AddFoodInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			return nil, apperrors.InvalidInput(ve.Message())
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	category, ok := domain.ParseCategory(input.Category)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", input.Category))
	}
	sizes, err := cleanPackingSizes(input.PackingSizes)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(input.ImageName))
	if !allowedImageExt[ext] {
		return nil, apperrors.InvalidInput(fmt.Sprintf("image type %q is not allowed", ext))
	}

	id := uuid.New().String()
	key := id + ext
	if prefix := slug.Generate(input.Name); prefix != "" {
		key = prefix + "-" + key
	}
	uploaded, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: input.ContentType,
		Size:        input.ImageSize,
		Data:        input.Image,
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	food := &domain.Product{
		ID:           id,
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		Category:     string(category),
		Price:        sizes[0].Price,
		PackingSizes: sizes,
		Image:        uploaded.Key,
		InStock:      true,
	}

	if err := s.repo.Create(ctx, food); err != nil {
		if delErr := s.storage.Delete(ctx, uploaded.Key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to clean up image after db error",
				slog.String("key", uploaded.Key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("create food: %w", err)
	}

	if err := s.publisher.PublishFoodAdded(ctx, food); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish food.added event",
			slog.String("food_id", food.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "food added",
		slog.String("food_id", food.ID),
		slog.String("category", food.Category),
		slog.Int("packing_sizes", len(food.PackingSizes)),
	)

	return food, nil
}

// Remove deletes a food and its image.
func (s *FoodService) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidInput("id is required")
	}

	image, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}

	if image != "" {
		if err := s.storage.Delete(ctx, image); err != nil {
			s.logger.WarnContext(ctx, "failed to delete food image",
				slog.String("food_id", id),
				slog.String("key", image),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.publisher.PublishFoodRemoved(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish food.removed event",
			slog.String("food_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "food removed", slog.String("food_id", id))
	return nil
}

// UpdateStock sets the availability of a food.
func (s *FoodService) UpdateStock(ctx context.Context, id string, inStock bool) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidInput("id is required")
	}

	if err := s.repo.SetStock(ctx, id, inStock); err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	if err := s.publisher.PublishFoodStockUpdated(ctx, id, inStock); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish food.stock_updated event",
			slog.String("food_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "food stock updated",
		slog.String("food_id", id),
		slog.Bool("in_stock", inStock),
	)
	return nil
}

// cleanPackingSizes trims labels and rejects blank labels, duplicates and
// missing or negative prices.
func cleanPackingSizes(in []domain.PackingSize) ([]domain.PackingSize, error) {
	out := make([]domain.PackingSize, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, ps := range in {
		size := strings.TrimSpace(ps.Size)
		switch {
		case size == "":
			return nil, apperrors.InvalidInput("packing size label is required")
		case seen[size]:
			return nil, apperrors.InvalidInput(fmt.Sprintf("duplicate packing size %q", size))
		case !ps.Price.Valid || ps.Price.Amount.IsNegative():
			return nil, apperrors.InvalidInput(fmt.Sprintf("packing size %q needs a non-negative price", size))
		}
		seen[size] = true
		out = append(out, domain.PackingSize{Size: size, Price: ps.Price})
	}
	if len(out) == 0 {
		return nil, apperrors.InvalidInput("at least one packing size is required")
	}
	return out, nil
}
