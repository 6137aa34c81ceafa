package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/pkg/database"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
)

const foodColumns = `id, name, description, category, COALESCE(price::text, ''), packing_sizes, image, in_stock`

// FoodRepository implements repository.FoodRepository using PostgreSQL.
type FoodRepository struct {
	db database.DBTX
}

// NewFoodRepository creates a new PostgreSQL-backed food repository.
func NewFoodRepository(db database.DBTX) *FoodRepository {
	return &FoodRepository{db: db}
}

// List returns all foods ordered by creation time.
func (r *FoodRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + foodColumns + `
		FROM foods
		ORDER BY created_at, id`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "foods.list", query)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	foods := make([]domain.Product, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			end(err)
			return nil, err
		}
		foods = append(foods, *f)
	}
	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate foods: %w", err)
	}

	end(nil)
	return foods, nil
}

// GetByID retrieves a food by its ID.
func (r *FoodRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + foodColumns + `
		FROM foods
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "foods.get", query)
	f, err := scanFood(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			end(nil)
			return nil, apperrors.NotFound("food", id)
		}
		end(err)
		return nil, err
	}

	end(nil)
	return f, nil
}

// Create inserts a new food.
func (r *FoodRepository) Create(ctx context.Context, f *domain.Product) error {
	sizes, err := encodePackingSizes(f.PackingSizes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO foods (id, name, description, category, price, packing_sizes, image, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "foods.insert", query)
	_, err = r.db.Exec(ctx, query,
		f.ID,
		f.Name,
		f.Description,
		f.Category,
		nullPrice(f.Price),
		sizes,
		f.Image,
		f.InStock,
	)
	end(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("food", "id", f.ID)
		}
		return fmt.Errorf("insert food: %w", err)
	}

	return nil
}

// Delete removes a food and returns its image key.
func (r *FoodRepository) Delete(ctx context.Context, id string) (string, error) {
	query := `DELETE FROM foods WHERE id = $1 RETURNING image`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "foods.delete", query)
	var image string
	err := r.db.QueryRow(ctx, query, id).Scan(&image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			end(nil)
			return "", apperrors.NotFound("food", id)
		}
		end(err)
		return "", fmt.Errorf("delete food: %w", err)
	}

	end(nil)
	return image, nil
}

// SetStock updates the in-stock flag of a food.
func (r *FoodRepository) SetStock(ctx context.Context, id string, inStock bool) error {
	query := `UPDATE foods SET in_stock = $1, updated_at = NOW() WHERE id = $2`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "foods.set_stock", query)
	ct, err := r.db.Exec(ctx, query, inStock, id)
	end(err)
	if err != nil {
		return fmt.Errorf("update food stock: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("food", id)
	}

	return nil
}

func scanFood(row pgx.Row) (*domain.Product, error) {
	var (
		f     domain.Product
		price string
		sizes []byte
	)

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&f.Category,
		&price,
		&sizes,
		&f.Image,
		&f.InStock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan food: %w", err)
	}

	f.Price, _ = domain.ParsePrice(price)
	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &f.PackingSizes); err != nil {
			return nil, fmt.Errorf("decode packing sizes of food %s: %w", f.ID, err)
		}
	}

	return &f, nil
}

func encodePackingSizes(sizes []domain.PackingSize) ([]byte, error) {
	if sizes == nil {
		sizes = []domain.PackingSize{}
	}
	b, err := json.Marshal(sizes)
	if err != nil {
		return nil, fmt.Errorf("encode packing sizes: %w", err)
	}
	return b, nil
}

func nullPrice(p domain.Price) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: p.Amount, Valid: p.Valid}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
