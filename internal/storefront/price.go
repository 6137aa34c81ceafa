package storefront

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/FoodStore/internal/domain"
)

// PriceFor resolves the unit price of product in size: the matching packing
// size, else the first packing size, else the base price, else zero.
// Entries with an absent price fall through to the next step.
func PriceFor(product *domain.Product, size string) decimal.Decimal {
	if product == nil {
		return decimal.Zero
	}
	if len(product.PackingSizes) > 0 {
		if ps, ok := product.FindSize(size); ok && ps.Price.Valid {
			return ps.Price.Amount
		}
		if first := product.PackingSizes[0]; first.Price.Valid {
			return first.Price.Amount
		}
	}
	if product.Price.Valid {
		return product.Price.Amount
	}
	return decimal.Zero
}
