package storefront

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/utafrali/FoodStore/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPriceFor(t *testing.T) {
	sized := &domain.Product{
		ID:    "A",
		Price: domain.PriceFromInt(40),
		PackingSizes: []domain.PackingSize{
			{Size: "100g", Price: domain.PriceFromInt(50)},
			{Size: "250g", Price: domain.PriceFromInt(110)},
		},
	}
	baseOnly := &domain.Product{ID: "B", Price: domain.NewPrice(dec("30.5"))}
	firstAbsent := &domain.Product{
		ID:    "D",
		Price: domain.PriceFromInt(9),
		PackingSizes: []domain.PackingSize{
			{Size: "100g"},
			{Size: "250g", Price: domain.PriceFromInt(110)},
		},
	}

	tests := []struct {
		name    string
		product *domain.Product
		size    string
		want    string
	}{
		{"matching label", sized, "250g", "110"},
		{"unmatched label uses first entry", sized, "1kg", "50"},
		{"empty size uses first entry", sized, "", "50"},
		{"label match is exact", sized, "250G", "50"},
		{"base price without sizes", baseOnly, "100g", "30.5"},
		{"absent entry falls through to base price", firstAbsent, "100g", "9"},
		{"present entry still wins", firstAbsent, "250g", "110"},
		{"nothing resolvable", &domain.Product{ID: "C"}, "", "0"},
		{"nil product", nil, "100g", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceFor(tt.product, tt.size)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDisplayPrice(t *testing.T) {
	sized := &domain.Product{PackingSizes: []domain.PackingSize{{Size: "100g", Price: domain.PriceFromInt(50)}}}
	assert.Equal(t, "₹50 (100g)", DisplayPrice(sized))
	assert.Equal(t, "₹30.5", DisplayPrice(&domain.Product{Price: domain.NewPrice(dec("30.5"))}))
	assert.Equal(t, "₹0", DisplayPrice(&domain.Product{}))
}
