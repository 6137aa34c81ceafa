package storefront

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/utafrali/FoodStore/internal/domain"
)

// DeliveryFee is charged on any non-empty cart.
var DeliveryFee = decimal.NewFromInt(2)

// SummaryRow is one priced cart line.
type SummaryRow struct {
	Key       domain.CartKey
	Product   domain.Product
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Summary is the priced view of the cart.
type Summary struct {
	Rows        []SummaryRow
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Empty reports whether no line resolved to a catalog product.
func (s Summary) Empty() bool {
	return len(s.Rows) == 0
}

// Summary prices every entry whose product is in the catalog. Rows follow
// catalog order, then size label.
func (c *Cart) Summary() Summary {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	rows := make([]SummaryRow, 0, len(c.st.items))
	for key, qty := range c.st.items {
		p, ok := c.st.product(key.ProductID)
		if !ok || qty <= 0 {
			continue
		}
		unit := PriceFor(p, key.Size)
		rows = append(rows, SummaryRow{
			Key:       key,
			Product:   *p,
			Quantity:  qty,
			UnitPrice: unit,
			Subtotal:  unit.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		pi, pj := c.st.index[rows[i].Key.ProductID], c.st.index[rows[j].Key.ProductID]
		if pi != pj {
			return pi < pj
		}
		return rows[i].Key.Size < rows[j].Key.Size
	})

	s := Summary{Rows: rows, Subtotal: decimal.Zero, DeliveryFee: decimal.Zero}
	for _, r := range rows {
		s.Subtotal = s.Subtotal.Add(r.Subtotal)
	}
	if len(rows) > 0 {
		s.DeliveryFee = DeliveryFee
	}
	s.Total = s.Subtotal.Add(s.DeliveryFee)
	return s
}
