package storefront

import (
	"math/rand/v2"

	"github.com/utafrali/FoodStore/internal/domain"
)

const (
	// BestSellerCount is the size of the "All" sample.
	BestSellerCount = 8
	// BestSellerHeading titles the "All" view.
	BestSellerHeading = "Best Seller"
	// EmptyCategoryMessage is shown when a view has no products.
	EmptyCategoryMessage = "No food items available."
)

// DisplayFilter selects the products shown for a category.
type DisplayFilter struct {
	st  *state
	rng *rand.Rand

	// guarded by st.mu
	selected      string
	sample        []domain.Product
	sampleVersion uint64
	sampled       bool
}

// Select returns the products for category. "All" yields a random sample
// that stays fixed until another category is selected or the catalog
// reloads. Unknown categories yield nothing.
func (d *DisplayFilter) Select(category string) []domain.Product {
	d.st.mu.Lock()
	defer d.st.mu.Unlock()

	prev := d.selected
	d.selected = category

	if category == domain.CategoryAll {
		if !d.sampled || prev != domain.CategoryAll || d.sampleVersion != d.st.version {
			d.sample = d.draw()
			d.sampleVersion = d.st.version
			d.sampled = true
		}
		return cloneProducts(d.sample)
	}

	d.sampled = false
	if _, ok := domain.ParseCategory(category); !ok {
		return []domain.Product{}
	}
	out := []domain.Product{}
	for _, p := range d.st.products {
		if domain.SameCategory(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Heading returns the title of the view for category.
func (d *DisplayFilter) Heading(category string) string {
	if category == domain.CategoryAll {
		return BestSellerHeading
	}
	return category
}

// draw must be called with st.mu held.
func (d *DisplayFilter) draw() []domain.Product {
	n := len(d.st.products)
	perm := d.rng.Perm(n)
	k := min(BestSellerCount, n)
	out := make([]domain.Product, 0, k)
	for _, i := range perm[:k] {
		out = append(out, d.st.products[i])
	}
	return out
}

func cloneProducts(ps []domain.Product) []domain.Product {
	out := make([]domain.Product, len(ps))
	copy(out, ps)
	return out
}
