package domain

import "strings"

// Category is a catalog category.
type Category string

// Catalog categories.
const (
	CategoryAmla        Category = "Amla"
	CategoryChuran      Category = "Churan"
	CategoryCandy       Category = "Candy"
	CategoryDriedPaan   Category = "Dried Paan"
	CategorySupari      Category = "Supari"
	CategoryMukhwas     Category = "Mukhwas"
	CategorySeeds       Category = "Seeds"
	CategoryPickle      Category = "Pickle"
	CategoryDriedFruits Category = "Dried Fruits"
)

// CategoryAll is the pseudo category that selects the best seller sample.
const CategoryAll = "All"

var categories = []Category{
	CategoryAmla, CategoryChuran, CategoryCandy, CategoryDriedPaan, CategorySupari,
	CategoryMukhwas, CategorySeeds, CategoryPickle, CategoryDriedFruits,
}

// Labels used by the first catalog, still present on older rows.
var legacyCategories = map[string]Category{
	"salad":    CategoryAmla,
	"rolls":    CategoryChuran,
	"deserts":  CategoryCandy,
	"sandwich": CategoryDriedPaan,
	"cake":     CategorySupari,
	"pure veg": CategoryMukhwas,
	"pasta":    CategorySeeds,
	"noodles":  CategoryPickle,
}

// Categories returns the categories in menu order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches s against the current categories, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// DisplayCategory returns the label shown for a stored category. Legacy
// labels are translated; unknown labels are returned unchanged.
func DisplayCategory(s string) string {
	if c, ok := legacyCategories[strings.ToLower(strings.TrimSpace(s))]; ok {
		return string(c)
	}
	return s
}

// SameCategory reports whether two labels name the same category.
func SameCategory(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
