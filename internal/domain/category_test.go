package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("  dried paan ")
	assert.True(t, ok)
	assert.Equal(t, CategoryDriedPaan, c)

	c, ok = ParseCategory("PICKLE")
	assert.True(t, ok)
	assert.Equal(t, CategoryPickle, c)

	_, ok = ParseCategory("Pizza")
	assert.False(t, ok)
	_, ok = ParseCategory(CategoryAll)
	assert.False(t, ok)
}

func TestDisplayCategory_Legacy(t *testing.T) {
	tests := map[string]string{
		"Salad":    "Amla",
		"Rolls":    "Churan",
		"Deserts":  "Candy",
		"Sandwich": "Dried Paan",
		"Cake":     "Supari",
		"Pure Veg": "Mukhwas",
		"Pasta":    "Seeds",
		"Noodles":  "Pickle",
		"Seeds":    "Seeds",
		"Unknown":  "Unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayCategory(in), in)
	}
}

func TestCategories_Copy(t *testing.T) {
	cs := Categories()
	assert.Len(t, cs, 9)
	cs[0] = "mutated"
	assert.Equal(t, CategoryAmla, Categories()[0])
}

func TestSameCategory(t *testing.T) {
	assert.True(t, SameCategory(" candy", "Candy "))
	assert.False(t, SameCategory("Candy", "Churan"))
}
