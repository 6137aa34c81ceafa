package domain

// PackingSize is one purchasable size of a product.
type PackingSize struct {
	Size  string `json:"size"`
	Price Price  `json:"price"`
}

// Product is a catalog entry. Non-empty PackingSizes take precedence over
// the legacy base Price.
type Product struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	Price        Price         `json:"price"`
	PackingSizes []PackingSize `json:"packingSizes"`
	Image        string        `json:"image"`
	InStock      bool          `json:"inStock"`
}

// DefaultSize is the size preselected for a product: the first packing
// size, or empty when the product has none.
func (p *Product) DefaultSize() string {
	if len(p.PackingSizes) == 0 {
		return ""
	}
	return p.PackingSizes[0].Size
}

// FindSize returns the packing size labelled size.
func (p *Product) FindSize(size string) (PackingSize, bool) {
	for _, ps := range p.PackingSizes {
		if ps.Size == size {
			return ps, true
		}
	}
	return PackingSize{}, false
}
