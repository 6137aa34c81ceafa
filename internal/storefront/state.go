package storefront

import (
	"sync"

	"github.com/utafrali/FoodStore/internal/domain"
)

// state is the single mutable snapshot shared by the store's components.
// Every field is guarded by mu; no network call is made while mu is held.
type state struct {
	mu sync.Mutex

	products []domain.Product
	index    map[string]int
	version  uint64
	loading  int

	items domain.CartItems
	// seq numbers every cart mutation and reload. lastLocal is the sequence
	// of the newest local mutation, lastApplied that of the newest server
	// snapshot written into items.
	seq         uint64
	lastLocal   uint64
	lastApplied uint64

	token string
}

func newState() *state {
	return &state{
		index: map[string]int{},
		items: domain.CartItems{},
	}
}

// nextSeq must be called with mu held.
func (s *state) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// product must be called with mu held.
func (s *state) product(id string) (*domain.Product, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.products[i], true
}
