package storefront

import (
	"context"
	"log/slog"
	"math/rand/v2"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger *slog.Logger
	rng    *rand.Rand
}

// WithLogger sets the logger used by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRand sets the random source of the best seller sample.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// Store is the storefront: one catalog, one cart and one session sharing a
// single lock. Create one per process.
type Store struct {
	catalog *Catalog
	cart    *Cart
	session *Session
	display *DisplayFilter
	logger  *slog.Logger
}

// NewStore wires the storefront components around client and tokens.
func NewStore(client *Client, tokens TokenStore, opts ...Option) *Store {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) // #nosec G404 -- display sampling
	}

	st := newState()
	cart := &Cart{st: st, client: client, logger: o.logger}
	return &Store{
		catalog: &Catalog{st: st, client: client, logger: o.logger},
		cart:    cart,
		session: &Session{st: st, client: client, tokens: tokens, cart: cart, logger: o.logger},
		display: &DisplayFilter{st: st, rng: o.rng},
		logger:  o.logger,
	}
}

// Start loads the catalog and restores a persisted session. Failures are
// logged; the store stays usable with whatever state it has.
func (s *Store) Start(ctx context.Context) {
	if err := s.catalog.Load(ctx); err != nil {
		s.logger.WarnContext(ctx, "initial catalog load failed", slog.String("error", err.Error()))
	}
	if err := s.session.Restore(ctx); err != nil {
		s.logger.WarnContext(ctx, "session restore failed", slog.String("error", err.Error()))
	}
}

// Catalog returns the catalog cache.
func (s *Store) Catalog() *Catalog { return s.catalog }

// Cart returns the cart.
func (s *Store) Cart() *Cart { return s.cart }

// Session returns the session.
func (s *Store) Session() *Session { return s.session }

// Display returns the display filter.
func (s *Store) Display() *DisplayFilter { return s.display }
