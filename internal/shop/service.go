// Package shop implements the storefront operations on top of the store:
// catalog reads and admin writes, carts, checkout, orders and wishlists.
package shop

import (
	"context"
	"log"
	"time"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

type Service struct {
	store *store.Store
	pub   events.Publisher
	cache *cache.Products
	now   func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

func WithProductCache(c *cache.Products) Option {
	return func(s *Service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		pub:   events.Nop{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Taxonomy builds the current taxonomy from the stored categories.
func (s *Service) Taxonomy(ctx context.Context) (*catalog.Taxonomy, error) {
	categories, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewTaxonomy(categories), nil
}

func decorate(tax *catalog.Taxonomy, p *models.Product) {
	catalog.WithFinalPrice(p)
	p.CategoryName = tax.Name(p.Category)
}

func (s *Service) publish(ctx context.Context, eventType, correlationID string, payload interface{}) {
	e, err := events.NewEnvelope(eventType, correlationID, payload, s.clock())
	if err != nil {
		log.Printf("[EVENTS] [ERROR] %v", err)
		return
	}
	s.pub.Publish(ctx, e)
}
