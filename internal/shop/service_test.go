package shop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/catalog"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (r *recorder) Publish(_ context.Context, e events.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	svc   *Service
	store *store.Store
	pub   *recorder
	admin primitive.ObjectID
	user  primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	pub := &recorder{}
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := New(st,
		WithPublisher(pub),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)

	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	n, err := svc.SeedCategories(context.Background(), seed)
	require.NoError(t, err)
	require.Equal(t, 7, n)

	return &fixture{
		svc:   svc,
		store: st,
		pub:   pub,
		admin: primitive.NewObjectID(),
		user:  primitive.NewObjectID(),
	}
}

func strPtr(s string) *string       { return &s }
func floatPtr(f float64) *float64   { return &f }
func intPtr(i int) *int             { return &i }
func slicePtr(s ...string) *[]string { return &s }

func productInput(name, category, sub string, price, discount float64, stock int) ProductInput {
	return ProductInput{
		Name:        strPtr(name),
		Description: strPtr(name + " description"),
		Price:       floatPtr(price),
		Discount:    floatPtr(discount),
		Stock:       intPtr(stock),
		Images:      slicePtr("https://cdn.example.com/" + name + ".jpg"),
		Category:    strPtr(category),
		SubCategory: strPtr(sub),
		Brand:       strPtr("Acme"),
	}
}

func (f *fixture) product(t *testing.T, name string, price, discount float64, stock int) models.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), productInput(name, "Home", "Decor", price, discount, stock), f.admin)
	require.NoError(t, err)
	return p
}
