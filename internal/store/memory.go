package store

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
)

// Memory keeps every collection in maps guarded by one lock. Documents are
// copied on the way in and out so callers never share slices with the store.
// Transactions are serialized and roll back through a per-key undo log.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data memData
}

type memData struct {
	products   map[primitive.ObjectID]models.Product
	categories map[primitive.ObjectID]models.Category
	carts      map[primitive.ObjectID]models.Cart
	orders     map[primitive.ObjectID]models.Order
	wishlists  map[primitive.ObjectID]models.Wishlist
	users      map[primitive.ObjectID]models.User
	tokens     map[primitive.ObjectID]models.RefreshToken
}

func newMemData() memData {
	return memData{
		products:   map[primitive.ObjectID]models.Product{},
		categories: map[primitive.ObjectID]models.Category{},
		carts:      map[primitive.ObjectID]models.Cart{},
		orders:     map[primitive.ObjectID]models.Order{},
		wishlists:  map[primitive.ObjectID]models.Wishlist{},
		users:      map[primitive.ObjectID]models.User{},
		tokens:     map[primitive.ObjectID]models.RefreshToken{},
	}
}

func copyProduct(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Tags = append([]string(nil), p.Tags...)
	if p.DeletedAt != nil {
		at := *p.DeletedAt
		p.DeletedAt = &at
	}
	p.FinalPrice = 0
	p.CategoryName = ""
	return p
}

func copyCategory(c models.Category) models.Category {
	c.SubCategories = append([]string(nil), c.SubCategories...)
	return c
}

func copyCart(c models.Cart) models.Cart {
	items := make([]models.CartItem, len(c.Items))
	for i, item := range c.Items {
		item.Product = nil
		items[i] = item
	}
	c.Items = items
	return c
}

func copyOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.Product = nil
		items[i] = item
	}
	o.Items = items
	return o
}

func copyWishlist(w models.Wishlist) models.Wishlist {
	w.ProductIDs = append([]primitive.ObjectID{}, w.ProductIDs...)
	w.Products = nil
	return w
}

// NewMemory returns a Store backed by process memory.
func NewMemory() *Store {
	m := &Memory{data: newMemData()}
	return &Store{
		Products:      memProducts{m},
		Categories:    memCategories{m},
		Carts:         memCarts{m},
		Orders:        memOrders{m},
		Wishlists:     memWishlists{m},
		Users:         memUsers{m},
		RefreshTokens: memRefreshTokens{m},
		Tx:            memTx{m},
	}
}

type memTx struct{ m *Memory }

// undoLog holds the steps that put back what a transaction overwrote, in the
// order the writes happened.
type undoLog struct {
	steps []func(d *memData)
}

type undoKey struct{}

// WithinTx serializes transactions. Writes made through the transaction
// context are journaled per key; on error only those keys are restored, so
// writes made outside the transaction survive a rollback.
func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.m.txMu.Lock()
	defer t.m.txMu.Unlock()

	undo := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, undo)); err != nil {
		t.m.mu.Lock()
		for i := len(undo.steps) - 1; i >= 0; i-- {
			undo.steps[i](&t.m.data)
		}
		t.m.mu.Unlock()
		return err
	}
	return nil
}

// remember journals the current value of key when ctx belongs to a
// transaction. Callers hold m.mu.
func remember[V any](ctx context.Context, d *memData, coll func(*memData) map[primitive.ObjectID]V, key primitive.ObjectID, cp func(V) V) {
	undo, ok := ctx.Value(undoKey{}).(*undoLog)
	if !ok {
		return
	}
	prev, existed := coll(d)[key]
	if existed {
		prev = cp(prev)
	}
	undo.steps = append(undo.steps, func(d *memData) {
		if existed {
			coll(d)[key] = prev
			return
		}
		delete(coll(d), key)
	})
}

func same[V any](v V) V { return v }

func (m *Memory) rememberProduct(ctx context.Context, id primitive.ObjectID) {
	remember(ctx, &m.data, func(d *memData) map[primitive.ObjectID]models.Product { return d.products }, id, copyProduct)
}

func (m *Memory) rememberCategory(ctx context.Context, id primitive.ObjectID) {
	remember(ctx, &m.data, func(d *memData) map[primitive.ObjectID]models.Category { return d.categories }, id, copyCategory)
}

func (m *Memory) rememberCart(ctx context.Context, userID primitive.ObjectID) {
	remember(ctx, &m.data, func(d *memData) map[primitive.ObjectID]models.Cart { return d.carts }, userID, copyCart)
}

func (m *Memory) rememberOrder(ctx context.Context, id primitive.ObjectID) {
	remember(ctx, &m.data, func(d *memData) map[primitive.ObjectID]models.Order { return d.orders }, id, copyOrder)
}

func (m *Memory) rememberWishlist(ctx context.Context, userID primitive.ObjectID) {
	remember(ctx, &m.data, func(d *memData) map[primitive.ObjectID]models.Wishlist { return d.wishlists }, userID, copyWishlist)
}

func (m *Memory) rememberUser(ctx context.Context, id primitive.ObjectID) {
	remember(ctx, &m.data, func(d *memData) map[primitive.ObjectID]models.User { return d.users }, id, same[models.User])
}

func (m *Memory) rememberToken(ctx context.Context, id primitive.ObjectID) {
	remember(ctx, &m.data, func(d *memData) map[primitive.ObjectID]models.RefreshToken { return d.tokens }, id, same[models.RefreshToken])
}

type memProducts struct{ m *Memory }

func (s memProducts) Insert(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.rememberProduct(ctx, p.ID)
	s.m.data.products[p.ID] = copyProduct(*p)
	return nil
}

func (s memProducts) Get(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.data.products[id]
	if !ok || p.IsDeleted {
		return models.Product{}, apperr.NotFound("product")
	}
	return copyProduct(p), nil
}

func (s memProducts) Live(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	live := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.m.data.products[id]; ok && !p.IsDeleted {
			live[id] = copyProduct(p)
		}
	}
	return live, nil
}

func (s memProducts) List(_ context.Context, f ProductFilter) (ProductPage, error) {
	s.m.mu.RLock()
	matched := make([]models.Product, 0)
	for _, p := range s.m.data.products {
		if matchesFilter(p, f) {
			matched = append(matched, copyProduct(p))
		}
	}
	s.m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		c := compareBy(matched[i], matched[j], f.SortField)
		if c == 0 {
			c = bytes.Compare(matched[i].ID[:], matched[j].ID[:])
		}
		if f.SortDesc {
			return c > 0
		}
		return c < 0
	})

	page := ProductPage{Items: []models.Product{}, Total: int64(len(matched))}
	start := f.Skip
	if start > int64(len(matched)) {
		start = int64(len(matched))
	}
	end := int64(len(matched))
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	page.Items = append(page.Items, matched[start:end]...)
	return page, nil
}

func matchesFilter(p models.Product, f ProductFilter) bool {
	if p.IsDeleted {
		return false
	}
	if f.CategoryID != nil && p.Category.ID != *f.CategoryID {
		return false
	}
	if f.SubCategory != "" && !strings.EqualFold(p.SubCategory, f.SubCategory) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!strings.Contains(strings.ToLower(p.Brand), needle) {
			return false
		}
	}
	if len(f.Tags) > 0 && !anyTag(p.Tags, f.Tags) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Featured != nil && p.IsFeatured != *f.Featured {
		return false
	}
	final := catalog.FinalPrice(p.Price, p.Discount)
	if f.MinPrice != nil && final < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && final > *f.MaxPrice {
		return false
	}
	return true
}

func anyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func compareBy(a, b models.Product, field string) int {
	switch field {
	case "price":
		return compareFloat(a.Price, b.Price)
	case "finalPrice":
		return compareFloat(catalog.FinalPrice(a.Price, a.Discount), catalog.FinalPrice(b.Price, b.Discount))
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "ratings.average":
		return compareFloat(a.Ratings.Average, b.Ratings.Average)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s memProducts) All(_ context.Context) ([]models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]models.Product, 0, len(s.m.data.products))
	for _, p := range s.m.data.products {
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0 })
	return out, nil
}

func (s memProducts) Update(ctx context.Context, p *models.Product) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored, ok := s.m.data.products[p.ID]
	if !ok || stored.IsDeleted {
		return apperr.NotFound("product")
	}
	updated := copyProduct(*p)
	updated.CreatedAt = stored.CreatedAt
	updated.CreatedBy = stored.CreatedBy
	updated.IsDeleted = false
	updated.DeletedAt = nil
	s.m.rememberProduct(ctx, p.ID)
	s.m.data.products[p.ID] = updated
	return nil
}

func (s memProducts) SetCategory(ctx context.Context, id primitive.ObjectID, ref models.CategoryRef, subCategory string, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.data.products[id]
	if !ok {
		return apperr.NotFound("product")
	}
	p.Category = ref
	p.SubCategory = subCategory
	p.UpdatedAt = at
	s.m.rememberProduct(ctx, id)
	s.m.data.products[id] = p
	return nil
}

func (s memProducts) SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.data.products[id]
	if !ok || p.IsDeleted {
		return apperr.NotFound("product")
	}
	p.IsDeleted = true
	p.DeletedAt = &at
	p.UpdatedAt = at
	s.m.rememberProduct(ctx, id)
	s.m.data.products[id] = p
	return nil
}

func (s memProducts) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.data.products[id]
	if !ok || p.IsDeleted {
		return apperr.NotFound("product")
	}
	if p.Stock < qty {
		return OutOfStockError{ProductID: id, Name: p.Name, Available: p.Stock, Requested: qty}
	}
	p.Stock -= qty
	s.m.rememberProduct(ctx, id)
	s.m.data.products[id] = p
	return nil
}

type memCategories struct{ m *Memory }

func (s memCategories) nameTaken(name string, except primitive.ObjectID) bool {
	for id, c := range s.m.data.categories {
		if id != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (s memCategories) Insert(ctx context.Context, c *models.Category) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.nameTaken(c.Name, primitive.NilObjectID) {
		return conflict("category " + c.Name)
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.m.rememberCategory(ctx, c.ID)
	s.m.data.categories[c.ID] = copyCategory(*c)
	return nil
}

func (s memCategories) Get(_ context.Context, id primitive.ObjectID) (models.Category, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	c, ok := s.m.data.categories[id]
	if !ok {
		return models.Category{}, apperr.NotFound("category")
	}
	return copyCategory(c), nil
}

func (s memCategories) List(_ context.Context) ([]models.Category, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]models.Category, 0, len(s.m.data.categories))
	for _, c := range s.m.data.categories {
		out = append(out, copyCategory(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memCategories) Update(ctx context.Context, c models.Category) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored, ok := s.m.data.categories[c.ID]
	if !ok {
		return apperr.NotFound("category")
	}
	if s.nameTaken(c.Name, c.ID) {
		return conflict("category " + c.Name)
	}
	stored.Name = c.Name
	stored.Description = c.Description
	stored.SubCategories = append([]string(nil), c.SubCategories...)
	stored.IsActive = c.IsActive
	s.m.rememberCategory(ctx, c.ID)
	s.m.data.categories[c.ID] = stored
	return nil
}

type memCarts struct{ m *Memory }

func (s memCarts) Get(_ context.Context, userID primitive.ObjectID) (models.Cart, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	cart, ok := s.m.data.carts[userID]
	if !ok {
		return models.Cart{}, apperr.NotFound("cart")
	}
	return copyCart(cart), nil
}

func (s memCarts) Save(ctx context.Context, cart *models.Cart) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if stored, ok := s.m.data.carts[cart.UserID]; ok {
		cart.ID = stored.ID
	} else if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	s.m.rememberCart(ctx, cart.UserID)
	s.m.data.carts[cart.UserID] = copyCart(*cart)
	return nil
}

type memOrders struct{ m *Memory }

func (s memOrders) Insert(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.rememberOrder(ctx, o.ID)
	s.m.data.orders[o.ID] = copyOrder(*o)
	return nil
}

func (s memOrders) Get(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	o, ok := s.m.data.orders[id]
	if !ok {
		return models.Order{}, apperr.NotFound("order")
	}
	return copyOrder(o), nil
}

func (s memOrders) list(keep func(models.Order) bool) []models.Order {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]models.Order, 0)
	for _, o := range s.m.data.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}

func (s memOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s memOrders) ListAll(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	return s.list(func(o models.Order) bool { return status == "" || o.Status == status }), nil
}

func (s memOrders) SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (models.Order, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.data.orders[id]
	if !ok {
		return models.Order{}, apperr.NotFound("order")
	}
	if o.Status != from {
		return models.Order{}, apperr.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = at
	s.m.rememberOrder(ctx, id)
	s.m.data.orders[id] = o
	return copyOrder(o), nil
}

type memWishlists struct{ m *Memory }

func (s memWishlists) Get(_ context.Context, userID primitive.ObjectID) (models.Wishlist, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	w, ok := s.m.data.wishlists[userID]
	if !ok {
		return models.Wishlist{}, apperr.NotFound("wishlist")
	}
	return copyWishlist(w), nil
}

func (s memWishlists) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w, ok := s.m.data.wishlists[userID]
	if !ok {
		w = models.Wishlist{ID: primitive.NewObjectID(), UserID: userID}
	}
	for _, id := range w.ProductIDs {
		if id == productID {
			return nil
		}
	}
	w = copyWishlist(w)
	w.ProductIDs = append(w.ProductIDs, productID)
	w.UpdatedAt = time.Now().UTC()
	s.m.rememberWishlist(ctx, userID)
	s.m.data.wishlists[userID] = w
	return nil
}

func (s memWishlists) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w, ok := s.m.data.wishlists[userID]
	if !ok {
		return apperr.NotFound("wishlist")
	}
	kept := make([]primitive.ObjectID, 0, len(w.ProductIDs))
	for _, id := range w.ProductIDs {
		if id != productID {
			kept = append(kept, id)
		}
	}
	w.ProductIDs = kept
	w.UpdatedAt = time.Now().UTC()
	s.m.rememberWishlist(ctx, userID)
	s.m.data.wishlists[userID] = w
	return nil
}

func (s memWishlists) SetProducts(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w, ok := s.m.data.wishlists[userID]
	if !ok {
		return nil
	}
	w.ProductIDs = append([]primitive.ObjectID{}, ids...)
	w.UpdatedAt = time.Now().UTC()
	s.m.rememberWishlist(ctx, userID)
	s.m.data.wishlists[userID] = w
	return nil
}

type memUsers struct{ m *Memory }

func (s memUsers) Insert(ctx context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.data.users {
		if existing.Email == u.Email {
			return conflict("email")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.m.rememberUser(ctx, u.ID)
	s.m.data.users[u.ID] = *u
	return nil
}

func (s memUsers) Get(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.data.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user")
	}
	return u, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, u := range s.m.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperr.NotFound("user")
}

type memRefreshTokens struct{ m *Memory }

func (s memRefreshTokens) Insert(ctx context.Context, t *models.RefreshToken) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.rememberToken(ctx, t.ID)
	s.m.data.tokens[t.ID] = *t
	return nil
}

func (s memRefreshTokens) GetByHash(_ context.Context, hash string) (models.RefreshToken, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, t := range s.m.data.tokens {
		if t.TokenHash == hash {
			return t, nil
		}
	}
	return models.RefreshToken{}, apperr.NotFound("refresh token")
}

func (s memRefreshTokens) Revoke(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.data.tokens[id]
	if !ok || t.Revoked {
		return apperr.ErrConflict
	}
	t.Revoked = true
	t.ReplacedBy = replacedBy
	s.m.rememberToken(ctx, id)
	s.m.data.tokens[id] = t
	return nil
}
