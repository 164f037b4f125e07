package shop

import (
	"context"
	"errors"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/store"
)

const clothingCategory = "Clothing"

// ProductInput carries the writable product fields. Nil fields are left
// unchanged on update. A finalPrice sent by a client is ignored.
type ProductInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Price       *float64        `json:"price"`
	Discount    *float64        `json:"discount"`
	Stock       *int            `json:"stock"`
	Images      *[]string       `json:"images"`
	Category    *string         `json:"category"`
	SubCategory *string         `json:"subCategory"`
	Tags        *[]string       `json:"tags"`
	Brand       *string         `json:"brand"`
	Ratings     *models.Ratings `json:"ratings"`
	IsFeatured  *bool           `json:"isFeatured"`
}

func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Images != nil {
		images := make([]string, 0, len(*in.Images))
		for _, img := range *in.Images {
			images = append(images, strings.TrimSpace(img))
		}
		p.Images = images
	}
	if in.Tags != nil {
		p.Tags = normalizeTags(*in.Tags)
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Ratings != nil {
		p.Ratings = *in.Ratings
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type ProductList struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int64            `json:"page"`
	Limit    int64            `json:"limit"`
	Pages    int64            `json:"pages"`
}

// ListProducts returns one page of live products. A category that does not
// resolve yields an empty page.
func (s *Service) ListProducts(ctx context.Context, q catalog.ProductQuery) (ProductList, error) {
	out := ProductList{Products: []models.Product{}, Page: q.Page, Limit: q.Limit}

	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return ProductList{}, err
	}

	filter := store.ProductFilter{
		SubCategory: q.SubCategory,
		Search:      q.Search,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		Tags:        q.Tags,
		Brand:       q.Brand,
		Featured:    q.Featured,
		SortField:   q.SortField,
		SortDesc:    q.SortDesc,
		Skip:        q.Skip(),
		Limit:       q.Limit,
	}
	if q.Category != "" {
		c, ok := tax.Resolve(q.Category)
		if !ok {
			return out, nil
		}
		filter.CategoryID = &c.ID
	}

	page, err := s.store.Products.List(ctx, filter)
	if err != nil {
		return ProductList{}, err
	}
	for i := range page.Items {
		decorate(tax, &page.Items[i])
	}
	out.Products = page.Items
	out.Total = page.Total
	if q.Limit > 0 {
		out.Pages = (page.Total + q.Limit - 1) / q.Limit
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}

	p, err := s.store.Products.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return models.Product{}, err
	}
	decorate(tax, &p)
	s.cache.Set(ctx, p)
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput, createdBy primitive.ObjectID) (models.Product, error) {
	now := s.clock()
	p := models.Product{
		Images:    []string{},
		Tags:      []string{},
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&p)

	if err := catalog.ValidateProduct(&p); err != nil {
		return models.Product{}, err
	}
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return models.Product{}, err
	}
	c, sub, err := tax.Check(deref(in.Category), deref(in.SubCategory))
	if err != nil {
		return models.Product{}, err
	}
	p.Category = models.RefTo(c.ID)
	p.SubCategory = sub

	if err := s.store.Products.Insert(ctx, &p); err != nil {
		return models.Product{}, err
	}
	log.Printf("[PRODUCT] [INFO] created %s (%s/%s)", p.ID.Hex(), c.Name, sub)
	decorate(tax, &p)
	return p, nil
}

// UpdateProduct patches a product. The taxonomy pair is checked only when the
// patch touches category or subCategory, and then on the merged pair.
func (s *Service) UpdateProduct(ctx context.Context, id primitive.ObjectID, in ProductInput) (models.Product, error) {
	existing, err := s.store.Products.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return models.Product{}, err
	}

	p := existing
	in.apply(&p)

	if in.Category != nil || in.SubCategory != nil {
		categoryInput := existing.Category.Legacy
		if !existing.Category.ID.IsZero() {
			categoryInput = existing.Category.ID.Hex()
		}
		if in.Category != nil {
			categoryInput = *in.Category
		}
		subInput := existing.SubCategory
		if in.SubCategory != nil {
			subInput = *in.SubCategory
		}
		c, sub, err := tax.Check(categoryInput, subInput)
		if err != nil {
			return models.Product{}, err
		}
		p.Category = models.RefTo(c.ID)
		p.SubCategory = sub
	}

	if err := catalog.ValidateProduct(&p); err != nil {
		return models.Product{}, err
	}
	p.UpdatedAt = s.clock()
	if err := s.store.Products.Update(ctx, &p); err != nil {
		return models.Product{}, err
	}
	s.cache.Invalidate(ctx, id)
	decorate(tax, &p)
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Products.SoftDelete(ctx, id, s.clock()); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	log.Printf("[PRODUCT] [INFO] soft deleted %s", id.Hex())
	return nil
}

// ExportProducts returns every live product for the spreadsheet export.
func (s *Service) ExportProducts(ctx context.Context) ([]models.Product, error) {
	all, err := s.store.Products.All(ctx)
	if err != nil {
		return nil, err
	}
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.IsDeleted {
			continue
		}
		decorate(tax, &p)
		out = append(out, p)
	}
	return out, nil
}

// Categories lists the active categories for shoppers.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}
	return tax.Categories(false), nil
}

func (s *Service) SubCategories(ctx context.Context, category string) ([]string, error) {
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := tax.Resolve(category)
	if !ok || !c.IsActive {
		return nil, apperr.NotFound("category")
	}
	return tax.SubCategories(c.ID.Hex())
}

type CategoryInput struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	SubCategories *[]string `json:"subCategories"`
	IsActive      *bool     `json:"isActive"`
}

func (in CategoryInput) apply(c *models.Category) error {
	if in.Name != nil {
		c.Name = strings.Join(strings.Fields(*in.Name), " ")
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.SubCategories != nil {
		subs, err := catalog.NormalizeSubCategories(*in.SubCategories)
		if err != nil {
			return err
		}
		c.SubCategories = subs
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if c.Name == "" {
		return apperr.Invalid("name", "name is required")
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput, createdBy primitive.ObjectID) (models.Category, error) {
	c := models.Category{
		SubCategories: []string{},
		IsActive:      true,
		CreatedAt:     s.clock(),
	}
	if !createdBy.IsZero() {
		c.CreatedBy = &createdBy
	}
	if err := in.apply(&c); err != nil {
		return models.Category{}, err
	}
	if err := s.store.Categories.Insert(ctx, &c); err != nil {
		return models.Category{}, err
	}
	log.Printf("[CATEGORY] [INFO] created %s %q", c.ID.Hex(), c.Name)
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id primitive.ObjectID, in CategoryInput) (models.Category, error) {
	c, err := s.store.Categories.Get(ctx, id)
	if err != nil {
		return models.Category{}, err
	}
	if err := in.apply(&c); err != nil {
		return models.Category{}, err
	}
	if err := s.store.Categories.Update(ctx, c); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory deactivates a category. Products keep their reference and
// new writes into the category are rejected.
func (s *Service) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	inactive := false
	_, err := s.UpdateCategory(ctx, id, CategoryInput{IsActive: &inactive})
	return err
}

// SeedCategories inserts the seed categories that do not exist yet. Existing
// categories are never modified.
func (s *Service) SeedCategories(ctx context.Context, seed catalog.Seed) (int, error) {
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, sc := range seed.Categories {
		if _, ok := tax.Lookup(sc.Name); ok {
			continue
		}
		subs := append([]string{}, sc.SubCategories...)
		c := models.Category{
			Name:          sc.Name,
			Description:   sc.Description,
			SubCategories: subs,
			IsActive:      true,
			CreatedAt:     s.clock(),
		}
		if err := s.store.Categories.Insert(ctx, &c); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				continue
			}
			return created, err
		}
		created++
	}
	if created > 0 {
		log.Printf("[CATEGORY] [INFO] seeded %d categories", created)
	}
	return created, nil
}

// ClothingProducts lists clothing, optionally narrowed to one subcategory,
// newest first.
func (s *Service) ClothingProducts(ctx context.Context, subCategory string) ([]models.Product, error) {
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := tax.Lookup(clothingCategory)
	if !ok {
		return nil, apperr.NotFound("category")
	}
	filter := store.ProductFilter{CategoryID: &c.ID, SortField: "createdAt", SortDesc: true}
	if strings.TrimSpace(subCategory) != "" {
		_, sub, err := tax.Check(c.ID.Hex(), subCategory)
		if err != nil {
			return nil, err
		}
		filter.SubCategory = sub
	}

	page, err := s.store.Products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		decorate(tax, &page.Items[i])
	}
	return page.Items, nil
}

func clothingInput(gender string, in ProductInput, required bool) (ProductInput, error) {
	gender = strings.TrimSpace(gender)
	if gender == "" && required {
		return ProductInput{}, apperr.Invalid("gender", "gender is required and must be Men, Women, or Kids")
	}
	category := clothingCategory
	in.Category = &category
	if gender != "" {
		in.SubCategory = &gender
	}
	return in, nil
}

// CreateClothingProduct files a product under Clothing with gender as the
// subcategory.
func (s *Service) CreateClothingProduct(ctx context.Context, gender string, in ProductInput, createdBy primitive.ObjectID) (models.Product, error) {
	in, err := clothingInput(gender, in, true)
	if err != nil {
		return models.Product{}, err
	}
	return s.CreateProduct(ctx, in, createdBy)
}

func (s *Service) UpdateClothingProduct(ctx context.Context, id primitive.ObjectID, gender string, in ProductInput) (models.Product, error) {
	in, err := clothingInput(gender, in, false)
	if err != nil {
		return models.Product{}, err
	}
	return s.UpdateProduct(ctx, id, in)
}
