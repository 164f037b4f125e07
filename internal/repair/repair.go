package repair

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/store"
)

type Summary struct {
	Scanned     int `json:"scanned"`
	Valid       int `json:"valid"`
	Corrected   int `json:"corrected"`
	LeftInvalid int `json:"leftInvalid"`
	Failed      int `json:"failed"`
}

func (s Summary) String() string {
	return fmt.Sprintf("scanned=%d valid=%d corrected=%d leftInvalid=%d failed=%d",
		s.Scanned, s.Valid, s.Corrected, s.LeftInvalid, s.Failed)
}

// ProductCache drops cached copies of products whose category was rewritten.
type ProductCache interface {
	Invalidate(ctx context.Context, ids ...primitive.ObjectID)
}

// Runner scans every live product once. Products that already pass
// Taxonomy.Validate are never written. Cache is optional.
type Runner struct {
	Products store.Products
	Taxonomy *catalog.Taxonomy
	Classify Classifier
	Cache    ProductCache
	DryRun   bool
	Now      func() time.Time
}

// Run returns an error only when the products cannot be read. Write failures
// on single products are counted in the summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	classify := r.Classify
	if classify == nil {
		classify = InferCategory
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	products, err := r.Products.All(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read products: %w", err)
	}

	var sum Summary
	for _, p := range products {
		if p.IsDeleted {
			continue
		}
		sum.Scanned++

		if r.Taxonomy.Validate(p.Category, p.SubCategory) == nil {
			sum.Valid++
			continue
		}

		target, sub, how, ok := r.correct(p, classify)
		if !ok {
			sum.LeftInvalid++
			log.Printf("[REPAIR] [WARN] %s %q: no valid pair for %q/%q", p.ID.Hex(), p.Name, r.Taxonomy.Name(p.Category), p.SubCategory)
			continue
		}

		log.Printf("[REPAIR] [INFO] %s %q (%s): %q/%q -> %s/%s",
			p.ID.Hex(), p.Name, how, r.Taxonomy.Name(p.Category), p.SubCategory, target.Name, sub)
		if r.DryRun {
			sum.Corrected++
			continue
		}
		if err := r.Products.SetCategory(ctx, p.ID, models.RefTo(target.ID), sub, now().UTC()); err != nil {
			sum.Failed++
			log.Printf("[REPAIR] [ERROR] %s: %v", p.ID.Hex(), err)
			continue
		}
		if r.Cache != nil {
			r.Cache.Invalidate(ctx, p.ID)
		}
		sum.Corrected++
	}
	return sum, nil
}

// correct tries a pure normalization of the stored labels first and falls
// back to the classifier. Whatever it returns passes Taxonomy.Validate.
func (r *Runner) correct(p models.Product, classify Classifier) (models.Category, string, string, bool) {
	label := r.Taxonomy.Name(p.Category)
	if c, sub, err := r.Taxonomy.Normalize(label, p.SubCategory); err == nil {
		if r.Taxonomy.Validate(models.RefTo(c.ID), sub) == nil {
			return c, sub, "normalized", true
		}
	}

	corr := classify(p.Name, label, p.SubCategory)
	if corr == nil {
		return models.Category{}, "", "", false
	}
	c, sub, err := r.Taxonomy.Normalize(corr.Category, corr.SubCategory)
	if err != nil {
		return models.Category{}, "", "", false
	}
	if r.Taxonomy.Validate(models.RefTo(c.ID), sub) != nil {
		return models.Category{}, "", "", false
	}
	return c, sub, "inferred", true
}
