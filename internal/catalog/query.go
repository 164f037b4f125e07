package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

var sortFields = map[string]string{
	"createdAt":  "createdAt",
	"price":      "price",
	"finalPrice": "finalPrice",
	"name":       "name",
	"rating":     "ratings.average",
}

// ProductQuery is a parsed catalog listing request. SortField is the stored
// field name to sort on.
type ProductQuery struct {
	Category    string
	SubCategory string
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	Tags        []string
	Brand       string
	Featured    *bool
	SortField   string
	SortDesc    bool
	Page        int64
	Limit       int64
}

func (q ProductQuery) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

func ParseProductQuery(values url.Values) (ProductQuery, error) {
	q := ProductQuery{
		Category:    strings.TrimSpace(values.Get("category")),
		SubCategory: strings.TrimSpace(values.Get("subCategory")),
		Search:      strings.TrimSpace(values.Get("search")),
		Brand:       strings.TrimSpace(values.Get("brand")),
		SortField:   "createdAt",
		SortDesc:    true,
		Page:        DefaultPage,
		Limit:       DefaultLimit,
	}

	var err error
	if q.MinPrice, err = parsePrice(values, "minPrice"); err != nil {
		return ProductQuery{}, err
	}
	if q.MaxPrice, err = parsePrice(values, "maxPrice"); err != nil {
		return ProductQuery{}, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return ProductQuery{}, apperr.Invalid("minPrice", "minPrice cannot be greater than maxPrice")
	}

	if raw := values.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}

	if raw := strings.TrimSpace(values.Get("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return ProductQuery{}, apperr.Invalid("featured", "featured must be true or false")
		}
		q.Featured = &featured
	}

	if raw := strings.TrimSpace(values.Get("sortBy")); raw != "" {
		field, ok := sortFields[raw]
		if !ok {
			return ProductQuery{}, apperr.Invalid("sortBy", "sortBy must be one of: createdAt, price, finalPrice, name, rating")
		}
		q.SortField = field
	}
	switch strings.ToLower(strings.TrimSpace(values.Get("sortOrder"))) {
	case "", "desc":
	case "asc":
		q.SortDesc = false
	default:
		return ProductQuery{}, apperr.Invalid("sortOrder", "sortOrder must be asc or desc")
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || page < 1 {
			return ProductQuery{}, apperr.Invalid("page", "page must be a positive integer")
		}
		q.Page = page
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return ProductQuery{}, apperr.Invalid("limit", "limit must be a positive integer")
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		q.Limit = limit
	}
	return q, nil
}

func parsePrice(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, apperr.Invalid(key, "%s must be a non-negative number", key)
	}
	return &v, nil
}
