package catalog

import (
	"math"

	"github.com/shopspring/decimal"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

// FinalPrice is price − price×discount/100. It is derived on every read and
// never persisted.
func FinalPrice(price, discount float64) float64 {
	p := decimal.NewFromFloat(price)
	off := p.Mul(decimal.NewFromFloat(discount)).Div(hundred)
	f, _ := p.Sub(off).Float64()
	return f
}

func ValidateDiscount(discount float64) error {
	if math.IsNaN(discount) || discount < 0 || discount > 100 {
		return apperr.Invalid("discount", "discount must be between 0 and 100")
	}
	return nil
}

func WithFinalPrice(p *models.Product) {
	p.FinalPrice = FinalPrice(p.Price, p.Discount)
}

// OrderTotal sums the snapshot prices of the given lines.
func OrderTotal(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	f, _ := total.Float64()
	return f
}
