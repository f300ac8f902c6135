package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CategoryID  int64           `json:"categoryId"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// FilterActive keeps active products, optionally restricted to one category.
func FilterActive(products []Product, categoryID *int64) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !p.Active {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CountByCategory counts products per category id.
func CountByCategory(products []Product) map[int64]int {
	counts := make(map[int64]int)
	for _, p := range products {
		counts[p.CategoryID]++
	}
	return counts
}
