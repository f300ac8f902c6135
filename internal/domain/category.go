package domain

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryCount is a category paired with the number of active products in it.
type CategoryCount struct {
	Category
	ProductCount int `json:"productCount"`
}
