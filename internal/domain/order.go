package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "OPEN"
	OrderStatusInProgress OrderStatus = "INPROGRESS"
	OrderStatusClose      OrderStatus = "CLOSE"
)

// OrderStatuses lists the board columns in display order.
var OrderStatuses = []OrderStatus{OrderStatusOpen, OrderStatusInProgress, OrderStatusClose}

// ParseOrderStatus accepts any of the three statuses, case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case OrderStatusOpen, OrderStatusInProgress, OrderStatusClose:
		return status, nil
	}
	return "", Invalid("status", "must be one of OPEN, INPROGRESS, CLOSE")
}

// Contact holds the buyer details collected at checkout.
type Contact struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Normalize trims every field and rejects blanks.
func (c Contact) Normalize() (Contact, error) {
	out := Contact{
		Name:     strings.TrimSpace(c.Name),
		LastName: strings.TrimSpace(c.LastName),
		Country:  strings.TrimSpace(c.Country),
		City:     strings.TrimSpace(c.City),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
	}
	fields := []struct {
		name  string
		value string
	}{
		{"name", out.Name},
		{"lastName", out.LastName},
		{"country", out.Country},
		{"city", out.City},
		{"email", out.Email},
		{"phone", out.Phone},
	}
	for _, f := range fields {
		if f.value == "" {
			return Contact{}, Invalid(f.name, "required")
		}
	}
	return out, nil
}

type Order struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"userId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Contact
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// GroupByStatus buckets orders by their current status. Every status key is present.
func GroupByStatus(orders []Order) map[OrderStatus][]Order {
	groups := make(map[OrderStatus][]Order, len(OrderStatuses))
	for _, s := range OrderStatuses {
		groups[s] = []Order{}
	}
	for _, o := range orders {
		groups[o.Status] = append(groups[o.Status], o)
	}
	return groups
}
