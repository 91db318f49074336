package domain

import "time"

// SaleKind differentiates carts from orders; both share the same shape.
type SaleKind string

const (
	SaleCart  SaleKind = "cart"
	SaleOrder SaleKind = "order"
)

// Sale is a cart or order recorded by a retail staff member.
type Sale struct {
	ID           string
	Kind         SaleKind
	SalesStaffID string
	TotalPrice   string
	CreatedAt    time.Time
}

// SaleItem is a medication line inside a cart or order.
type SaleItem struct {
	ID           string
	SaleID       string
	MedicationID string
	Quantity     int
	Price        string
	CreatedAt    time.Time
}
