package domain

import "time"

// Medication is a stock item available for sale.
type Medication struct {
	ID        string
	Name      string
	Price     string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
