package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

// CreateSaleRequest payload for opening a cart or order.
type CreateSaleRequest struct {
	TotalPrice string `json:"total_price"`
}

// Validate checks the total price format when present.
func (r CreateSaleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TotalPrice, validation.Length(0, 20), validation.Match(decimalPattern)),
	)
}

// CreateSaleItemRequest payload for adding a medication line. The parent id
// is accepted as cart_id or order_id depending on the route.
type CreateSaleItemRequest struct {
	CartID       string `json:"cart_id"`
	OrderID      string `json:"order_id"`
	MedicationID string `json:"medication_id"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
}

// SaleID returns the parent id for kind.
func (r CreateSaleItemRequest) SaleID(kind domain.SaleKind) string {
	if kind == domain.SaleOrder {
		return r.OrderID
	}
	return r.CartID
}

// Validate checks the item fields for kind.
func (r CreateSaleItemRequest) Validate(kind domain.SaleKind) error {
	parent := r.SaleID(kind)
	return validation.Errors{
		string(kind) + "_id": validation.Validate(parent, validation.Required, is.UUID),
		"medication_id":      validation.Validate(r.MedicationID, validation.Required, is.UUID),
		"quantity":           validation.Validate(r.Quantity, validation.Required, validation.Min(1)),
		"price":              validation.Validate(r.Price, validation.Length(0, 20), validation.Match(decimalPattern)),
	}.Filter()
}

// ToInput converts the request for the sale service.
func (r CreateSaleItemRequest) ToInput(kind domain.SaleKind) service.SaleItemInput {
	return service.SaleItemInput{
		SaleID:       r.SaleID(kind),
		MedicationID: r.MedicationID,
		Quantity:     r.Quantity,
		Price:        r.Price,
	}
}

// SaleResponse is the public view of a cart or order.
type SaleResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	SalesStaffID string    `json:"sales_staff_id"`
	TotalPrice   string    `json:"total_price"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSaleResponse builds the response for a sale.
func NewSaleResponse(s *domain.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		Kind:         string(s.Kind),
		SalesStaffID: s.SalesStaffID,
		TotalPrice:   s.TotalPrice,
		CreatedAt:    s.CreatedAt,
	}
}

// NewSaleListResponse maps a slice of sales.
func NewSaleListResponse(sales []domain.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, NewSaleResponse(&sales[i]))
	}
	return out
}

// SaleItemResponse is the public view of a cart or order item.
type SaleItemResponse struct {
	ID           string    `json:"id"`
	SaleID       string    `json:"sale_id"`
	MedicationID string    `json:"medication_id"`
	Quantity     int       `json:"quantity"`
	Price        string    `json:"price"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSaleItemResponse builds the response for an item.
func NewSaleItemResponse(i *domain.SaleItem) SaleItemResponse {
	return SaleItemResponse{
		ID:           i.ID,
		SaleID:       i.SaleID,
		MedicationID: i.MedicationID,
		Quantity:     i.Quantity,
		Price:        i.Price,
		CreatedAt:    i.CreatedAt,
	}
}

// NewSaleItemListResponse maps a slice of items.
func NewSaleItemListResponse(items []domain.SaleItem) []SaleItemResponse {
	out := make([]SaleItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewSaleItemResponse(&items[i]))
	}
	return out
}
