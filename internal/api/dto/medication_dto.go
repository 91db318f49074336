package dto

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

var decimalPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// MedicationRequest payload for creating or patching a medication.
type MedicationRequest struct {
	Name     *string `json:"name"`
	Price    *string `json:"price"`
	Quantity *int    `json:"quantity"`
}

// ValidateCreate requires every field.
func (r MedicationRequest) ValidateCreate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Price, validation.Required, validation.Length(1, 50), validation.Match(decimalPattern)),
		validation.Field(&r.Quantity, validation.NotNil, validation.Min(0)),
	)
}

// Validate checks the fields that are present.
func (r MedicationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Price, validation.NilOrNotEmpty, validation.Length(1, 50), validation.Match(decimalPattern)),
		validation.Field(&r.Quantity, validation.Min(0)),
	)
}

// ToInput converts the request for the medication service.
func (r MedicationRequest) ToInput() service.MedicationInput {
	return service.MedicationInput{Name: r.Name, Price: r.Price, Quantity: r.Quantity}
}

// MedicationResponse is the public view of a medication.
type MedicationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMedicationResponse builds the response for a medication.
func NewMedicationResponse(m *domain.Medication) MedicationResponse {
	return MedicationResponse{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// NewMedicationListResponse maps a slice of medications.
func NewMedicationListResponse(meds []domain.Medication) []MedicationResponse {
	out := make([]MedicationResponse, 0, len(meds))
	for i := range meds {
		out = append(out, NewMedicationResponse(&meds[i]))
	}
	return out
}
