package service

import (
	"context"
	"errors"

	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
	apperrors "github.com/ezinne-pharmarcy/backend/pkg/util/errorutil"
)

// MedicationInput carries medication fields; nil fields are left unchanged on update.
type MedicationInput struct {
	Name     *string
	Price    *string
	Quantity *int
}

// MedicationService manages the stock list.
type MedicationService struct {
	medications repository.MedicationRepository
}

// NewMedicationService constructs the service.
func NewMedicationService(medications repository.MedicationRepository) *MedicationService {
	return &MedicationService{medications: medications}
}

// Create adds a medication. Store-admin owners only.
func (s *MedicationService) Create(ctx context.Context, actor *domain.Account, in MedicationInput) (*domain.Medication, error) {
	if err := auth.Authorize(actor, auth.ResourceMedication, auth.ActionCreate, nil); err != nil {
		return nil, err
	}
	med := &domain.Medication{}
	applyMedication(med, in)
	if err := s.medications.Create(ctx, med); err != nil {
		return nil, err
	}
	return med, nil
}

// Get returns one medication to any staff kind.
func (s *MedicationService) Get(ctx context.Context, actor *domain.Account, id string) (*domain.Medication, error) {
	if err := auth.Authorize(actor, auth.ResourceMedication, auth.ActionRetrieve, nil); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// List pages through the stock list.
func (s *MedicationService) List(ctx context.Context, actor *domain.Account, limit, offset int) ([]domain.Medication, error) {
	if err := auth.Authorize(actor, auth.ResourceMedication, auth.ActionList, nil); err != nil {
		return nil, err
	}
	return s.medications.List(ctx, limit, offset)
}

// Update patches the fields set in in. Store-admin owners only.
func (s *MedicationService) Update(ctx context.Context, actor *domain.Account, id string, in MedicationInput) (*domain.Medication, error) {
	if err := auth.Authorize(actor, auth.ResourceMedication, auth.ActionUpdate, nil); err != nil {
		return nil, err
	}
	med, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMedication(med, in)
	if err := s.medications.Update(ctx, med); err != nil {
		return nil, err
	}
	return med, nil
}

// Delete removes a medication. Store-admin owners only.
func (s *MedicationService) Delete(ctx context.Context, actor *domain.Account, id string) error {
	if err := auth.Authorize(actor, auth.ResourceMedication, auth.ActionDelete, nil); err != nil {
		return err
	}
	if err := s.medications.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("medication", nil)
		}
		return err
	}
	return nil
}

func (s *MedicationService) load(ctx context.Context, id string) (*domain.Medication, error) {
	med, err := s.medications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("medication", nil)
		}
		return nil, err
	}
	return med, nil
}

func applyMedication(med *domain.Medication, in MedicationInput) {
	setString(&med.Name, in.Name)
	setString(&med.Price, in.Price)
	if in.Quantity != nil {
		med.Quantity = *in.Quantity
	}
}
