package service

import (
	"context"
	"errors"
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
	apperrors "github.com/ezinne-pharmarcy/backend/pkg/util/errorutil"
)

// SaleItemInput describes a medication line added to a cart or order.
type SaleItemInput struct {
	SaleID       string
	MedicationID string
	Quantity     int
	Price        string
}

// SaleService manages carts or orders (one instance per kind) and their items.
type SaleService struct {
	sales        repository.SaleRepository
	medications  repository.MedicationRepository
	resource     auth.Resource
	itemResource auth.Resource
	now          func() time.Time
}

// NewSaleService constructs the service for the repository's sale kind.
func NewSaleService(sales repository.SaleRepository, medications repository.MedicationRepository, clock func() time.Time) *SaleService {
	if clock == nil {
		clock = time.Now
	}
	s := &SaleService{sales: sales, medications: medications, now: clock}
	switch sales.Kind() {
	case domain.SaleCart:
		s.resource, s.itemResource = auth.ResourceCart, auth.ResourceCartItem
	case domain.SaleOrder:
		s.resource, s.itemResource = auth.ResourceOrder, auth.ResourceOrderItem
	}
	return s
}

// Create opens a sale owned by the calling retail staff member.
func (s *SaleService) Create(ctx context.Context, actor *domain.Account, totalPrice string) (*domain.Sale, error) {
	if err := auth.Authorize(actor, s.resource, auth.ActionCreate, nil); err != nil {
		return nil, err
	}
	if totalPrice == "" {
		totalPrice = "0"
	}
	sale := &domain.Sale{SalesStaffID: actor.ID, TotalPrice: totalPrice}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// Get returns a sale to its creator, any owner or any admin staff member.
func (s *SaleService) Get(ctx context.Context, actor *domain.Account, id string) (*domain.Sale, error) {
	sale, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, s.resource, auth.ActionRetrieve, &auth.Target{CreatorID: sale.SalesStaffID}); err != nil {
		return nil, err
	}
	return sale, nil
}

// List returns the sales actor may see; retail staff only get their own from today.
func (s *SaleService) List(ctx context.Context, actor *domain.Account, limit, offset int) ([]domain.Sale, error) {
	if err := auth.Authorize(actor, s.resource, auth.ActionList, nil); err != nil {
		return nil, err
	}
	filter, err := auth.SaleListScope(actor, s.now())
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset
	return s.sales.List(ctx, filter)
}

// Delete removes a sale. Owners only.
func (s *SaleService) Delete(ctx context.Context, actor *domain.Account, id string) error {
	if err := auth.Authorize(actor, s.resource, auth.ActionDelete, nil); err != nil {
		return err
	}
	if err := s.sales.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(string(s.sales.Kind()), nil)
		}
		return err
	}
	return nil
}

// AddItem adds a medication line to a sale created by actor.
func (s *SaleService) AddItem(ctx context.Context, actor *domain.Account, in SaleItemInput) (*domain.SaleItem, error) {
	sale, err := s.load(ctx, in.SaleID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, s.itemResource, auth.ActionCreate, &auth.Target{CreatorID: sale.SalesStaffID}); err != nil {
		return nil, err
	}
	if _, err := s.medications.GetByID(ctx, in.MedicationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("unknown medication", map[string]any{"medication_id": in.MedicationID})
		}
		return nil, err
	}

	item := &domain.SaleItem{
		SaleID:       sale.ID,
		MedicationID: in.MedicationID,
		Quantity:     in.Quantity,
		Price:        in.Price,
	}
	if err := s.sales.AddItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("medication already added", map[string]any{"medication_id": in.MedicationID})
		}
		return nil, err
	}
	return item, nil
}

// GetItem returns one line of a sale the actor may retrieve.
func (s *SaleService) GetItem(ctx context.Context, actor *domain.Account, id string) (*domain.SaleItem, error) {
	item, err := s.sales.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(string(s.itemResource), nil)
		}
		return nil, err
	}
	sale, err := s.load(ctx, item.SaleID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, s.itemResource, auth.ActionRetrieve, &auth.Target{CreatorID: sale.SalesStaffID}); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns every line of a sale the actor may retrieve.
func (s *SaleService) ListItems(ctx context.Context, actor *domain.Account, saleID string) ([]domain.SaleItem, error) {
	sale, err := s.load(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, s.itemResource, auth.ActionList, &auth.Target{CreatorID: sale.SalesStaffID}); err != nil {
		return nil, err
	}
	return s.sales.ListItems(ctx, sale.ID)
}

// DeleteItem removes one line of a sale. Owners only.
func (s *SaleService) DeleteItem(ctx context.Context, actor *domain.Account, id string) error {
	if err := auth.Authorize(actor, s.itemResource, auth.ActionDelete, nil); err != nil {
		return err
	}
	if err := s.sales.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(string(s.itemResource), nil)
		}
		return err
	}
	return nil
}

func (s *SaleService) load(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(string(s.sales.Kind()), nil)
		}
		return nil, err
	}
	return sale, nil
}
