package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
)

// Sales is an in-memory SaleRepository for one sale kind.
type Sales struct {
	mu    sync.RWMutex
	kind  domain.SaleKind
	sales map[string]domain.Sale
	items map[string]domain.SaleItem
	now   func() time.Time
}

// NewSales creates an empty store for kind.
func NewSales(kind domain.SaleKind) *Sales {
	return &Sales{
		kind:  kind,
		sales: make(map[string]domain.Sale),
		items: make(map[string]domain.SaleItem),
		now:   time.Now,
	}
}

var _ repository.SaleRepository = (*Sales)(nil)

// WithClock overrides the creation timestamp source.
func (s *Sales) WithClock(clock func() time.Time) *Sales {
	s.now = clock
	return s
}

func (s *Sales) Kind() domain.SaleKind {
	return s.kind
}

func (s *Sales) Create(_ context.Context, sale *domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale.ID = uuid.NewString()
	sale.Kind = s.kind
	sale.CreatedAt = s.now().UTC()
	s.sales[sale.ID] = *sale
	return nil
}

func (s *Sales) GetByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sale, nil
}

func (s *Sales) List(_ context.Context, filter repository.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	var result []domain.Sale
	for _, sale := range s.sales {
		if filter.SalesStaffID != "" && sale.SalesStaffID != filter.SalesStaffID {
			continue
		}
		if filter.CreatedFrom != nil && sale.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedBefore != nil && !sale.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		result = append(result, sale)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (s *Sales) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sales, id)
	for itemID, item := range s.items {
		if item.SaleID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *Sales) AddItem(_ context.Context, item *domain.SaleItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[item.SaleID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range s.items {
		if existing.SaleID == item.SaleID && existing.MedicationID == item.MedicationID {
			return repository.ErrDuplicate
		}
	}
	item.ID = uuid.NewString()
	item.CreatedAt = s.now().UTC()
	s.items[item.ID] = *item
	return nil
}

func (s *Sales) GetItem(_ context.Context, id string) (*domain.SaleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (s *Sales) ListItems(_ context.Context, saleID string) ([]domain.SaleItem, error) {
	s.mu.RLock()
	var result []domain.SaleItem
	for _, item := range s.items {
		if item.SaleID == saleID {
			result = append(result, item)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Sales) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
