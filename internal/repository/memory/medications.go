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

// Medications is an in-memory MedicationRepository.
type Medications struct {
	mu    sync.RWMutex
	items map[string]domain.Medication
	now   func() time.Time
}

// NewMedications creates an empty medication store.
func NewMedications() *Medications {
	return &Medications{items: make(map[string]domain.Medication), now: time.Now}
}

var _ repository.MedicationRepository = (*Medications)(nil)

func (s *Medications) Create(_ context.Context, med *domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	med.ID = uuid.NewString()
	med.CreatedAt = now
	med.UpdatedAt = now
	s.items[med.ID] = *med
	return nil
}

func (s *Medications) Update(_ context.Context, med *domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[med.ID]
	if !ok {
		return repository.ErrNotFound
	}
	med.CreatedAt = existing.CreatedAt
	med.UpdatedAt = s.now().UTC()
	s.items[med.ID] = *med
	return nil
}

func (s *Medications) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Medications) GetByID(_ context.Context, id string) (*domain.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	med, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &med, nil
}

func (s *Medications) List(_ context.Context, limit, offset int) ([]domain.Medication, error) {
	s.mu.RLock()
	result := make([]domain.Medication, 0, len(s.items))
	for _, med := range s.items {
		result = append(result, med)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, limit, offset), nil
}
