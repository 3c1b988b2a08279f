package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Domenick1991/quickreserve/internal/domain"
)

// MemoryReservationRepository keeps reservations in process. The conditional update
// holds the mutex across check and set, matching the single-statement guard in Postgres.
type MemoryReservationRepository struct {
	mu    sync.Mutex
	items map[string]domain.Reservation
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{items: make(map[string]domain.Reservation)}
}

func (m *MemoryReservationRepository) Create(_ context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[r.ID]; ok {
		return fmt.Errorf("reservation %s already exists", r.ID)
	}
	m.items[r.ID] = *r
	return nil
}

func (m *MemoryReservationRepository) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	return &r, nil
}

func (m *MemoryReservationRepository) GetByCallSID(_ context.Context, sid string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.items {
		if r.CallCorrelationID != nil && *r.CallCorrelationID == sid {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: call %s", domain.ErrNotFound, sid)
}

func (m *MemoryReservationRepository) SetCallCorrelationID(_ context.Context, id, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok {
		return fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	r.CallCorrelationID = &sid
	m.items[id] = r
	return nil
}

func (m *MemoryReservationRepository) UpdateIfPending(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.items[r.ID]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, r.ID)
	}
	if cur.Status != domain.ReservationStatusPending {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrAlreadyProcessed, r.ID)
	}

	cur.Status = r.Status
	cur.ConfirmedAt = r.ConfirmedAt
	cur.RejectionReason = r.RejectionReason
	cur.UpdatedAt = r.UpdatedAt
	m.items[r.ID] = cur

	out := cur
	return &out, nil
}

// MemoryStoreRepository serves a fixed set of venues.
type MemoryStoreRepository struct {
	mu     sync.RWMutex
	stores map[string]domain.Store
}

func NewMemoryStoreRepository(stores ...domain.Store) *MemoryStoreRepository {
	m := &MemoryStoreRepository{stores: make(map[string]domain.Store, len(stores))}
	for _, s := range stores {
		m.stores[s.ID] = s
	}
	return m
}

func (m *MemoryStoreRepository) GetByID(_ context.Context, id string) (*domain.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: store %s", domain.ErrNotFound, id)
	}
	return &s, nil
}

var (
	_ ReservationRepository = (*MemoryReservationRepository)(nil)
	_ StoreRepository       = (*MemoryStoreRepository)(nil)
)
