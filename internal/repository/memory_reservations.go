package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// MemoryReservationsRepository 预约内存实现
type MemoryReservationsRepository struct {
	mu           sync.RWMutex
	reservations map[int64]*domain.Reservation
	ownerIndex   map[string][]int64 // owner contact → reservation ids
	nextID       int64
}

func NewMemoryReservationsRepository() *MemoryReservationsRepository {
	return &MemoryReservationsRepository{
		reservations: map[int64]*domain.Reservation{},
		ownerIndex:   map[string][]int64{},
		nextID:       1,
	}
}

var _ ReservationsRepository = (*MemoryReservationsRepository)(nil)

func (r *MemoryReservationsRepository) Insert(_ context.Context, res *domain.Reservation, ownerContact string) (int64, error) {
	if res == nil {
		return 0, fmt.Errorf("%w: reservation is required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	cp := *res
	cp.ID = id
	cp.Status = domain.ReservationPending
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.reservations[id] = &cp

	if ownerContact != "" {
		r.ownerIndex[ownerContact] = append(r.ownerIndex[ownerContact], id)
	}
	return id, nil
}

func (r *MemoryReservationsRepository) Get(_ context.Context, id int64) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %d", domain.ErrNotFound, id)
	}
	cp := *res
	return &cp, nil
}

func (r *MemoryReservationsRepository) ListByRequester(_ context.Context, contact string) ([]*domain.Reservation, error) {
	if contact == "" {
		return nil, fmt.Errorf("%w: requester contact is required", domain.ErrInvalidInput)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Reservation{}
	for _, res := range r.reservations {
		if res.RequesterContact == contact {
			cp := *res
			out = append(out, &cp)
		}
	}
	sortReservations(out)
	return out, nil
}

func (r *MemoryReservationsRepository) ListByOwner(_ context.Context, ownerContact string) ([]*domain.Reservation, error) {
	if ownerContact == "" {
		return nil, fmt.Errorf("%w: owner contact is required", domain.ErrInvalidInput)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Reservation{}
	for _, id := range r.ownerIndex[ownerContact] {
		if res, ok := r.reservations[id]; ok {
			cp := *res
			out = append(out, &cp)
		}
	}
	sortReservations(out)
	return out, nil
}

func (r *MemoryReservationsRepository) UpdateStatus(_ context.Context, id int64, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.reservations[id]
	if !ok {
		return fmt.Errorf("%w: reservation %d", domain.ErrNotFound, id)
	}
	if res.Status != from {
		return fmt.Errorf("%w: reservation %d is %s, expected %s", domain.ErrConflict, id, res.Status, from)
	}
	res.Status = to
	return nil
}

// deleteByListing 房源级联删除用（内存实现里预约行随房源一起消失）
func (r *MemoryReservationsRepository) deleteByListing(listingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := map[int64]bool{}
	for id, res := range r.reservations {
		if res.ListingID == listingID {
			removed[id] = true
			delete(r.reservations, id)
		}
	}
	for owner, ids := range r.ownerIndex {
		kept := ids[:0]
		for _, id := range ids {
			if !removed[id] {
				kept = append(kept, id)
			}
		}
		r.ownerIndex[owner] = kept
	}
}

func sortReservations(out []*domain.Reservation) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
}
