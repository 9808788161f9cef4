package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// MemoryContractsRepository 合同内存实现
type MemoryContractsRepository struct {
	mu        sync.RWMutex
	contracts map[string]*domain.RentalContract
}

func NewMemoryContractsRepository() *MemoryContractsRepository {
	return &MemoryContractsRepository{
		contracts: map[string]*domain.RentalContract{},
	}
}

var _ ContractsRepository = (*MemoryContractsRepository)(nil)

func (r *MemoryContractsRepository) Insert(_ context.Context, c *domain.RentalContract) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: contract id is required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	cp.Status = domain.ContractPending
	now := time.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = cp.CreatedAt
	r.contracts[cp.ID] = &cp
	return nil
}

func (r *MemoryContractsRepository) Get(_ context.Context, id string) (*domain.RentalContract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[id]
	if !ok {
		return nil, fmt.Errorf("%w: contract '%s'", domain.ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryContractsRepository) ListByLandlord(_ context.Context, landlordContact, status string) ([]*domain.RentalContract, error) {
	if landlordContact == "" {
		return nil, fmt.Errorf("%w: landlord contact is required", domain.ErrInvalidInput)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.RentalContract{}
	for _, c := range r.contracts {
		if c.LandlordContact != landlordContact {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryContractsRepository) ListByTenant(_ context.Context, tenantContact, status string) ([]*domain.RentalContract, error) {
	if tenantContact == "" {
		return nil, fmt.Errorf("%w: tenant contact is required", domain.ErrInvalidInput)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.RentalContract{}
	for _, c := range r.contracts {
		if c.TenantContact != tenantContact {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryContractsRepository) UpdateStatus(_ context.Context, id string, from, to string, remark *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contracts[id]
	if !ok {
		return fmt.Errorf("%w: contract '%s'", domain.ErrNotFound, id)
	}
	if c.Status != from {
		return fmt.Errorf("%w: contract '%s' is %s, expected %s", domain.ErrConflict, id, c.Status, from)
	}
	c.Status = to
	if remark != nil {
		c.Remark = *remark
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryContractsRepository) deleteByListing(listingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.contracts {
		if c.ListingID == listingID {
			delete(r.contracts, id)
		}
	}
}
