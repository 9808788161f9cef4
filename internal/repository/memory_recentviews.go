package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

type viewKey struct {
	user    string
	listing string
}

// MemoryRecentViewsRepository 足迹内存实现
type MemoryRecentViewsRepository struct {
	mu    sync.RWMutex
	views map[viewKey]*domain.RecentView
}

func NewMemoryRecentViewsRepository() *MemoryRecentViewsRepository {
	return &MemoryRecentViewsRepository{
		views: map[viewKey]*domain.RecentView{},
	}
}

var _ RecentViewsRepository = (*MemoryRecentViewsRepository)(nil)

func (r *MemoryRecentViewsRepository) Upsert(_ context.Context, v *domain.RecentView) error {
	if v == nil || v.UserContact == "" || v.ListingID == "" {
		return fmt.Errorf("%w: user contact and listing id are required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *v
	if v.Snapshot != nil {
		s := *v.Snapshot
		cp.Snapshot = &s
	}
	r.views[viewKey{v.UserContact, v.ListingID}] = &cp
	return nil
}

func (r *MemoryRecentViewsRepository) List(_ context.Context, userContact string, limit int) ([]*domain.RecentView, error) {
	if userContact == "" {
		return nil, fmt.Errorf("%w: user contact is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.RecentView{}
	for k, v := range r.views {
		if k.user != userContact {
			continue
		}
		cp := *v
		if v.Snapshot != nil {
			s := *v.Snapshot
			cp.Snapshot = &s
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ViewedAt.After(out[j].ViewedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRecentViewsRepository) Remove(_ context.Context, userContact, listingID string) error {
	if userContact == "" || listingID == "" {
		return fmt.Errorf("%w: user contact and listing id are required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, viewKey{userContact, listingID})
	return nil
}

func (r *MemoryRecentViewsRepository) Clear(_ context.Context, userContact string) error {
	if userContact == "" {
		return fmt.Errorf("%w: user contact is required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.views {
		if k.user == userContact {
			delete(r.views, k)
		}
	}
	return nil
}

func (r *MemoryRecentViewsRepository) Rekey(_ context.Context, fromContact, toContact string) error {
	if fromContact == "" || toContact == "" || fromContact == toContact {
		return fmt.Errorf("%w: two distinct contacts are required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range r.views {
		if k.user != fromContact {
			continue
		}
		dst := viewKey{toContact, k.listing}
		if existing, ok := r.views[dst]; !ok || existing.ViewedAt.Before(v.ViewedAt) {
			moved := *v
			moved.UserContact = toContact
			r.views[dst] = &moved
		}
		delete(r.views, k)
	}
	return nil
}
