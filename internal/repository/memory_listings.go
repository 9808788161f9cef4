package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// MemoryListingsRepository 内存实现，DB 不可用时兜底，也给单测用
type MemoryListingsRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
	nextSeq  int64

	// 级联删除时需要同步清掉引用行；没接上时为 nil
	reservations *MemoryReservationsRepository
	contracts    *MemoryContractsRepository
}

func NewMemoryListingsRepository() *MemoryListingsRepository {
	return &MemoryListingsRepository{
		listings: map[string]*domain.Listing{},
		nextSeq:  1,
	}
}

var _ ListingsRepository = (*MemoryListingsRepository)(nil)

// AttachLedgers 接上预约/合同内存库，Delete 时做级联
func (r *MemoryListingsRepository) AttachLedgers(res *MemoryReservationsRepository, con *MemoryContractsRepository) {
	r.reservations = res
	r.contracts = con
}

func (r *MemoryListingsRepository) Insert(_ context.Context, id string, document []byte, p Projection) error {
	if id == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[id] = &domain.Listing{
		ID:           id,
		Document:     append([]byte(nil), document...),
		PriceMinor:   p.PriceMinor,
		AreaText:     p.AreaText,
		PaymentTerm:  p.PaymentTerm,
		ProvinceCode: p.ProvinceCode,
		CityCode:     p.CityCode,
		DistrictCode: p.DistrictCode,
		KeywordText:  p.KeywordText,
		Status:       p.Status,
		Seq:          r.nextSeq,
	}
	r.nextSeq++
	return nil
}

func (r *MemoryListingsRepository) Replace(_ context.Context, id string, document []byte, p Projection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return fmt.Errorf("%w: listing '%s'", domain.ErrNotFound, id)
	}
	l.Document = append([]byte(nil), document...)
	l.PriceMinor = p.PriceMinor
	l.AreaText = p.AreaText
	l.PaymentTerm = p.PaymentTerm
	l.ProvinceCode = p.ProvinceCode
	l.CityCode = p.CityCode
	l.DistrictCode = p.DistrictCode
	l.KeywordText = p.KeywordText
	l.Status = p.Status
	return nil
}

func (r *MemoryListingsRepository) Get(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("%w: listing '%s'", domain.ErrNotFound, id)
	}
	cp := *l
	cp.Document = append([]byte(nil), l.Document...)
	return &cp, nil
}

func (r *MemoryListingsRepository) List(_ context.Context, f ListingFilters, offset, limit int) ([]*domain.Listing, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*domain.Listing{}
	for _, l := range r.listings {
		if !matchListing(l, f) {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Seq > matched[j].Seq
	})

	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	out := make([]*domain.Listing, 0, end-offset)
	for _, l := range matched[offset:end] {
		cp := *l
		cp.Document = append([]byte(nil), l.Document...)
		out = append(out, &cp)
	}
	return out, total, nil
}

func (r *MemoryListingsRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.listings[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: listing '%s'", domain.ErrNotFound, id)
	}
	delete(r.listings, id)
	r.mu.Unlock()

	if r.reservations != nil {
		r.reservations.deleteByListing(id)
	}
	if r.contracts != nil {
		r.contracts.deleteByListing(id)
	}
	return nil
}

func matchListing(l *domain.Listing, f ListingFilters) bool {
	switch {
	case f.DistrictCode != "":
		if l.DistrictCode != f.DistrictCode {
			return false
		}
	case f.CityCode != "":
		if l.CityCode != f.CityCode {
			return false
		}
	case f.ProvinceCode != "":
		if l.ProvinceCode != f.ProvinceCode {
			return false
		}
	}

	if f.MinPrice != nil && l.PriceMinor < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.PriceMinor > *f.MaxPrice {
		return false
	}
	if f.PaymentTerm != "" && l.PaymentTerm != f.PaymentTerm {
		return false
	}
	if f.Keyword != "" && !strings.Contains(l.KeywordText, strings.ToLower(f.Keyword)) {
		return false
	}
	if f.OwnerContact != "" && OwnerContact(l.Document) != f.OwnerContact {
		return false
	}
	if f.Status != "" && f.Status != StatusAny && l.Status != f.Status {
		return false
	}
	return true
}
