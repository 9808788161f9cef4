package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

func insertReservation(t *testing.T, r *MemoryReservationsRepository, listing, requester, date, owner string) int64 {
	t.Helper()
	id, err := r.Insert(context.Background(), &domain.Reservation{
		ListingID:        listing,
		RequesterContact: requester,
		Date:             date,
	}, owner)
	require.NoError(t, err)
	return id
}

func TestReservations_OrderDateDescThenIDDesc(t *testing.T) {
	r := NewMemoryReservationsRepository()
	insertReservation(t, r, "H1", "tenant1", "2026-09-10", "owner1")
	insertReservation(t, r, "H2", "tenant1", "2026-09-20", "owner1")
	id3 := insertReservation(t, r, "H3", "tenant1", "2026-09-20", "owner1")

	rows, err := r.ListByRequester(context.Background(), "tenant1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// 同一天的按 id 倒序
	require.Equal(t, id3, rows[0].ID)
	require.Equal(t, "2026-09-20", rows[1].Date)
	require.Equal(t, "2026-09-10", rows[2].Date)
}

func TestReservations_OwnerIndex(t *testing.T) {
	r := NewMemoryReservationsRepository()
	insertReservation(t, r, "H1", "tenant1", "2026-09-10", "owner1")
	insertReservation(t, r, "H2", "tenant2", "2026-09-11", "owner2")
	// 房东解析不到：不进索引，但单照建
	orphan := insertReservation(t, r, "H3", "tenant3", "2026-09-12", "")

	rows, err := r.ListByOwner(context.Background(), "owner1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "H1", rows[0].ListingID)

	got, err := r.Get(context.Background(), orphan)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationPending, got.Status)
}

func TestReservations_UpdateStatusCAS(t *testing.T) {
	r := NewMemoryReservationsRepository()
	ctx := context.Background()
	id := insertReservation(t, r, "H1", "tenant1", "2026-09-10", "owner1")

	require.NoError(t, r.UpdateStatus(ctx, id, domain.ReservationPending, domain.ReservationAccepted))

	// from 不匹配 → Conflict，状态不变
	err := r.UpdateStatus(ctx, id, domain.ReservationPending, domain.ReservationRejected)
	require.ErrorIs(t, err, domain.ErrConflict)
	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationAccepted, got.Status)

	// 行不存在 → NotFound
	err = r.UpdateStatus(ctx, 9999, domain.ReservationPending, domain.ReservationAccepted)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
