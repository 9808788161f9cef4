package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// PostgresRecentViewsRepository 足迹 Repository 实现
type PostgresRecentViewsRepository struct {
	db *sql.DB
}

func NewPostgresRecentViewsRepository(db *sql.DB) *PostgresRecentViewsRepository {
	return &PostgresRecentViewsRepository{db: db}
}

var _ RecentViewsRepository = (*PostgresRecentViewsRepository)(nil)

func (r *PostgresRecentViewsRepository) Upsert(ctx context.Context, v *domain.RecentView) error {
	if v == nil || v.UserContact == "" || v.ListingID == "" {
		return fmt.Errorf("%w: user contact and listing id are required", domain.ErrInvalidInput)
	}

	snapshotArg := sql.NullString{}
	if v.Snapshot != nil {
		b, err := json.Marshal(v.Snapshot)
		if err != nil {
			return fmt.Errorf("%w: bad snapshot: %v", domain.ErrInvalidInput, err)
		}
		snapshotArg = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO footprint (user_contact, listing_id, viewed_at, snapshot)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (user_contact, listing_id)
		DO UPDATE SET viewed_at = EXCLUDED.viewed_at, snapshot = EXCLUDED.snapshot`,
		v.UserContact, v.ListingID, v.ViewedAt, snapshotArg,
	)
	if err != nil {
		return domain.WrapStorage("upsert recent view", err)
	}
	return nil
}

func (r *PostgresRecentViewsRepository) List(ctx context.Context, userContact string, limit int) ([]*domain.RecentView, error) {
	if userContact == "" {
		return nil, fmt.Errorf("%w: user contact is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_contact, listing_id, viewed_at, snapshot
		FROM footprint
		WHERE user_contact = $1
		ORDER BY viewed_at DESC
		LIMIT $2`, userContact, limit)
	if err != nil {
		return nil, domain.WrapStorage("list recent views", err)
	}
	defer rows.Close()

	out := []*domain.RecentView{}
	for rows.Next() {
		var v domain.RecentView
		var snapshot sql.NullString
		if err := rows.Scan(&v.UserContact, &v.ListingID, &v.ViewedAt, &snapshot); err != nil {
			return nil, domain.WrapStorage("scan recent view", err)
		}
		if snapshot.Valid && snapshot.String != "" {
			var s domain.ListingSummary
			if err := json.Unmarshal([]byte(snapshot.String), &s); err == nil {
				v.Snapshot = &s
			}
		}
		out = append(out, &v)
	}
	if err = rows.Err(); err != nil {
		return nil, domain.WrapStorage("iterate recent views", err)
	}
	return out, nil
}

func (r *PostgresRecentViewsRepository) Remove(ctx context.Context, userContact, listingID string) error {
	if userContact == "" || listingID == "" {
		return fmt.Errorf("%w: user contact and listing id are required", domain.ErrInvalidInput)
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM footprint WHERE user_contact = $1 AND listing_id = $2`,
		userContact, listingID,
	)
	if err != nil {
		return domain.WrapStorage("remove recent view", err)
	}
	return nil
}

func (r *PostgresRecentViewsRepository) Clear(ctx context.Context, userContact string) error {
	if userContact == "" {
		return fmt.Errorf("%w: user contact is required", domain.ErrInvalidInput)
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM footprint WHERE user_contact = $1`, userContact)
	if err != nil {
		return domain.WrapStorage("clear recent views", err)
	}
	return nil
}

// Rekey 旧会话 id 的行整体迁到稳定联系方式下；
// 目标键冲突时保留 viewed_at 较新的一条，旧行删除
func (r *PostgresRecentViewsRepository) Rekey(ctx context.Context, fromContact, toContact string) error {
	if fromContact == "" || toContact == "" || fromContact == toContact {
		return fmt.Errorf("%w: two distinct contacts are required", domain.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapStorage("rekey recent views", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO footprint (user_contact, listing_id, viewed_at, snapshot)
		SELECT $2, listing_id, viewed_at, snapshot
		FROM footprint
		WHERE user_contact = $1
		ON CONFLICT (user_contact, listing_id)
		DO UPDATE SET viewed_at = EXCLUDED.viewed_at, snapshot = EXCLUDED.snapshot
		WHERE footprint.viewed_at < EXCLUDED.viewed_at`,
		fromContact, toContact,
	)
	if err != nil {
		return domain.WrapStorage("rekey recent views", err)
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM footprint WHERE user_contact = $1`, fromContact); err != nil {
		return domain.WrapStorage("rekey recent views", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapStorage("rekey recent views", err)
	}
	return nil
}
