package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// PostgresReservationsRepository 预约 Repository 实现
type PostgresReservationsRepository struct {
	db *sql.DB
}

func NewPostgresReservationsRepository(db *sql.DB) *PostgresReservationsRepository {
	return &PostgresReservationsRepository{db: db}
}

var _ ReservationsRepository = (*PostgresReservationsRepository)(nil)

const reservationColumns = `
	id,
	listing_id,
	requester_contact,
	date,
	display_name,
	note,
	status,
	created_at
`

func (r *PostgresReservationsRepository) Insert(ctx context.Context, res *domain.Reservation, ownerContact string) (int64, error) {
	if res == nil {
		return 0, fmt.Errorf("%w: reservation is required", domain.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.WrapStorage("insert reservation", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reservation
			(listing_id, requester_contact, date, display_name, note, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		res.ListingID, res.RequesterContact, res.Date,
		res.DisplayName, res.Note, domain.ReservationPending,
	).Scan(&id)
	if err != nil {
		return 0, domain.WrapStorage("insert reservation", err)
	}

	// 二级索引和预约行同事务落库，避免索引漂移
	if ownerContact != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reservation_owner_index (owner_contact, reservation_id)
			VALUES ($1, $2)
			ON CONFLICT (owner_contact, reservation_id) DO NOTHING`,
			ownerContact, id,
		)
		if err != nil {
			return 0, domain.WrapStorage("insert reservation owner index", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.WrapStorage("insert reservation", err)
	}
	return id, nil
}

func (r *PostgresReservationsRepository) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservation WHERE id = $1`, id)

	res, err := scanReservation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: reservation %d", domain.ErrNotFound, id)
		}
		return nil, domain.WrapStorage("get reservation", err)
	}
	return res, nil
}

func (r *PostgresReservationsRepository) ListByRequester(ctx context.Context, contact string) ([]*domain.Reservation, error) {
	if contact == "" {
		return nil, fmt.Errorf("%w: requester contact is required", domain.ErrInvalidInput)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservation
		WHERE requester_contact = $1
		ORDER BY date DESC, id DESC`, contact)
	if err != nil {
		return nil, domain.WrapStorage("list reservations by requester", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *PostgresReservationsRepository) ListByOwner(ctx context.Context, ownerContact string) ([]*domain.Reservation, error) {
	if ownerContact == "" {
		return nil, fmt.Errorf("%w: owner contact is required", domain.ErrInvalidInput)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservation
		WHERE id IN (
			SELECT reservation_id FROM reservation_owner_index WHERE owner_contact = $1
		)
		ORDER BY date DESC, id DESC`, ownerContact)
	if err != nil {
		return nil, domain.WrapStorage("list reservations by owner", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *PostgresReservationsRepository) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservation SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return domain.WrapStorage("update reservation status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.WrapStorage("update reservation status", err)
	}
	if affected > 0 {
		return nil
	}

	// CAS 没命中：区分“行不存在”和“状态不符/并发输掉”
	var current string
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM reservation WHERE id = $1`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: reservation %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.WrapStorage("update reservation status", err)
	}
	return fmt.Errorf("%w: reservation %d is %s, expected %s", domain.ErrConflict, id, current, from)
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.ListingID,
		&res.RequesterContact,
		&res.Date,
		&res.DisplayName,
		&res.Note,
		&res.Status,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	out := []*domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, domain.WrapStorage("scan reservation", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorage("iterate reservations", err)
	}
	return out, nil
}
