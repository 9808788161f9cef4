package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// PostgresContractsRepository 合同 Repository 实现
type PostgresContractsRepository struct {
	db *sql.DB
}

func NewPostgresContractsRepository(db *sql.DB) *PostgresContractsRepository {
	return &PostgresContractsRepository{db: db}
}

var _ ContractsRepository = (*PostgresContractsRepository)(nil)

const contractColumns = `
	id,
	listing_id,
	tenant_contact,
	landlord_contact,
	status,
	remark,
	created_at,
	updated_at
`

func (r *PostgresContractsRepository) Insert(ctx context.Context, c *domain.RentalContract) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: contract id is required", domain.ErrInvalidInput)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rent_contract
			(id, listing_id, tenant_contact, landlord_contact, status, remark)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ListingID, c.TenantContact, c.LandlordContact,
		domain.ContractPending, c.Remark,
	)
	if err != nil {
		return domain.WrapStorage("insert contract", err)
	}
	return nil
}

func (r *PostgresContractsRepository) Get(ctx context.Context, id string) (*domain.RentalContract, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: contract id is required", domain.ErrInvalidInput)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM rent_contract WHERE id = $1`, id)

	c, err := scanContract(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: contract '%s'", domain.ErrNotFound, id)
		}
		return nil, domain.WrapStorage("get contract", err)
	}
	return c, nil
}

func (r *PostgresContractsRepository) ListByLandlord(ctx context.Context, landlordContact, status string) ([]*domain.RentalContract, error) {
	if landlordContact == "" {
		return nil, fmt.Errorf("%w: landlord contact is required", domain.ErrInvalidInput)
	}

	query := `SELECT ` + contractColumns + ` FROM rent_contract WHERE landlord_contact = $1`
	args := []any{landlordContact}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStorage("list contracts by landlord", err)
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (r *PostgresContractsRepository) ListByTenant(ctx context.Context, tenantContact, status string) ([]*domain.RentalContract, error) {
	if tenantContact == "" {
		return nil, fmt.Errorf("%w: tenant contact is required", domain.ErrInvalidInput)
	}

	query := `SELECT ` + contractColumns + ` FROM rent_contract WHERE tenant_contact = $1`
	args := []any{tenantContact}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStorage("list contracts by tenant", err)
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (r *PostgresContractsRepository) UpdateStatus(ctx context.Context, id string, from, to string, remark *string) error {
	var (
		result sql.Result
		err    error
	)
	if remark != nil {
		result, err = r.db.ExecContext(ctx, `
			UPDATE rent_contract
			SET status = $3, remark = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2`,
			id, from, to, *remark,
		)
	} else {
		result, err = r.db.ExecContext(ctx, `
			UPDATE rent_contract
			SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2`,
			id, from, to,
		)
	}
	if err != nil {
		return domain.WrapStorage("update contract status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.WrapStorage("update contract status", err)
	}
	if affected > 0 {
		return nil
	}

	var current string
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM rent_contract WHERE id = $1`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: contract '%s'", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.WrapStorage("update contract status", err)
	}
	return fmt.Errorf("%w: contract '%s' is %s, expected %s", domain.ErrConflict, id, current, from)
}

func scanContract(row rowScanner) (*domain.RentalContract, error) {
	var c domain.RentalContract
	err := row.Scan(
		&c.ID,
		&c.ListingID,
		&c.TenantContact,
		&c.LandlordContact,
		&c.Status,
		&c.Remark,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectContracts(rows *sql.Rows) ([]*domain.RentalContract, error) {
	out := []*domain.RentalContract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, domain.WrapStorage("scan contract", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorage("iterate contracts", err)
	}
	return out, nil
}
