package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// PostgresListingsRepository 房源 Repository 实现
// document 存 JSONB，派生列和 document 在同一条语句里落库
type PostgresListingsRepository struct {
	db *sql.DB
}

func NewPostgresListingsRepository(db *sql.DB) *PostgresListingsRepository {
	return &PostgresListingsRepository{db: db}
}

// 确保实现了接口
var _ ListingsRepository = (*PostgresListingsRepository)(nil)

const listingColumns = `
	id,
	document,
	price_minor,
	area_text,
	payment_term,
	province_code,
	city_code,
	district_code,
	keyword_text,
	status,
	seq
`

func (r *PostgresListingsRepository) Insert(ctx context.Context, id string, document []byte, p Projection) error {
	if id == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO house_info
			(id, document, price_minor, area_text, payment_term,
			 province_code, city_code, district_code, keyword_text, status)
		VALUES ($1, $2::jsonb, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, string(document), p.PriceMinor, p.AreaText, p.PaymentTerm,
		p.ProvinceCode, p.CityCode, p.DistrictCode, p.KeywordText, p.Status,
	)
	if err != nil {
		return domain.WrapStorage("insert listing", err)
	}
	return nil
}

func (r *PostgresListingsRepository) Replace(ctx context.Context, id string, document []byte, p Projection) error {
	if id == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE house_info
		SET document = $2::jsonb,
		    price_minor = $3,
		    area_text = $4,
		    payment_term = $5,
		    province_code = $6,
		    city_code = $7,
		    district_code = $8,
		    keyword_text = $9,
		    status = $10
		WHERE id = $1`,
		id, string(document), p.PriceMinor, p.AreaText, p.PaymentTerm,
		p.ProvinceCode, p.CityCode, p.DistrictCode, p.KeywordText, p.Status,
	)
	if err != nil {
		return domain.WrapStorage("replace listing", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.WrapStorage("replace listing", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: listing '%s'", domain.ErrNotFound, id)
	}
	return nil
}

func (r *PostgresListingsRepository) Get(ctx context.Context, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM house_info WHERE id = $1`, id)

	l, err := scanListing(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: listing '%s'", domain.ErrNotFound, id)
		}
		return nil, domain.WrapStorage("get listing", err)
	}
	return l, nil
}

func (r *PostgresListingsRepository) List(ctx context.Context, f ListingFilters, offset, limit int) ([]*domain.Listing, int, error) {
	where := []string{}
	args := []any{}
	argIdx := 1

	// 区域：最精确的一级生效，其余忽略
	switch {
	case f.DistrictCode != "":
		where = append(where, fmt.Sprintf("district_code = $%d", argIdx))
		args = append(args, f.DistrictCode)
		argIdx++
	case f.CityCode != "":
		where = append(where, fmt.Sprintf("city_code = $%d", argIdx))
		args = append(args, f.CityCode)
		argIdx++
	case f.ProvinceCode != "":
		where = append(where, fmt.Sprintf("province_code = $%d", argIdx))
		args = append(args, f.ProvinceCode)
		argIdx++
	}

	if f.MinPrice != nil {
		where = append(where, fmt.Sprintf("price_minor >= $%d", argIdx))
		args = append(args, *f.MinPrice)
		argIdx++
	}
	if f.MaxPrice != nil {
		where = append(where, fmt.Sprintf("price_minor <= $%d", argIdx))
		args = append(args, *f.MaxPrice)
		argIdx++
	}
	if f.PaymentTerm != "" {
		where = append(where, fmt.Sprintf("payment_term = $%d", argIdx))
		args = append(args, f.PaymentTerm)
		argIdx++
	}
	if f.Keyword != "" {
		where = append(where, fmt.Sprintf("keyword_text LIKE $%d", argIdx))
		args = append(args, "%"+strings.ToLower(f.Keyword)+"%")
		argIdx++
	}
	if f.OwnerContact != "" {
		// 归属人不是独立列，按 document 里的回退链取
		where = append(where, fmt.Sprintf(`COALESCE(
			NULLIF(document->>'ownerId', ''),
			NULLIF(document->>'landlordPhone', ''),
			NULLIF(document->>'ownerPhone', ''),
			document->>'phone') = $%d`, argIdx))
		args = append(args, f.OwnerContact)
		argIdx++
	}
	if f.Status != "" && f.Status != StatusAny {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, f.Status)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM house_info %s`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, domain.WrapStorage("count listings", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM house_info
		%s
		ORDER BY seq DESC
		LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.WrapStorage("list listings", err)
	}
	defer rows.Close()

	listings := []*domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, domain.WrapStorage("scan listing", err)
		}
		listings = append(listings, l)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, domain.WrapStorage("iterate listings", err)
	}

	return listings, total, nil
}

// Delete 删除房源并级联清关联表，单事务内完成
func (r *PostgresListingsRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapStorage("delete listing", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM house_info WHERE id = $1`, id)
	if err != nil {
		return domain.WrapStorage("delete listing", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.WrapStorage("delete listing", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: listing '%s'", domain.ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_owner_index WHERE reservation_id IN (SELECT id FROM reservation WHERE listing_id = $1)`, id); err != nil {
		return domain.WrapStorage("delete listing reservations index", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservation WHERE listing_id = $1`, id); err != nil {
		return domain.WrapStorage("delete listing reservations", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rent_contract WHERE listing_id = $1`, id); err != nil {
		return domain.WrapStorage("delete listing contracts", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapStorage("delete listing", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var l domain.Listing
	var doc []byte
	err := row.Scan(
		&l.ID,
		&doc,
		&l.PriceMinor,
		&l.AreaText,
		&l.PaymentTerm,
		&l.ProvinceCode,
		&l.CityCode,
		&l.DistrictCode,
		&l.KeywordText,
		&l.Status,
		&l.Seq,
	)
	if err != nil {
		return nil, err
	}
	l.Document = doc
	return &l, nil
}
