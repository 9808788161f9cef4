package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// schemaStatements 按依赖顺序建表；所有语句可重复执行
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS house_info (
		id            VARCHAR(64) PRIMARY KEY,
		document      JSONB NOT NULL,
		price_minor   BIGINT NOT NULL DEFAULT 0,
		area_text     TEXT NOT NULL DEFAULT '',
		payment_term  TEXT NOT NULL DEFAULT '',
		province_code TEXT NOT NULL DEFAULT '',
		city_code     TEXT NOT NULL DEFAULT '',
		district_code TEXT NOT NULL DEFAULT '',
		keyword_text  TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'online',
		seq           BIGSERIAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_house_info_region ON house_info (province_code, city_code, district_code)`,
	`CREATE INDEX IF NOT EXISTS idx_house_info_price ON house_info (price_minor)`,

	`CREATE TABLE IF NOT EXISTS reservation (
		id                BIGSERIAL PRIMARY KEY,
		listing_id        VARCHAR(64) NOT NULL,
		requester_contact TEXT NOT NULL,
		date              TEXT NOT NULL,
		display_name      TEXT NOT NULL DEFAULT '',
		note              TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL DEFAULT 'pending',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservation_requester ON reservation (requester_contact)`,
	`CREATE INDEX IF NOT EXISTS idx_reservation_listing ON reservation (listing_id)`,

	// 房东侧查询的二级索引表，插入预约时同事务维护
	`CREATE TABLE IF NOT EXISTS reservation_owner_index (
		owner_contact  TEXT NOT NULL,
		reservation_id BIGINT NOT NULL,
		PRIMARY KEY (owner_contact, reservation_id)
	)`,

	`CREATE TABLE IF NOT EXISTS rent_contract (
		id               VARCHAR(64) PRIMARY KEY,
		listing_id       VARCHAR(64) NOT NULL,
		tenant_contact   TEXT NOT NULL,
		landlord_contact TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending',
		remark           TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rent_contract_landlord ON rent_contract (landlord_contact)`,
	`CREATE INDEX IF NOT EXISTS idx_rent_contract_tenant ON rent_contract (tenant_contact)`,

	`CREATE TABLE IF NOT EXISTS footprint (
		user_contact TEXT NOT NULL,
		listing_id   VARCHAR(64) NOT NULL,
		viewed_at    TIMESTAMPTZ NOT NULL,
		snapshot     JSONB,
		PRIMARY KEY (user_contact, listing_id)
	)`,
}

// EnsureSchema 启动时建表；表已存在则无操作
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
