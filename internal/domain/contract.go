package domain

import "time"

// 租约状态机：
//
//	pending      --landlord confirm-->      active
//	active       --tenant quit apply-->     quit_pending
//	quit_pending --landlord confirm quit--> ended
//	quit_pending --landlord reject quit-->  active
//
// 其它任何起点的转换都报 Conflict
const (
	ContractPending     = "pending"
	ContractActive      = "active"
	ContractQuitPending = "quit_pending"
	ContractEnded       = "ended"
	ContractRejected    = "rejected"
)

// RentalContract 租房合同（对应 rent_contract 表）
// LandlordContact 建单时从房源解析后固定；同一房源允许多份并存（合租）
type RentalContract struct {
	ID              string    `db:"id"` // VARCHAR, PRIMARY KEY（"O"+uuid）
	ListingID       string    `db:"listing_id"`
	TenantContact   string    `db:"tenant_contact"`
	LandlordContact string    `db:"landlord_contact"`
	Status          string    `db:"status"`
	Remark          string    `db:"remark"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ContractView 合同列表行（附带实时房源摘要）
type ContractView struct {
	RentalContract
	ListingTitle string `json:"listingTitle"`
	CoverURL     string `json:"coverUrl"`
}
