package domain

import "encoding/json"

// 房源状态
const (
	ListingOnline  = "online"
	ListingOffline = "offline"
)

// Listing 房源（对应 house_info 表）
// Document 是数据源（完整 JSON），其余列都是从 Document 派生的筛选列，
// 只能随 Document 一起写入，禁止单独更新
type Listing struct {
	ID       string          `db:"id"`       // VARCHAR, PRIMARY KEY（"H"+uuid 或调用方自带）
	Document json.RawMessage `db:"document"` // JSONB, NOT NULL，始终包含 id

	// 派生筛选列（均为 Document 的纯函数）
	PriceMinor   int64  `db:"price_minor"`   // 挂牌价（取不到记 0）
	AreaText     string `db:"area_text"`     // 面积原文，如 "58.00"
	PaymentTerm  string `db:"payment_term"`  // 付款方式，如 "季付"
	ProvinceCode string `db:"province_code"` // 区域编码
	CityCode     string `db:"city_code"`
	DistrictCode string `db:"district_code"`
	KeywordText  string `db:"keyword_text"` // 标题/地址/区域/学校拼接的小写检索串
	Status       string `db:"status"`       // online / offline

	Seq int64 `db:"seq"` // BIGSERIAL，插入序（列表按它倒序）
}

// ListingSummary 房源摘要（读时实时拼出，不落库）
type ListingSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Address  string `json:"address"`
	CoverURL string `json:"coverUrl"`
}
