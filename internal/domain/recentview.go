package domain

import "time"

// RecentView 浏览足迹（对应 footprint 表）
// 复合主键 (user_contact, listing_id)：同一房源只保留一条，重复浏览只刷新时间。
// Snapshot 记录浏览当时的房源摘要，允许过期
type RecentView struct {
	UserContact string          `db:"user_contact"`
	ListingID   string          `db:"listing_id"`
	ViewedAt    time.Time       `db:"viewed_at"`
	Snapshot    *ListingSummary `db:"snapshot"` // JSONB，可为空（房源已删时）
}
