package domain

import "time"

// 预约看房状态；Pending 为初始态，其余三个都是终态
const (
	ReservationPending   = "pending"
	ReservationAccepted  = "accepted"
	ReservationRejected  = "rejected"
	ReservationCancelled = "cancelled"
)

// Reservation 看房预约（对应 reservation 表）
// 房东联系方式不落库，始终从所引用房源的 Document 实时解析
type Reservation struct {
	ID               int64     `db:"id"`                // BIGSERIAL, PRIMARY KEY
	ListingID        string    `db:"listing_id"`        // VARCHAR, NOT NULL
	RequesterContact string    `db:"requester_contact"` // VARCHAR, NOT NULL
	Date             string    `db:"date"`              // DATE（仅日历日，无时分秒），格式 2006-01-02
	DisplayName      string    `db:"display_name"`
	Note             string    `db:"note"`
	Status           string    `db:"status"` // pending/accepted/rejected/cancelled
	CreatedAt        time.Time `db:"created_at"`
}

// ReservationView 预约列表行（附带实时房源摘要）
type ReservationView struct {
	Reservation
	ListingTitle string `json:"listingTitle"`
	CoverURL     string `json:"coverUrl"`
}
