package domain

import "time"

// 消息类型
const (
	NotifySystem = "system"
	NotifyOrder  = "order"
	NotifyNotice = "notice"
)

// 首次触达某收件人时播种的系统欢迎消息。
// 欢迎消息直接记为已读：未读数只反映真正的业务通知
const (
	WelcomeTitle = "欢迎使用租房 App"
	WelcomeBody  = "欢迎使用租房 App，本页面会显示系统通知和预约消息。"
)

// Notification 站内消息（按收件人分邮箱存放）
// ID 全局严格递增；只在 ledger 状态转换或首次触达播种欢迎消息时创建，
// 之后仅允许标记已读
type Notification struct {
	ID               int64     `json:"id"`
	RecipientContact string    `json:"recipientContact"`
	Kind             string    `json:"kind"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	CreatedAt        time.Time `json:"createdAt"`
	Read             bool      `json:"read"`
	Payload          string    `json:"payload,omitempty"` // 透传给前端的 JSON 串，邮箱不解释
}
