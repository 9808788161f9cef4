package repository

import (
	"context"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// MailboxRepository 站内消息邮箱接口
// 原型是进程级全局 map（重启即清空）；这里改成注入的仓储抽象：
// 生产走 Redis 实现（store 包），测试/兜底走内存实现。
// 约定：邮箱失败绝不反过来回滚触发它的 ledger 写入，调用方记日志吞掉即可。
//
// 首次 Append 或 UnreadCount 触达某个没见过的收件人时，恰好播种一条
// 系统欢迎消息（已读），之后不再重复
type MailboxRepository interface {
	// Append 追加一条消息，id 全局严格递增、时间戳由实现赋值，read=false
	Append(ctx context.Context, msg *domain.Notification) (*domain.Notification, error)

	// List 某收件人全部消息，(createdAt desc, id desc)
	List(ctx context.Context, recipient string) ([]*domain.Notification, error)

	// UnreadCount 未读数；收件人为空串时返回 0，不算错
	UnreadCount(ctx context.Context, recipient string) (int, error)

	// MarkAllRead 全部置已读；幂等，收件人不存在时是空操作
	MarkAllRead(ctx context.Context, recipient string) error
}
