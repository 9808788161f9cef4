package repository

import (
	"context"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// RecentViewsRepository 浏览足迹存储接口
// 复合键 (user_contact, listing_id)，重复浏览是 upsert 而不是追加
type RecentViewsRepository interface {
	// Upsert 写入或覆盖足迹（刷新 viewed_at 和快照）
	Upsert(ctx context.Context, v *domain.RecentView) error

	// List 某用户足迹，viewed_at 倒序，limit<=0 时用默认上限
	List(ctx context.Context, userContact string, limit int) ([]*domain.RecentView, error)

	// Remove 删单条；行本就不存在时不算错
	Remove(ctx context.Context, userContact, listingID string) error

	// Clear 清空某用户全部足迹
	Clear(ctx context.Context, userContact string) error

	// Rekey 把 fromContact 名下的行全部改挂到 toContact（旧会话 id 在线迁移）。
	// 目标键已有同房源的行时保留 viewed_at 较新的那条
	Rekey(ctx context.Context, fromContact, toContact string) error
}
