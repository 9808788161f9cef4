package repository

import (
	"context"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// ReservationsRepository 看房预约存储接口
// 预约行永不硬删（历史保留），状态流转一律走 UpdateStatus 的 CAS
type ReservationsRepository interface {
	// Insert 新增 pending 预约，返回自增 id。
	// ownerContact 是建单时解析到的房东联系方式，非空时在同一事务里
	// 维护 owner → reservation 的二级索引（ListByOwner 不做全表扫描）；
	// 解析不到时传 ""，索引行跳过
	Insert(ctx context.Context, res *domain.Reservation, ownerContact string) (int64, error)

	// Get 按 id 取预约；不存在返回 domain.ErrNotFound
	Get(ctx context.Context, id int64) (*domain.Reservation, error)

	// ListByRequester 某个预约人的全部预约，date 倒序再 id 倒序
	ListByRequester(ctx context.Context, contact string) ([]*domain.Reservation, error)

	// ListByOwner 房东名下房源收到的全部预约（走二级索引），排序同上
	ListByOwner(ctx context.Context, ownerContact string) ([]*domain.Reservation, error)

	// UpdateStatus 比较并交换：只有当前状态等于 from 时才置为 to。
	// 行不存在返回 ErrNotFound；状态不符（含并发抢先）返回 ErrConflict
	UpdateStatus(ctx context.Context, id int64, from, to string) error
}
