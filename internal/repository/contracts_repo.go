package repository

import (
	"context"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// ContractsRepository 租房合同存储接口
// 同一房源允许多份合同并存（合租），所以 listing_id 上没有唯一约束
type ContractsRepository interface {
	// Insert 新增 pending 合同（id、双方联系方式由 service 填好）
	Insert(ctx context.Context, c *domain.RentalContract) error

	// Get 按 id 取合同；不存在返回 domain.ErrNotFound
	Get(ctx context.Context, id string) (*domain.RentalContract, error)

	// ListByLandlord 房东视角列表，status 为空则不过滤，created_at 倒序
	ListByLandlord(ctx context.Context, landlordContact, status string) ([]*domain.RentalContract, error)

	// ListByTenant 租客视角列表（按状态过滤），updated_at 倒序
	ListByTenant(ctx context.Context, tenantContact, status string) ([]*domain.RentalContract, error)

	// UpdateStatus 比较并交换，同时刷新 updated_at；remark 非 nil 时一并写入。
	// 行不存在返回 ErrNotFound；状态不符（含并发抢先）返回 ErrConflict
	UpdateStatus(ctx context.Context, id string, from, to string, remark *string) error
}
