package repository

import (
	"context"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// ListingsRepository 房源存储接口
// Document 与派生列必须作为一个原子单元落库：实现里只有一条写路径，
// 写入前由调用方（service）统一走 Derive 重算，绝不单独更新派生列
type ListingsRepository interface {
	// Insert 新增房源（document 此时已含 id，projection 已重算）
	Insert(ctx context.Context, id string, document []byte, p Projection) error

	// Replace 整体覆盖 document + 派生列；房源不存在返回 domain.ErrNotFound
	Replace(ctx context.Context, id string, document []byte, p Projection) error

	// Get 按 id 取房源；不存在返回 domain.ErrNotFound
	Get(ctx context.Context, id string) (*domain.Listing, error)

	// List 按筛选条件查询（见 ListingFilters），返回命中行和过滤后的总数。
	// 结果按插入序倒序（最新在前），offset/limit 在过滤之后生效
	List(ctx context.Context, f ListingFilters, offset, limit int) ([]*domain.Listing, int, error)

	// Delete 删除房源并级联清掉引用它的预约与合同（同一事务）
	Delete(ctx context.Context, id string) error
}

// ListingFilters 房源筛选条件
// 区域编码取最精确的一级：给了 district 就忽略 city/province，依此类推
type ListingFilters struct {
	ProvinceCode string
	CityCode     string
	DistrictCode string
	MinPrice     *int64 // 闭区间
	MaxPrice     *int64
	PaymentTerm  string // 精确匹配
	Keyword      string // 不区分大小写的子串，匹配标题/地址/区域/学校
	OwnerContact string // 只看某个归属人的房源
	Status       string // 默认由 service 填 online；"any" 表示不限
}

// StatusAny List 的 Status 传这个值表示不按状态过滤
const StatusAny = "any"
