package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// ListingService 房源服务
// 所有写路径（发布/编辑/上下架）都在这里统一走一遍 Derive，
// Document 和派生列永远同进同出
type ListingService struct {
	repo   repository.ListingsRepository
	logger *zap.Logger
}

func NewListingService(repo repository.ListingsRepository, logger *zap.Logger) *ListingService {
	return &ListingService{
		repo:   repo,
		logger: logger,
	}
}

// Publish 发布房源；document 不带 id 时分配一个（"H"+uuid）
func (s *ListingService) Publish(ctx context.Context, document []byte) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal(document, &doc); err != nil {
		return "", fmt.Errorf("%w: invalid listing document: %v", domain.ErrInvalidInput, err)
	}

	id := ""
	if v, ok := doc["id"].(string); ok {
		id = strings.TrimSpace(v)
	}
	if id == "" {
		id = "H" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	doc["id"] = id

	normalized, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: invalid listing document: %v", domain.ErrInvalidInput, err)
	}
	p, err := repository.Derive(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.repo.Insert(ctx, id, normalized, p); err != nil {
		return "", err
	}
	s.logger.Info("listing published",
		zap.String("listing_id", id),
		zap.Int64("price_minor", p.PriceMinor),
		zap.String("status", p.Status))
	return id, nil
}

// Update 局部编辑：partial 顶层字段覆盖原 document，其余保留，派生列重算
func (s *ListingService) Update(ctx context.Context, id string, partial []byte) error {
	if id == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	merged, err := repository.MergeDocument(current.Document, partial, id)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	p, err := repository.Derive(merged)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return s.repo.Replace(ctx, id, merged, p)
}

// SetStatus 上下架：改 Document 里的 status 再重算派生列
func (s *ListingService) SetStatus(ctx context.Context, id, status string) error {
	if status != domain.ListingOnline && status != domain.ListingOffline {
		return fmt.Errorf("%w: status must be online or offline", domain.ErrInvalidInput)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	updated, err := repository.SetDocumentField(current.Document, "status", status)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	p, err := repository.Derive(updated)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Replace(ctx, id, updated, p); err != nil {
		return err
	}
	s.logger.Info("listing status changed",
		zap.String("listing_id", id),
		zap.String("status", status))
	return nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return s.repo.Get(ctx, id)
}

// Delete 删除房源，预约和合同级联清掉
func (s *ListingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("listing deleted", zap.String("listing_id", id))
	return nil
}

// QueryListingsRequest 房源列表查询
type QueryListingsRequest struct {
	ProvinceCode string
	CityCode     string
	DistrictCode string
	MinPrice     *int64
	MaxPrice     *int64
	PaymentTerm  string
	Keyword      string
	Status       string // 空 = 默认只看 online；"any" = 不限
	Offset       int
	Limit        int
}

// QueryListingsResponse 房源列表响应
type QueryListingsResponse struct {
	Items []*domain.Listing `json:"items"`
	Total int               `json:"total"`
}

// Query 条件查询，默认只返回在架房源，按发布时间倒序
func (s *ListingService) Query(ctx context.Context, req QueryListingsRequest) (*QueryListingsResponse, error) {
	status := req.Status
	if status == "" {
		status = domain.ListingOnline
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repo.List(ctx, repository.ListingFilters{
		ProvinceCode: req.ProvinceCode,
		CityCode:     req.CityCode,
		DistrictCode: req.DistrictCode,
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		PaymentTerm:  req.PaymentTerm,
		Keyword:      strings.TrimSpace(req.Keyword),
		Status:       status,
	}, offset, limit)
	if err != nil {
		return nil, err
	}
	return &QueryListingsResponse{Items: items, Total: total}, nil
}

// ListByOwner 归属人名下全部房源（不分状态）
func (s *ListingService) ListByOwner(ctx context.Context, ownerContact string) ([]*domain.Listing, error) {
	if ownerContact == "" {
		return nil, fmt.Errorf("%w: owner contact is required", domain.ErrInvalidInput)
	}
	items, _, err := s.repo.List(ctx, repository.ListingFilters{
		OwnerContact: ownerContact,
		Status:       repository.StatusAny,
	}, 0, 1000)
	return items, err
}

// ListPublishedByOwner 归属人已上架房源摘要（"我发布的"轮播）
func (s *ListingService) ListPublishedByOwner(ctx context.Context, ownerContact string) ([]domain.ListingSummary, error) {
	if ownerContact == "" {
		return nil, fmt.Errorf("%w: owner contact is required", domain.ErrInvalidInput)
	}
	items, _, err := s.repo.List(ctx, repository.ListingFilters{
		OwnerContact: ownerContact,
		Status:       domain.ListingOnline,
	}, 0, 1000)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ListingSummary, 0, len(items))
	for _, l := range items {
		out = append(out, repository.Summary(l.ID, l.Document))
	}
	return out, nil
}

// Nearby 周边推荐：按区域（区 > 市 > 省）过滤的在架房源摘要
func (s *ListingService) Nearby(ctx context.Context, provinceCode, cityCode, districtCode string, limit int) ([]domain.ListingSummary, error) {
	if limit <= 0 {
		limit = 8
	}
	items, _, err := s.repo.List(ctx, repository.ListingFilters{
		ProvinceCode: provinceCode,
		CityCode:     cityCode,
		DistrictCode: districtCode,
		Status:       domain.ListingOnline,
	}, 0, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ListingSummary, 0, len(items))
	for _, l := range items {
		out = append(out, repository.Summary(l.ID, l.Document))
	}
	return out, nil
}

// ResolveOwner 其它 ledger 用的交叉引用：取某房源的归属人和摘要
func (s *ListingService) ResolveOwner(ctx context.Context, listingID string) (string, domain.ListingSummary, error) {
	l, err := s.repo.Get(ctx, listingID)
	if err != nil {
		return "", domain.ListingSummary{}, err
	}
	return repository.OwnerContact(l.Document), repository.Summary(l.ID, l.Document), nil
}
