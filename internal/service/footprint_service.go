package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// FootprintService 浏览足迹服务
// 快照在浏览当时抓取，之后允许过期；同一 (用户, 房源) 只保留一条
type FootprintService struct {
	repo     repository.RecentViewsRepository
	listings repository.ListingsRepository
	logger   *zap.Logger
}

func NewFootprintService(
	repo repository.RecentViewsRepository,
	listings repository.ListingsRepository,
	logger *zap.Logger,
) *FootprintService {
	return &FootprintService{
		repo:     repo,
		listings: listings,
		logger:   logger,
	}
}

// Identity 调用方身份：稳定联系方式 + 可能残留的旧会话 id。
// 两者同时给且不同时，先把旧 id 名下的足迹在线迁到稳定联系方式下，
// 再执行本次操作（内联迁移，不是批处理任务）
type Identity struct {
	Contact         string
	LegacySessionID string
}

// resolve 做身份归并，返回本次操作实际使用的键
func (s *FootprintService) resolve(ctx context.Context, id Identity) (string, error) {
	if id.Contact == "" && id.LegacySessionID == "" {
		return "", fmt.Errorf("%w: user identity is required", domain.ErrInvalidInput)
	}
	if id.Contact == "" {
		return id.LegacySessionID, nil
	}
	if id.LegacySessionID != "" && id.LegacySessionID != id.Contact {
		if err := s.repo.Rekey(ctx, id.LegacySessionID, id.Contact); err != nil {
			return "", err
		}
		s.logger.Info("footprints rekeyed to stable contact",
			zap.String("legacy", id.LegacySessionID),
			zap.String("contact", id.Contact))
	}
	return id.Contact, nil
}

// RecordView 记一条足迹（upsert：重复浏览只刷新时间和快照）
func (s *FootprintService) RecordView(ctx context.Context, id Identity, listingID string) error {
	if listingID == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	user, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	v := &domain.RecentView{
		UserContact: user,
		ListingID:   listingID,
		ViewedAt:    time.Now(),
	}
	// 房源还在就抓一份当时的摘要；已删的房源足迹照记，快照为空
	if l, err := s.listings.Get(ctx, listingID); err == nil {
		snapshot := repository.Summary(l.ID, l.Document)
		v.Snapshot = &snapshot
	}
	return s.repo.Upsert(ctx, v)
}

// List 足迹列表，最近浏览在前
func (s *FootprintService) List(ctx context.Context, id Identity, limit int) ([]*domain.RecentView, error) {
	user, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, user, limit)
}

// Remove 删单条足迹
func (s *FootprintService) Remove(ctx context.Context, id Identity, listingID string) error {
	if listingID == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	user, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Remove(ctx, user, listingID)
}

// Clear 清空足迹
func (s *FootprintService) Clear(ctx context.Context, id Identity) error {
	user, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, user)
}
