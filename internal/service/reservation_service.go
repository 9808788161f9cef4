package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// Notifier ledger 发消息的出口；MailboxService 实现它。
// 尽力而为：实现方永不返回错误，ledger 写入不因消息失败回滚
type Notifier interface {
	Notify(ctx context.Context, recipient, kind, title, body, payload string)
}

// ReservationService 看房预约服务
// 房东身份不落库，每次操作都从所引用房源实时解析再校验
type ReservationService struct {
	repo     repository.ReservationsRepository
	listings repository.ListingsRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewReservationService(
	repo repository.ReservationsRepository,
	listings repository.ListingsRepository,
	notifier Notifier,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		repo:     repo,
		listings: listings,
		notifier: notifier,
		logger:   logger,
	}
}

const dateLayout = "2006-01-02"

// CreateReservationRequest 预约创建请求
type CreateReservationRequest struct {
	ListingID        string
	RequesterContact string
	Date             string // 2006-01-02，只看日历日
	DisplayName      string
	Note             string
}

// Create 提交看房预约
// 日期早于今天（忽略时分秒）直接拒绝；房东解析不到只影响通知，不影响建单
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if req.ListingID == "" || req.RequesterContact == "" || req.Date == "" {
		return nil, fmt.Errorf("%w: listing id, requester contact and date are required", domain.ErrInvalidInput)
	}

	target, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if target.Before(today) {
		return nil, fmt.Errorf("%w: cannot reserve a past date", domain.ErrInvalidInput)
	}

	listing, err := s.listings.Get(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	owner := repository.OwnerContact(listing.Document)
	summary := repository.Summary(listing.ID, listing.Document)
	if owner == "" {
		// 老数据可能没有归属人字段：照常建单，只是房东收不到提醒
		s.logger.Warn("listing owner contact unresolved, skipping owner notification",
			zap.String("listing_id", req.ListingID))
	}

	res := &domain.Reservation{
		ListingID:        req.ListingID,
		RequesterContact: req.RequesterContact,
		Date:             req.Date,
		DisplayName:      req.DisplayName,
		Note:             req.Note,
		Status:           domain.ReservationPending,
	}
	id, err := s.repo.Insert(ctx, res, owner)
	if err != nil {
		return nil, err
	}
	res.ID = id

	payload := reservationPayload(res, owner, summary)
	s.notifier.Notify(ctx, req.RequesterContact, domain.NotifyOrder,
		"已提交看房预约",
		fmt.Sprintf("你已预约看房「%s」（%s），等待房东确认", displayTitle(summary), req.Date),
		payload)
	if owner != "" {
		s.notifier.Notify(ctx, owner, domain.NotifyOrder,
			"收到新的看房预约",
			fmt.Sprintf("%s 预约于 %s 看房「%s」", req.RequesterContact, req.Date, displayTitle(summary)),
			payload)
	}

	s.logger.Info("reservation created",
		zap.Int64("reservation_id", id),
		zap.String("listing_id", req.ListingID),
		zap.String("requester", req.RequesterContact))
	return res, nil
}

// ListForRequester 预约人视角列表，标题/封面读时实时取
func (s *ReservationService) ListForRequester(ctx context.Context, contact string) ([]*domain.ReservationView, error) {
	rows, err := s.repo.ListByRequester(ctx, contact)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// ListForOwner 房东视角列表（走二级索引）
func (s *ReservationService) ListForOwner(ctx context.Context, contact string) ([]*domain.ReservationView, error) {
	rows, err := s.repo.ListByOwner(ctx, contact)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// Decide 房东处理预约：accept / reject
func (s *ReservationService) Decide(ctx context.Context, reservationID int64, ownerContact, action string) error {
	var next string
	switch action {
	case "accept":
		next = domain.ReservationAccepted
	case "reject":
		next = domain.ReservationRejected
	default:
		return fmt.Errorf("%w: action must be accept or reject", domain.ErrInvalidInput)
	}
	if ownerContact == "" {
		return fmt.Errorf("%w: owner contact is required", domain.ErrInvalidInput)
	}

	res, err := s.repo.Get(ctx, reservationID)
	if err != nil {
		return err
	}
	owner, summary, err := s.resolveListing(ctx, res.ListingID)
	if err != nil {
		return err
	}
	if owner == "" || owner != ownerContact {
		return fmt.Errorf("%w: caller is not the listing owner", domain.ErrForbidden)
	}

	if err := s.repo.UpdateStatus(ctx, reservationID, domain.ReservationPending, next); err != nil {
		return err
	}

	payload := reservationPayload(res, owner, summary)
	if next == domain.ReservationAccepted {
		s.notifier.Notify(ctx, res.RequesterContact, domain.NotifyOrder,
			"预约已通过",
			fmt.Sprintf("房东已确认你 %s 看房「%s」的预约", res.Date, displayTitle(summary)),
			payload)
	} else {
		s.notifier.Notify(ctx, res.RequesterContact, domain.NotifyOrder,
			"预约被拒绝",
			fmt.Sprintf("房东拒绝了你看房「%s」的预约", displayTitle(summary)),
			payload)
	}
	s.notifier.Notify(ctx, owner, domain.NotifyOrder,
		"已处理看房预约",
		fmt.Sprintf("你已%s %s 的看房预约", actionWord(next), res.RequesterContact),
		payload)

	s.logger.Info("reservation decided",
		zap.Int64("reservation_id", reservationID),
		zap.String("action", action))
	return nil
}

// Cancel 预约人撤单；行保留，只改状态
func (s *ReservationService) Cancel(ctx context.Context, reservationID int64, requesterContact string) error {
	if requesterContact == "" {
		return fmt.Errorf("%w: requester contact is required", domain.ErrInvalidInput)
	}

	res, err := s.repo.Get(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.RequesterContact != requesterContact {
		return fmt.Errorf("%w: caller is not the reservation requester", domain.ErrForbidden)
	}

	if err := s.repo.UpdateStatus(ctx, reservationID, domain.ReservationPending, domain.ReservationCancelled); err != nil {
		return err
	}

	owner, summary, resolveErr := s.resolveListing(ctx, res.ListingID)
	payload := reservationPayload(res, owner, summary)
	s.notifier.Notify(ctx, requesterContact, domain.NotifyOrder,
		"预约已取消",
		fmt.Sprintf("你已取消看房「%s」的预约", displayTitle(summary)),
		payload)
	if resolveErr == nil && owner != "" {
		s.notifier.Notify(ctx, owner, domain.NotifyOrder,
			"看房预约被取消",
			fmt.Sprintf("%s 取消了 %s 的看房预约", requesterContact, res.Date),
			payload)
	}

	s.logger.Info("reservation cancelled", zap.Int64("reservation_id", reservationID))
	return nil
}

// resolveListing 实时解析预约对应房源的归属人和摘要
func (s *ReservationService) resolveListing(ctx context.Context, listingID string) (string, domain.ListingSummary, error) {
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return "", domain.ListingSummary{}, err
	}
	return repository.OwnerContact(l.Document), repository.Summary(l.ID, l.Document), nil
}

func (s *ReservationService) enrich(ctx context.Context, rows []*domain.Reservation) []*domain.ReservationView {
	out := make([]*domain.ReservationView, 0, len(rows))
	for _, res := range rows {
		view := &domain.ReservationView{Reservation: *res}
		if l, err := s.listings.Get(ctx, res.ListingID); err == nil {
			summary := repository.Summary(l.ID, l.Document)
			view.ListingTitle = summary.Title
			view.CoverURL = summary.CoverURL
		}
		out = append(out, view)
	}
	return out
}

func reservationPayload(res *domain.Reservation, owner string, summary domain.ListingSummary) string {
	b, _ := json.Marshal(map[string]any{
		"reservationId": res.ID,
		"listingId":     res.ListingID,
		"requester":     res.RequesterContact,
		"owner":         owner,
		"date":          res.Date,
		"listingTitle":  summary.Title,
		"coverUrl":      summary.CoverURL,
	})
	return string(b)
}

func displayTitle(summary domain.ListingSummary) string {
	if summary.Title != "" {
		return summary.Title
	}
	return "房源"
}

func actionWord(status string) string {
	if status == domain.ReservationAccepted {
		return "接受"
	}
	return "拒绝"
}
