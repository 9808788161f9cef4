package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// MailboxService 站内消息服务
// ledger 侧只用 Notify（尽力而为，永不返回错误）；
// 前端读口用 List / UnreadCount / MarkAllRead
type MailboxService struct {
	repo   repository.MailboxRepository
	push   *PushClient // 可为 nil（推送关闭）
	logger *zap.Logger
}

func NewMailboxService(repo repository.MailboxRepository, push *PushClient, logger *zap.Logger) *MailboxService {
	return &MailboxService{
		repo:   repo,
		push:   push,
		logger: logger,
	}
}

// Post 投递一条消息并（可选）转发推送网关
func (s *MailboxService) Post(ctx context.Context, recipient, kind, title, body, payload string) (*domain.Notification, error) {
	if recipient == "" {
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrInvalidInput)
	}
	if kind == "" {
		kind = domain.NotifyNotice
	}

	msg, err := s.repo.Append(ctx, &domain.Notification{
		RecipientContact: recipient,
		Kind:             kind,
		Title:            title,
		Body:             body,
		Payload:          payload,
	})
	if err != nil {
		return nil, err
	}

	if s.push != nil {
		if err := s.push.Forward(ctx, msg); err != nil {
			s.logger.Warn("push forward failed",
				zap.String("recipient", recipient),
				zap.Int64("message_id", msg.ID),
				zap.Error(err))
		}
	}
	return msg, nil
}

// Notify 尽力而为投递：任何失败只记日志。
// ledger 状态转换调它发消息，失败绝不回滚转换本身
func (s *MailboxService) Notify(ctx context.Context, recipient, kind, title, body, payload string) {
	if recipient == "" {
		return
	}
	if _, err := s.Post(ctx, recipient, kind, title, body, payload); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("recipient", recipient),
			zap.String("title", title),
			zap.Error(err))
	}
}

func (s *MailboxService) List(ctx context.Context, recipient string) ([]*domain.Notification, error) {
	return s.repo.List(ctx, recipient)
}

func (s *MailboxService) UnreadCount(ctx context.Context, recipient string) (int, error) {
	return s.repo.UnreadCount(ctx, recipient)
}

func (s *MailboxService) MarkAllRead(ctx context.Context, recipient string) error {
	return s.repo.MarkAllRead(ctx, recipient)
}
