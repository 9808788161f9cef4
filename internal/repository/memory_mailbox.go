package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// MemoryMailboxRepository 邮箱内存实现（测试和无 Redis 时的兜底）
type MemoryMailboxRepository struct {
	mu      sync.Mutex
	inboxes map[string][]*domain.Notification
	nextID  int64
}

func NewMemoryMailboxRepository() *MemoryMailboxRepository {
	return &MemoryMailboxRepository{
		inboxes: map[string][]*domain.Notification{},
		nextID:  1,
	}
}

var _ MailboxRepository = (*MemoryMailboxRepository)(nil)

// ensure 首次触达时播种欢迎消息（已读），返回收件人邮箱
func (r *MemoryMailboxRepository) ensure(recipient string) []*domain.Notification {
	if _, ok := r.inboxes[recipient]; !ok {
		welcome := &domain.Notification{
			ID:               r.nextID,
			RecipientContact: recipient,
			Kind:             domain.NotifySystem,
			Title:            domain.WelcomeTitle,
			Body:             domain.WelcomeBody,
			CreatedAt:        time.Now(),
			Read:             true,
		}
		r.nextID++
		r.inboxes[recipient] = []*domain.Notification{welcome}
	}
	return r.inboxes[recipient]
}

func (r *MemoryMailboxRepository) Append(_ context.Context, msg *domain.Notification) (*domain.Notification, error) {
	if msg == nil || msg.RecipientContact == "" {
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensure(msg.RecipientContact)

	cp := *msg
	cp.ID = r.nextID
	r.nextID++
	cp.CreatedAt = time.Now()
	cp.Read = false
	r.inboxes[msg.RecipientContact] = append(r.inboxes[msg.RecipientContact], &cp)

	out := cp
	return &out, nil
}

func (r *MemoryMailboxRepository) List(_ context.Context, recipient string) ([]*domain.Notification, error) {
	if recipient == "" {
		return []*domain.Notification{}, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inbox := r.ensure(recipient)
	out := make([]*domain.Notification, 0, len(inbox))
	for _, m := range inbox {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryMailboxRepository) UnreadCount(_ context.Context, recipient string) (int, error) {
	if recipient == "" {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, m := range r.ensure(recipient) {
		if !m.Read {
			count++
		}
	}
	return count, nil
}

func (r *MemoryMailboxRepository) MarkAllRead(_ context.Context, recipient string) error {
	if recipient == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.inboxes[recipient] {
		m.Read = true
	}
	return nil
}
