package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// RedisMailbox 邮箱的 Redis 实现（repository.MailboxRepository 的持久化版本）
// 存储结构：
//
//	mailbox:seq              全局自增 id（INCR）
//	mailbox:inbox:<contact>  LIST，LPUSH 追加，元素是 Notification 的 JSON
//
// 列表键一旦播种就不为空，所以 EXISTS 即可判断收件人是否触达过
type RedisMailbox struct {
	c *redis.Client
}

func NewRedisMailbox(c *redis.Client) *RedisMailbox { return &RedisMailbox{c: c} }

var _ repository.MailboxRepository = (*RedisMailbox)(nil)

const (
	seqKey      = "mailbox:seq"
	inboxPrefix = "mailbox:inbox:"
)

func inboxKey(recipient string) string { return inboxPrefix + recipient }

func (r *RedisMailbox) nextID(ctx context.Context) (int64, error) {
	return r.c.Incr(ctx, seqKey).Result()
}

// ensure 首次触达时播种欢迎消息（已读）
func (r *RedisMailbox) ensure(ctx context.Context, recipient string) error {
	n, err := r.c.Exists(ctx, inboxKey(recipient)).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	welcome := domain.Notification{
		ID:               id,
		RecipientContact: recipient,
		Kind:             domain.NotifySystem,
		Title:            domain.WelcomeTitle,
		Body:             domain.WelcomeBody,
		CreatedAt:        time.Now(),
		Read:             true,
	}
	b, err := json.Marshal(&welcome)
	if err != nil {
		return err
	}
	// 并发首触时两边都会走到这里；LPUSH 前用 SETNX 挡掉重复播种
	ok, err := r.c.SetNX(ctx, inboxKey(recipient)+":seeded", "1", 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return r.c.LPush(ctx, inboxKey(recipient), string(b)).Err()
}

func (r *RedisMailbox) Append(ctx context.Context, msg *domain.Notification) (*domain.Notification, error) {
	if msg == nil || msg.RecipientContact == "" {
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrInvalidInput)
	}
	if err := r.ensure(ctx, msg.RecipientContact); err != nil {
		return nil, domain.WrapStorage("append notification", err)
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, domain.WrapStorage("append notification", err)
	}

	cp := *msg
	cp.ID = id
	cp.CreatedAt = time.Now()
	cp.Read = false

	b, err := json.Marshal(&cp)
	if err != nil {
		return nil, domain.WrapStorage("append notification", err)
	}
	if err := r.c.LPush(ctx, inboxKey(cp.RecipientContact), string(b)).Err(); err != nil {
		return nil, domain.WrapStorage("append notification", err)
	}
	return &cp, nil
}

func (r *RedisMailbox) List(ctx context.Context, recipient string) ([]*domain.Notification, error) {
	if recipient == "" {
		return []*domain.Notification{}, nil
	}
	msgs, err := r.load(ctx, recipient)
	if err != nil {
		return nil, domain.WrapStorage("list notifications", err)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
		}
		return msgs[i].ID > msgs[j].ID
	})
	return msgs, nil
}

func (r *RedisMailbox) UnreadCount(ctx context.Context, recipient string) (int, error) {
	if recipient == "" {
		return 0, nil
	}
	msgs, err := r.load(ctx, recipient)
	if err != nil {
		return 0, domain.WrapStorage("count unread notifications", err)
	}
	count := 0
	for _, m := range msgs {
		if !m.Read {
			count++
		}
	}
	return count, nil
}

// MarkAllRead 整箱重写：读出、置已读、DEL+RPUSH 在一个事务管道里完成
func (r *RedisMailbox) MarkAllRead(ctx context.Context, recipient string) error {
	if recipient == "" {
		return nil
	}
	raw, err := r.c.LRange(ctx, inboxKey(recipient), 0, -1).Result()
	if err != nil {
		return domain.WrapStorage("mark notifications read", err)
	}
	if len(raw) == 0 {
		return nil
	}

	rewritten := make([]interface{}, 0, len(raw))
	for _, item := range raw {
		var m domain.Notification
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		m.Read = true
		b, err := json.Marshal(&m)
		if err != nil {
			continue
		}
		rewritten = append(rewritten, string(b))
	}

	pipe := r.c.TxPipeline()
	pipe.Del(ctx, inboxKey(recipient))
	// LRANGE 给出的是头到尾（新到旧），RPUSH 原样恢复顺序
	pipe.RPush(ctx, inboxKey(recipient), rewritten...)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.WrapStorage("mark notifications read", err)
	}
	return nil
}

func (r *RedisMailbox) load(ctx context.Context, recipient string) ([]*domain.Notification, error) {
	if err := r.ensure(ctx, recipient); err != nil {
		return nil, err
	}
	raw, err := r.c.LRange(ctx, inboxKey(recipient), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	msgs := make([]*domain.Notification, 0, len(raw))
	for _, item := range raw {
		var m domain.Notification
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}
