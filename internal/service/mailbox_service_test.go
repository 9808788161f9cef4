package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

func newMailboxService() *MailboxService {
	return NewMailboxService(repository.NewMemoryMailboxRepository(), nil, zap.NewNop())
}

func TestMailboxPost_SeedsWelcomeOnFirstTouch(t *testing.T) {
	svc := newMailboxService()
	ctx := context.Background()

	msg, err := svc.Post(ctx, "user1", domain.NotifyOrder, "测试标题", "测试内容", "")
	require.NoError(t, err)
	require.False(t, msg.Read)

	items, err := svc.List(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	// 新消息在前，欢迎消息垫底
	require.Equal(t, "测试标题", items[0].Title)
	require.Equal(t, domain.WelcomeTitle, items[1].Title)
	require.Equal(t, domain.NotifySystem, items[1].Kind)
	require.True(t, items[1].Read)

	// 欢迎消息已读，只有刚投的那条未读
	count, err := svc.UnreadCount(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMailboxUnreadCount_UnknownRecipientSeedsReadWelcome(t *testing.T) {
	svc := newMailboxService()
	ctx := context.Background()

	count, err := svc.UnreadCount(ctx, "fresh")
	require.NoError(t, err)
	require.Equal(t, 0, count)

	items, err := svc.List(ctx, "fresh")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, domain.WelcomeTitle, items[0].Title)
}

func TestMailboxUnreadCount_EmptyRecipient(t *testing.T) {
	svc := newMailboxService()
	count, err := svc.UnreadCount(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestMailboxPost_EmptyRecipientRejected(t *testing.T) {
	svc := newMailboxService()
	_, err := svc.Post(context.Background(), "", "", "t", "b", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMailboxPost_DefaultKind(t *testing.T) {
	svc := newMailboxService()
	msg, err := svc.Post(context.Background(), "user1", "", "t", "b", "")
	require.NoError(t, err)
	require.Equal(t, domain.NotifyNotice, msg.Kind)
}

func TestMailboxMarkAllRead_Idempotent(t *testing.T) {
	svc := newMailboxService()
	ctx := context.Background()

	_, err := svc.Post(ctx, "user1", domain.NotifyOrder, "一", "", "")
	require.NoError(t, err)
	_, err = svc.Post(ctx, "user1", domain.NotifyOrder, "二", "", "")
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, svc.MarkAllRead(ctx, "user1"))
	count, err = svc.UnreadCount(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// 再标一次也不报错
	require.NoError(t, svc.MarkAllRead(ctx, "user1"))
	// 不认识的收件人是空操作
	require.NoError(t, svc.MarkAllRead(ctx, "stranger"))
}

func TestMailboxList_NewestFirstStrictIDs(t *testing.T) {
	svc := newMailboxService()
	ctx := context.Background()

	for _, title := range []string{"一", "二", "三"} {
		_, err := svc.Post(ctx, "user1", domain.NotifyOrder, title, "", "")
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, items, 4)
	require.Equal(t, "三", items[0].Title)
	require.Equal(t, "二", items[1].Title)
	require.Equal(t, "一", items[2].Title)

	// id 全局严格递增
	for i := 0; i < len(items)-1; i++ {
		require.Greater(t, items[i].ID, items[i+1].ID)
	}
}

func TestMailboxNotify_NeverFails(t *testing.T) {
	svc := newMailboxService()
	// 空收件人直接吞掉，不 panic 不报错
	svc.Notify(context.Background(), "", domain.NotifyOrder, "t", "b", "")
}

func TestMailboxInboxesAreIsolated(t *testing.T) {
	svc := newMailboxService()
	ctx := context.Background()

	_, err := svc.Post(ctx, "user1", domain.NotifyOrder, "只给一号", "", "")
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, "user2")
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
