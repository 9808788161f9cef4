package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

func newFootprintFixture(t *testing.T) (*FootprintService, *repository.MemoryListingsRepository) {
	t.Helper()
	listings := repository.NewMemoryListingsRepository()
	views := repository.NewMemoryRecentViewsRepository()
	svc := NewFootprintService(views, listings, zap.NewNop())

	doc := `{"id":"H1","houseTitle":"两居室 近地铁","rentPrice":"2300","mainPic":"cover.jpg"}`
	p, err := repository.Derive([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, listings.Insert(context.Background(), "H1", []byte(doc), p))
	return svc, listings
}

func TestRecordView_UpsertKeepsSingleRow(t *testing.T) {
	svc, _ := newFootprintFixture(t)
	ctx := context.Background()
	id := Identity{Contact: "user1"}

	require.NoError(t, svc.RecordView(ctx, id, "H1"))
	items, err := svc.List(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	first := items[0].ViewedAt

	// 重复浏览只刷新时间，不新增行
	require.NoError(t, svc.RecordView(ctx, id, "H1"))
	items, err = svc.List(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, items[0].ViewedAt.Before(first))
	require.NotNil(t, items[0].Snapshot)
	require.Equal(t, "两居室 近地铁", items[0].Snapshot.Title)
	require.Equal(t, "cover.jpg", items[0].Snapshot.CoverURL)
}

func TestRecordView_DeletedListingKeepsFootprint(t *testing.T) {
	svc, listings := newFootprintFixture(t)
	ctx := context.Background()
	id := Identity{Contact: "user1"}

	require.NoError(t, listings.Delete(ctx, "H1"))
	require.NoError(t, svc.RecordView(ctx, id, "H1"))

	items, err := svc.List(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Nil(t, items[0].Snapshot)
}

func TestRecordView_RequiresIdentity(t *testing.T) {
	svc, _ := newFootprintFixture(t)
	err := svc.RecordView(context.Background(), Identity{}, "H1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFootprint_LegacySessionMigration(t *testing.T) {
	svc, _ := newFootprintFixture(t)
	ctx := context.Background()

	// 登录前用临时会话 id 记了足迹
	require.NoError(t, svc.RecordView(ctx, Identity{LegacySessionID: "sess-1"}, "H1"))

	// 登录后带着正式联系方式 + 旧会话 id 来：足迹在线迁移
	both := Identity{Contact: "user1", LegacySessionID: "sess-1"}
	items, err := svc.List(ctx, both, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "user1", items[0].UserContact)

	// 旧键名下已空
	items, err = svc.List(ctx, Identity{LegacySessionID: "sess-1"}, 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestFootprint_MigrationKeepsNewerOnCollision(t *testing.T) {
	svc, _ := newFootprintFixture(t)
	ctx := context.Background()

	// 同一房源两个键名下各有一条，迁移后保留较新的
	require.NoError(t, svc.RecordView(ctx, Identity{Contact: "user1"}, "H1"))
	require.NoError(t, svc.RecordView(ctx, Identity{LegacySessionID: "sess-1"}, "H1"))

	items, err := svc.List(ctx, Identity{Contact: "user1", LegacySessionID: "sess-1"}, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFootprint_RemoveAndClear(t *testing.T) {
	svc, listings := newFootprintFixture(t)
	ctx := context.Background()
	id := Identity{Contact: "user1"}

	doc := `{"id":"H2","houseTitle":"一居室"}`
	p, err := repository.Derive([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, listings.Insert(ctx, "H2", []byte(doc), p))

	require.NoError(t, svc.RecordView(ctx, id, "H1"))
	require.NoError(t, svc.RecordView(ctx, id, "H2"))

	require.NoError(t, svc.Remove(ctx, id, "H1"))
	items, err := svc.List(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "H2", items[0].ListingID)

	// 删不存在的行不算错
	require.NoError(t, svc.Remove(ctx, id, "H1"))

	require.NoError(t, svc.Clear(ctx, id))
	items, err = svc.List(ctx, id, 0)
	require.NoError(t, err)
	require.Empty(t, items)
}
