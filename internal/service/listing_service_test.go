package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

func newListingService() (*ListingService, *repository.MemoryListingsRepository) {
	repo := repository.NewMemoryListingsRepository()
	return NewListingService(repo, zap.NewNop()), repo
}

func TestPublish_AssignsIDAndRoundTrips(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	id, err := svc.Publish(ctx, []byte(`{"houseTitle":"两居室","rentPrice":"2300"}`))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(id, "H"))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(got.Document, &doc))
	require.Equal(t, id, doc["id"])
	require.Equal(t, "两居室", doc["houseTitle"])
	require.Equal(t, int64(2300), got.PriceMinor)
	require.Equal(t, domain.ListingOnline, got.Status)
}

func TestPublish_KeepsProvidedID(t *testing.T) {
	svc, _ := newListingService()
	id, err := svc.Publish(context.Background(), []byte(`{"id":"H-custom","rentPrice":"1000"}`))
	require.NoError(t, err)
	require.Equal(t, "H-custom", id)
}

func TestPublish_RejectsInvalidJSON(t *testing.T) {
	svc, _ := newListingService()
	_, err := svc.Publish(context.Background(), []byte(`{oops`))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_MergesAndRederives(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	id, err := svc.Publish(ctx, []byte(`{"houseTitle":"旧标题","rentPrice":"1000","address":"幸福路"}`))
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, []byte(`{"rentPrice":"2000"}`)))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(2000), got.PriceMinor)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(got.Document, &doc))
	// 没动过的字段原样保留
	require.Equal(t, "旧标题", doc["houseTitle"])
	require.Equal(t, "幸福路", doc["address"])
}

func TestUpdate_CannotSwapID(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	id, err := svc.Publish(ctx, []byte(`{"rentPrice":"1000"}`))
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, []byte(`{"id":"H-hijacked"}`)))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(got.Document, &doc))
	require.Equal(t, id, doc["id"])
}

func TestSetStatus_TakesListingOffline(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	id, err := svc.Publish(ctx, []byte(`{"rentPrice":"1000"}`))
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, id, domain.ListingOffline))

	// 默认查询（只看在架）不再返回
	resp, err := svc.Query(ctx, QueryListingsRequest{})
	require.NoError(t, err)
	require.Zero(t, resp.Total)

	// 直接取还取得到
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.ListingOffline, got.Status)

	err = svc.SetStatus(ctx, id, "archived")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuery_DefaultsAndFilters(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	_, err := svc.Publish(ctx, []byte(`{"rentPrice":"800","districtCode":"110108"}`))
	require.NoError(t, err)
	_, err = svc.Publish(ctx, []byte(`{"rentPrice":"1500","districtCode":"110105"}`))
	require.NoError(t, err)

	min := int64(1000)
	resp, err := svc.Query(ctx, QueryListingsRequest{MinPrice: &min})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, int64(1500), resp.Items[0].PriceMinor)
}

func TestListByOwner(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	_, err := svc.Publish(ctx, []byte(`{"ownerId":"owner1","rentPrice":"1000"}`))
	require.NoError(t, err)
	id2, err := svc.Publish(ctx, []byte(`{"ownerId":"owner1","rentPrice":"1200","status":"offline"}`))
	require.NoError(t, err)
	_, err = svc.Publish(ctx, []byte(`{"ownerId":"owner2","rentPrice":"900"}`))
	require.NoError(t, err)

	// 全部（含下架）
	items, err := svc.ListByOwner(ctx, "owner1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	// 只看在架的摘要
	summaries, err := svc.ListPublishedByOwner(ctx, "owner1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotEqual(t, id2, summaries[0].ID)

	_, err = svc.ListByOwner(ctx, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNearby(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Publish(ctx, []byte(`{"cityCode":"1101","houseTitle":"城内房源"}`))
		require.NoError(t, err)
	}
	_, err := svc.Publish(ctx, []byte(`{"cityCode":"4403"}`))
	require.NoError(t, err)

	items, err := svc.Nearby(ctx, "", "1101", "", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "城内房源", items[0].Title)
}

func TestDelete_ThenGetNotFound(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	id, err := svc.Publish(ctx, []byte(`{"rentPrice":"1000"}`))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, id)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportExcel(t *testing.T) {
	svc, _ := newListingService()
	ctx := context.Background()

	_, err := svc.Publish(ctx, []byte(`{"houseTitle":"两居室","rentPrice":"2300","address":"幸福路1号"}`))
	require.NoError(t, err)

	data, err := svc.ExportExcel(ctx, QueryListingsRequest{})
	require.NoError(t, err)
	// xlsx 是 zip 容器
	require.True(t, len(data) > 4)
	require.Equal(t, "PK", string(data[:2]))
}
