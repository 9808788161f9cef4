package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// fakeNotifier 收集投递结果，投递本身永不失败
type fakeNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	Recipient string
	Kind      string
	Title     string
	Body      string
	Payload   string
}

func (f *fakeNotifier) Notify(_ context.Context, recipient, kind, title, body, payload string) {
	f.sent = append(f.sent, sentNotification{recipient, kind, title, body, payload})
}

func (f *fakeNotifier) titlesFor(recipient string) []string {
	var out []string
	for _, n := range f.sent {
		if n.Recipient == recipient {
			out = append(out, n.Title)
		}
	}
	return out
}

func newReservationFixture(t *testing.T) (*ReservationService, *repository.MemoryListingsRepository, *fakeNotifier) {
	t.Helper()
	listings := repository.NewMemoryListingsRepository()
	reservations := repository.NewMemoryReservationsRepository()
	notifier := &fakeNotifier{}
	svc := NewReservationService(reservations, listings, notifier, zap.NewNop())

	doc := `{"id":"H1","ownerId":"owner1","houseTitle":"两居室 近地铁","rentPrice":"2300"}`
	p, err := repository.Derive([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, listings.Insert(context.Background(), "H1", []byte(doc), p))
	return svc, listings, notifier
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func TestReservationCreate_NotifiesBothSides(t *testing.T) {
	svc, _, notifier := newReservationFixture(t)

	res, err := svc.Create(context.Background(), CreateReservationRequest{
		ListingID:        "H1",
		RequesterContact: "tenant1",
		Date:             today(),
		DisplayName:      "小王",
	})
	require.NoError(t, err)
	require.NotZero(t, res.ID)
	require.Equal(t, domain.ReservationPending, res.Status)

	require.Equal(t, []string{"已提交看房预约"}, notifier.titlesFor("tenant1"))
	require.Equal(t, []string{"收到新的看房预约"}, notifier.titlesFor("owner1"))
}

func TestReservationCreate_PastDateRejectedWithoutRow(t *testing.T) {
	svc, _, notifier := newReservationFixture(t)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := svc.Create(context.Background(), CreateReservationRequest{
		ListingID:        "H1",
		RequesterContact: "tenant1",
		Date:             yesterday,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// 没建单也没发消息
	require.Empty(t, notifier.sent)
	mine, err := svc.ListForRequester(context.Background(), "tenant1")
	require.NoError(t, err)
	require.Empty(t, mine)
}

func TestReservationCreate_BadDateFormat(t *testing.T) {
	svc, _, _ := newReservationFixture(t)
	_, err := svc.Create(context.Background(), CreateReservationRequest{
		ListingID:        "H1",
		RequesterContact: "tenant1",
		Date:             "09/20/2026",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReservationCreate_OwnerlessListingStillCreates(t *testing.T) {
	svc, listings, notifier := newReservationFixture(t)

	doc := `{"id":"H2","houseTitle":"无主老房"}`
	p, err := repository.Derive([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, listings.Insert(context.Background(), "H2", []byte(doc), p))

	res, err := svc.Create(context.Background(), CreateReservationRequest{
		ListingID:        "H2",
		RequesterContact: "tenant1",
		Date:             today(),
	})
	require.NoError(t, err)
	require.NotZero(t, res.ID)

	// 只有预约人收到消息
	require.Len(t, notifier.sent, 1)
	require.Equal(t, "tenant1", notifier.sent[0].Recipient)
}

func TestReservationDecide_AcceptFlow(t *testing.T) {
	svc, _, notifier := newReservationFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReservationRequest{
		ListingID: "H1", RequesterContact: "tenant1", Date: today(),
	})
	require.NoError(t, err)
	notifier.sent = nil

	require.NoError(t, svc.Decide(ctx, res.ID, "owner1", "accept"))

	received, err := svc.ListForOwner(ctx, "owner1")
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.Equal(t, domain.ReservationAccepted, received[0].Status)
	require.Equal(t, "两居室 近地铁", received[0].ListingTitle)

	require.Equal(t, []string{"预约已通过"}, notifier.titlesFor("tenant1"))
	require.Equal(t, []string{"已处理看房预约"}, notifier.titlesFor("owner1"))
}

func TestReservationDecide_NonOwnerForbidden(t *testing.T) {
	svc, _, _ := newReservationFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReservationRequest{
		ListingID: "H1", RequesterContact: "tenant1", Date: today(),
	})
	require.NoError(t, err)

	err = svc.Decide(ctx, res.ID, "intruder", "accept")
	require.ErrorIs(t, err, domain.ErrForbidden)

	// 状态没动
	mine, err := svc.ListForRequester(ctx, "tenant1")
	require.NoError(t, err)
	require.Equal(t, domain.ReservationPending, mine[0].Status)
}

func TestReservationDecide_AlreadyDecidedConflicts(t *testing.T) {
	svc, _, _ := newReservationFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReservationRequest{
		ListingID: "H1", RequesterContact: "tenant1", Date: today(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Decide(ctx, res.ID, "owner1", "accept"))
	err = svc.Decide(ctx, res.ID, "owner1", "reject")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestReservationDecide_UnknownID(t *testing.T) {
	svc, _, _ := newReservationFixture(t)
	err := svc.Decide(context.Background(), 9999, "owner1", "accept")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationCancel(t *testing.T) {
	svc, _, notifier := newReservationFixture(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateReservationRequest{
		ListingID: "H1", RequesterContact: "tenant1", Date: today(),
	})
	require.NoError(t, err)
	notifier.sent = nil

	// 别人不能替预约人撤单
	err = svc.Cancel(ctx, res.ID, "other")
	require.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.Cancel(ctx, res.ID, "tenant1"))

	mine, err := svc.ListForRequester(ctx, "tenant1")
	require.NoError(t, err)
	require.Equal(t, domain.ReservationCancelled, mine[0].Status)

	require.Equal(t, []string{"预约已取消"}, notifier.titlesFor("tenant1"))
	require.Equal(t, []string{"看房预约被取消"}, notifier.titlesFor("owner1"))

	// 已撤的单不能再撤
	err = svc.Cancel(ctx, res.ID, "tenant1")
	require.ErrorIs(t, err, domain.ErrConflict)
}
