package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

func newContractFixture(t *testing.T) (*ContractService, *fakeNotifier) {
	t.Helper()
	listings := repository.NewMemoryListingsRepository()
	contracts := repository.NewMemoryContractsRepository()
	notifier := &fakeNotifier{}
	svc := NewContractService(contracts, listings, notifier, zap.NewNop())

	doc := `{"id":"H1","landlordPhone":"landlord1","houseTitle":"整租一居","rentPrice":"1800"}`
	p, err := repository.Derive([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, listings.Insert(context.Background(), "H1", []byte(doc), p))
	return svc, notifier
}

func TestContractCreate(t *testing.T) {
	svc, notifier := newContractFixture(t)

	c, err := svc.Create(context.Background(), CreateContractRequest{
		ListingID:     "H1",
		TenantContact: "tenant1",
		Remark:        "想长租",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(c.ID, "O"))
	require.Equal(t, domain.ContractPending, c.Status)
	require.Equal(t, "landlord1", c.LandlordContact)

	require.Equal(t, []string{"收到新的租房申请"}, notifier.titlesFor("landlord1"))
	require.Equal(t, []string{"已提交租房申请"}, notifier.titlesFor("tenant1"))
}

func TestContractCreate_NoLandlordContact(t *testing.T) {
	listings := repository.NewMemoryListingsRepository()
	contracts := repository.NewMemoryContractsRepository()
	svc := NewContractService(contracts, listings, &fakeNotifier{}, zap.NewNop())

	doc := `{"id":"H2","houseTitle":"无主老房"}`
	p, err := repository.Derive([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, listings.Insert(context.Background(), "H2", []byte(doc), p))

	_, err = svc.Create(context.Background(), CreateContractRequest{
		ListingID:     "H2",
		TenantContact: "tenant1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// 完整生命周期：pending → active → quit_pending → active → quit_pending → ended
func TestContractLifecycle(t *testing.T) {
	svc, notifier := newContractFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateContractRequest{ListingID: "H1", TenantContact: "tenant1"})
	require.NoError(t, err)
	notifier.sent = nil

	// 房东确认出租
	require.NoError(t, svc.Confirm(ctx, c.ID, "landlord1"))
	active, err := svc.ListByTenantActive(ctx, "tenant1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "整租一居", active[0].ListingTitle)
	require.Equal(t, []string{"房东已确认出租"}, notifier.titlesFor("tenant1"))

	// 租客申请退租，房东驳回
	require.NoError(t, svc.QuitApply(ctx, c.ID, "tenant1", "工作调动"))
	require.NoError(t, svc.QuitReject(ctx, c.ID, "landlord1"))
	active, err = svc.ListByTenantActive(ctx, "tenant1")
	require.NoError(t, err)
	require.Len(t, active, 1)

	// 再次申请，这次房东同意
	require.NoError(t, svc.QuitApply(ctx, c.ID, "tenant1", "还是要走"))
	require.NoError(t, svc.QuitConfirm(ctx, c.ID, "landlord1"))

	active, err = svc.ListByTenantActive(ctx, "tenant1")
	require.NoError(t, err)
	require.Empty(t, active)

	ended, err := svc.ListByLandlord(ctx, "landlord1", domain.ContractEnded)
	require.NoError(t, err)
	require.Len(t, ended, 1)
	require.Equal(t, "还是要走", ended[0].Remark)
}

func TestContractConfirm_OnlyLandlord(t *testing.T) {
	svc, _ := newContractFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateContractRequest{ListingID: "H1", TenantContact: "tenant1"})
	require.NoError(t, err)

	err = svc.Confirm(ctx, c.ID, "tenant1")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestContractQuitApply_OnlyTenantAndOnlyActive(t *testing.T) {
	svc, _ := newContractFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateContractRequest{ListingID: "H1", TenantContact: "tenant1"})
	require.NoError(t, err)

	// pending 状态不能退租
	err = svc.QuitApply(ctx, c.ID, "tenant1", "理由")
	require.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, svc.Confirm(ctx, c.ID, "landlord1"))
	err = svc.QuitApply(ctx, c.ID, "landlord1", "理由")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

// 对 pending 合同直接 QuitConfirm：CAS 不命中，状态原样
func TestContractQuitConfirm_PendingConflictsUnchanged(t *testing.T) {
	svc, _ := newContractFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateContractRequest{ListingID: "H1", TenantContact: "tenant1"})
	require.NoError(t, err)

	err = svc.QuitConfirm(ctx, c.ID, "landlord1")
	require.ErrorIs(t, err, domain.ErrConflict)

	rows, err := svc.ListByLandlord(ctx, "landlord1", domain.ContractPending)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestContractActions_UnknownID(t *testing.T) {
	svc, _ := newContractFixture(t)
	err := svc.Confirm(context.Background(), "Omissing", "landlord1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
