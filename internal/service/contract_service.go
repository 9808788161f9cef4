package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
	"github.com/lcyksp/Harmony-Rental/internal/repository"
)

// ContractService 租房合同服务
// 和预约 ledger 相互独立：预约通过不会自动生成合同
type ContractService struct {
	repo     repository.ContractsRepository
	listings repository.ListingsRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewContractService(
	repo repository.ContractsRepository,
	listings repository.ListingsRepository,
	notifier Notifier,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		repo:     repo,
		listings: listings,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateContractRequest 租客下单请求
type CreateContractRequest struct {
	ListingID     string
	TenantContact string
	Remark        string
}

// Create 租客提交租房申请
// 房东联系方式此刻从房源解析后固定进合同；同一房源允许多份合同（合租），
// 不做防重复拦截。客户端重试造成的重复建单是已知缺口：实体上没有去重键
func (s *ContractService) Create(ctx context.Context, req CreateContractRequest) (*domain.RentalContract, error) {
	if req.ListingID == "" || req.TenantContact == "" {
		return nil, fmt.Errorf("%w: listing id and tenant contact are required", domain.ErrInvalidInput)
	}

	listing, err := s.listings.Get(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	landlord := repository.OwnerContact(listing.Document)
	if landlord == "" {
		return nil, fmt.Errorf("%w: listing has no landlord contact", domain.ErrInvalidInput)
	}
	summary := repository.Summary(listing.ID, listing.Document)

	c := &domain.RentalContract{
		ID:              "O" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		ListingID:       req.ListingID,
		TenantContact:   req.TenantContact,
		LandlordContact: landlord,
		Status:          domain.ContractPending,
		Remark:          req.Remark,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}

	payload := contractPayload(c, summary)
	s.notifier.Notify(ctx, landlord, domain.NotifyOrder,
		"收到新的租房申请",
		fmt.Sprintf("%s 申请租用房源「%s」", req.TenantContact, displayTitle(summary)),
		payload)
	s.notifier.Notify(ctx, req.TenantContact, domain.NotifyOrder,
		"已提交租房申请",
		fmt.Sprintf("你已申请租用房源「%s」，等待房东确认", displayTitle(summary)),
		payload)

	s.logger.Info("contract created",
		zap.String("contract_id", c.ID),
		zap.String("listing_id", req.ListingID),
		zap.String("tenant", req.TenantContact))
	return c, nil
}

// Confirm 房东确认出租：pending → active
func (s *ContractService) Confirm(ctx context.Context, contractID, landlordContact string) error {
	c, err := s.authorize(ctx, contractID, landlordContact, roleLandlord)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, contractID, domain.ContractPending, domain.ContractActive, nil); err != nil {
		return err
	}

	summary := s.summaryOf(ctx, c.ListingID)
	s.notifier.Notify(ctx, c.TenantContact, domain.NotifyOrder,
		"房东已确认出租",
		fmt.Sprintf("房源「%s」已确认出租给你", displayTitle(summary)),
		contractPayload(c, summary))

	s.logger.Info("contract confirmed", zap.String("contract_id", contractID))
	return nil
}

// QuitApply 租客申请退租：active → quit_pending，理由写进 remark
func (s *ContractService) QuitApply(ctx context.Context, contractID, tenantContact, reason string) error {
	c, err := s.authorize(ctx, contractID, tenantContact, roleTenant)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, contractID, domain.ContractActive, domain.ContractQuitPending, &reason); err != nil {
		return err
	}

	summary := s.summaryOf(ctx, c.ListingID)
	s.notifier.Notify(ctx, c.LandlordContact, domain.NotifyOrder,
		"收到退租申请",
		fmt.Sprintf("租客 %s 申请退租", tenantContact),
		contractPayload(c, summary))

	s.logger.Info("contract quit applied", zap.String("contract_id", contractID))
	return nil
}

// QuitConfirm 房东同意退租：quit_pending → ended
func (s *ContractService) QuitConfirm(ctx context.Context, contractID, landlordContact string) error {
	c, err := s.authorize(ctx, contractID, landlordContact, roleLandlord)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, contractID, domain.ContractQuitPending, domain.ContractEnded, nil); err != nil {
		return err
	}

	summary := s.summaryOf(ctx, c.ListingID)
	s.notifier.Notify(ctx, c.TenantContact, domain.NotifyOrder,
		"退租已通过",
		"房东已同意你的退租申请",
		contractPayload(c, summary))

	s.logger.Info("contract ended", zap.String("contract_id", contractID))
	return nil
}

// QuitReject 房东驳回退租：quit_pending → active
func (s *ContractService) QuitReject(ctx context.Context, contractID, landlordContact string) error {
	c, err := s.authorize(ctx, contractID, landlordContact, roleLandlord)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, contractID, domain.ContractQuitPending, domain.ContractActive, nil); err != nil {
		return err
	}

	summary := s.summaryOf(ctx, c.ListingID)
	s.notifier.Notify(ctx, c.TenantContact, domain.NotifyOrder,
		"退租被驳回",
		"房东驳回了你的退租申请",
		contractPayload(c, summary))

	s.logger.Info("contract quit rejected", zap.String("contract_id", contractID))
	return nil
}

// ListByLandlord 房东视角（status 可选过滤），附带实时房源摘要
func (s *ContractService) ListByLandlord(ctx context.Context, landlordContact, status string) ([]*domain.ContractView, error) {
	rows, err := s.repo.ListByLandlord(ctx, landlordContact, status)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

// ListByTenantActive 租客视角：生效中的合同
func (s *ContractService) ListByTenantActive(ctx context.Context, tenantContact string) ([]*domain.ContractView, error) {
	rows, err := s.repo.ListByTenant(ctx, tenantContact, domain.ContractActive)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows), nil
}

type contractRole int

const (
	roleLandlord contractRole = iota
	roleTenant
)

// authorize 取合同并校验操作人身份；身份不符返回 Forbidden
func (s *ContractService) authorize(ctx context.Context, contractID, caller string, role contractRole) (*domain.RentalContract, error) {
	if contractID == "" || caller == "" {
		return nil, fmt.Errorf("%w: contract id and caller contact are required", domain.ErrInvalidInput)
	}
	c, err := s.repo.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	switch role {
	case roleLandlord:
		if c.LandlordContact != caller {
			return nil, fmt.Errorf("%w: caller is not the contract landlord", domain.ErrForbidden)
		}
	case roleTenant:
		if c.TenantContact != caller {
			return nil, fmt.Errorf("%w: caller is not the contract tenant", domain.ErrForbidden)
		}
	}
	return c, nil
}

func (s *ContractService) summaryOf(ctx context.Context, listingID string) domain.ListingSummary {
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return domain.ListingSummary{ID: listingID}
	}
	return repository.Summary(l.ID, l.Document)
}

func (s *ContractService) enrich(ctx context.Context, rows []*domain.RentalContract) []*domain.ContractView {
	out := make([]*domain.ContractView, 0, len(rows))
	for _, c := range rows {
		view := &domain.ContractView{RentalContract: *c}
		summary := s.summaryOf(ctx, c.ListingID)
		view.ListingTitle = summary.Title
		view.CoverURL = summary.CoverURL
		out = append(out, view)
	}
	return out
}

func contractPayload(c *domain.RentalContract, summary domain.ListingSummary) string {
	b, _ := json.Marshal(map[string]any{
		"contractId":   c.ID,
		"listingId":    c.ListingID,
		"tenant":       c.TenantContact,
		"landlord":     c.LandlordContact,
		"listingTitle": summary.Title,
		"coverUrl":     summary.CoverURL,
	})
	return string(b)
}
