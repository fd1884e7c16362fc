package payout

import (
	"context"

	"affiliate-addon/pkg/errutil"
	"affiliate-addon/pkg/logger"
	"affiliate-addon/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	repo repository.Repository[Payout]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		repo: repository.ProvideStore[Payout](p.DB),
	}
}

type RequestPayout struct {
	TenantID        string          `json:"tenantId" binding:"required"`
	AffiliateID     string          `json:"affiliateId" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	StripeAccountID string          `json:"stripeAccountId"`
}

// Request records a pending payout. Settlement is out of scope here.
func (s *Service) Request(ctx context.Context, req RequestPayout) (*Payout, error) {
	zapLog := logger.FromContext(ctx).With(
		zap.String("tenant_id", req.TenantID),
		zap.String("affiliate_id", req.AffiliateID),
	)

	if req.TenantID == "" || req.AffiliateID == "" {
		return nil, errutil.ValidationFailed("tenantId and affiliateId are required", nil)
	}

	if !req.Amount.IsPositive() {
		return nil, errutil.ValidationFailed("amount must be greater than zero", nil)
	}

	record := &Payout{
		PayoutID:        s.node.Generate(),
		TenantID:        req.TenantID,
		AffiliateID:     req.AffiliateID,
		Amount:          req.Amount,
		StripeAccountID: req.StripeAccountID,
		Status:          StatusPending,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		zapLog.Error("failed record payout", zap.Error(err))
		return nil, errutil.Internal("failed to record payout", err)
	}

	zapLog.Info("payout recorded", zap.String("payout_id", record.PayoutID.String()))
	return record, nil
}

type ListRequest struct {
	TenantID    string
	AffiliateID string
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]*Payout, error) {
	if req.TenantID == "" {
		return nil, errutil.ValidationFailed("tenantId is required", nil)
	}

	records, err := s.repo.Find(ctx, &Payout{TenantID: req.TenantID, AffiliateID: req.AffiliateID})
	if err != nil {
		logger.FromContext(ctx).Error("failed list payouts", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, errutil.Internal("failed to list payouts", err)
	}

	return records, nil
}
