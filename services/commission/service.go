package commission

import (
	"context"

	"affiliate-addon/pkg/errutil"
	"affiliate-addon/pkg/logger"
	"affiliate-addon/pkg/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductSyncer writes per-product commission settings to the upstream
// catalog's custom fields. The add-on stores nothing locally for these.
type ProductSyncer interface {
	PutProductCommission(ctx context.Context, tenantID, productID, commissionType, commissionValue string) error
}

type Service struct {
	db   *gorm.DB
	sync ProductSyncer
	repo repository.Repository[Program]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Sync ProductSyncer
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		sync: p.Sync,
		repo: repository.ProvideStore[Program](p.DB),
	}
}

type SaveRequest struct {
	TenantID       string          `json:"tenantId" binding:"required"`
	CommissionType Type            `json:"commissionType" binding:"required"`
	DefaultRate    decimal.Decimal `json:"defaultRate"`
}

// Save upserts the tenant's commission program. A write that matches the
// stored values is skipped and reported as SaveUnchanged.
func (s *Service) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("tenant_id", req.TenantID))

	if req.TenantID == "" || req.CommissionType == "" {
		return "", errutil.ValidationFailed("tenantId and commissionType are required", nil)
	}

	if req.CommissionType.String() == "" {
		return "", errutil.ValidationFailed("commissionType must be default or per_product", nil)
	}

	existing, err := s.repo.FindOne(ctx, &Program{TenantID: req.TenantID})
	if err != nil {
		zapLog.Error("failed query commission program", zap.Error(err))
		return "", errutil.Internal("failed to load commission program", err)
	}

	if existing != nil {
		if existing.CommissionType == req.CommissionType && existing.DefaultRate.Equal(req.DefaultRate) {
			return SaveUnchanged, nil
		}

		if err := s.db.WithContext(ctx).Model(&Program{}).
			Where("tenant_id = ?", req.TenantID).
			Updates(map[string]any{
				"commission_type": req.CommissionType,
				"default_rate":    req.DefaultRate,
			}).Error; err != nil {
			zapLog.Error("failed update commission program", zap.Error(err))
			return "", errutil.Internal("failed to update commission program", err)
		}
		return SaveUpdated, nil
	}

	record := &Program{
		TenantID:       req.TenantID,
		CommissionType: req.CommissionType,
		DefaultRate:    req.DefaultRate,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		zapLog.Error("failed create commission program", zap.Error(err))
		return "", errutil.Internal("failed to save commission program", err)
	}

	return SaveCreated, nil
}

func (s *Service) Get(ctx context.Context, tenantID string) (*Program, error) {
	if tenantID == "" {
		return nil, errutil.ValidationFailed("tenantId is required", nil)
	}

	existing, err := s.repo.FindOne(ctx, &Program{TenantID: tenantID})
	if err != nil {
		logger.FromContext(ctx).Error("failed query commission program", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, errutil.Internal("failed to load commission program", err)
	}

	if existing == nil {
		return nil, errutil.NotFound("no commission program found for this tenant", nil)
	}

	return existing, nil
}

type SaveProductRequest struct {
	TenantID        string          `json:"tenantId" binding:"required"`
	ProductID       string          `json:"productId" binding:"required"`
	CommissionType  string          `json:"commissionType" binding:"required"`
	CommissionValue decimal.Decimal `json:"commissionValue"`
}

// SaveProductCommission is a passthrough to the upstream product resource;
// the commission lives in the product's custom fields, not in this store.
func (s *Service) SaveProductCommission(ctx context.Context, req SaveProductRequest) error {
	if req.TenantID == "" || req.ProductID == "" || req.CommissionType == "" {
		return errutil.ValidationFailed("tenantId, productId, and commissionType are required", nil)
	}

	if err := s.sync.PutProductCommission(ctx, req.TenantID, req.ProductID, req.CommissionType, req.CommissionValue.String()); err != nil {
		logger.FromContext(ctx).Error("failed update product commission upstream",
			zap.String("tenant_id", req.TenantID),
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		return errutil.UpstreamSync("failed to update product commission", err)
	}

	return nil
}
