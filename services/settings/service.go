package settings

import (
	"context"

	"affiliate-addon/pkg/errutil"
	"affiliate-addon/pkg/logger"
	"affiliate-addon/pkg/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	repo repository.Repository[TenantSettings]
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		repo: repository.ProvideStore[TenantSettings](p.DB),
	}
}

type SetBaseURLRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	BaseURL  string `json:"baseUrl" binding:"required"`
}

// SetBaseURL upserts the tenant's base URL with change detection: writing
// the stored value again is a no-op reported as SaveUnchanged.
func (s *Service) SetBaseURL(ctx context.Context, req SetBaseURLRequest) (SaveResult, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("tenant_id", req.TenantID))

	if req.TenantID == "" || req.BaseURL == "" {
		return "", errutil.ValidationFailed("tenantId and baseUrl are required", nil)
	}

	existing, err := s.repo.FindOne(ctx, &TenantSettings{TenantID: req.TenantID})
	if err != nil {
		zapLog.Error("failed query tenant settings", zap.Error(err))
		return "", errutil.Internal("failed to load tenant settings", err)
	}

	if existing != nil {
		if existing.BaseURL == req.BaseURL {
			return SaveUnchanged, nil
		}

		if err := s.db.WithContext(ctx).Model(&TenantSettings{}).
			Where("tenant_id = ?", req.TenantID).
			Update("base_url", req.BaseURL).Error; err != nil {
			zapLog.Error("failed update tenant base url", zap.Error(err))
			return "", errutil.Internal("failed to update base URL", err)
		}
		return SaveUpdated, nil
	}

	if err := s.repo.Create(ctx, &TenantSettings{TenantID: req.TenantID, BaseURL: req.BaseURL}); err != nil {
		zapLog.Error("failed create tenant settings", zap.Error(err))
		return "", errutil.Internal("failed to set base URL", err)
	}

	return SaveCreated, nil
}

func (s *Service) Get(ctx context.Context, tenantID string) (*TenantSettings, error) {
	if tenantID == "" {
		return nil, errutil.ValidationFailed("tenantId is required", nil)
	}

	existing, err := s.repo.FindOne(ctx, &TenantSettings{TenantID: tenantID})
	if err != nil {
		logger.FromContext(ctx).Error("failed query tenant settings", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, errutil.Internal("failed to load tenant settings", err)
	}

	if existing == nil {
		return nil, errutil.NotFound("tenant settings not found", nil)
	}

	return existing, nil
}
