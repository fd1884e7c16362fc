package affiliate

import (
	"context"
	"errors"
	"time"

	"affiliate-addon/pkg/errutil"
	"affiliate-addon/pkg/logger"
	"affiliate-addon/pkg/repository"
	"affiliate-addon/pkg/util"
	"affiliate-addon/services/settings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerSyncer stamps the upstream customer record with the affiliate
// metadata. A timeout is indistinguishable from an error response to the
// registry; both trigger compensation.
type CustomerSyncer interface {
	PutCustomerAffiliateData(ctx context.Context, tenantID, customerID, affiliateID, status string) error
}

// syncPhase tracks the forward-write / sync / compensate progression of a
// state-changing operation. This is best-effort sequencing, not a
// transaction: a crash between phases leaves the store and the upstream
// system diverged.
type syncPhase string

const (
	phasePending    syncPhase = "pending"
	phaseCommitted  syncPhase = "committed"
	phaseRolledBack syncPhase = "rolled_back"
)

func logPhase(log *zap.Logger, op string, phase syncPhase) {
	log.Info("affiliate sync phase",
		zap.String("operation", op),
		zap.String("phase", string(phase)),
	)
}

type Service struct {
	db       *gorm.DB
	sync     CustomerSyncer
	repo     repository.Repository[Affiliate]
	settings repository.Repository[settings.TenantSettings]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Sync CustomerSyncer
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		sync:     p.Sync,
		repo:     repository.ProvideStore[Affiliate](p.DB),
		settings: repository.ProvideStore[settings.TenantSettings](p.DB),
	}
}

type CreateRequest struct {
	TenantID   string    `json:"tenantId" binding:"required"`
	CustomerID string    `json:"customerId" binding:"required"`
	Name       string    `json:"name" binding:"required"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Create registers an affiliate for the customer, or returns the existing
// one unchanged. Returns created=false for the idempotent-read path.
//
// The insert relies on the (tenant_id, customer_id) unique index, so two
// concurrent first calls cannot both create; the loser of the race re-reads
// and gets the winner's record. After the insert, the upstream customer
// record is stamped; if that fails the row is deleted again and the caller
// never sees a half-created affiliate.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Affiliate, bool, error) {
	zapLog := logger.FromContext(ctx).With(
		zap.String("tenant_id", req.TenantID),
		zap.String("customer_id", req.CustomerID),
	)

	if req.TenantID == "" || req.CustomerID == "" || req.Name == "" {
		return nil, false, errutil.ValidationFailed("tenantId, customerId, and name are required", nil)
	}

	existing, err := s.repo.FindOne(ctx, &Affiliate{TenantID: req.TenantID, CustomerID: req.CustomerID})
	if err != nil {
		zapLog.Error("failed query affiliate by customer", zap.Error(err))
		return nil, false, errutil.Internal("failed to check existing affiliate", err)
	}

	if existing != nil {
		return existing, false, nil
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	record := &Affiliate{
		TenantID:    req.TenantID,
		AffiliateID: util.NewAffiliateID(),
		CustomerID:  req.CustomerID,
		Name:        req.Name,
		Status:      Active,
		CreatedAt:   createdAt,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the create race; the winner's record is authoritative
			winner, ferr := s.repo.FindOne(ctx, &Affiliate{TenantID: req.TenantID, CustomerID: req.CustomerID})
			if ferr != nil || winner == nil {
				zapLog.Error("failed re-read after duplicate create", zap.Error(ferr))
				return nil, false, errutil.Internal("failed to create affiliate", err)
			}
			return winner, false, nil
		}
		zapLog.Error("failed create affiliate", zap.Error(err))
		return nil, false, errutil.Internal("failed to create affiliate", err)
	}

	zapLog = zapLog.With(zap.String("affiliate_id", record.AffiliateID))
	logPhase(zapLog, "create", phasePending)

	if err := s.sync.PutCustomerAffiliateData(ctx, req.TenantID, req.CustomerID, record.AffiliateID, record.Status.String()); err != nil {
		if derr := s.db.WithContext(ctx).
			Where("tenant_id = ? AND affiliate_id = ?", record.TenantID, record.AffiliateID).
			Delete(&Affiliate{}).Error; derr != nil {
			zapLog.Error("data_inconsistency: compensating delete failed, affiliate exists locally but not upstream",
				zap.NamedError("sync_error", err),
				zap.NamedError("rollback_error", derr),
			)
			return nil, false, errutil.UpstreamSync("failed to sync affiliate to upstream; rollback also failed", errors.Join(err, derr))
		}

		logPhase(zapLog, "create", phaseRolledBack)
		return nil, false, errutil.UpstreamSync("failed to sync affiliate to upstream customer", err)
	}

	logPhase(zapLog, "create", phaseCommitted)
	return record, true, nil
}

type ListRequest struct {
	TenantID   string
	CustomerID string
	Status     string
}

// List returns the tenant's affiliates, optionally narrowed to one customer
// and filtered by status. Unbounded on purpose: partitions are small.
func (s *Service) List(ctx context.Context, req ListRequest) ([]*Affiliate, error) {
	if req.TenantID == "" {
		return nil, errutil.ValidationFailed("tenantId is required", nil)
	}

	query := &Affiliate{TenantID: req.TenantID, CustomerID: req.CustomerID}
	records, err := s.repo.Find(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Error("failed list affiliates", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, errutil.Internal("failed to list affiliates", err)
	}

	if req.Status == "" {
		return records, nil
	}

	filtered := make([]*Affiliate, 0, len(records))
	for _, r := range records {
		if string(r.Status) == req.Status {
			filtered = append(filtered, r)
		}
	}

	return filtered, nil
}

type UpdateStatusRequest struct {
	TenantID    string `json:"tenantId" binding:"required"`
	AffiliateID string `json:"affiliateId" binding:"required"`
	Status      Status `json:"status" binding:"required"`
}

// UpdateStatus writes the new status, then syncs it upstream. On sync
// failure the previous status is written back before the error is returned.
func (s *Service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Affiliate, error) {
	zapLog := logger.FromContext(ctx).With(
		zap.String("tenant_id", req.TenantID),
		zap.String("affiliate_id", req.AffiliateID),
	)

	if req.TenantID == "" || req.AffiliateID == "" || req.Status == "" {
		return nil, errutil.ValidationFailed("tenantId, affiliateId, and status are required", nil)
	}

	if req.Status.String() == "" {
		return nil, errutil.ValidationFailed("status must be one of Active, Inactive, Deleted", nil)
	}

	record, err := s.repo.FindOne(ctx, &Affiliate{TenantID: req.TenantID, AffiliateID: req.AffiliateID})
	if err != nil {
		zapLog.Error("failed query affiliate", zap.Error(err))
		return nil, errutil.Internal("failed to load affiliate", err)
	}

	if record == nil {
		return nil, errutil.NotFound("affiliate not found", nil)
	}

	oldStatus := record.Status
	if err := s.setStatus(ctx, req.TenantID, req.AffiliateID, req.Status); err != nil {
		zapLog.Error("failed update affiliate status", zap.Error(err))
		return nil, errutil.Internal("failed to update affiliate status", err)
	}

	logPhase(zapLog, "update_status", phasePending)

	if err := s.sync.PutCustomerAffiliateData(ctx, req.TenantID, record.CustomerID, req.AffiliateID, req.Status.String()); err != nil {
		if rerr := s.setStatus(ctx, req.TenantID, req.AffiliateID, oldStatus); rerr != nil {
			zapLog.Error("data_inconsistency: status rollback failed, local status diverges from upstream",
				zap.String("old_status", oldStatus.String()),
				zap.String("new_status", req.Status.String()),
				zap.NamedError("sync_error", err),
				zap.NamedError("rollback_error", rerr),
			)
			return nil, errutil.UpstreamSync("failed to sync affiliate status; rollback also failed", errors.Join(err, rerr))
		}

		logPhase(zapLog, "update_status", phaseRolledBack)
		return nil, errutil.UpstreamSync("failed to sync affiliate status to upstream customer", err)
	}

	logPhase(zapLog, "update_status", phaseCommitted)

	record.Status = req.Status
	return record, nil
}

// SoftDelete marks the affiliate Deleted without touching the upstream
// customer record. The asymmetry with UpdateStatus mirrors the add-on's
// admin UI, which deletes locally and re-syncs on the next status change.
func (s *Service) SoftDelete(ctx context.Context, tenantID, affiliateID string) error {
	if tenantID == "" || affiliateID == "" {
		return errutil.ValidationFailed("tenantId and affiliateId are required", nil)
	}

	record, err := s.repo.FindOne(ctx, &Affiliate{TenantID: tenantID, AffiliateID: affiliateID})
	if err != nil {
		logger.FromContext(ctx).Error("failed query affiliate", zap.String("tenant_id", tenantID), zap.Error(err))
		return errutil.Internal("failed to load affiliate", err)
	}

	if record == nil {
		return errutil.NotFound("affiliate not found", nil)
	}

	if err := s.setStatus(ctx, tenantID, affiliateID, Deleted); err != nil {
		logger.FromContext(ctx).Error("failed soft delete affiliate", zap.String("tenant_id", tenantID), zap.Error(err))
		return errutil.Internal("failed to delete affiliate", err)
	}

	return nil
}

// TrackingLink builds the affiliate's referral URL from the tenant's base
// URL. Plain concatenation: affiliate ids are registry-minted and URL-safe.
func (s *Service) TrackingLink(ctx context.Context, tenantID, affiliateID string) (string, error) {
	if tenantID == "" || affiliateID == "" {
		return "", errutil.ValidationFailed("tenantId and affiliateId are required", nil)
	}

	cfg, err := s.settings.FindOne(ctx, &settings.TenantSettings{TenantID: tenantID})
	if err != nil {
		logger.FromContext(ctx).Error("failed query tenant settings", zap.String("tenant_id", tenantID), zap.Error(err))
		return "", errutil.Internal("failed to load tenant settings", err)
	}

	if cfg == nil || cfg.BaseURL == "" {
		return "", errutil.NotFound("base URL not found for tenant", nil)
	}

	return cfg.BaseURL + "?ref=" + affiliateID, nil
}

func (s *Service) setStatus(ctx context.Context, tenantID, affiliateID string, status Status) error {
	return s.db.WithContext(ctx).Model(&Affiliate{}).
		Where("tenant_id = ? AND affiliate_id = ?", tenantID, affiliateID).
		Update("status", status).Error
}
