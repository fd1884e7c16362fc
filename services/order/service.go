package order

import (
	"context"
	"strings"
	"time"

	"affiliate-addon/pkg/errutil"
	"affiliate-addon/pkg/logger"
	"affiliate-addon/pkg/repository"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// appDataKey is the namespace the hosted platform reserves for this add-on
// inside order payloads.
const appDataKey = "affiliate-marketing"

// Envelope is the inbound order notification. Only id, customerId and the
// enclosing tenantId are mandatory; everything else arrives best-effort
// from the upstream notifier.
type Envelope struct {
	TenantID string   `json:"tenantId"`
	User     string   `json:"user"`
	Payload  *Payload `json:"payload"`
}

type Payload struct {
	ID            string              `json:"id"`
	OrderNumber   any                 `json:"orderNumber"`
	OrderPaidDate string              `json:"orderPaidDate"`
	TotalAfterTip decimal.Decimal     `json:"totalAfterTip"`
	PaymentStatus any                 `json:"paymentStatus"`
	CreatedAt     string              `json:"createdAt"`
	CustomerID    string              `json:"customerId"`
	Customer      Customer            `json:"customer"`
	AppData       map[string]AppEntry `json:"appData"`
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AppEntry is one add-on namespace inside the payload's appData block.
type AppEntry struct {
	AffiliateID string `json:"affiliateId"`
}

func (p *Payload) affiliateID() string {
	if p.AppData == nil {
		return ""
	}
	return p.AppData[appDataKey].AffiliateID
}

type Service struct {
	db   *gorm.DB
	repo repository.Repository[AffiliateOrder]
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		repo: repository.ProvideStore[AffiliateOrder](p.DB),
	}
}

// Ingest validates and stores an order notification. Orders without an
// affiliate attribution are acknowledged and discarded: the sender must
// always see success so it never enters a redelivery storm, and
// unattributed orders are simply not this registry's business.
func (s *Service) Ingest(ctx context.Context, env Envelope) (bool, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("tenant_id", env.TenantID))

	if env.TenantID == "" {
		return false, errutil.ValidationFailed("tenantId is required", nil)
	}
	if env.Payload == nil {
		return false, errutil.ValidationFailed("payload is required", nil)
	}
	if env.Payload.ID == "" || env.Payload.CustomerID == "" {
		return false, errutil.ValidationFailed("payload.id and payload.customerId are required", nil)
	}

	affiliateID := env.Payload.affiliateID()
	if affiliateID == "" {
		zapLog.Info("order not attributed to an affiliate, discarding",
			zap.String("order_id", env.Payload.ID),
		)
		return false, nil
	}

	record := AffiliateOrder{
		TenantID:     env.TenantID,
		OrderID:      env.Payload.ID,
		OrderNumber:  cast.ToString(env.Payload.OrderNumber),
		CustomerID:   env.Payload.CustomerID,
		CustomerName: strings.TrimSpace(env.Payload.Customer.FirstName + " " + env.Payload.Customer.LastName),
		AffiliateID:  affiliateID,
		Amount:       env.Payload.TotalAfterTip,
		Status:       cast.ToString(env.Payload.PaymentStatus),
		ProcessedBy:  env.User,
		CreatedAt:    parseOrderTime(env.Payload.CreatedAt),
	}

	// redelivery of the same order id replaces the row
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error; err != nil {
		zapLog.Error("failed store affiliate order", zap.String("order_id", record.OrderID), zap.Error(err))
		return false, errutil.Internal("failed to store order", err)
	}

	zapLog.Info("affiliate order stored",
		zap.String("order_id", record.OrderID),
		zap.String("affiliate_id", affiliateID),
	)
	return true, nil
}

type ListRequest struct {
	TenantID    string
	AffiliateID string
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]*AffiliateOrder, error) {
	if req.TenantID == "" || req.AffiliateID == "" {
		return nil, errutil.ValidationFailed("tenantId and affiliateId are required", nil)
	}

	records, err := s.repo.Find(ctx, &AffiliateOrder{TenantID: req.TenantID, AffiliateID: req.AffiliateID})
	if err != nil {
		logger.FromContext(ctx).Error("failed list affiliate orders",
			zap.String("tenant_id", req.TenantID),
			zap.String("affiliate_id", req.AffiliateID),
			zap.Error(err),
		)
		return nil, errutil.Internal("failed to list orders", err)
	}

	return records, nil
}

func parseOrderTime(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Now().UTC()
}
