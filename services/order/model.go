package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// AffiliateOrder is a commission-bearing order attributed to an affiliate.
// Written once per webhook delivery; a redelivery of the same order id
// replaces the row wholesale.
type AffiliateOrder struct {
	TenantID     string          `gorm:"column:tenant_id;primaryKey;index:idx_affiliate_orders_tenant_affiliate,priority:1" json:"tenantId"`
	OrderID      string          `gorm:"column:order_id;primaryKey" json:"orderId"`
	OrderNumber  string          `gorm:"column:order_number" json:"orderNumber"`
	CustomerID   string          `gorm:"column:customer_id;not null" json:"customerId"`
	CustomerName string          `gorm:"column:customer_name" json:"customerName"`
	AffiliateID  string          `gorm:"column:affiliate_id;not null;index:idx_affiliate_orders_tenant_affiliate,priority:2" json:"affiliateId"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(20,8)" json:"amount"`
	Status       string          `gorm:"column:status" json:"status"`
	ProcessedBy  string          `gorm:"column:processed_by" json:"processedBy"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (AffiliateOrder) TableName() string {
	return "affiliate_orders"
}
