package payout

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
)

// Payout is a recorded payout request. This add-on never moves money; rows
// stay pending until an external settlement process picks them up.
type Payout struct {
	PayoutID        snowflake.ID    `gorm:"column:payout_id;primaryKey;autoIncrement:false" json:"payoutId"`
	TenantID        string          `gorm:"column:tenant_id;not null;index" json:"tenantId"`
	AffiliateID     string          `gorm:"column:affiliate_id;not null;index" json:"affiliateId"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(20,8)" json:"amount"`
	StripeAccountID string          `gorm:"column:stripe_account_id" json:"stripeAccountId,omitempty"`
	Status          Status          `gorm:"column:status;default:'pending'" json:"status"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Payout) TableName() string {
	return "payouts"
}
