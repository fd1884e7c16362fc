package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

var (
	Default    Type = "default"
	PerProduct Type = "per_product"
)

func (t Type) String() string {
	switch t {
	case Default, PerProduct:
		return string(t)
	default:
		return ""
	}
}

// Program is the tenant's commission configuration, a singleton per tenant.
// DefaultRate round-trips exactly: 0.15 in is 0.15 out, never a perturbed
// binary float.
type Program struct {
	TenantID       string          `gorm:"column:tenant_id;primaryKey" json:"tenantId"`
	CommissionType Type            `gorm:"column:commission_type;not null" json:"commissionType"`
	DefaultRate    decimal.Decimal `gorm:"column:default_rate;type:decimal(20,8)" json:"defaultRate"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Program) TableName() string {
	return "commission_programs"
}

type SaveResult string

const (
	SaveCreated   SaveResult = "created"
	SaveUpdated   SaveResult = "updated"
	SaveUnchanged SaveResult = "unchanged"
)
