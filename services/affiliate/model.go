package affiliate

import (
	"time"
)

type Status string

var (
	Active   Status = "Active"
	Inactive Status = "Inactive"
	Deleted  Status = "Deleted"
)

func (s Status) String() string {
	switch s {
	case Active, Inactive, Deleted:
		return string(s)
	default:
		return ""
	}
}

// Affiliate is one registered affiliate inside a tenant partition. The
// composite unique index on (tenant_id, customer_id) is what makes creation
// an atomic insert-if-absent: two concurrent creates for the same customer
// cannot both land.
type Affiliate struct {
	TenantID    string    `gorm:"column:tenant_id;primaryKey;index:idx_affiliates_tenant_customer,unique" json:"tenantId"`
	AffiliateID string    `gorm:"column:affiliate_id;primaryKey" json:"affiliateId"`
	CustomerID  string    `gorm:"column:customer_id;not null;index:idx_affiliates_tenant_customer,unique" json:"customerId"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Status      Status    `gorm:"column:status;not null" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Affiliate) TableName() string {
	return "affiliates"
}
