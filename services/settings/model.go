package settings

import "time"

// TenantSettings holds the per-tenant storefront configuration. One row per
// tenant.
type TenantSettings struct {
	TenantID  string    `gorm:"column:tenant_id;primaryKey" json:"tenantId"`
	BaseURL   string    `gorm:"column:base_url;not null" json:"baseUrl"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (TenantSettings) TableName() string {
	return "tenant_settings"
}

// SaveResult distinguishes a first write from an applied update from a
// write that matched the stored value and was skipped.
type SaveResult string

const (
	SaveCreated   SaveResult = "created"
	SaveUpdated   SaveResult = "updated"
	SaveUnchanged SaveResult = "unchanged"
)
