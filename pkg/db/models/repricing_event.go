package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// RepricingEvent records one attempted price change. Immutable audit row.
type RepricingEvent struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RuleID             uuid.UUID          `gorm:"column:rule_id;type:uuid;not null;index"`
	OrgID              uuid.UUID          `gorm:"column:org_id;type:uuid;not null;index"`
	ProductID          uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	SKU                string             `gorm:"column:sku;not null"`
	Marketplace        enums.Marketplace  `gorm:"column:marketplace;type:marketplace;not null;index"`
	PreviousPrice      decimal.Decimal    `gorm:"column:previous_price;type:numeric(12,2);not null"`
	NewPrice           decimal.Decimal    `gorm:"column:new_price;type:numeric(12,2);not null"`
	Reason             string             `gorm:"column:reason;not null"`
	BuyBoxStatusBefore enums.BuyBoxStatus `gorm:"column:buybox_status_before;type:buybox_status;not null"`
	Success            bool               `gorm:"column:success;not null;default:false"`
	ErrorMessage       *string            `gorm:"column:error_message"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}
