package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// RepricingRule is an operator-configured policy that adjusts prices based on
// competitive signals. Only the scheduler mutates the run timestamps.
type RepricingRule struct {
	ID                     uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID                  uuid.UUID               `gorm:"column:org_id;type:uuid;not null;index"`
	Name                   string                  `gorm:"column:name;not null"`
	IsActive               bool                    `gorm:"column:is_active;not null;default:true"`
	Strategy               enums.RepricingStrategy `gorm:"column:strategy;type:repricing_strategy;not null"`
	MinPrice               *decimal.Decimal        `gorm:"column:min_price;type:numeric(12,2)"`
	MaxPrice               *decimal.Decimal        `gorm:"column:max_price;type:numeric(12,2)"`
	PriceDifferenceAmount  *decimal.Decimal        `gorm:"column:price_difference_amount;type:numeric(12,2)"`
	PriceDifferencePercent *decimal.Decimal        `gorm:"column:price_difference_percent;type:numeric(5,2)"`
	TargetMargin           *decimal.Decimal        `gorm:"column:target_margin;type:numeric(5,2)"`
	OnlyUndercutIfNotOwned bool                    `gorm:"column:only_undercut_if_not_owned;not null;default:false"`
	SKUs                   pq.StringArray          `gorm:"column:skus;type:text[];default:ARRAY[]::text[]"`
	ExcludedSKUs           pq.StringArray          `gorm:"column:excluded_skus;type:text[];default:ARRAY[]::text[]"`
	Categories             pq.StringArray          `gorm:"column:categories;type:text[];default:ARRAY[]::text[]"`
	PriceRangeMin          *decimal.Decimal        `gorm:"column:price_range_min;type:numeric(12,2)"`
	PriceRangeMax          *decimal.Decimal        `gorm:"column:price_range_max;type:numeric(12,2)"`
	Marketplaces           pq.StringArray          `gorm:"column:marketplaces;type:text[];not null"`
	UpdateFrequencyMinutes int                     `gorm:"column:update_frequency_minutes;not null;default:60"`
	Priority               int                     `gorm:"column:priority;not null;default:0"`
	LastRunAt              *time.Time              `gorm:"column:last_run_at"`
	NextRunAt              *time.Time              `gorm:"column:next_run_at;index"`
	CreatedAt              time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// AppliesToMarketplace reports whether the rule targets the given marketplace.
func (r RepricingRule) AppliesToMarketplace(marketplace enums.Marketplace) bool {
	for _, m := range r.Marketplaces {
		if m == string(marketplace) {
			return true
		}
	}
	return false
}
