package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

// BuyBoxHistory tracks the buy box time series for one (product, marketplace)
// pair. Snapshots are append-only; rolling statistics cover the trailing 30
// days relative to the newest snapshot.
type BuyBoxHistory struct {
	ID                    uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID                 uuid.UUID              `gorm:"column:org_id;type:uuid;not null;index"`
	ProductID             uuid.UUID              `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_buybox_product_marketplace"`
	SKU                   string                 `gorm:"column:sku;not null"`
	Marketplace           enums.Marketplace      `gorm:"column:marketplace;type:marketplace;not null;uniqueIndex:idx_buybox_product_marketplace"`
	MarketplaceProductID  string                 `gorm:"column:marketplace_product_id;not null"`
	IsMonitoring          bool                   `gorm:"column:is_monitoring;not null;default:true"`
	CheckFrequencyMinutes int                    `gorm:"column:check_frequency_minutes;not null;default:60"`
	LastCheckedAt         *time.Time             `gorm:"column:last_checked_at"`
	NextCheckAt           *time.Time             `gorm:"column:next_check_at;index"`
	LastSnapshot          types.BuyBoxSnapshot   `gorm:"column:last_snapshot;type:jsonb;serializer:json"`
	Snapshots             []types.BuyBoxSnapshot `gorm:"column:snapshots;type:jsonb;serializer:json"`
	WinPercentage         decimal.Decimal        `gorm:"column:win_percentage;type:numeric(5,2);not null;default:0"`
	AvgPriceGap           decimal.Decimal        `gorm:"column:avg_price_gap;type:numeric(12,2);not null;default:0"`
	LowestPriceToWin      *decimal.Decimal       `gorm:"column:lowest_price_to_win;type:numeric(12,2)"`
	LastWinAt             *time.Time             `gorm:"column:last_win_at"`
	LastWinPrice          *decimal.Decimal       `gorm:"column:last_win_price;type:numeric(12,2)"`
	LastLossAt            *time.Time             `gorm:"column:last_loss_at"`
	LastLossPrice         *decimal.Decimal       `gorm:"column:last_loss_price;type:numeric(12,2)"`
	CreatedAt             time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
