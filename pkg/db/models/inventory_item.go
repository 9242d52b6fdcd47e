package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// InventoryItem is the canonical tracked product for an organization.
// The wider platform owns the full inventory lifecycle; the repricing engine
// reads price/cost basis and marketplace listings from it.
type InventoryItem struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID            `gorm:"column:org_id;type:uuid;not null;index"`
	SKU       string               `gorm:"column:sku;not null;uniqueIndex:idx_inventory_org_sku"`
	Title     string               `gorm:"column:title;not null"`
	Category  *string              `gorm:"column:category"`
	BasePrice decimal.Decimal      `gorm:"column:base_price;type:numeric(12,2);not null"`
	CostPrice decimal.Decimal      `gorm:"column:cost_price;type:numeric(12,2);not null;default:0"`
	IsActive  bool                 `gorm:"column:is_active;not null;default:true"`
	Listings  []MarketplaceListing `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// MarketplaceListing joins an inventory item to its marketplace-specific
// identifier (ASIN, Takealot offer id).
type MarketplaceListing struct {
	ID                   uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID            uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_listing_product_marketplace"`
	Marketplace          enums.Marketplace `gorm:"column:marketplace;type:marketplace;not null;uniqueIndex:idx_listing_product_marketplace"`
	MarketplaceProductID string            `gorm:"column:marketplace_product_id;not null"`
	IsActive             bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ListingFor returns the listing for the given marketplace, if present.
func (i InventoryItem) ListingFor(marketplace enums.Marketplace) *MarketplaceListing {
	for idx := range i.Listings {
		if i.Listings[idx].Marketplace == marketplace {
			return &i.Listings[idx]
		}
	}
	return nil
}
