package buybox

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/marketplaces"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

// TakealotMonitor polls Takealot competitor listings. Takealot reports a
// winner flag even for sole sellers, so the lone-offer shortcut does not
// apply.
type TakealotMonitor struct {
	adapter marketplaces.Adapter
	logg    *logger.Logger
}

// NewTakealotMonitor wires the monitor to the Takealot adapter.
func NewTakealotMonitor(adapter marketplaces.Adapter, logg *logger.Logger) (*TakealotMonitor, error) {
	if adapter == nil {
		return nil, fmt.Errorf("takealot monitor requires an adapter")
	}
	if logg == nil {
		return nil, fmt.Errorf("takealot monitor requires a logger")
	}
	return &TakealotMonitor{adapter: adapter, logg: logg}, nil
}

func (m *TakealotMonitor) Marketplace() enums.Marketplace {
	return enums.MarketplaceTakealot
}

func (m *TakealotMonitor) CheckBuyBoxStatus(ctx context.Context, product models.InventoryItem, marketplaceProductID string) types.BuyBoxSnapshot {
	capturedAt := time.Now().UTC()
	ctx = m.logg.WithMarketplace(ctx, string(enums.MarketplaceTakealot))

	offers, err := m.adapter.GetOffers(ctx, marketplaceProductID)
	if err != nil {
		m.logg.Error(ctx, "takealot offer poll failed", err)
		return unknownSnapshot(capturedAt)
	}

	snapshot := classifyOffers(product, offers, false, capturedAt)
	if snapshot.Status == enums.BuyBoxStatusNotOwned && snapshot.HasPricingOpportunity {
		price, reason := m.CalculateSuggestedPrice(product, snapshot)
		snapshot.SuggestedPrice = &price
		snapshot.SuggestedPriceReason = reason
	}
	return snapshot
}

func (m *TakealotMonitor) GetCompetitors(ctx context.Context, marketplaceProductID string) []types.Competitor {
	offers, err := m.adapter.GetOffers(ctx, marketplaceProductID)
	if err != nil {
		m.logg.Error(ctx, "takealot competitor poll failed", err)
		return []types.Competitor{}
	}
	return toCompetitors(offers)
}

// UpdatePrice pushes one listing price to Takealot and reports the outcome.
func (m *TakealotMonitor) UpdatePrice(ctx context.Context, sku, marketplaceProductID string, newPrice decimal.Decimal) PriceUpdateOutcome {
	ctx = m.logg.WithMarketplace(ctx, string(enums.MarketplaceTakealot))
	return submitPrice(ctx, m.adapter, m.logg, sku, marketplaceProductID, newPrice)
}

// CalculateSuggestedPrice targets one percent under the buy box, bounded
// below by the cost floor. Falls back to the base price when no buy box
// exists.
func (m *TakealotMonitor) CalculateSuggestedPrice(product models.InventoryItem, snapshot types.BuyBoxSnapshot) (decimal.Decimal, string) {
	floor := suggestedPriceFloor(product)
	if snapshot.BuyBoxPrice == nil {
		return product.BasePrice, "no buy box price available; holding base price"
	}

	candidate := snapshot.BuyBoxPrice.Mul(decimal.RequireFromString("0.99")).Round(2)
	if candidate.LessThan(floor) {
		return floor, fmt.Sprintf("buy box price %s is below the cost floor; suggesting floor %s", snapshot.BuyBoxPrice.StringFixed(2), floor.StringFixed(2))
	}
	return candidate, fmt.Sprintf("price one percent under buy box price %s", snapshot.BuyBoxPrice.StringFixed(2))
}
