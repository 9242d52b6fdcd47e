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

var penny = decimal.RequireFromString("0.01")

// AmazonMonitor polls Amazon offers. A lone own offer with no declared
// winner counts as holding the buy box here; Amazon withholds the winner
// flag when there is no competition.
type AmazonMonitor struct {
	adapter marketplaces.Adapter
	logg    *logger.Logger
}

// NewAmazonMonitor wires the monitor to the Amazon adapter.
func NewAmazonMonitor(adapter marketplaces.Adapter, logg *logger.Logger) (*AmazonMonitor, error) {
	if adapter == nil {
		return nil, fmt.Errorf("amazon monitor requires an adapter")
	}
	if logg == nil {
		return nil, fmt.Errorf("amazon monitor requires a logger")
	}
	return &AmazonMonitor{adapter: adapter, logg: logg}, nil
}

func (m *AmazonMonitor) Marketplace() enums.Marketplace {
	return enums.MarketplaceAmazon
}

func (m *AmazonMonitor) CheckBuyBoxStatus(ctx context.Context, product models.InventoryItem, marketplaceProductID string) types.BuyBoxSnapshot {
	capturedAt := time.Now().UTC()
	ctx = m.logg.WithMarketplace(ctx, string(enums.MarketplaceAmazon))

	offers, err := m.adapter.GetOffers(ctx, marketplaceProductID)
	if err != nil {
		m.logg.Error(ctx, "amazon offer poll failed", err)
		return unknownSnapshot(capturedAt)
	}

	snapshot := classifyOffers(product, offers, true, capturedAt)
	if snapshot.Status == enums.BuyBoxStatusNotOwned && snapshot.HasPricingOpportunity {
		price, reason := m.CalculateSuggestedPrice(product, snapshot)
		snapshot.SuggestedPrice = &price
		snapshot.SuggestedPriceReason = reason
	}
	return snapshot
}

func (m *AmazonMonitor) GetCompetitors(ctx context.Context, marketplaceProductID string) []types.Competitor {
	offers, err := m.adapter.GetOffers(ctx, marketplaceProductID)
	if err != nil {
		m.logg.Error(ctx, "amazon competitor poll failed", err)
		return []types.Competitor{}
	}
	return toCompetitors(offers)
}

// UpdatePrice pushes one listing price to Amazon and reports the outcome.
func (m *AmazonMonitor) UpdatePrice(ctx context.Context, sku, marketplaceProductID string, newPrice decimal.Decimal) PriceUpdateOutcome {
	ctx = m.logg.WithMarketplace(ctx, string(enums.MarketplaceAmazon))
	return submitPrice(ctx, m.adapter, m.logg, sku, marketplaceProductID, newPrice)
}

// CalculateSuggestedPrice undercuts the buy box by one cent, bounded below
// by the cost floor. Falls back to the base price when no buy box exists.
func (m *AmazonMonitor) CalculateSuggestedPrice(product models.InventoryItem, snapshot types.BuyBoxSnapshot) (decimal.Decimal, string) {
	floor := suggestedPriceFloor(product)
	if snapshot.BuyBoxPrice == nil {
		return product.BasePrice, "no buy box price available; holding base price"
	}

	candidate := snapshot.BuyBoxPrice.Sub(penny)
	if candidate.LessThan(floor) {
		return floor, fmt.Sprintf("buy box price %s is below the cost floor; suggesting floor %s", snapshot.BuyBoxPrice.StringFixed(2), floor.StringFixed(2))
	}
	return candidate, fmt.Sprintf("undercut buy box price %s by 0.01", snapshot.BuyBoxPrice.StringFixed(2))
}
