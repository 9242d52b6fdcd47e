package buybox

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/internal/marketplaces"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

// Monitor captures competitive state for one marketplace. CheckBuyBoxStatus,
// GetCompetitors, and UpdatePrice never return errors; expected failures
// degrade to an unknown snapshot, an empty competitor list, or a failed
// outcome with a message after logging.
type Monitor interface {
	Marketplace() enums.Marketplace
	CheckBuyBoxStatus(ctx context.Context, product models.InventoryItem, marketplaceProductID string) types.BuyBoxSnapshot
	GetCompetitors(ctx context.Context, marketplaceProductID string) []types.Competitor
	CalculateSuggestedPrice(product models.InventoryItem, snapshot types.BuyBoxSnapshot) (decimal.Decimal, string)
	UpdatePrice(ctx context.Context, sku, marketplaceProductID string, newPrice decimal.Decimal) PriceUpdateOutcome
}

// PriceUpdateOutcome reports a single price push to the marketplace.
type PriceUpdateOutcome struct {
	Success bool
	Message string
}

// MonitorSet resolves monitors by marketplace.
type MonitorSet struct {
	monitors map[enums.Marketplace]Monitor
}

// NewMonitorSet indexes the provided monitors by their marketplace.
func NewMonitorSet(monitors ...Monitor) (*MonitorSet, error) {
	indexed := make(map[enums.Marketplace]Monitor, len(monitors))
	for _, monitor := range monitors {
		if monitor == nil {
			return nil, fmt.Errorf("buybox: nil monitor")
		}
		marketplace := monitor.Marketplace()
		if _, exists := indexed[marketplace]; exists {
			return nil, fmt.Errorf("buybox: duplicate monitor for %s", marketplace)
		}
		indexed[marketplace] = monitor
	}
	return &MonitorSet{monitors: indexed}, nil
}

// Monitor returns the monitor registered for the marketplace.
func (m *MonitorSet) Monitor(marketplace enums.Marketplace) (Monitor, error) {
	monitor, ok := m.monitors[marketplace]
	if !ok {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("no monitor registered for marketplace %s", marketplace))
	}
	return monitor, nil
}

// unknownSnapshot is the degraded result for failed marketplace calls.
func unknownSnapshot(capturedAt time.Time) types.BuyBoxSnapshot {
	return types.BuyBoxSnapshot{
		Status:                 enums.BuyBoxStatusUnknown,
		OwnPrice:               decimal.Zero,
		PriceDifference:        decimal.Zero,
		PriceDifferencePercent: decimal.Zero,
		Competitors:            []types.Competitor{},
		HasPricingOpportunity:  false,
		CapturedAt:             capturedAt,
	}
}

func toCompetitors(offers []marketplaces.Offer) []types.Competitor {
	competitors := make([]types.Competitor, 0, len(offers))
	for _, offer := range offers {
		competitors = append(competitors, types.Competitor{
			SellerName:         offer.SellerName,
			IsBuyBoxWinner:     offer.IsBuyBoxWinner,
			IsOwnOffer:         offer.IsOwnOffer,
			Price:              offer.Price,
			PriceWithShipping:  offer.LandedPrice(),
			FulfillmentChannel: offer.FulfillmentChannel,
			Rating:             offer.Rating,
			ReviewCount:        offer.ReviewCount,
		})
	}
	return competitors
}

// classifyOffers builds a snapshot from the raw offer list. soleSellerOwns
// controls whether a single own offer with no declared winner counts as
// holding the buy box; marketplaces differ on this.
func classifyOffers(product models.InventoryItem, offers []marketplaces.Offer, soleSellerOwns bool, capturedAt time.Time) types.BuyBoxSnapshot {
	ownPrice := product.BasePrice
	competitorCount := 0
	var winner *marketplaces.Offer
	for i := range offers {
		offer := offers[i]
		if offer.IsOwnOffer {
			ownPrice = offer.Price
		} else {
			competitorCount++
		}
		if offer.IsBuyBoxWinner && winner == nil {
			winner = &offers[i]
		}
	}

	snapshot := types.BuyBoxSnapshot{
		Status:                 enums.BuyBoxStatusNoBuyBox,
		OwnPrice:               ownPrice,
		PriceDifference:        decimal.Zero,
		PriceDifferencePercent: decimal.Zero,
		CompetitorCount:        competitorCount,
		Competitors:            toCompetitors(offers),
		CapturedAt:             capturedAt,
	}

	if len(offers) == 0 {
		return snapshot
	}

	if winner == nil {
		if soleSellerOwns && len(offers) == 1 && offers[0].IsOwnOffer {
			snapshot.Status = enums.BuyBoxStatusOwned
		}
		return snapshot
	}

	buyBoxPrice := winner.Price
	snapshot.BuyBoxPrice = &buyBoxPrice

	if winner.IsOwnOffer {
		snapshot.Status = enums.BuyBoxStatusOwned
		return snapshot
	}

	snapshot.Status = enums.BuyBoxStatusNotOwned
	gap := ownPrice.Sub(buyBoxPrice)
	snapshot.PriceDifference = gap
	if !buyBoxPrice.IsZero() {
		snapshot.PriceDifferencePercent = gap.Div(buyBoxPrice).Mul(decimal.NewFromInt(100)).Round(2)
	}
	snapshot.HasPricingOpportunity = gap.IsPositive()
	return snapshot
}

// submitPrice pushes a one-element batch through the adapter and pulls out
// this SKU's result. Adapter failures and per-SKU rejections both surface
// as a failed outcome with the reason; only logging happens on the way.
func submitPrice(ctx context.Context, adapter marketplaces.Adapter, logg *logger.Logger, sku, marketplaceProductID string, newPrice decimal.Decimal) PriceUpdateOutcome {
	results, err := adapter.UpdatePrices(ctx, []marketplaces.PriceUpdate{{
		SKU:                  sku,
		MarketplaceProductID: marketplaceProductID,
		NewPrice:             newPrice,
	}})
	if err != nil {
		logg.Error(ctx, "price update failed", err)
		return PriceUpdateOutcome{Success: false, Message: err.Error()}
	}

	for _, result := range results {
		if result.SKU != sku {
			continue
		}
		if result.Success {
			return PriceUpdateOutcome{Success: true, Message: fmt.Sprintf("price updated to %s", newPrice.StringFixed(2))}
		}
		message := result.Error
		if message == "" {
			message = "marketplace rejected the price update"
		}
		return PriceUpdateOutcome{Success: false, Message: message}
	}

	// No per-SKU entry means the batch was accepted as a whole.
	return PriceUpdateOutcome{Success: true, Message: fmt.Sprintf("price updated to %s", newPrice.StringFixed(2))}
}

// suggestedPriceFloor is the lowest price a suggestion may reach: a small
// markup over cost when cost is known, otherwise a fraction of base price.
func suggestedPriceFloor(product models.InventoryItem) decimal.Decimal {
	if product.CostPrice.IsPositive() {
		return product.CostPrice.Mul(decimal.RequireFromString("1.05")).Round(2)
	}
	return product.BasePrice.Mul(decimal.RequireFromString("0.7")).Round(2)
}
