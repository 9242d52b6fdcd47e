package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
)

// Competitor is one seller's listing for a tracked product, captured at poll time.
// Competitors are embedded in a snapshot and never persisted on their own.
type Competitor struct {
	SellerName         string                   `json:"sellerName"`
	IsBuyBoxWinner     bool                     `json:"isBuyBoxWinner"`
	IsOwnOffer         bool                     `json:"isOwnOffer"`
	Price              decimal.Decimal          `json:"price"`
	PriceWithShipping  decimal.Decimal          `json:"priceWithShipping"`
	FulfillmentChannel enums.FulfillmentChannel `json:"fulfillmentChannel"`
	Rating             float64                  `json:"rating,omitempty"`
	ReviewCount        int                      `json:"reviewCount,omitempty"`
}

// BuyBoxSnapshot is one point-in-time capture of competitive state for a
// product on a marketplace. Immutable once created; appended to history.
type BuyBoxSnapshot struct {
	Status                 enums.BuyBoxStatus `json:"status"`
	OwnPrice               decimal.Decimal    `json:"ownPrice"`
	BuyBoxPrice            *decimal.Decimal   `json:"buyBoxPrice,omitempty"`
	PriceDifference        decimal.Decimal    `json:"priceDifference"`
	PriceDifferencePercent decimal.Decimal    `json:"priceDifferencePercent"`
	CompetitorCount        int                `json:"competitorCount"`
	Competitors            []Competitor       `json:"competitors"`
	HasPricingOpportunity  bool               `json:"hasPricingOpportunity"`
	SuggestedPrice         *decimal.Decimal   `json:"suggestedPrice,omitempty"`
	SuggestedPriceReason   string             `json:"suggestedPriceReason,omitempty"`
	CapturedAt             time.Time          `json:"capturedAt"`
}

// BuyBoxWon reports whether this snapshot counts as holding the buy box.
func (s BuyBoxSnapshot) BuyBoxWon() bool {
	return s.Status.IsWinning()
}
