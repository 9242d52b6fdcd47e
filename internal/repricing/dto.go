package repricing

import (
	"github.com/shopspring/decimal"
)

// CreateRuleInput is the request payload for creating a repricing rule.
type CreateRuleInput struct {
	Name                   string           `json:"name" validate:"required,max=120"`
	Strategy               string           `json:"strategy" validate:"required"`
	IsActive               *bool            `json:"isActive"`
	MinPrice               *decimal.Decimal `json:"minPrice"`
	MaxPrice               *decimal.Decimal `json:"maxPrice"`
	PriceDifferenceAmount  *decimal.Decimal `json:"priceDifferenceAmount"`
	PriceDifferencePercent *decimal.Decimal `json:"priceDifferencePercent"`
	TargetMargin           *decimal.Decimal `json:"targetMargin"`
	OnlyUndercutIfNotOwned bool             `json:"onlyUndercutIfNotOwned"`
	SKUs                   []string         `json:"skus"`
	ExcludedSKUs           []string         `json:"excludedSkus"`
	Categories             []string         `json:"categories"`
	PriceRangeMin          *decimal.Decimal `json:"priceRangeMin"`
	PriceRangeMax          *decimal.Decimal `json:"priceRangeMax"`
	Marketplaces           []string         `json:"marketplaces" validate:"required,min=1"`
	UpdateFrequencyMinutes int              `json:"updateFrequencyMinutes" validate:"omitempty,min=5,max=10080"`
	Priority               int              `json:"priority" validate:"omitempty,min=0,max=1000"`
}

// UpdateRuleInput is the request payload for updating a repricing rule.
// Nil pointer fields keep their current value.
type UpdateRuleInput struct {
	Name                   *string          `json:"name" validate:"omitempty,max=120"`
	IsActive               *bool            `json:"isActive"`
	MinPrice               *decimal.Decimal `json:"minPrice"`
	MaxPrice               *decimal.Decimal `json:"maxPrice"`
	PriceDifferenceAmount  *decimal.Decimal `json:"priceDifferenceAmount"`
	PriceDifferencePercent *decimal.Decimal `json:"priceDifferencePercent"`
	TargetMargin           *decimal.Decimal `json:"targetMargin"`
	OnlyUndercutIfNotOwned *bool            `json:"onlyUndercutIfNotOwned"`
	SKUs                   []string         `json:"skus"`
	ExcludedSKUs           []string         `json:"excludedSkus"`
	Categories             []string         `json:"categories"`
	PriceRangeMin          *decimal.Decimal `json:"priceRangeMin"`
	PriceRangeMax          *decimal.Decimal `json:"priceRangeMax"`
	Marketplaces           []string         `json:"marketplaces" validate:"omitempty,min=1"`
	UpdateFrequencyMinutes *int             `json:"updateFrequencyMinutes" validate:"omitempty,min=5,max=10080"`
	Priority               *int             `json:"priority" validate:"omitempty,min=0,max=1000"`
}
