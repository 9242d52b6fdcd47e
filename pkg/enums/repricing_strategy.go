package enums

import "fmt"

// RepricingStrategy maps to the repricing_strategy enum in Postgres.
type RepricingStrategy string

const (
	RepricingStrategyMatchBuyBox     RepricingStrategy = "match_buy_box"
	RepricingStrategyBeatBuyBox      RepricingStrategy = "beat_buy_box"
	RepricingStrategyFixedPercentage RepricingStrategy = "fixed_percentage"
	RepricingStrategyDynamicPricing  RepricingStrategy = "dynamic_pricing"
	RepricingStrategyMaintainMargin  RepricingStrategy = "maintain_margin"
)

var validRepricingStrategies = []RepricingStrategy{
	RepricingStrategyMatchBuyBox,
	RepricingStrategyBeatBuyBox,
	RepricingStrategyFixedPercentage,
	RepricingStrategyDynamicPricing,
	RepricingStrategyMaintainMargin,
}

// IsValid reports whether the value matches the canonical strategy enum.
func (s RepricingStrategy) IsValid() bool {
	for _, candidate := range validRepricingStrategies {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRepricingStrategy converts raw input into RepricingStrategy.
func ParseRepricingStrategy(value string) (RepricingStrategy, error) {
	for _, candidate := range validRepricingStrategies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid repricing strategy %q", value)
}
