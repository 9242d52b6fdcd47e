package repricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

// Evaluation is the structured outcome of running one rule against one
// product. Reason is always populated, including for the no-update case.
type Evaluation struct {
	ShouldUpdate bool
	NewPrice     decimal.Decimal
	Reason       string
}

// SuggestedPricer supplies a fallback price suggestion for DYNAMIC_PRICING
// when the snapshot does not carry one.
type SuggestedPricer interface {
	CalculateSuggestedPrice(product models.InventoryItem, snapshot types.BuyBoxSnapshot) (decimal.Decimal, string)
}

var (
	hundred = decimal.NewFromInt(100)
	penny   = decimal.RequireFromString("0.01")

	// assumedCostRatio approximates cost as a fraction of the current
	// price when no cost data exists. Placeholder until real cost
	// lookups cover the full catalog.
	assumedCostRatio = decimal.RequireFromString("0.7")

	defaultMinMultiplier = decimal.RequireFromString("1.1")
	defaultMaxMultiplier = decimal.RequireFromString("1.5")
	ownedRaiseMultiplier = decimal.RequireFromString("1.05")
	noopPercentThreshold = decimal.RequireFromString("0.005")
)

// EvaluateRule maps a rule plus the current competitive snapshot to a price
// decision. Pure computation; no I/O.
func EvaluateRule(rule models.RepricingRule, product models.InventoryItem, snapshot types.BuyBoxSnapshot, pricer SuggestedPricer) Evaluation {
	currentPrice := snapshot.OwnPrice
	if currentPrice.IsZero() {
		currentPrice = product.BasePrice
	}
	cost := product.CostPrice
	if !cost.IsPositive() {
		cost = currentPrice.Mul(assumedCostRatio).Round(2)
	}

	var target decimal.Decimal
	var reason string

	switch rule.Strategy {
	case enums.RepricingStrategyMatchBuyBox:
		if snapshot.BuyBoxPrice == nil {
			return noUpdate("no buy box price to match")
		}
		target = *snapshot.BuyBoxPrice
		reason = fmt.Sprintf("match buy box price %s", target.StringFixed(2))

	case enums.RepricingStrategyBeatBuyBox:
		if rule.OnlyUndercutIfNotOwned && snapshot.BuyBoxWon() {
			return noUpdate("buy box already owned; undercut disabled by rule")
		}
		if snapshot.BuyBoxPrice == nil {
			return noUpdate("no buy box price to undercut")
		}
		undercut := penny
		switch {
		case rule.PriceDifferenceAmount != nil && rule.PriceDifferenceAmount.IsPositive():
			undercut = *rule.PriceDifferenceAmount
		case rule.PriceDifferencePercent != nil && rule.PriceDifferencePercent.IsPositive():
			undercut = snapshot.BuyBoxPrice.Mul(*rule.PriceDifferencePercent).Div(hundred).Round(2)
		}
		target = snapshot.BuyBoxPrice.Sub(undercut)
		reason = fmt.Sprintf("undercut buy box price %s by %s", snapshot.BuyBoxPrice.StringFixed(2), undercut.StringFixed(2))

	case enums.RepricingStrategyFixedPercentage:
		if rule.TargetMargin == nil {
			return noUpdate("rule has no target margin configured")
		}
		target = marginPrice(cost, *rule.TargetMargin)
		reason = fmt.Sprintf("price for %s%% margin on cost %s", rule.TargetMargin.StringFixed(0), cost.StringFixed(2))

	case enums.RepricingStrategyMaintainMargin:
		if rule.TargetMargin == nil {
			return noUpdate("rule has no target margin configured")
		}
		floor := marginPrice(cost, *rule.TargetMargin)
		switch {
		case currentPrice.LessThan(floor):
			target = floor
			reason = fmt.Sprintf("current price %s is below the %s margin floor", currentPrice.StringFixed(2), floor.StringFixed(2))
		case snapshot.BuyBoxPrice == nil:
			return noUpdate(fmt.Sprintf("margin floor %s satisfied and no buy box price to react to", floor.StringFixed(2)))
		case snapshot.BuyBoxPrice.LessThan(floor):
			target = floor
			reason = fmt.Sprintf("buy box price %s is below the margin floor; holding %s", snapshot.BuyBoxPrice.StringFixed(2), floor.StringFixed(2))
		case snapshot.BuyBoxWon():
			target = decimal.Min(currentPrice.Mul(ownedRaiseMultiplier).Round(2), *snapshot.BuyBoxPrice)
			reason = fmt.Sprintf("buy box owned; raising toward %s within margin", target.StringFixed(2))
		default:
			target = decimal.Max(floor, snapshot.BuyBoxPrice.Sub(penny))
			reason = fmt.Sprintf("chase buy box price %s while keeping the %s margin floor", snapshot.BuyBoxPrice.StringFixed(2), floor.StringFixed(2))
		}

	case enums.RepricingStrategyDynamicPricing:
		if snapshot.SuggestedPrice != nil {
			target = *snapshot.SuggestedPrice
			reason = snapshot.SuggestedPriceReason
			if reason == "" {
				reason = "snapshot suggested price"
			}
		} else {
			if pricer == nil {
				return noUpdate("no suggested price available")
			}
			target, reason = pricer.CalculateSuggestedPrice(product, snapshot)
		}

	default:
		return noUpdate(fmt.Sprintf("unsupported strategy %q", rule.Strategy))
	}

	target, clampNote := clampPrice(target, rule, product, cost)
	if clampNote != "" {
		reason = reason + "; " + clampNote
	}

	delta := target.Sub(currentPrice).Abs()
	withinCents := delta.LessThanOrEqual(penny)
	withinPercent := !currentPrice.IsZero() && delta.Div(currentPrice).LessThanOrEqual(noopPercentThreshold)
	if withinCents || withinPercent {
		return noUpdate(fmt.Sprintf("target %s is within the no-op threshold of current price %s", target.StringFixed(2), currentPrice.StringFixed(2)))
	}

	return Evaluation{ShouldUpdate: true, NewPrice: target.Round(2), Reason: reason}
}

func noUpdate(reason string) Evaluation {
	return Evaluation{ShouldUpdate: false, Reason: reason}
}

// marginPrice solves cost / (1 - margin/100).
func marginPrice(cost, marginPercent decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Sub(marginPercent.Div(hundred))
	if !divisor.IsPositive() {
		return cost
	}
	return cost.Div(divisor).Round(2)
}

func clampPrice(target decimal.Decimal, rule models.RepricingRule, product models.InventoryItem, cost decimal.Decimal) (decimal.Decimal, string) {
	minPrice := cost.Mul(defaultMinMultiplier).Round(2)
	if rule.MinPrice != nil {
		minPrice = *rule.MinPrice
	}
	maxPrice := product.BasePrice.Mul(defaultMaxMultiplier).Round(2)
	if rule.MaxPrice != nil {
		maxPrice = *rule.MaxPrice
	}

	if target.LessThan(minPrice) {
		return minPrice, fmt.Sprintf("clamped up to minimum price %s", minPrice.StringFixed(2))
	}
	if maxPrice.IsPositive() && target.GreaterThan(maxPrice) {
		return maxPrice, fmt.Sprintf("clamped down to maximum price %s", maxPrice.StringFixed(2))
	}
	return target, ""
}
