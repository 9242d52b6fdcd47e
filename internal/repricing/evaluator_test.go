package repricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/enums"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

func dec(value string) decimal.Decimal { return decimal.RequireFromString(value) }

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func evalProduct(base, cost string) models.InventoryItem {
	return models.InventoryItem{
		SKU:       "SKU-1",
		BasePrice: dec(base),
		CostPrice: dec(cost),
	}
}

func notOwnedSnapshot(ownPrice, buyBoxPrice string) types.BuyBoxSnapshot {
	buyBox := dec(buyBoxPrice)
	return types.BuyBoxSnapshot{
		Status:      enums.BuyBoxStatusNotOwned,
		OwnPrice:    dec(ownPrice),
		BuyBoxPrice: &buyBox,
	}
}

func TestMatchBuyBox(t *testing.T) {
	rule := models.RepricingRule{
		Strategy: enums.RepricingStrategyMatchBuyBox,
		MinPrice: decPtr("15.00"),
		MaxPrice: decPtr("30.00"),
	}
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "18.00"), nil)

	if !result.ShouldUpdate {
		t.Fatalf("expected update, got reason %q", result.Reason)
	}
	if !result.NewPrice.Equal(dec("18.00")) {
		t.Fatalf("expected 18.00, got %s", result.NewPrice)
	}
}

func TestMatchBuyBoxAlreadyMatchingIsNoOp(t *testing.T) {
	rule := models.RepricingRule{Strategy: enums.RepricingStrategyMatchBuyBox}
	result := EvaluateRule(rule, evalProduct("18.00", "10.00"), notOwnedSnapshot("18.00", "18.00"), nil)

	if result.ShouldUpdate {
		t.Fatalf("expected no-op, got price %s", result.NewPrice)
	}
	if result.Reason == "" {
		t.Fatal("no-op must carry a reason")
	}
}

func TestBeatBuyBoxWithFixedAmount(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:              enums.RepricingStrategyBeatBuyBox,
		PriceDifferenceAmount: decPtr("0.50"),
		MinPrice:              decPtr("10.00"),
	}
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "18.00"), nil)

	if !result.ShouldUpdate {
		t.Fatalf("expected update, got reason %q", result.Reason)
	}
	if !result.NewPrice.Equal(dec("17.50")) {
		t.Fatalf("expected 17.50, got %s", result.NewPrice)
	}
}

func TestBeatBuyBoxAmountTakesPrecedenceOverPercent(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:               enums.RepricingStrategyBeatBuyBox,
		PriceDifferenceAmount:  decPtr("0.50"),
		PriceDifferencePercent: decPtr("10.00"),
		MinPrice:               decPtr("10.00"),
	}
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "18.00"), nil)

	if !result.NewPrice.Equal(dec("17.50")) {
		t.Fatalf("amount must win over percent, got %s", result.NewPrice)
	}
}

func TestBeatBuyBoxDefaultsToPennyUndercut(t *testing.T) {
	rule := models.RepricingRule{
		Strategy: enums.RepricingStrategyBeatBuyBox,
		MinPrice: decPtr("10.00"),
	}
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "18.00"), nil)

	if !result.NewPrice.Equal(dec("17.99")) {
		t.Fatalf("expected default 0.01 undercut, got %s", result.NewPrice)
	}
}

func TestBeatBuyBoxSkippedWhenOwnedAndRestricted(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:               enums.RepricingStrategyBeatBuyBox,
		OnlyUndercutIfNotOwned: true,
	}
	snapshot := notOwnedSnapshot("18.00", "18.00")
	snapshot.Status = enums.BuyBoxStatusOwned
	result := EvaluateRule(rule, evalProduct("18.00", "10.00"), snapshot, nil)

	if result.ShouldUpdate {
		t.Fatal("owned buy box with undercut restriction must skip")
	}
}

func TestFixedPercentageComputesMarginPrice(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:     enums.RepricingStrategyFixedPercentage,
		TargetMargin: decPtr("20.00"),
		MinPrice:     decPtr("1.00"),
		MaxPrice:     decPtr("100.00"),
	}
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "18.00"), nil)

	if !result.ShouldUpdate {
		t.Fatalf("expected update, got reason %q", result.Reason)
	}
	// 10 / (1 - 0.20) = 12.50
	if !result.NewPrice.Equal(dec("12.50")) {
		t.Fatalf("expected 12.50, got %s", result.NewPrice)
	}
}

func TestMaintainMarginRaisesToFloor(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:     enums.RepricingStrategyMaintainMargin,
		TargetMargin: decPtr("20.00"),
		MinPrice:     decPtr("1.00"),
		MaxPrice:     decPtr("100.00"),
	}
	result := EvaluateRule(rule, evalProduct("11.00", "10.00"), notOwnedSnapshot("11.00", "18.00"), nil)

	if !result.ShouldUpdate {
		t.Fatalf("expected update, got reason %q", result.Reason)
	}
	if !result.NewPrice.Equal(dec("12.50")) {
		t.Fatalf("price below margin floor must raise to 12.50, got %s", result.NewPrice)
	}
}

func TestMaintainMarginHoldsFloorWhenBuyBoxUnprofitable(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:     enums.RepricingStrategyMaintainMargin,
		TargetMargin: decPtr("20.00"),
		MinPrice:     decPtr("1.00"),
		MaxPrice:     decPtr("100.00"),
	}
	result := EvaluateRule(rule, evalProduct("14.00", "10.00"), notOwnedSnapshot("14.00", "11.00"), nil)

	if !result.ShouldUpdate {
		t.Fatalf("expected update, got reason %q", result.Reason)
	}
	if !result.NewPrice.Equal(dec("12.50")) {
		t.Fatalf("unprofitable buy box must hold floor 12.50, got %s", result.NewPrice)
	}
}

func TestMaintainMarginChasesBuyBoxAboveFloor(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:     enums.RepricingStrategyMaintainMargin,
		TargetMargin: decPtr("20.00"),
		MinPrice:     decPtr("1.00"),
		MaxPrice:     decPtr("100.00"),
	}
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "18.00"), nil)

	if !result.NewPrice.Equal(dec("17.99")) {
		t.Fatalf("expected 17.99, got %s", result.NewPrice)
	}
}

func TestMaintainMarginRaisesWhenOwned(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:     enums.RepricingStrategyMaintainMargin,
		TargetMargin: decPtr("20.00"),
		MinPrice:     decPtr("1.00"),
		MaxPrice:     decPtr("100.00"),
	}
	snapshot := notOwnedSnapshot("14.00", "16.00")
	snapshot.Status = enums.BuyBoxStatusOwned
	result := EvaluateRule(rule, evalProduct("14.00", "10.00"), snapshot, nil)

	// min(14.00 * 1.05, 16.00) = 14.70
	if !result.NewPrice.Equal(dec("14.70")) {
		t.Fatalf("expected 14.70, got %s", result.NewPrice)
	}
}

type stubPricer struct {
	price  decimal.Decimal
	reason string
}

func (s stubPricer) CalculateSuggestedPrice(product models.InventoryItem, snapshot types.BuyBoxSnapshot) (decimal.Decimal, string) {
	return s.price, s.reason
}

func TestDynamicPricingPrefersSnapshotSuggestion(t *testing.T) {
	rule := models.RepricingRule{
		Strategy: enums.RepricingStrategyDynamicPricing,
		MinPrice: decPtr("1.00"),
		MaxPrice: decPtr("100.00"),
	}
	snapshot := notOwnedSnapshot("20.00", "18.00")
	snapshot.SuggestedPrice = decPtr("17.25")
	snapshot.SuggestedPriceReason = "undercut while demand holds"

	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), snapshot, stubPricer{price: dec("15.00"), reason: "fallback"})
	if !result.NewPrice.Equal(dec("17.25")) {
		t.Fatalf("expected snapshot suggestion 17.25, got %s", result.NewPrice)
	}
	if result.Reason != "undercut while demand holds" {
		t.Fatalf("expected snapshot reason, got %q", result.Reason)
	}
}

func TestDynamicPricingFallsBackToPricer(t *testing.T) {
	rule := models.RepricingRule{
		Strategy: enums.RepricingStrategyDynamicPricing,
		MinPrice: decPtr("1.00"),
		MaxPrice: decPtr("100.00"),
	}
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "18.00"), stubPricer{price: dec("16.40"), reason: "collector heuristic"})

	if !result.NewPrice.Equal(dec("16.40")) {
		t.Fatalf("expected fallback 16.40, got %s", result.NewPrice)
	}
	if result.Reason != "collector heuristic" {
		t.Fatalf("expected pricer reason, got %q", result.Reason)
	}
}

func TestNoOpWithinHalfPercent(t *testing.T) {
	rule := models.RepricingRule{
		Strategy: enums.RepricingStrategyMatchBuyBox,
		MinPrice: decPtr("1.00"),
		MaxPrice: decPtr("1000.00"),
	}
	// Gap of 0.40 on a 100.00 price is 0.4%, under the 0.5% threshold.
	result := EvaluateRule(rule, evalProduct("100.00", "50.00"), notOwnedSnapshot("100.00", "99.60"), nil)

	if result.ShouldUpdate {
		t.Fatalf("expected no-op within 0.5%%, got price %s", result.NewPrice)
	}
}

func TestClampToRuleBounds(t *testing.T) {
	rule := models.RepricingRule{
		Strategy: enums.RepricingStrategyMatchBuyBox,
		MinPrice: decPtr("19.00"),
		MaxPrice: decPtr("30.00"),
	}
	result := EvaluateRule(rule, evalProduct("25.00", "10.00"), notOwnedSnapshot("25.00", "15.00"), nil)

	if !result.NewPrice.Equal(dec("19.00")) {
		t.Fatalf("expected clamp to 19.00, got %s", result.NewPrice)
	}
}

func TestDefaultClampBoundsDeriveFromCostAndBase(t *testing.T) {
	rule := models.RepricingRule{Strategy: enums.RepricingStrategyMatchBuyBox}
	// Buy box at 9.00 is below cost*1.1 = 11.00.
	result := EvaluateRule(rule, evalProduct("20.00", "10.00"), notOwnedSnapshot("20.00", "9.00"), nil)

	if !result.NewPrice.Equal(dec("11.00")) {
		t.Fatalf("expected default min clamp 11.00, got %s", result.NewPrice)
	}
}

func TestAssumedCostWhenMissing(t *testing.T) {
	rule := models.RepricingRule{
		Strategy:     enums.RepricingStrategyFixedPercentage,
		TargetMargin: decPtr("30.00"),
		MinPrice:     decPtr("1.00"),
		MaxPrice:     decPtr("100.00"),
	}
	// Cost falls back to 70% of the current price: 14.00.
	result := EvaluateRule(rule, evalProduct("20.00", "0"), notOwnedSnapshot("20.00", "18.00"), nil)

	// 14.00 / 0.70 = 20.00 -> within no-op threshold of current price.
	if result.ShouldUpdate {
		t.Fatalf("expected no-op, got %s", result.NewPrice)
	}
}
