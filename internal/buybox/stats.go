package buybox

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db/models"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/types"
)

// statsWindow bounds the trailing period used for rolling statistics,
// measured from the newest snapshot.
const statsWindow = 30 * 24 * time.Hour

// applySnapshot appends the snapshot, records win/loss transitions against
// the previous latest snapshot, and recomputes the rolling statistics.
// Snapshots are append-only and time ordered; a snapshot captured before
// the current latest one is rejected and the history is left untouched.
func applySnapshot(history *models.BuyBoxHistory, snapshot types.BuyBoxSnapshot) bool {
	if len(history.Snapshots) > 0 {
		if snapshot.CapturedAt.Before(history.LastSnapshot.CapturedAt) {
			return false
		}
		recordTransition(history, history.LastSnapshot, snapshot)
	}

	history.Snapshots = append(history.Snapshots, snapshot)
	history.LastSnapshot = snapshot
	recomputeWindowStats(history, snapshot.CapturedAt)
	return true
}

func recordTransition(history *models.BuyBoxHistory, previous, current types.BuyBoxSnapshot) {
	wasWinning := previous.BuyBoxWon()
	isWinning := current.BuyBoxWon()
	if wasWinning == isWinning {
		return
	}

	capturedAt := current.CapturedAt
	if isWinning {
		price := current.OwnPrice
		history.LastWinAt = &capturedAt
		history.LastWinPrice = &price
		return
	}

	history.LastLossAt = &capturedAt
	if current.BuyBoxPrice != nil {
		price := *current.BuyBoxPrice
		history.LastLossPrice = &price
	} else {
		price := current.OwnPrice
		history.LastLossPrice = &price
	}
}

func recomputeWindowStats(history *models.BuyBoxHistory, now time.Time) {
	windowStart := now.Add(-statsWindow)

	total := 0
	wins := 0
	gapSum := decimal.Zero
	gapCount := 0
	var lowestWinningPrice *decimal.Decimal
	var maxCompetitorBuyBox *decimal.Decimal
	var minWinningMargin *decimal.Decimal

	for i := range history.Snapshots {
		snapshot := history.Snapshots[i]
		if snapshot.CapturedAt.Before(windowStart) {
			continue
		}
		total++
		if snapshot.BuyBoxWon() {
			wins++
			price := snapshot.OwnPrice
			if lowestWinningPrice == nil || price.LessThan(*lowestWinningPrice) {
				lowestWinningPrice = &price
			}
			if margin := winningMargin(snapshot); margin != nil {
				if minWinningMargin == nil || margin.LessThan(*minWinningMargin) {
					minWinningMargin = margin
				}
			}
		} else if snapshot.BuyBoxPrice != nil {
			price := *snapshot.BuyBoxPrice
			if maxCompetitorBuyBox == nil || price.GreaterThan(*maxCompetitorBuyBox) {
				maxCompetitorBuyBox = &price
			}
		}
		if snapshot.BuyBoxPrice != nil {
			gapSum = gapSum.Add(snapshot.PriceDifference)
			gapCount++
		}
	}

	if total == 0 {
		history.WinPercentage = decimal.Zero
		history.AvgPriceGap = decimal.Zero
		history.LowestPriceToWin = nil
		return
	}

	history.WinPercentage = decimal.NewFromInt(int64(wins)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(2)

	if gapCount > 0 {
		history.AvgPriceGap = gapSum.Div(decimal.NewFromInt(int64(gapCount))).Round(2)
	} else {
		history.AvgPriceGap = decimal.Zero
	}

	// Highest price a competitor held the buy box at, minus the smallest
	// margin under the competition that still won. Without an observed
	// winning margin, hint just under that competitor price; without any
	// competitor buy box, the cheapest price we won at is the best signal.
	switch {
	case maxCompetitorBuyBox != nil && minWinningMargin != nil:
		hint := maxCompetitorBuyBox.Sub(*minWinningMargin)
		history.LowestPriceToWin = &hint
	case maxCompetitorBuyBox != nil:
		hint := maxCompetitorBuyBox.Sub(penny)
		history.LowestPriceToWin = &hint
	case lowestWinningPrice != nil:
		history.LowestPriceToWin = lowestWinningPrice
	default:
		history.LowestPriceToWin = nil
	}
}

// winningMargin is how far under the cheapest rival a winning snapshot
// priced, floored at zero. Nil when the snapshot carries no rival offers.
func winningMargin(snapshot types.BuyBoxSnapshot) *decimal.Decimal {
	var cheapestRival *decimal.Decimal
	for i := range snapshot.Competitors {
		competitor := snapshot.Competitors[i]
		if competitor.IsOwnOffer {
			continue
		}
		price := competitor.Price
		if cheapestRival == nil || price.LessThan(*cheapestRival) {
			cheapestRival = &price
		}
	}
	if cheapestRival == nil {
		return nil
	}
	margin := cheapestRival.Sub(snapshot.OwnPrice)
	if margin.IsNegative() {
		margin = decimal.Zero
	}
	return &margin
}
