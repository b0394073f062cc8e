// Package services provides the pricing, capacity and document logic for the
// steelops application.
package services

import (
	"fmt"
	"log"
	"math"

	"github.com/pocketbase/pocketbase"
)

// MarginFloorPercent is the minimum margin a quote line may carry without an
// explicit override.
const MarginFloorPercent = 25.0

// SellRoundingUnit is the currency step sell prices are rounded to so quotes
// land on clean customer-facing numbers.
const SellRoundingUnit = 25.0

// CostDeviationThreshold is the fraction beyond which a unit cost is flagged
// against its catalogue guide price.
const CostDeviationThreshold = 0.15

// ErrMarginBelowFloor is returned when a line is saved below the margin floor
// without the override flag. Handlers map it to a 422 response.
type ErrMarginBelowFloor struct {
	MarginPercent float64
}

func (e ErrMarginBelowFloor) Error() string {
	return fmt.Sprintf("margin %.2f%% is below the %.0f%% floor", e.MarginPercent, MarginFloorPercent)
}

// CostTotal returns the line cost for a unit cost and quantity. No rounding;
// the sell price rounding happens later, never here.
func CostTotal(unitCost float64, quantity int) float64 {
	if quantity <= 0 {
		quantity = 1
	}
	return unitCost * float64(quantity)
}

// SellPrice derives the customer-facing price from a cost total and target
// margin. Margins of 100% or more, and zero cost, return the cost unchanged
// rather than dividing by zero. The raw price is rounded to the nearest
// multiple of SellRoundingUnit, half-up, so realized margin drifts slightly
// from the target. That drift is accepted policy.
func SellPrice(costTotal, marginPercent float64) float64 {
	if costTotal == 0 || marginPercent >= 100 {
		return costTotal
	}
	raw := costTotal / (1 - marginPercent/100)
	return math.Floor(raw/SellRoundingUnit+0.5) * SellRoundingUnit
}

// MarginFloorCheck reports whether a requested margin sits below the floor.
type MarginFloorCheck struct {
	BelowFloor bool    `json:"below_floor"`
	Floor      float64 `json:"floor"`
}

// CheckMarginFloor flags margins below MarginFloorPercent. The floor is
// inclusive: exactly 25 passes.
func CheckMarginFloor(marginPercent float64) MarginFloorCheck {
	return MarginFloorCheck{
		BelowFloor: marginPercent < MarginFloorPercent,
		Floor:      MarginFloorPercent,
	}
}

// CostDeviation describes how a unit cost compares to its catalogue guide
// price. Advisory only; it never blocks a write.
type CostDeviation struct {
	Deviates   bool    `json:"deviates"`
	Percentage float64 `json:"percentage"`
	Direction  string  `json:"direction"` // "above" or "below"
}

// CheckCostDeviation compares a unit cost against the catalogue guide price
// and flags deviation beyond CostDeviationThreshold in either direction.
func CheckCostDeviation(unitCost, guideUnitCost float64) CostDeviation {
	if guideUnitCost == 0 {
		return CostDeviation{}
	}
	diff := (unitCost - guideUnitCost) / guideUnitCost
	dev := CostDeviation{Percentage: math.Abs(diff) * 100}
	if diff > 0 {
		dev.Direction = "above"
	} else if diff < 0 {
		dev.Direction = "below"
	}
	dev.Deviates = math.Abs(diff) > CostDeviationThreshold
	return dev
}

// QuoteTotals holds the aggregates rolled up from a quote's lines.
type QuoteTotals struct {
	TotalCost     float64 `json:"total_cost"`
	TotalSell     float64 `json:"total_sell"`
	OverallMargin float64 `json:"overall_margin"`
}

// QuoteLineForTotals carries the per-line fields the roll-up needs.
type QuoteLineForTotals struct {
	CostTotal  float64
	SellPrice  float64
	IsOptional bool
}

// CalcQuoteTotals sums cost and sell over the non-optional lines. Optional
// lines are customer add-ons and never count toward the committed total.
func CalcQuoteTotals(lines []QuoteLineForTotals) QuoteTotals {
	var totals QuoteTotals
	for _, line := range lines {
		if line.IsOptional {
			continue
		}
		totals.TotalCost += line.CostTotal
		totals.TotalSell += line.SellPrice
	}
	if totals.TotalSell != 0 {
		totals.OverallMargin = (totals.TotalSell - totals.TotalCost) / totals.TotalSell * 100
	}
	return totals
}

// RecalculateQuoteTotals reads all lines for a quote, recomputes the
// aggregates and persists them on the quote record. It must run synchronously
// after every line create, update or delete; callers respond only after it
// returns so a reader never observes stale aggregates.
func RecalculateQuoteTotals(app *pocketbase.PocketBase, quoteID string) error {
	quote, err := app.FindRecordById("quotes", quoteID)
	if err != nil {
		return fmt.Errorf("quote not found: %w", err)
	}

	records, err := app.FindRecordsByFilter(
		"quote_lines",
		"quote = {:quoteId}",
		"sort_order",
		0,
		0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil {
		return fmt.Errorf("load quote lines: %w", err)
	}

	lines := make([]QuoteLineForTotals, 0, len(records))
	for _, rec := range records {
		lines = append(lines, QuoteLineForTotals{
			CostTotal:  rec.GetFloat("cost_total"),
			SellPrice:  rec.GetFloat("sell_price"),
			IsOptional: rec.GetBool("is_optional"),
		})
	}

	totals := CalcQuoteTotals(lines)
	quote.Set("total_cost", totals.TotalCost)
	quote.Set("total_sell", totals.TotalSell)
	quote.Set("overall_margin", totals.OverallMargin)

	if err := app.Save(quote); err != nil {
		log.Printf("pricing: RecalculateQuoteTotals: could not save quote %s: %v", quoteID, err)
		return fmt.Errorf("save quote totals: %w", err)
	}
	return nil
}
