package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// POLineTotal returns the value of one purchase order line.
func POLineTotal(unitCost float64, quantity int) float64 {
	if quantity <= 0 {
		quantity = 1
	}
	return unitCost * float64(quantity)
}

// RecalculatePOTotal sums the line totals for a purchase order and persists
// the aggregate on the PO record. Runs synchronously after every line
// mutation, same as the quote roll-up.
func RecalculatePOTotal(app *pocketbase.PocketBase, poID string) error {
	po, err := app.FindRecordById("purchase_orders", poID)
	if err != nil {
		return fmt.Errorf("purchase order not found: %w", err)
	}

	lines, err := app.FindRecordsByFilter(
		"po_lines",
		"purchase_order = {:poId}",
		"sort_order",
		0,
		0,
		map[string]any{"poId": poID},
	)
	if err != nil {
		return fmt.Errorf("load po lines: %w", err)
	}

	var total float64
	for _, line := range lines {
		total += line.GetFloat("line_total")
	}

	po.Set("total_value", total)
	if err := app.Save(po); err != nil {
		return fmt.Errorf("save po total: %w", err)
	}
	return nil
}
