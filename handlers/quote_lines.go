package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

// getNextSortOrder queries the existing lines for a quote and returns the
// next sort_order value.
func getNextSortOrder(app *pocketbase.PocketBase, quoteID string) (int, error) {
	existing, err := app.FindRecordsByFilter(
		"quote_lines",
		"quote = {:quoteId}",
		"-sort_order",
		1,
		0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil {
		return 0, err
	}
	if len(existing) == 0 {
		return 1, nil
	}
	return existing[0].GetInt("sort_order") + 1, nil
}

// lineResponse is the JSON shape a quote line is returned in. The computed
// fields always come straight from the persisted record so they can never
// drift from what a subsequent read would see.
func lineResponse(rec *core.Record, deviation *services.CostDeviation) map[string]any {
	resp := map[string]any{
		"id":              rec.Id,
		"quote":           rec.GetString("quote"),
		"sort_order":      rec.GetInt("sort_order"),
		"description":     rec.GetString("description"),
		"quantity":        rec.GetInt("quantity"),
		"unit_cost":       rec.GetFloat("unit_cost"),
		"margin_percent":  rec.GetFloat("margin_percent"),
		"cost_total":      rec.GetFloat("cost_total"),
		"sell_price":      rec.GetFloat("sell_price"),
		"is_optional":     rec.GetBool("is_optional"),
		"margin_override": rec.GetBool("margin_override"),
	}
	if deviation != nil {
		resp["cost_deviation"] = deviation
	}
	return resp
}

// checkCatalogueDeviation looks up an optional catalogue item and returns the
// advisory cost deviation against its guide price. Never blocks the write.
func checkCatalogueDeviation(app *pocketbase.PocketBase, catalogueItemID string, unitCost float64) *services.CostDeviation {
	if catalogueItemID == "" {
		return nil
	}
	item, err := app.FindRecordById("catalogue_items", catalogueItemID)
	if err != nil {
		log.Printf("quote_lines: catalogue item %s not found, skipping deviation check", catalogueItemID)
		return nil
	}
	dev := services.CheckCostDeviation(unitCost, item.GetFloat("unit_cost"))
	return &dev
}

// HandleQuoteLineCreate handles POST /quotes/{id}/lines.
// Numeric inputs may arrive as strings and are coerced rather than rejected:
// unparsable unit cost becomes 0 and quantity becomes 1.
func HandleQuoteLineCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("quotes", quoteID); err != nil {
			return notFound(e, "quote")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		description := strings.TrimSpace(castString(body["description"]))
		if description == "" {
			return validationMissing(e, "description")
		}

		quantity := services.ParseQuantity(body["quantity"])
		unitCost := services.ParseNumberOr(body["unit_cost"], 0)
		marginPercent := services.ParseNumberOr(body["margin_percent"], 0)
		isOptional := castBool(body["is_optional"])
		marginOverride := castBool(body["margin_override"])

		if check := services.CheckMarginFloor(marginPercent); check.BelowFloor && !marginOverride {
			return apiError(e, http.StatusUnprocessableEntity, ErrKindMarginBelowFloor,
				services.ErrMarginBelowFloor{MarginPercent: marginPercent}.Error())
		}

		costTotal := services.CostTotal(unitCost, quantity)
		sellPrice := services.SellPrice(costTotal, marginPercent)

		col, err := app.FindCollectionByNameOrId("quote_lines")
		if err != nil {
			log.Printf("quote_lines: HandleQuoteLineCreate: could not find quote_lines collection: %v", err)
			return serverError(e)
		}

		sortOrder, err := getNextSortOrder(app, quoteID)
		if err != nil {
			log.Printf("quote_lines: HandleQuoteLineCreate: could not determine sort order: %v", err)
			return serverError(e)
		}

		record := core.NewRecord(col)
		record.Set("quote", quoteID)
		record.Set("sort_order", sortOrder)
		record.Set("description", description)
		record.Set("quantity", quantity)
		record.Set("unit_cost", unitCost)
		record.Set("margin_percent", marginPercent)
		record.Set("cost_total", costTotal)
		record.Set("sell_price", sellPrice)
		record.Set("is_optional", isOptional)
		record.Set("margin_override", marginOverride)

		if err := app.Save(record); err != nil {
			log.Printf("quote_lines: HandleQuoteLineCreate: could not save line: %v", err)
			return serverError(e)
		}

		// Aggregates must be current before we respond.
		if err := services.RecalculateQuoteTotals(app, quoteID); err != nil {
			log.Printf("quote_lines: HandleQuoteLineCreate: recalculate totals: %v", err)
			return serverError(e)
		}

		deviation := checkCatalogueDeviation(app, castString(body["catalogue_item"]), unitCost)
		return e.JSON(http.StatusOK, lineResponse(record, deviation))
	}
}

// HandleQuoteLineUpdate handles PATCH /quotes/{id}/lines/{lineId}.
// Partial updates: only the fields present in the body change, and any change
// to cost, quantity or margin forces recomputation of the derived fields.
func HandleQuoteLineUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		lineID := e.Request.PathValue("lineId")

		record, err := app.FindRecordById("quote_lines", lineID)
		if err != nil || record.GetString("quote") != quoteID {
			return notFound(e, "quote line")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		if v, ok := body["description"]; ok {
			description := strings.TrimSpace(castString(v))
			if description == "" {
				return validationMissing(e, "description")
			}
			record.Set("description", description)
		}
		if v, ok := body["quantity"]; ok {
			record.Set("quantity", services.ParseQuantity(v))
		}
		if v, ok := body["unit_cost"]; ok {
			record.Set("unit_cost", services.ParseNumberOr(v, 0))
		}
		if v, ok := body["margin_percent"]; ok {
			record.Set("margin_percent", services.ParseNumberOr(v, 0))
		}
		if v, ok := body["is_optional"]; ok {
			record.Set("is_optional", castBool(v))
		}
		if v, ok := body["margin_override"]; ok {
			record.Set("margin_override", castBool(v))
		}

		marginPercent := record.GetFloat("margin_percent")
		if check := services.CheckMarginFloor(marginPercent); check.BelowFloor && !record.GetBool("margin_override") {
			return apiError(e, http.StatusUnprocessableEntity, ErrKindMarginBelowFloor,
				services.ErrMarginBelowFloor{MarginPercent: marginPercent}.Error())
		}

		costTotal := services.CostTotal(record.GetFloat("unit_cost"), record.GetInt("quantity"))
		record.Set("cost_total", costTotal)
		record.Set("sell_price", services.SellPrice(costTotal, marginPercent))

		if err := app.Save(record); err != nil {
			log.Printf("quote_lines: HandleQuoteLineUpdate: could not save line: %v", err)
			return serverError(e)
		}

		if err := services.RecalculateQuoteTotals(app, quoteID); err != nil {
			log.Printf("quote_lines: HandleQuoteLineUpdate: recalculate totals: %v", err)
			return serverError(e)
		}

		deviation := checkCatalogueDeviation(app, castString(body["catalogue_item"]), record.GetFloat("unit_cost"))
		return e.JSON(http.StatusOK, lineResponse(record, deviation))
	}
}

// HandleQuoteLineDelete handles DELETE /quotes/{id}/lines/{lineId}.
func HandleQuoteLineDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		lineID := e.Request.PathValue("lineId")

		record, err := app.FindRecordById("quote_lines", lineID)
		if err != nil || record.GetString("quote") != quoteID {
			return notFound(e, "quote line")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("quote_lines: HandleQuoteLineDelete: could not delete line: %v", err)
			return serverError(e)
		}

		if err := services.RecalculateQuoteTotals(app, quoteID); err != nil {
			log.Printf("quote_lines: HandleQuoteLineDelete: recalculate totals: %v", err)
			return serverError(e)
		}

		return e.JSON(http.StatusOK, map[string]any{"deleted": lineID})
	}
}

// HandleMarginCheck handles GET /pricing/margin-check?margin=N — the
// pre-flight check the line form uses to decide whether to show the override
// confirmation.
func HandleMarginCheck(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		margin := services.ParseNumberOr(e.Request.URL.Query().Get("margin"), 0)
		return e.JSON(http.StatusOK, services.CheckMarginFloor(margin))
	}
}

// castString returns v as a string, or "".
func castString(v any) string {
	s, _ := v.(string)
	return s
}

// castBool accepts JSON booleans plus the "true"/"on" strings form posts send.
func castBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "on" || t == "1"
	default:
		return false
	}
}
