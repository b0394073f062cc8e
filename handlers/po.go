package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

var POStatusOptions = []string{"draft", "sent", "received"}

func poResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":            rec.Id,
		"project":       rec.GetString("project"),
		"po_number":     rec.GetString("po_number"),
		"supplier_name": rec.GetString("supplier_name"),
		"status":        rec.GetString("status"),
		"total_value":   rec.GetFloat("total_value"),
	}
}

func poLineResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":             rec.Id,
		"purchase_order": rec.GetString("purchase_order"),
		"sort_order":     rec.GetInt("sort_order"),
		"description":    rec.GetString("description"),
		"quantity":       rec.GetInt("quantity"),
		"unit_cost":      rec.GetFloat("unit_cost"),
		"line_total":     rec.GetFloat("line_total"),
	}
}

// getNextPOLineSortOrder returns the next sort_order for a PO's lines.
func getNextPOLineSortOrder(app *pocketbase.PocketBase, poID string) (int, error) {
	existing, err := app.FindRecordsByFilter(
		"po_lines",
		"purchase_order = {:poId}",
		"-sort_order",
		1,
		0,
		map[string]any{"poId": poID},
	)
	if err != nil {
		return 0, err
	}
	if len(existing) == 0 {
		return 1, nil
	}
	return existing[0].GetInt("sort_order") + 1, nil
}

// HandlePOList handles GET /projects/{projectId}/po.
func HandlePOList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		records, err := app.FindRecordsByFilter(
			"purchase_orders",
			"project = {:projectId}",
			"-created",
			0,
			0,
			map[string]any{"projectId": projectID},
		)
		if err != nil {
			log.Printf("po: HandlePOList: could not load purchase orders: %v", err)
			return serverError(e)
		}

		pos := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			pos = append(pos, poResponse(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{"purchase_orders": pos})
	}
}

// HandlePOCreate handles POST /projects/{projectId}/po.
func HandlePOCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		supplier := strings.TrimSpace(castString(body["supplier_name"]))
		if supplier == "" {
			return validationMissing(e, "supplier_name")
		}

		poNumber, err := services.GeneratePONumber(app, projectID, time.Now())
		if err != nil {
			log.Printf("po: HandlePOCreate: could not generate PO number: %v", err)
			return serverError(e)
		}

		col, err := app.FindCollectionByNameOrId("purchase_orders")
		if err != nil {
			log.Printf("po: HandlePOCreate: could not find purchase_orders collection: %v", err)
			return serverError(e)
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("po_number", poNumber)
		record.Set("supplier_name", supplier)
		record.Set("status", "draft")
		record.Set("total_value", 0)

		if err := app.Save(record); err != nil {
			log.Printf("po: HandlePOCreate: could not save purchase order: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, poResponse(record))
	}
}

// HandlePOView handles GET /projects/{projectId}/po/{id} with its lines.
func HandlePOView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		record, err := app.FindRecordById("purchase_orders", e.Request.PathValue("id"))
		if err != nil || record.GetString("project") != projectID {
			return notFound(e, "purchase order")
		}

		lineRecords, err := app.FindRecordsByFilter(
			"po_lines",
			"purchase_order = {:poId}",
			"sort_order",
			0,
			0,
			map[string]any{"poId": record.Id},
		)
		if err != nil {
			log.Printf("po: HandlePOView: could not load lines: %v", err)
			return serverError(e)
		}

		lines := make([]map[string]any, 0, len(lineRecords))
		for _, line := range lineRecords {
			lines = append(lines, poLineResponse(line))
		}

		resp := poResponse(record)
		resp["lines"] = lines
		return e.JSON(http.StatusOK, resp)
	}
}

// HandlePOUpdate handles POST /projects/{projectId}/po/{id}/save.
func HandlePOUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		record, err := app.FindRecordById("purchase_orders", e.Request.PathValue("id"))
		if err != nil || record.GetString("project") != projectID {
			return notFound(e, "purchase order")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		if v, ok := body["supplier_name"]; ok {
			supplier := strings.TrimSpace(castString(v))
			if supplier == "" {
				return validationMissing(e, "supplier_name")
			}
			record.Set("supplier_name", supplier)
		}
		if v, ok := body["status"]; ok {
			status := strings.TrimSpace(castString(v))
			for _, s := range POStatusOptions {
				if status == s {
					record.Set("status", status)
					break
				}
			}
		}

		if err := app.Save(record); err != nil {
			log.Printf("po: HandlePOUpdate: could not save purchase order: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, poResponse(record))
	}
}

// HandlePODelete handles DELETE /projects/{projectId}/po/{id}. Sent and
// received orders cannot be deleted.
func HandlePODelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		record, err := app.FindRecordById("purchase_orders", e.Request.PathValue("id"))
		if err != nil || record.GetString("project") != projectID {
			return notFound(e, "purchase order")
		}

		if record.GetString("status") != "draft" {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "cannot delete a sent purchase order")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("po: HandlePODelete: could not delete purchase order: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, map[string]any{"deleted": record.Id})
	}
}

// HandlePOAddLine handles POST /projects/{projectId}/po/{id}/lines.
func HandlePOAddLine(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		po, err := app.FindRecordById("purchase_orders", e.Request.PathValue("id"))
		if err != nil || po.GetString("project") != projectID {
			return notFound(e, "purchase order")
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

		col, err := app.FindCollectionByNameOrId("po_lines")
		if err != nil {
			log.Printf("po: HandlePOAddLine: could not find po_lines collection: %v", err)
			return serverError(e)
		}

		sortOrder, err := getNextPOLineSortOrder(app, po.Id)
		if err != nil {
			log.Printf("po: HandlePOAddLine: could not determine sort order: %v", err)
			return serverError(e)
		}

		record := core.NewRecord(col)
		record.Set("purchase_order", po.Id)
		record.Set("sort_order", sortOrder)
		record.Set("description", description)
		record.Set("quantity", quantity)
		record.Set("unit_cost", unitCost)
		record.Set("line_total", services.POLineTotal(unitCost, quantity))

		if err := app.Save(record); err != nil {
			log.Printf("po: HandlePOAddLine: could not save line: %v", err)
			return serverError(e)
		}

		if err := services.RecalculatePOTotal(app, po.Id); err != nil {
			log.Printf("po: HandlePOAddLine: recalculate total: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, poLineResponse(record))
	}
}

// HandlePODeleteLine handles DELETE /projects/{projectId}/po/{id}/lines/{lineId}.
func HandlePODeleteLine(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		poID := e.Request.PathValue("id")
		record, err := app.FindRecordById("po_lines", e.Request.PathValue("lineId"))
		if err != nil || record.GetString("purchase_order") != poID {
			return notFound(e, "purchase order line")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("po: HandlePODeleteLine: could not delete line: %v", err)
			return serverError(e)
		}

		if err := services.RecalculatePOTotal(app, poID); err != nil {
			log.Printf("po: HandlePODeleteLine: recalculate total: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, map[string]any{"deleted": record.Id})
	}
}
