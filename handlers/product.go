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

var ProductStatusOptions = []string{"pending", "in_progress", "complete"}

const productDateLayout = "2006-01-02"

func productResponse(rec *core.Record) map[string]any {
	resp := map[string]any{
		"id":             rec.Id,
		"project":        rec.GetString("project"),
		"name":           rec.GetString("name"),
		"drawing_number": rec.GetString("drawing_number"),
		"status":         rec.GetString("status"),
	}
	for _, dept := range services.Departments {
		effort := map[string]any{
			"hours": rec.GetFloat(dept + "_hours"),
		}
		for _, suffix := range []string{"_start", "_end", "_completed"} {
			if d := rec.GetDateTime(dept + suffix).Time(); !d.IsZero() {
				effort[strings.TrimPrefix(suffix, "_")] = d.Format(productDateLayout)
			}
		}
		if d := rec.GetDateTime(dept + "_end").Time(); !d.IsZero() {
			effort["rag_status"] = services.CalcRAGStatus(time.Now(), d)
		}
		resp[dept] = effort
	}
	return resp
}

// setEffortFields applies the per-department scheduling fields present in the
// body. Hours are coerced; dates must be YYYY-MM-DD and a blank string clears
// the field.
func setEffortFields(record *core.Record, body map[string]any) {
	for _, dept := range services.Departments {
		if v, ok := body[dept+"_hours"]; ok {
			record.Set(dept+"_hours", services.ParseNumberOr(v, 0))
		}
		for _, suffix := range []string{"_start", "_end", "_completed"} {
			key := dept + suffix
			v, ok := body[key]
			if !ok {
				continue
			}
			raw := strings.TrimSpace(castString(v))
			if raw == "" {
				record.Set(key, nil)
				continue
			}
			if d, err := time.Parse(productDateLayout, raw); err == nil {
				record.Set(key, d)
			}
		}
	}
}

// HandleProductList handles GET /projects/{projectId}/products.
func HandleProductList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		records, err := app.FindRecordsByFilter(
			"products",
			"project = {:projectId}",
			"name",
			0,
			0,
			map[string]any{"projectId": projectID},
		)
		if err != nil {
			log.Printf("product: HandleProductList: could not load products: %v", err)
			return serverError(e)
		}

		products := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			products = append(products, productResponse(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{"products": products})
	}
}

// HandleProductCreate handles POST /projects/{projectId}/products.
func HandleProductCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		name := strings.TrimSpace(castString(body["name"]))
		if name == "" {
			return validationMissing(e, "name")
		}

		status := strings.TrimSpace(castString(body["status"]))
		valid := false
		for _, s := range ProductStatusOptions {
			if status == s {
				valid = true
				break
			}
		}
		if !valid {
			status = "pending"
		}

		col, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			log.Printf("product: HandleProductCreate: could not find products collection: %v", err)
			return serverError(e)
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("name", name)
		record.Set("drawing_number", strings.TrimSpace(castString(body["drawing_number"])))
		record.Set("status", status)
		setEffortFields(record, body)

		if err := app.Save(record); err != nil {
			log.Printf("product: HandleProductCreate: could not save product: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, productResponse(record))
	}
}

// HandleProductUpdate handles PATCH /projects/{projectId}/products/{id}.
func HandleProductUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil || record.GetString("project") != projectID {
			return notFound(e, "product")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		if v, ok := body["name"]; ok {
			name := strings.TrimSpace(castString(v))
			if name == "" {
				return validationMissing(e, "name")
			}
			record.Set("name", name)
		}
		if v, ok := body["drawing_number"]; ok {
			record.Set("drawing_number", strings.TrimSpace(castString(v)))
		}
		if v, ok := body["status"]; ok {
			status := strings.TrimSpace(castString(v))
			for _, s := range ProductStatusOptions {
				if status == s {
					record.Set("status", status)
					break
				}
			}
		}
		setEffortFields(record, body)

		if err := app.Save(record); err != nil {
			log.Printf("product: HandleProductUpdate: could not save product: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, productResponse(record))
	}
}

// HandleProductDelete handles DELETE /projects/{projectId}/products/{id}.
func HandleProductDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil || record.GetString("project") != projectID {
			return notFound(e, "product")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("product: HandleProductDelete: could not delete product: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, map[string]any{"deleted": record.Id})
	}
}
