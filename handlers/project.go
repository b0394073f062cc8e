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

var ProjectStatusOptions = []string{"active", "completed", "on_hold"}

func projectResponse(rec *core.Record) map[string]any {
	resp := map[string]any{
		"id":               rec.Id,
		"name":             rec.GetString("name"),
		"client_name":      rec.GetString("client_name"),
		"reference_number": rec.GetString("reference_number"),
		"status":           rec.GetString("status"),
	}
	target := rec.GetDateTime("target_date").Time()
	if !target.IsZero() {
		resp["target_date"] = target.Format("2006-01-02")
	}
	resp["rag_status"] = services.CalcRAGStatus(time.Now(), target)
	return resp
}

// HandleProjectList handles GET /projects.
func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("projects", "id != ''", "-created", 0, 0)
		if err != nil {
			log.Printf("project: HandleProjectList: could not load projects: %v", err)
			return serverError(e)
		}

		projects := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			projects = append(projects, projectResponse(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{"projects": projects})
	}
}

// HandleProjectCreate handles POST /projects.
func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		name := strings.TrimSpace(castString(body["name"]))
		if name == "" {
			return validationMissing(e, "name")
		}

		existing, _ := app.FindRecordsByFilter(
			"projects",
			"name = {:name}",
			"", 1, 0,
			map[string]any{"name": name},
		)
		if len(existing) > 0 {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "a project with this name already exists")
		}

		status := strings.TrimSpace(castString(body["status"]))
		valid := false
		for _, s := range ProjectStatusOptions {
			if status == s {
				valid = true
				break
			}
		}
		if !valid {
			status = "active"
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project: HandleProjectCreate: could not find projects collection: %v", err)
			return serverError(e)
		}

		record := core.NewRecord(col)
		record.Set("name", name)
		record.Set("client_name", strings.TrimSpace(castString(body["client_name"])))
		record.Set("reference_number", strings.TrimSpace(castString(body["reference_number"])))
		record.Set("status", status)
		if v := strings.TrimSpace(castString(body["target_date"])); v != "" {
			if d, err := time.Parse("2006-01-02", v); err == nil {
				record.Set("target_date", d)
			}
		}

		if err := app.Save(record); err != nil {
			log.Printf("project: HandleProjectCreate: could not save project: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, projectResponse(record))
	}
}

// HandleProjectView handles GET /projects/{id}.
func HandleProjectView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "project")
		}
		return e.JSON(http.StatusOK, projectResponse(record))
	}
}

// HandleProjectUpdate handles POST /projects/{id}/save.
func HandleProjectUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "project")
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
		if v, ok := body["client_name"]; ok {
			record.Set("client_name", strings.TrimSpace(castString(v)))
		}
		if v, ok := body["reference_number"]; ok {
			record.Set("reference_number", strings.TrimSpace(castString(v)))
		}
		if v, ok := body["status"]; ok {
			status := strings.TrimSpace(castString(v))
			for _, s := range ProjectStatusOptions {
				if status == s {
					record.Set("status", status)
					break
				}
			}
		}
		if v, ok := body["target_date"]; ok {
			if d, err := time.Parse("2006-01-02", strings.TrimSpace(castString(v))); err == nil {
				record.Set("target_date", d)
			}
		}

		if err := app.Save(record); err != nil {
			log.Printf("project: HandleProjectUpdate: could not save project: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, projectResponse(record))
	}
}

// HandleProjectDelete handles DELETE /projects/{id}. Child records cascade.
func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "project")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("project: HandleProjectDelete: could not delete project: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, map[string]any{"deleted": record.Id})
	}
}

// HandleProjectStatus handles GET /projects/{id}/status — the RAG card.
func HandleProjectStatus(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "project")
		}
		target := record.GetDateTime("target_date").Time()
		return e.JSON(http.StatusOK, map[string]any{
			"id":         record.Id,
			"rag_status": services.CalcRAGStatus(time.Now(), target),
		})
	}
}
