package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

func capacityResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":             rec.Id,
		"department":     rec.GetString("department"),
		"hours_per_week": rec.GetFloat("hours_per_week"),
		"headcount":      rec.GetInt("headcount"),
	}
}

// HandleDepartmentCapacityList handles GET /capacity/departments.
func HandleDepartmentCapacityList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindAllRecords("department_capacity")
		if err != nil {
			log.Printf("department: HandleDepartmentCapacityList: %v", err)
			return serverError(e)
		}
		capacities := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			capacities = append(capacities, capacityResponse(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{"capacities": capacities})
	}
}

// HandleDepartmentCapacityUpdate handles POST /capacity/departments/{id}/save.
// Headcount is informational only; hours_per_week is the figure the load
// aggregation compares against.
func HandleDepartmentCapacityUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("department_capacity", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "department capacity")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		if v, ok := body["department"]; ok {
			dept := strings.TrimSpace(castString(v))
			valid := false
			for _, d := range services.Departments {
				if dept == d {
					valid = true
					break
				}
			}
			if !valid {
				return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid department")
			}
			record.Set("department", dept)
		}
		if v, ok := body["hours_per_week"]; ok {
			record.Set("hours_per_week", services.ParseNumberOr(v, 0))
		}
		if v, ok := body["headcount"]; ok {
			record.Set("headcount", services.ParseIntOr(v, 0))
		}

		if err := app.Save(record); err != nil {
			log.Printf("department: HandleDepartmentCapacityUpdate: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, capacityResponse(record))
	}
}
