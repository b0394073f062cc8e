package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

const defaultHeatmapWeeks = 8

// HandleCapacityHeatmap handles GET /capacity/heatmap?weeks=N. The window
// count is whatever the caller asks for; the UI offers 8/12/16/24 but the
// aggregation itself does not care.
func HandleCapacityHeatmap(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		weeks := services.ParseIntOr(e.Request.URL.Query().Get("weeks"), defaultHeatmapWeeks)
		if weeks <= 0 {
			weeks = defaultHeatmapWeeks
		}

		heatmap, err := services.BuildHeatmap(app, time.Now(), weeks)
		if err != nil {
			log.Printf("capacity: HandleCapacityHeatmap: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, heatmap)
	}
}

// HandleCapacitySummary handles GET /capacity/summary — the next-4-weeks
// utilisation per department for the dashboard status cards.
func HandleCapacitySummary(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		heatmap, err := services.BuildHeatmap(app, time.Now(), 4)
		if err != nil {
			log.Printf("capacity: HandleCapacitySummary: %v", err)
			return serverError(e)
		}

		cards := make([]map[string]any, 0, len(heatmap.Departments))
		for _, dept := range heatmap.Departments {
			cards = append(cards, map[string]any{
				"department":        dept.Department,
				"capacity_per_week": dept.CapacityPerWeek,
				"utilisation":       dept.Next4Utilisation,
				"overloaded":        dept.Next4Utilisation > 100,
			})
		}
		return e.JSON(http.StatusOK, map[string]any{
			"departments": cards,
			"unestimated": heatmap.Unestimated,
		})
	}
}
