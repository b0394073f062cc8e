package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pocketbase/pocketbase"
)

// Departments is the fixed set of departments a product carries effort for.
// The order is the display order of the heatmap rows.
var Departments = []string{"design", "ops", "production", "installation"}

// DepartmentEffort is one department's scheduled work on a product.
type DepartmentEffort struct {
	ProductID   string
	ProductName string
	Department  string
	Hours       float64
	Start       time.Time
	End         time.Time
	Completed   bool
}

// WeekBucket is one department/week cell of the heatmap.
type WeekBucket struct {
	WeekStart   time.Time `json:"week_start"`
	LoadHours   float64   `json:"load_hours"`
	Utilisation float64   `json:"utilisation"`
	Overloaded  bool      `json:"overloaded"`
	ProductIDs  []string  `json:"product_ids"`
}

// UnestimatedProduct is a product with scheduled dates but no hours estimate.
// It contributes nothing to the load math and is surfaced as a warning instead
// of silently vanishing.
type UnestimatedProduct struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Department  string `json:"department"`
}

// DepartmentHeatmap is one department row: capacity, week buckets and a
// rolled-up figure for the next four weeks.
type DepartmentHeatmap struct {
	Department       string       `json:"department"`
	CapacityPerWeek  float64      `json:"capacity_per_week"`
	Weeks            []WeekBucket `json:"weeks"`
	Next4Utilisation float64      `json:"next_4_utilisation"`
}

// Heatmap is the full capacity view returned to the client.
type Heatmap struct {
	WeekStarts  []time.Time          `json:"week_starts"`
	Departments []DepartmentHeatmap  `json:"departments"`
	Unestimated []UnestimatedProduct `json:"unestimated"`
}

// WeekWindows returns n consecutive Monday-aligned week starts, beginning the
// Monday of the week containing ref. Times are truncated to midnight in ref's
// location.
func WeekWindows(ref time.Time, n int) []time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	monday := day.AddDate(0, 0, -offset)

	windows := make([]time.Time, n)
	for i := range windows {
		windows[i] = monday.AddDate(0, 0, i*7)
	}
	return windows
}

// DistributeLoad spreads one effort entry's hours evenly across the calendar
// weeks it spans and returns per-window hours aligned to windows. Entries that
// are complete, or missing hours/start/end, contribute nothing. Hours are
// spread across the full elapsed span with no working-day weighting; this is
// a rough-cut planning figure, not a schedule.
func DistributeLoad(effort DepartmentEffort, windows []time.Time) []float64 {
	perWeek := make([]float64, len(windows))
	if effort.Completed || effort.Hours == 0 || effort.Start.IsZero() || effort.End.IsZero() {
		return perWeek
	}

	span := effort.End.Sub(effort.Start)
	totalWeeks := math.Ceil(span.Hours() / (7 * 24))
	if totalWeeks < 1 {
		totalWeeks = 1
	}
	hoursPerWeek := effort.Hours / totalWeeks

	for i, ws := range windows {
		we := ws.AddDate(0, 0, 7)
		if effort.Start.Before(we) && effort.End.After(ws) {
			perWeek[i] = hoursPerWeek
		}
	}
	return perWeek
}

// Utilisation returns load as a percentage of weekly capacity, 0 when the
// capacity itself is 0. Anything above 100 is overloaded.
func Utilisation(loadHours, capacityPerWeek float64) float64 {
	if capacityPerWeek == 0 {
		return 0
	}
	return loadHours / capacityPerWeek * 100
}

// SummarizeNext4Weeks rolls the first four buckets into a single utilisation
// figure against four weeks of capacity. Used for the top-level status cards.
func SummarizeNext4Weeks(weeks []WeekBucket, capacityPerWeek float64) float64 {
	var load float64
	for i, w := range weeks {
		if i >= 4 {
			break
		}
		load += w.LoadHours
	}
	return Utilisation(load, 4*capacityPerWeek)
}

// BuildHeatmap aggregates every incomplete department effort across active
// products into weekly load buckets and compares them against the configured
// department capacities.
func BuildHeatmap(app *pocketbase.PocketBase, ref time.Time, numWeeks int) (*Heatmap, error) {
	windows := WeekWindows(ref, numWeeks)

	capacities, err := loadCapacities(app)
	if err != nil {
		return nil, err
	}

	efforts, unestimated, err := loadEfforts(app)
	if err != nil {
		return nil, err
	}

	hm := &Heatmap{WeekStarts: windows, Unestimated: unestimated}

	for _, dept := range Departments {
		row := DepartmentHeatmap{
			Department:      dept,
			CapacityPerWeek: capacities[dept],
			Weeks:           make([]WeekBucket, len(windows)),
		}
		contributors := make([]map[string]bool, len(windows))
		for i := range row.Weeks {
			row.Weeks[i].WeekStart = windows[i]
			contributors[i] = make(map[string]bool)
		}

		for _, effort := range efforts {
			if effort.Department != dept {
				continue
			}
			perWeek := DistributeLoad(effort, windows)
			for i, h := range perWeek {
				if h == 0 {
					continue
				}
				row.Weeks[i].LoadHours += h
				contributors[i][effort.ProductID] = true
			}
		}

		for i := range row.Weeks {
			row.Weeks[i].Utilisation = Utilisation(row.Weeks[i].LoadHours, row.CapacityPerWeek)
			row.Weeks[i].Overloaded = row.Weeks[i].Utilisation > 100
			ids := make([]string, 0, len(contributors[i]))
			for id := range contributors[i] {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			row.Weeks[i].ProductIDs = ids
		}
		row.Next4Utilisation = SummarizeNext4Weeks(row.Weeks, row.CapacityPerWeek)

		hm.Departments = append(hm.Departments, row)
	}
	return hm, nil
}

func loadCapacities(app *pocketbase.PocketBase) (map[string]float64, error) {
	records, err := app.FindAllRecords("department_capacity")
	if err != nil {
		return nil, fmt.Errorf("load department capacities: %w", err)
	}
	capacities := make(map[string]float64, len(records))
	for _, rec := range records {
		capacities[rec.GetString("department")] = rec.GetFloat("hours_per_week")
	}
	return capacities, nil
}

// loadEfforts reads the per-department scheduling fields off every product in
// an active project and splits them into loadable efforts and unestimated
// warnings (dates present, hours missing).
func loadEfforts(app *pocketbase.PocketBase) ([]DepartmentEffort, []UnestimatedProduct, error) {
	products, err := app.FindRecordsByFilter(
		"products",
		"project.status = {:status}",
		"name",
		0,
		0,
		map[string]any{"status": "active"},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}

	var efforts []DepartmentEffort
	var unestimated []UnestimatedProduct

	for _, rec := range products {
		for _, dept := range Departments {
			start := rec.GetDateTime(dept + "_start").Time()
			end := rec.GetDateTime(dept + "_end").Time()
			hours := rec.GetFloat(dept + "_hours")
			completed := !rec.GetDateTime(dept + "_completed").Time().IsZero()

			if hours == 0 && !start.IsZero() && !end.IsZero() && !completed {
				unestimated = append(unestimated, UnestimatedProduct{
					ProductID:   rec.Id,
					ProductName: rec.GetString("name"),
					Department:  dept,
				})
				continue
			}

			efforts = append(efforts, DepartmentEffort{
				ProductID:   rec.Id,
				ProductName: rec.GetString("name"),
				Department:  dept,
				Hours:       hours,
				Start:       start,
				End:         end,
				Completed:   completed,
			})
		}
	}
	return efforts, unestimated, nil
}
