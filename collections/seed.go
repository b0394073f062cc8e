package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type capacityDef struct {
	department   string
	hoursPerWeek float64
	headcount    int
}

type catalogueDef struct {
	name     string
	uom      string
	unitCost float64
}

var defaultCapacities = []capacityDef{
	{department: "design", hoursPerWeek: 120, headcount: 3},
	{department: "ops", hoursPerWeek: 80, headcount: 2},
	{department: "production", hoursPerWeek: 400, headcount: 10},
	{department: "installation", hoursPerWeek: 160, headcount: 4},
}

var defaultCatalogue = []catalogueDef{
	{name: "UB 203x133x25 beam", uom: "m", unitCost: 38.50},
	{name: "UC 152x152x23 column", uom: "m", unitCost: 35.20},
	{name: "PFC 150x75x18 channel", uom: "m", unitCost: 27.80},
	{name: "RHS 100x50x5 hollow section", uom: "m", unitCost: 22.40},
	{name: "10mm mild steel plate", uom: "m2", unitCost: 96.00},
	{name: "M20 holding down bolt assembly", uom: "each", unitCost: 4.75},
	{name: "Intumescent paint (60 min)", uom: "m2", unitCost: 18.90},
	{name: "Galvanising", uom: "tonne", unitCost: 310.00},
}

// Seed inserts the default department capacities and catalogue guide prices
// when their collections are empty. Safe to run on every startup.
func Seed(app *pocketbase.PocketBase) error {
	if err := seedCapacities(app); err != nil {
		return fmt.Errorf("seed capacities: %w", err)
	}
	if err := seedCatalogue(app); err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}
	return nil
}

func seedCapacities(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("department_capacity")
	if err != nil {
		return fmt.Errorf("department_capacity collection not found: %w", err)
	}

	existing, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("check existing capacities: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, def := range defaultCapacities {
		record := core.NewRecord(col)
		record.Set("department", def.department)
		record.Set("hours_per_week", def.hoursPerWeek)
		record.Set("headcount", def.headcount)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("save capacity %q: %w", def.department, err)
		}
	}
	log.Printf("Seeded %d department capacities", len(defaultCapacities))
	return nil
}

func seedCatalogue(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("catalogue_items")
	if err != nil {
		return fmt.Errorf("catalogue_items collection not found: %w", err)
	}

	existing, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("check existing catalogue: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, def := range defaultCatalogue {
		record := core.NewRecord(col)
		record.Set("name", def.name)
		record.Set("uom", def.uom)
		record.Set("unit_cost", def.unitCost)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("save catalogue item %q: %w", def.name, err)
		}
	}
	log.Printf("Seeded %d catalogue items", len(defaultCatalogue))
	return nil
}
