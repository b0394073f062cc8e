// Package collections creates the steelops schema and seed data.
package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// departments mirrors services.Departments; duplicated here so collections
// does not depend on the services package.
var departments = []string{"design", "ops", "production", "installation"}

// Setup programmatically creates/ensures all application collections exist.
func Setup(app *pocketbase.PocketBase) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "completed", "on_hold"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.DateField{Name: "target_date", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "drawing_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"pending", "in_progress", "complete"},
			MaxSelect: 1,
		})
		for _, dept := range departments {
			c.Fields.Add(&core.NumberField{Name: dept + "_hours", Required: false})
			c.Fields.Add(&core.DateField{Name: dept + "_start", Required: false})
			c.Fields.Add(&core.DateField{Name: dept + "_end", Required: false})
			c.Fields.Add(&core.DateField{Name: dept + "_completed", Required: false})
		}
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "quote_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "accepted", "rejected"},
			MaxSelect: 1,
		})
		// Derived aggregates; only RecalculateQuoteTotals writes these.
		c.Fields.Add(&core.NumberField{Name: "total_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_sell", Required: false})
		c.Fields.Add(&core.NumberField{Name: "overall_margin", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "quote_lines", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
		c.Fields.Add(&core.NumberField{Name: "unit_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "margin_percent", Required: false})
		c.Fields.Add(&core.NumberField{Name: "cost_total", Required: false})
		c.Fields.Add(&core.NumberField{Name: "sell_price", Required: false})
		c.Fields.Add(&core.BoolField{Name: "is_optional"})
		c.Fields.Add(&core.BoolField{Name: "margin_override"})
	})

	ensureCollection(app, "catalogue_items", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "uom", Required: false})
		c.Fields.Add(&core.NumberField{Name: "unit_cost", Required: true})
	})

	ensureCollection(app, "department_capacity", func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "department",
			Required:  true,
			Values:    departments,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "hours_per_week", Required: true})
		c.Fields.Add(&core.NumberField{Name: "headcount", Required: false})
	})

	purchaseOrders := ensureCollection(app, "purchase_orders", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "po_number", Required: false})
		c.Fields.Add(&core.TextField{Name: "supplier_name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "received"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "total_value", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "po_lines", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "purchase_order",
			Required:      true,
			CollectionId:  purchaseOrders.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
		c.Fields.Add(&core.NumberField{Name: "unit_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "line_total", Required: false})
	})

	ensureCollection(app, "invoices", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      false,
			CollectionId:  quotes.Id,
			CascadeDelete: false,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "invoice_number", Required: false})
		c.Fields.Add(&core.DateField{Name: "invoice_date", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.NumberField{Name: "net_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "vat_rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "vat_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "gross_amount", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "paid"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "sage_nominal_code", Required: false})
		c.Fields.Add(&core.BoolField{Name: "exported"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
