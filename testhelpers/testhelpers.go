// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates an active project record with the given name.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("reference_number", "1042")
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestQuote creates a draft quote linked to a project.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, projectID string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("quote_number", "SFL-Q-1042-2025-001")
	record.Set("status", "draft")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}

	return record
}

// CreateTestQuoteLine creates a quote line with derived cost_total and
// sell_price left at zero, matching a record saved before recalculation.
func CreateTestQuoteLine(t *testing.T, app *pocketbase.PocketBase, quoteID string, sortOrder int, description string, qty int, unitCost, marginPercent float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quote_lines")
	if err != nil {
		t.Fatalf("failed to find quote_lines collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("quote", quoteID)
	record.Set("sort_order", sortOrder)
	record.Set("description", description)
	record.Set("quantity", qty)
	record.Set("unit_cost", unitCost)
	record.Set("margin_percent", marginPercent)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote line: %v", err)
	}

	return record
}

// CreateTestProduct creates a product with a single department effort window.
func CreateTestProduct(t *testing.T, app *pocketbase.PocketBase, projectID, name, dept string, hours float64, start, end time.Time) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		t.Fatalf("failed to find products collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("name", name)
	record.Set("status", "pending")
	if dept != "" {
		record.Set(dept+"_hours", hours)
		if !start.IsZero() {
			record.Set(dept+"_start", start.Format("2006-01-02"))
		}
		if !end.IsZero() {
			record.Set(dept+"_end", end.Format("2006-01-02"))
		}
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test product: %v", err)
	}

	return record
}

// CreateTestCapacity creates a department_capacity row.
func CreateTestCapacity(t *testing.T, app *pocketbase.PocketBase, department string, hoursPerWeek float64, headcount int) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("department_capacity")
	if err != nil {
		t.Fatalf("failed to find department_capacity collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("department", department)
	record.Set("hours_per_week", hoursPerWeek)
	record.Set("headcount", headcount)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test capacity: %v", err)
	}

	return record
}

// CreateTestCatalogueItem creates a catalogue item with the given unit cost.
func CreateTestCatalogueItem(t *testing.T, app *pocketbase.PocketBase, name string, unitCost float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("catalogue_items")
	if err != nil {
		t.Fatalf("failed to find catalogue_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("uom", "each")
	record.Set("unit_cost", unitCost)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test catalogue item: %v", err)
	}

	return record
}

// CreateTestPurchaseOrder creates a draft PO linked to a project.
func CreateTestPurchaseOrder(t *testing.T, app *pocketbase.PocketBase, projectID, supplierName string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("purchase_orders")
	if err != nil {
		t.Fatalf("failed to find purchase_orders collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("po_number", "SFL-PO-1042-2025-001")
	record.Set("supplier_name", supplierName)
	record.Set("status", "draft")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test PO: %v", err)
	}

	return record
}

// CreateTestPOLine creates a PO line with a precomputed line total.
func CreateTestPOLine(t *testing.T, app *pocketbase.PocketBase, poID string, sortOrder int, description string, qty int, unitCost float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("po_lines")
	if err != nil {
		t.Fatalf("failed to find po_lines collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("purchase_order", poID)
	record.Set("sort_order", sortOrder)
	record.Set("description", description)
	record.Set("quantity", qty)
	record.Set("unit_cost", unitCost)
	record.Set("line_total", float64(qty)*unitCost)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test PO line: %v", err)
	}

	return record
}

// CreateTestInvoice creates an invoice linked to a project.
func CreateTestInvoice(t *testing.T, app *pocketbase.PocketBase, projectID, status string, netAmount float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("invoices")
	if err != nil {
		t.Fatalf("failed to find invoices collection: %v", err)
	}

	vat := netAmount * 0.2
	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("invoice_number", "SFL-INV-1042-2025-001")
	record.Set("invoice_date", "2025-06-15")
	record.Set("description", "Stage payment")
	record.Set("net_amount", netAmount)
	record.Set("vat_rate", 20.0)
	record.Set("vat_amount", vat)
	record.Set("gross_amount", netAmount+vat)
	record.Set("status", status)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test invoice: %v", err)
	}

	return record
}
