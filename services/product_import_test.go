package services

import (
	"encoding/csv"
	"strings"
	"testing"

	"steelops/testhelpers"
)

func TestCommitProductImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")

	rows := []map[string]string{
		{
			"name":             "Main frame",
			"drawing_number":   "SFL-DRG-001",
			"status":           "pending",
			"production_hours": "400",
			"production_start": "2025-01-06",
			"production_end":   "2025-02-03",
		},
		{
			"name": "Handrail",
			// status left blank to exercise the pending default
		},
	}

	result, err := CommitProductImport(app, project.Id, rows)
	if err != nil {
		t.Fatalf("CommitProductImport failed: %v", err)
	}
	if result.Imported != 2 || result.Failed != 0 || result.RolledBack {
		t.Fatalf("unexpected result: %+v", result)
	}

	saved, err := app.FindRecordsByFilter("products", "project = {:p}", "name", 0, 0,
		map[string]any{"p": project.Id})
	if err != nil {
		t.Fatalf("failed to load products: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("got %d products, want 2", len(saved))
	}

	byName := map[string]int{}
	for i, rec := range saved {
		byName[rec.GetString("name")] = i
	}
	frame := saved[byName["Main frame"]]
	if frame.GetFloat("production_hours") != 400 {
		t.Errorf("production_hours = %v, want 400", frame.GetFloat("production_hours"))
	}
	if frame.GetDateTime("production_start").Time().IsZero() {
		t.Error("production_start not persisted")
	}

	handrail := saved[byName["Handrail"]]
	if handrail.GetString("status") != "pending" {
		t.Errorf("blank status defaulted to %q, want pending", handrail.GetString("status"))
	}
}

func TestCommitProductImportRevalidates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")

	rows := []map[string]string{
		{"name": ""},
		{"name": "Good row"},
	}

	result, err := CommitProductImport(app, project.Id, rows)
	if err != nil {
		t.Fatalf("CommitProductImport failed: %v", err)
	}
	if result.Imported != 0 {
		t.Errorf("Imported = %d, want 0 when revalidation fails", result.Imported)
	}
	if !result.RolledBack {
		t.Error("expected RolledBack on revalidation failure")
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 2 {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}

	saved, err := app.FindRecordsByFilter("products", "project = {:p}", "", 0, 0,
		map[string]any{"p": project.Id})
	if err != nil {
		t.Fatalf("failed to load products: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("got %d products, want 0 (nothing inserted)", len(saved))
	}
}

func TestGenerateErrorReportCSV(t *testing.T) {
	errors := []ValidationError{
		{Row: 2, Field: "Product Name", Message: "Product Name is required"},
		{Row: 5, Field: "Design Hours", Message: `"lots" is not a number`},
	}

	records, err := csv.NewReader(strings.NewReader(string(GenerateErrorReportCSV(errors)))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "Row" || records[1][0] != "2" || records[2][2] != `"lots" is not a number` {
		t.Errorf("unexpected CSV contents: %v", records)
	}
}
