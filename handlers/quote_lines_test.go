package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"steelops/testhelpers"
)

func TestHandleQuoteLineCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")
	quote := testhelpers.CreateTestQuote(t, app, project.Id)

	handler := HandleQuoteLineCreate(app)

	req := jsonRequest(t, http.MethodPost, "/quotes/"+quote.Id+"/lines", map[string]any{
		"description":    "Steel beams",
		"quantity":       10,
		"unit_cost":      100,
		"margin_percent": 30,
	})
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeJSON(t, rec)
	if body["cost_total"].(float64) != 1000 {
		t.Errorf("cost_total = %v, want 1000", body["cost_total"])
	}
	if body["sell_price"].(float64) != 1425 {
		t.Errorf("sell_price = %v, want 1425", body["sell_price"])
	}

	// Aggregates must already be persisted when the response lands.
	saved, err := app.FindRecordById("quotes", quote.Id)
	if err != nil {
		t.Fatalf("failed to reload quote: %v", err)
	}
	if saved.GetFloat("total_sell") != 1425 {
		t.Errorf("quote total_sell = %v, want 1425", saved.GetFloat("total_sell"))
	}
}

func TestHandleQuoteLineCreate_SortOrderSequence(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")
	quote := testhelpers.CreateTestQuote(t, app, project.Id)
	testhelpers.CreateTestQuoteLine(t, app, quote.Id, 3, "Existing line", 1, 100, 30)

	handler := HandleQuoteLineCreate(app)

	req := jsonRequest(t, http.MethodPost, "/quotes/"+quote.Id+"/lines", map[string]any{
		"description":    "Handrail",
		"quantity":       1,
		"unit_cost":      50,
		"margin_percent": 30,
	})
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The new line must continue after the highest existing sort_order, never
	// restart at 1 on top of existing lines.
	body := decodeJSON(t, rec)
	if body["sort_order"].(float64) != 4 {
		t.Errorf("sort_order = %v, want 4", body["sort_order"])
	}
}

func TestHandleQuoteLineCreate_MarginFloor(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")
	quote := testhelpers.CreateTestQuote(t, app, project.Id)

	handler := HandleQuoteLineCreate(app)

	t.Run("below floor without override rejected", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/quotes/"+quote.Id+"/lines", map[string]any{
			"description":    "Cheap brackets",
			"quantity":       1,
			"unit_cost":      100,
			"margin_percent": 10,
		})
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()

		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", rec.Code)
		}
		body := decodeJSON(t, rec)
		if body["error"] != ErrKindMarginBelowFloor {
			t.Errorf("error kind = %v, want %s", body["error"], ErrKindMarginBelowFloor)
		}
	})

	t.Run("same margin with override accepted", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/quotes/"+quote.Id+"/lines", map[string]any{
			"description":     "Cheap brackets",
			"quantity":        1,
			"unit_cost":       100,
			"margin_percent":  10,
			"margin_override": true,
		})
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()

		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeJSON(t, rec)
		if body["margin_percent"].(float64) != 10 {
			t.Errorf("margin_percent = %v, want 10 persisted as-is", body["margin_percent"])
		}
	})

	t.Run("exactly at floor accepted without override", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/quotes/"+quote.Id+"/lines", map[string]any{
			"description":    "Base plates",
			"quantity":       5,
			"unit_cost":      100,
			"margin_percent": 25,
		})
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()

		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestHandleQuoteLineCreate_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")
	quote := testhelpers.CreateTestQuote(t, app, project.Id)

	handler := HandleQuoteLineCreate(app)

	t.Run("missing description", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/quotes/"+quote.Id+"/lines", map[string]any{
			"quantity":       1,
			"margin_percent": 30,
		})
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()

		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("unknown quote", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/quotes/missing/lines", map[string]any{
			"description":    "Steel beams",
			"margin_percent": 30,
		})
		req.SetPathValue("id", "missing")
		rec := httptest.NewRecorder()

		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("garbled numbers coerced", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/quotes/"+quote.Id+"/lines", map[string]any{
			"description":    "Misc fixings",
			"quantity":       "lots",
			"unit_cost":      "unknown",
			"margin_percent": 30,
		})
		req.SetPathValue("id", quote.Id)
		rec := httptest.NewRecorder()

		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeJSON(t, rec)
		if body["quantity"].(float64) != 1 {
			t.Errorf("quantity = %v, want fallback 1", body["quantity"])
		}
		if body["unit_cost"].(float64) != 0 {
			t.Errorf("unit_cost = %v, want fallback 0", body["unit_cost"])
		}
	})
}

func TestHandleQuoteLineUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")
	quote := testhelpers.CreateTestQuote(t, app, project.Id)
	line := testhelpers.CreateTestQuoteLine(t, app, quote.Id, 1, "Steel beams", 10, 100, 30)

	handler := HandleQuoteLineUpdate(app)

	req := jsonRequest(t, http.MethodPatch, "/quotes/"+quote.Id+"/lines/"+line.Id, map[string]any{
		"quantity": 20,
	})
	req.SetPathValue("id", quote.Id)
	req.SetPathValue("lineId", line.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeJSON(t, rec)
	if body["cost_total"].(float64) != 2000 {
		t.Errorf("cost_total = %v, want recomputed 2000", body["cost_total"])
	}
	if body["sell_price"].(float64) != 2850 {
		t.Errorf("sell_price = %v, want recomputed 2850", body["sell_price"])
	}
	if body["description"] != "Steel beams" {
		t.Errorf("description = %v, want untouched", body["description"])
	}
}

func TestHandleQuoteLineUpdate_FloorOnResultingMargin(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")
	quote := testhelpers.CreateTestQuote(t, app, project.Id)
	line := testhelpers.CreateTestQuoteLine(t, app, quote.Id, 1, "Steel beams", 10, 100, 30)

	handler := HandleQuoteLineUpdate(app)

	req := jsonRequest(t, http.MethodPatch, "/quotes/"+quote.Id+"/lines/"+line.Id, map[string]any{
		"margin_percent": 15,
	})
	req.SetPathValue("id", quote.Id)
	req.SetPathValue("lineId", line.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	// The rejected margin must not have been persisted.
	saved, err := app.FindRecordById("quote_lines", line.Id)
	if err != nil {
		t.Fatalf("failed to reload line: %v", err)
	}
	if saved.GetFloat("margin_percent") != 30 {
		t.Errorf("margin_percent = %v, want original 30", saved.GetFloat("margin_percent"))
	}
}

func TestHandleQuoteLineDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Warehouse Frame")
	quote := testhelpers.CreateTestQuote(t, app, project.Id)
	line := testhelpers.CreateTestQuoteLine(t, app, quote.Id, 1, "Steel beams", 10, 100, 30)
	line.Set("cost_total", 1000.0)
	line.Set("sell_price", 1425.0)
	if err := app.Save(line); err != nil {
		t.Fatalf("failed to update line: %v", err)
	}

	handler := HandleQuoteLineDelete(app)

	req := httptest.NewRequest(http.MethodDelete, "/quotes/"+quote.Id+"/lines/"+line.Id, nil)
	req.SetPathValue("id", quote.Id)
	req.SetPathValue("lineId", line.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := app.FindRecordById("quote_lines", line.Id); err == nil {
		t.Error("line still exists after delete")
	}

	saved, err := app.FindRecordById("quotes", quote.Id)
	if err != nil {
		t.Fatalf("failed to reload quote: %v", err)
	}
	if saved.GetFloat("total_sell") != 0 {
		t.Errorf("quote total_sell = %v, want 0 after deleting the only line", saved.GetFloat("total_sell"))
	}
}

func TestHandleMarginCheck(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleMarginCheck(app)

	req := httptest.NewRequest(http.MethodGet, "/pricing/margin-check?margin=24.9", nil)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := decodeJSON(t, rec)
	if body["below_floor"] != true {
		t.Errorf("below_floor = %v, want true for 24.9", body["below_floor"])
	}
	if body["floor"].(float64) != 25 {
		t.Errorf("floor = %v, want 25", body["floor"])
	}
}
