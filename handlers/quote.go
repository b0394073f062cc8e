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

var QuoteStatusOptions = []string{"draft", "sent", "accepted", "rejected"}

// quoteResponse is the JSON shape a quote is returned in.
func quoteResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":             rec.Id,
		"project":        rec.GetString("project"),
		"quote_number":   rec.GetString("quote_number"),
		"status":         rec.GetString("status"),
		"total_cost":     rec.GetFloat("total_cost"),
		"total_sell":     rec.GetFloat("total_sell"),
		"overall_margin": rec.GetFloat("overall_margin"),
	}
}

// HandleQuoteList handles GET /projects/{projectId}/quotes.
func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		records, err := app.FindRecordsByFilter(
			"quotes",
			"project = {:projectId}",
			"-created",
			0,
			0,
			map[string]any{"projectId": projectID},
		)
		if err != nil {
			log.Printf("quote: HandleQuoteList: could not load quotes: %v", err)
			return serverError(e)
		}

		quotes := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			quotes = append(quotes, quoteResponse(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{"quotes": quotes})
	}
}

// HandleQuoteCreate handles POST /projects/{projectId}/quotes. The quote
// number is generated server-side; aggregates start at zero.
func HandleQuoteCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		quoteNumber, err := services.GenerateQuoteNumber(app, projectID, time.Now())
		if err != nil {
			log.Printf("quote: HandleQuoteCreate: could not generate quote number: %v", err)
			return serverError(e)
		}

		col, err := app.FindCollectionByNameOrId("quotes")
		if err != nil {
			log.Printf("quote: HandleQuoteCreate: could not find quotes collection: %v", err)
			return serverError(e)
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("quote_number", quoteNumber)
		record.Set("status", "draft")
		record.Set("total_cost", 0)
		record.Set("total_sell", 0)
		record.Set("overall_margin", 0)

		if err := app.Save(record); err != nil {
			log.Printf("quote: HandleQuoteCreate: could not save quote: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, quoteResponse(record))
	}
}

// HandleQuoteView handles GET /quotes/{id} — the quote with its lines.
func HandleQuoteView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		record, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return notFound(e, "quote")
		}

		lineRecords, err := app.FindRecordsByFilter(
			"quote_lines",
			"quote = {:quoteId}",
			"sort_order",
			0,
			0,
			map[string]any{"quoteId": quoteID},
		)
		if err != nil {
			log.Printf("quote: HandleQuoteView: could not load lines: %v", err)
			return serverError(e)
		}

		lines := make([]map[string]any, 0, len(lineRecords))
		for _, line := range lineRecords {
			lines = append(lines, lineResponse(line, nil))
		}

		resp := quoteResponse(record)
		resp["lines"] = lines
		return e.JSON(http.StatusOK, resp)
	}
}

// HandleQuoteUpdate handles POST /quotes/{id}/save — status changes only; the
// aggregate fields are derived and never accepted from the client.
func HandleQuoteUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		record, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return notFound(e, "quote")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		if v, ok := body["status"]; ok {
			status := strings.TrimSpace(castString(v))
			valid := false
			for _, s := range QuoteStatusOptions {
				if status == s {
					valid = true
					break
				}
			}
			if !valid {
				return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid quote status")
			}
			record.Set("status", status)
		}

		if err := app.Save(record); err != nil {
			log.Printf("quote: HandleQuoteUpdate: could not save quote: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, quoteResponse(record))
	}
}

// HandleQuoteDelete handles DELETE /quotes/{id}. Lines cascade with the quote.
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		record, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return notFound(e, "quote")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("quote: HandleQuoteDelete: could not delete quote: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, map[string]any{"deleted": quoteID})
	}
}
