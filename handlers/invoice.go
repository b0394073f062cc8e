package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

var InvoiceStatusOptions = []string{"draft", "sent", "paid"}

func invoiceResponse(rec *core.Record) map[string]any {
	resp := map[string]any{
		"id":                rec.Id,
		"project":           rec.GetString("project"),
		"quote":             rec.GetString("quote"),
		"invoice_number":    rec.GetString("invoice_number"),
		"description":       rec.GetString("description"),
		"net_amount":        rec.GetFloat("net_amount"),
		"vat_rate":          rec.GetFloat("vat_rate"),
		"vat_amount":        rec.GetFloat("vat_amount"),
		"gross_amount":      rec.GetFloat("gross_amount"),
		"status":            rec.GetString("status"),
		"sage_nominal_code": rec.GetString("sage_nominal_code"),
		"exported":          rec.GetBool("exported"),
	}
	if d := rec.GetDateTime("invoice_date").Time(); !d.IsZero() {
		resp["invoice_date"] = d.Format("2006-01-02")
	}
	return resp
}

// applyInvoiceAmounts derives VAT and gross from the record's net and rate.
func applyInvoiceAmounts(record *core.Record) {
	amounts := services.CalcInvoiceAmounts(record.GetFloat("net_amount"), record.GetFloat("vat_rate"))
	record.Set("vat_amount", amounts.VATAmount)
	record.Set("gross_amount", amounts.GrossAmount)
}

// HandleInvoiceList handles GET /projects/{projectId}/invoices.
func HandleInvoiceList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		records, err := app.FindRecordsByFilter(
			"invoices",
			"project = {:projectId}",
			"-created",
			0,
			0,
			map[string]any{"projectId": projectID},
		)
		if err != nil {
			log.Printf("invoice: HandleInvoiceList: could not load invoices: %v", err)
			return serverError(e)
		}

		invoices := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			invoices = append(invoices, invoiceResponse(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{"invoices": invoices})
	}
}

// HandleInvoiceCreate handles POST /projects/{projectId}/invoices. When a
// quote id is supplied the net amount defaults to the quote's total sell.
func HandleInvoiceCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		net := services.ParseNumberOr(body["net_amount"], 0)
		quoteID := strings.TrimSpace(castString(body["quote"]))
		if quoteID != "" {
			quote, err := app.FindRecordById("quotes", quoteID)
			if err != nil || quote.GetString("project") != projectID {
				return notFound(e, "quote")
			}
			if _, ok := body["net_amount"]; !ok {
				net = quote.GetFloat("total_sell")
			}
		}

		vatRate := services.DefaultVATRate
		if _, ok := body["vat_rate"]; ok {
			vatRate = services.ParseNumberOr(body["vat_rate"], services.DefaultVATRate)
		}

		invoiceNumber, err := services.GenerateInvoiceNumber(app, projectID, time.Now())
		if err != nil {
			log.Printf("invoice: HandleInvoiceCreate: could not generate invoice number: %v", err)
			return serverError(e)
		}

		col, err := app.FindCollectionByNameOrId("invoices")
		if err != nil {
			log.Printf("invoice: HandleInvoiceCreate: could not find invoices collection: %v", err)
			return serverError(e)
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("quote", quoteID)
		record.Set("invoice_number", invoiceNumber)
		record.Set("invoice_date", time.Now())
		record.Set("description", strings.TrimSpace(castString(body["description"])))
		record.Set("net_amount", net)
		record.Set("vat_rate", vatRate)
		record.Set("status", "draft")
		record.Set("sage_nominal_code", strings.TrimSpace(castString(body["sage_nominal_code"])))
		record.Set("exported", false)
		applyInvoiceAmounts(record)

		if err := app.Save(record); err != nil {
			log.Printf("invoice: HandleInvoiceCreate: could not save invoice: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, invoiceResponse(record))
	}
}

// HandleInvoiceUpdate handles PATCH /projects/{projectId}/invoices/{id}.
// Changing net or rate re-derives VAT and gross; they are never set directly.
func HandleInvoiceUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		record, err := app.FindRecordById("invoices", e.Request.PathValue("id"))
		if err != nil || record.GetString("project") != projectID {
			return notFound(e, "invoice")
		}

		body := map[string]any{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		if v, ok := body["description"]; ok {
			record.Set("description", strings.TrimSpace(castString(v)))
		}
		if v, ok := body["net_amount"]; ok {
			record.Set("net_amount", services.ParseNumberOr(v, 0))
		}
		if v, ok := body["vat_rate"]; ok {
			record.Set("vat_rate", services.ParseNumberOr(v, services.DefaultVATRate))
		}
		if v, ok := body["sage_nominal_code"]; ok {
			record.Set("sage_nominal_code", strings.TrimSpace(castString(v)))
		}
		if v, ok := body["status"]; ok {
			status := strings.TrimSpace(castString(v))
			for _, s := range InvoiceStatusOptions {
				if status == s {
					record.Set("status", status)
					break
				}
			}
		}
		applyInvoiceAmounts(record)

		if err := app.Save(record); err != nil {
			log.Printf("invoice: HandleInvoiceUpdate: could not save invoice: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, invoiceResponse(record))
	}
}

// HandleInvoiceDelete handles DELETE /projects/{projectId}/invoices/{id}.
// Exported invoices are already in Sage and cannot be deleted here.
func HandleInvoiceDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		record, err := app.FindRecordById("invoices", e.Request.PathValue("id"))
		if err != nil || record.GetString("project") != projectID {
			return notFound(e, "invoice")
		}

		if record.GetBool("exported") {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "cannot delete an invoice that has been exported to Sage")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("invoice: HandleInvoiceDelete: could not delete invoice: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, map[string]any{"deleted": record.Id})
	}
}

// HandleSageExport handles POST /invoices/sage-export. It returns the Sage 50
// CSV for every unexported, non-draft invoice and marks them exported.
func HandleSageExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, count, err := services.ExportInvoicesToSage(app, time.Now())
		if err != nil {
			log.Printf("invoice: HandleSageExport: %v", err)
			return serverError(e)
		}

		fileName := fmt.Sprintf("sage-export-%s.csv", time.Now().Format("2006-01-02"))
		e.Response.Header().Set("Content-Type", "text/csv")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		e.Response.Header().Set("X-Exported-Count", fmt.Sprintf("%d", count))
		_, err = e.Response.Write(data)
		return err
	}
}
