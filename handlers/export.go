package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

// HandleQuoteExportExcel handles GET /quotes/{id}/export/excel.
func HandleQuoteExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildQuoteExportData(app, e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "quote")
		}

		contents, err := services.GenerateQuoteExcel(data)
		if err != nil {
			log.Printf("export: HandleQuoteExportExcel: %v", err)
			return serverError(e)
		}

		fileName := fmt.Sprintf("%s.xlsx", data.QuoteNumber)
		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		e.Response.WriteHeader(http.StatusOK)
		_, err = e.Response.Write(contents)
		return err
	}
}

// HandleQuoteExportPDF handles GET /quotes/{id}/export/pdf.
func HandleQuoteExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildQuoteExportData(app, e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "quote")
		}

		contents, err := services.GenerateQuotePDF(data)
		if err != nil {
			log.Printf("export: HandleQuoteExportPDF: %v", err)
			return serverError(e)
		}

		fileName := fmt.Sprintf("%s.pdf", data.QuoteNumber)
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		e.Response.WriteHeader(http.StatusOK)
		_, err = e.Response.Write(contents)
		return err
	}
}
