package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
)

// GetFiscalYear returns the UK fiscal year string for a given date. The UK
// fiscal year runs April to March: Jan 2026 → "25-26", May 2026 → "26-27".
func GetFiscalYear(t time.Time) string {
	startYear := t.Year()
	if t.Month() < time.April {
		startYear--
	}
	return fmt.Sprintf("%02d-%02d", startYear%100, (startYear+1)%100)
}

// formatDocNumber constructs a document number from its components.
// Uses "-" as separator to avoid conflicts with reference numbers containing "/".
func formatDocNumber(docType, projectRef, fiscalYear string, sequence int) string {
	return fmt.Sprintf("SFL-%s-%s-%s-%03d", docType, projectRef, fiscalYear, sequence)
}

// GenerateDocNumber creates the next document number for a project.
// Format: SFL-{type}-{project_ref}-{fiscal_year}-{sequence}
//   - docType: "Q" for quotes, "PO" for purchase orders, "INV" for invoices
//   - project_ref: project's reference_number (falls back to project ID if empty)
//   - sequence: 3-digit zero-padded, per project per document type per fiscal year
func GenerateDocNumber(app *pocketbase.PocketBase, docType, collection, numberField, projectID string, now time.Time) (string, error) {
	project, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return "", fmt.Errorf("project not found: %w", err)
	}

	projectRef := project.GetString("reference_number")
	if projectRef == "" {
		projectRef = projectID
	}

	fiscalYear := GetFiscalYear(now)
	prefix := fmt.Sprintf("SFL-%s-%s-%s-", docType, projectRef, fiscalYear)

	existing, err := app.FindRecordsByFilter(
		collection,
		fmt.Sprintf("project = {:projectId} && %s ~ {:prefix}", numberField),
		"",
		0,
		0,
		map[string]any{
			"projectId": projectID,
			"prefix":    prefix + "%",
		},
	)
	if err != nil {
		existing = nil
	}

	return formatDocNumber(docType, projectRef, fiscalYear, len(existing)+1), nil
}

// GenerateQuoteNumber returns the next quote number for a project.
func GenerateQuoteNumber(app *pocketbase.PocketBase, projectID string, now time.Time) (string, error) {
	return GenerateDocNumber(app, "Q", "quotes", "quote_number", projectID, now)
}

// GeneratePONumber returns the next purchase order number for a project.
func GeneratePONumber(app *pocketbase.PocketBase, projectID string, now time.Time) (string, error) {
	return GenerateDocNumber(app, "PO", "purchase_orders", "po_number", projectID, now)
}

// GenerateInvoiceNumber returns the next invoice number for a project.
func GenerateInvoiceNumber(app *pocketbase.PocketBase, projectID string, now time.Time) (string, error) {
	return GenerateDocNumber(app, "INV", "invoices", "invoice_number", projectID, now)
}
