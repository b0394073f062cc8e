package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Default Sage 50 codes used when an invoice carries none of its own.
const (
	sageDefaultNominal = "4000" // sales
	sageDateLayout     = "02/01/2006"
)

// SageRow is one line of a Sage 50 audit-trail import file.
type SageRow struct {
	Type        string // "SI" for sales invoice
	Account     string
	NominalCode string
	Date        string // dd/mm/yyyy
	Reference   string
	Details     string
	NetAmount   float64
	TaxCode     string // T1 standard rated, T0 zero rated
	TaxAmount   float64
}

// sageTaxCode maps a VAT rate to the Sage tax code.
func sageTaxCode(vatRate float64) string {
	if vatRate == 0 {
		return "T0"
	}
	return "T1"
}

// BuildSageRow converts one invoice's fields to a Sage audit-trail row.
func BuildSageRow(account, nominal, reference, details string, date time.Time, net, vatAmount, vatRate float64) SageRow {
	if nominal == "" {
		nominal = sageDefaultNominal
	}
	return SageRow{
		Type:        "SI",
		Account:     account,
		NominalCode: nominal,
		Date:        date.Format(sageDateLayout),
		Reference:   reference,
		Details:     details,
		NetAmount:   net,
		TaxCode:     sageTaxCode(vatRate),
		TaxAmount:   vatAmount,
	}
}

// GenerateSageCSV renders rows as a Sage 50 import file.
func GenerateSageCSV(rows []SageRow) []byte {
	out := [][]string{{"Type", "Account", "Nominal", "Date", "Reference", "Details", "Net", "T/C", "VAT"}}
	for _, r := range rows {
		out = append(out, []string{
			r.Type,
			r.Account,
			r.NominalCode,
			r.Date,
			r.Reference,
			r.Details,
			fmt.Sprintf("%.2f", r.NetAmount),
			r.TaxCode,
			fmt.Sprintf("%.2f", r.TaxAmount),
		})
	}
	return writeCSV(out)
}

// ExportInvoicesToSage builds the Sage file for every unexported, non-draft
// invoice and marks each one exported. Returns the CSV contents and how many
// invoices it covered. The exported flags are written in one transaction;
// when that fails no file is returned, so a retry cannot emit an invoice
// twice.
func ExportInvoicesToSage(app *pocketbase.PocketBase, now time.Time) ([]byte, int, error) {
	records, err := app.FindRecordsByFilter(
		"invoices",
		"exported = false && status != 'draft'",
		"invoice_date",
		0,
		0,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("load invoices: %w", err)
	}

	rows := make([]SageRow, 0, len(records))
	for _, rec := range records {
		project, err := app.FindRecordById("projects", rec.GetString("project"))
		account := ""
		if err == nil {
			account = project.GetString("client_name")
		}
		rows = append(rows, BuildSageRow(
			account,
			rec.GetString("sage_nominal_code"),
			rec.GetString("invoice_number"),
			rec.GetString("description"),
			rec.GetDateTime("invoice_date").Time(),
			rec.GetFloat("net_amount"),
			rec.GetFloat("vat_amount"),
			rec.GetFloat("vat_rate"),
		))
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		for _, rec := range records {
			rec.Set("exported", true)
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("mark invoice %s exported: %w", rec.Id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return GenerateSageCSV(rows), len(records), nil
}

// writeCSV renders rows with encoding/csv into a byte slice.
func writeCSV(rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			log.Printf("csv: could not write row: %v", err)
		}
	}
	w.Flush()
	return buf.Bytes()
}
