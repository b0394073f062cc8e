package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// QuoteExportRow is one quote line as it appears in an export.
type QuoteExportRow struct {
	Index         string
	Description   string
	Quantity      int
	UnitCost      float64
	CostTotal     float64
	MarginPercent float64
	SellPrice     float64
	IsOptional    bool
}

// QuoteExportData holds everything the Excel and PDF exports need.
type QuoteExportData struct {
	QuoteNumber   string
	ProjectName   string
	ClientName    string
	CreatedDate   string
	Rows          []QuoteExportRow
	TotalCost     float64
	TotalSell     float64
	OverallMargin float64
}

// BuildQuoteExportData loads a quote, its project and its lines into the
// shape the exports consume. Lines come back in sort order; optional lines
// are included and flagged rather than dropped.
func BuildQuoteExportData(app *pocketbase.PocketBase, quoteID string) (*QuoteExportData, error) {
	quote, err := app.FindRecordById("quotes", quoteID)
	if err != nil {
		return nil, fmt.Errorf("quote not found: %w", err)
	}

	data := &QuoteExportData{
		QuoteNumber:   quote.GetString("quote_number"),
		CreatedDate:   quote.GetDateTime("created").Time().Format("02/01/2006"),
		TotalCost:     quote.GetFloat("total_cost"),
		TotalSell:     quote.GetFloat("total_sell"),
		OverallMargin: quote.GetFloat("overall_margin"),
	}

	if project, err := app.FindRecordById("projects", quote.GetString("project")); err == nil {
		data.ProjectName = project.GetString("name")
		data.ClientName = project.GetString("client_name")
	}

	lines, err := app.FindRecordsByFilter(
		"quote_lines",
		"quote = {:quoteId}",
		"sort_order",
		0,
		0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil {
		return nil, fmt.Errorf("load quote lines: %w", err)
	}

	for i, line := range lines {
		data.Rows = append(data.Rows, QuoteExportRow{
			Index:         fmt.Sprintf("%d", i+1),
			Description:   line.GetString("description"),
			Quantity:      line.GetInt("quantity"),
			UnitCost:      line.GetFloat("unit_cost"),
			CostTotal:     line.GetFloat("cost_total"),
			MarginPercent: line.GetFloat("margin_percent"),
			SellPrice:     line.GetFloat("sell_price"),
			IsOptional:    line.GetBool("is_optional"),
		})
	}
	return data, nil
}
