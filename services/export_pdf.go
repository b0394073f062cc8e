package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateQuotePDF creates the customer-facing quote PDF using maroto/v2.
// Optional lines are listed in a separate extras section and excluded from
// the totals block, matching the quote aggregates.
func GenerateQuotePDF(data *QuoteExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuoteHeader(m, data)
	addQuoteLineTable(m, data, false)
	addQuoteTotals(m, data)
	addQuoteLineTable(m, data, true)
	addQuoteValidityNote(m)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quote PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addQuoteHeader adds the company banner, quote number, project and client.
func addQuoteHeader(m core.Maroto, data *QuoteExportData) {
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(
				text.New("Steelworks Fabrication Ltd", props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
			col.New(6).Add(
				text.New("QUOTATION", props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: &props.Color{Red: 33, Green: 37, Blue: 41},
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("%s | %s", data.ProjectName, data.ClientName), props.Text{
					Size:  8,
					Align: align.Left,
					Color: &props.Color{Red: 100, Green: 100, Blue: 100},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Quote #: %s", data.QuoteNumber), props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Right,
				}),
			),
		),
	)

	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New("Date: "+data.CreatedDate, props.Text{
					Size:  8,
					Align: align.Right,
					Color: &props.Color{Red: 100, Green: 100, Blue: 100},
				}),
			),
		),
	)

	m.AddRows(row.New(3))
}

// addQuoteLineTable renders either the committed lines or the optional extras
// section, selected by optional.
func addQuoteLineTable(m core.Maroto, data *QuoteExportData, optional bool) {
	var items []QuoteExportRow
	for _, r := range data.Rows {
		if r.IsOptional == optional {
			items = append(items, r)
		}
	}
	if len(items) == 0 {
		return
	}

	if optional {
		m.AddRows(row.New(4))
		m.AddRows(
			row.New(8).Add(
				col.New(12).Add(
					text.New("Optional extras (not included in the quote total)", props.Text{
						Size:  9,
						Style: fontstyle.Bold,
						Align: align.Left,
					}),
				),
			),
		)
	}

	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(6).Add(text.New("Description", headerTextLeft)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qty", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Unit Price", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Total", headerText)).WithStyle(&headerCell),
		),
	)

	altBg := &props.Color{Red: 248, Green: 249, Blue: 250}

	for i, item := range items {
		bodyText := props.Text{Size: 7, Align: align.Center}
		bodyTextLeft := props.Text{Size: 7, Align: align.Left}
		bodyTextRight := props.Text{Size: 7, Align: align.Right}

		var cellStyle *props.Cell
		if i%2 == 1 {
			cellStyle = &props.Cell{BackgroundColor: altBg}
		}

		// Customers see sell prices only; costs and margins stay internal.
		unitSell := item.SellPrice
		if item.Quantity > 0 {
			unitSell = item.SellPrice / float64(item.Quantity)
		}

		colIdx := col.New(1).Add(text.New(item.Index, bodyText))
		colDesc := col.New(6).Add(text.New(item.Description, bodyTextLeft))
		colQty := col.New(1).Add(text.New(fmt.Sprintf("%d", item.Quantity), bodyText))
		colUnit := col.New(2).Add(text.New(FormatGBP(unitSell), bodyTextRight))
		colTotal := col.New(2).Add(text.New(FormatGBP(item.SellPrice), bodyTextRight))

		if cellStyle != nil {
			colIdx = colIdx.WithStyle(cellStyle)
			colDesc = colDesc.WithStyle(cellStyle)
			colQty = colQty.WithStyle(cellStyle)
			colUnit = colUnit.WithStyle(cellStyle)
			colTotal = colTotal.WithStyle(cellStyle)
		}

		m.AddRows(row.New(7).Add(colIdx, colDesc, colQty, colUnit, colTotal))
	}

	m.AddRows(row.New(2))
}

// addQuoteTotals adds the committed total block.
func addQuoteTotals(m core.Maroto, data *QuoteExportData) {
	grandBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	grandCell := &props.Cell{BackgroundColor: grandBg}
	white := &props.Color{Red: 255, Green: 255, Blue: 255}

	m.AddRows(
		row.New(8).Add(
			col.New(9).Add(text.New("Quote Total (excl. VAT)", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Right,
				Color: white,
			})).WithStyle(grandCell),
			col.New(3).Add(text.New(FormatGBP(data.TotalSell), props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Right,
				Color: white,
			})).WithStyle(grandCell),
		),
	)
}

// addQuoteValidityNote adds the standard validity footer.
func addQuoteValidityNote(m core.Maroto) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New("This quotation is valid for 30 days from the date above. Prices exclude VAT.", props.Text{
					Size:  7,
					Align: align.Left,
					Color: &props.Color{Red: 100, Green: 100, Blue: 100},
				}),
			),
		),
	)
}
