package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleQuoteExportData() *QuoteExportData {
	return &QuoteExportData{
		QuoteNumber: "SFL-Q-1042-25-26-001",
		ProjectName: "Warehouse Frame",
		ClientName:  "Acme Developments",
		CreatedDate: "15/06/2025",
		Rows: []QuoteExportRow{
			{Index: "1", Description: "Steel beams", Quantity: 10, UnitCost: 100, CostTotal: 1000, MarginPercent: 30, SellPrice: 1425},
			{Index: "2", Description: "Base plates", Quantity: 5, UnitCost: 100, CostTotal: 500, MarginPercent: 25, SellPrice: 675},
			{Index: "3", Description: "Spare brackets", Quantity: 1, UnitCost: 200, CostTotal: 200, MarginPercent: 25, SellPrice: 275, IsOptional: true},
		},
		TotalCost:     1500,
		TotalSell:     2100,
		OverallMargin: 28.57,
	}
}

func TestGenerateQuoteExcel(t *testing.T) {
	data := sampleQuoteExportData()

	result, err := GenerateQuoteExcel(data)
	if err != nil {
		t.Fatalf("GenerateQuoteExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateQuoteExcel() returned empty bytes")
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != data.QuoteNumber {
		t.Errorf("expected sheet %q, got %v", data.QuoteNumber, sheets)
	}

	title, _ := f.GetCellValue(sheets[0], "A1")
	if title != "Quote SFL-Q-1042-25-26-001" {
		t.Errorf("title cell = %q", title)
	}

	desc, _ := f.GetCellValue(sheets[0], "B6")
	if desc != "Steel beams" {
		t.Errorf("first line description = %q, want 'Steel beams'", desc)
	}
	sell, _ := f.GetCellValue(sheets[0], "G6")
	if sell != "£1,425.00" {
		t.Errorf("first line sell price = %q, want £1,425.00", sell)
	}
	optional, _ := f.GetCellValue(sheets[0], "H8")
	if optional != "Yes" {
		t.Errorf("optional flag cell = %q, want Yes", optional)
	}

	totalSell, _ := f.GetCellValue(sheets[0], "G11")
	if totalSell != "£2,100.00" {
		t.Errorf("total sell cell = %q, want £2,100.00", totalSell)
	}
}

func TestGenerateQuoteExcelEmptyQuote(t *testing.T) {
	data := &QuoteExportData{CreatedDate: "15/06/2025"}

	result, err := GenerateQuoteExcel(data)
	if err != nil {
		t.Fatalf("GenerateQuoteExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Quote" {
		t.Errorf("expected fallback sheet name 'Quote', got %v", sheets)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in     string
		expect string
	}{
		{"Steel beams", "Steel beams"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+44 bracket", "'+44 bracket"},
		{"-10mm plate", "'-10mm plate"},
		{"@channel", "'@channel"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.expect {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.expect)
		}
	}
}
