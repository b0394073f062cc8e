package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateProductTemplate creates the downloadable .xlsx template for the
// product import, with a data sheet and an instructions sheet.
func GenerateProductTemplate() ([]byte, error) {
	fields := ProductTemplateFields()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheetName)

	requiredHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})

	optionalHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})

	columns := columnLetters(len(fields))
	for i, field := range fields {
		cell := fmt.Sprintf("%s1", columns[i])

		headerText := field.Label
		if field.AlwaysRequired {
			headerText += " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if field.AlwaysRequired {
			f.SetCellStyle(sheetName, cell, cell, requiredHeaderStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, optionalHeaderStyle)
		}

		width := float64(len(field.Label)) * 1.3
		if width < 15 {
			width = 15
		}
		f.SetColWidth(sheetName, columns[i], columns[i], width)
	}

	// Example row under the headers.
	for i, field := range fields {
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", columns[i]), field.ExampleValue)
	}

	// ── Instructions sheet ──────────────────────────────────────────────

	instructions := "Instructions"
	if _, err := f.NewSheet(instructions); err != nil {
		return nil, fmt.Errorf("create instructions sheet: %w", err)
	}

	instrHeaderStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})

	instrCols := columnLetters(4)
	instrHeaders := []string{"Column", "Required", "Format", "Example"}
	for i, h := range instrHeaders {
		cell := fmt.Sprintf("%s1", instrCols[i])
		f.SetCellValue(instructions, cell, h)
		f.SetCellStyle(instructions, cell, cell, instrHeaderStyle)
	}
	f.SetColWidth(instructions, "A", "A", 24)
	f.SetColWidth(instructions, "B", "B", 12)
	f.SetColWidth(instructions, "C", "C", 28)
	f.SetColWidth(instructions, "D", "D", 28)

	for i, field := range fields {
		rowStr := fmt.Sprintf("%d", i+2)
		f.SetCellValue(instructions, "A"+rowStr, field.Label)
		required := "No"
		if field.AlwaysRequired {
			required = "Yes"
		}
		f.SetCellValue(instructions, "B"+rowStr, required)
		f.SetCellValue(instructions, "C"+rowStr, field.FormatRule)
		f.SetCellValue(instructions, "D"+rowStr, field.ExampleValue)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// columnLetters returns Excel column letters for n columns: A, B, ... Z, AA, AB ...
func columnLetters(n int) []string {
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		name, _ := excelize.ColumnNumberToName(i + 1)
		cols[i] = name
	}
	return cols
}
