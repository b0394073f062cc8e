package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateProductTemplate(t *testing.T) {
	result, err := GenerateProductTemplate()
	if err != nil {
		t.Fatalf("GenerateProductTemplate() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Products" || sheets[1] != "Instructions" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	// Header row must round-trip through the import's own column mapping.
	rows, err := f.GetRows("Products")
	if err != nil {
		t.Fatalf("failed to read Products sheet: %v", err)
	}
	if len(rows) < 1 {
		t.Fatal("Products sheet has no header row")
	}

	fields := ProductTemplateFields()
	mapped, unrecognized := mapHeadersToFields(rows[0], fields)
	if len(unrecognized) != 0 {
		t.Errorf("template headers not recognized by importer: %v", unrecognized)
	}
	if len(mapped) != len(fields) {
		t.Errorf("template has %d columns, want %d", len(mapped), len(fields))
	}
	if mapped[0] != "name" {
		t.Errorf("first column maps to %q, want 'name'", mapped[0])
	}
}

func TestColumnLetters(t *testing.T) {
	got := columnLetters(3)
	if len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Errorf("columnLetters(3) = %v", got)
	}

	wide := columnLetters(28)
	if wide[26] != "AA" || wide[27] != "AB" {
		t.Errorf("columnLetters(28) tail = %v", wide[25:])
	}
}
