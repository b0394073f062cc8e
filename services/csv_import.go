package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is returned after parsing and validating an uploaded file.
type ValidationResult struct {
	TotalRows    int                 `json:"total_rows"`
	ValidRows    int                 `json:"valid_rows"`
	ErrorRows    int                 `json:"error_rows"`
	Errors       []ValidationError   `json:"errors"`
	Unrecognized []string            `json:"unrecognized_columns,omitempty"`
	ParsedRows   []map[string]string `json:"-"`
	FileName     string              `json:"-"`
}

// importDateLayout is the date format accepted in import files.
const importDateLayout = "2006-01-02"

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file multipart.File) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// normalizeHeader lowercases a header and collapses the separators people
// actually type, so "Design_Hours", "design  hours" and "Design Hours *" all
// map to the same key.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, "*")
	h = strings.ReplaceAll(h, "_", " ")
	h = strings.ReplaceAll(h, "-", " ")
	h = strings.Join(strings.Fields(h), " ")
	return h
}

// mapHeadersToFields maps uploaded column headers to TemplateField keys.
// Matching is fuzzy: case, spacing and separator-insensitive, with each
// field's synonym list consulted after its label. Returns an ordered list of
// field keys (one per column, "" for unmatched) and the unrecognized headers.
func mapHeadersToFields(headers []string, fields []TemplateField) ([]string, []string) {
	labelToKey := make(map[string]string)
	for _, f := range fields {
		labelToKey[normalizeHeader(f.Label)] = f.Key
		for _, syn := range f.Synonyms {
			labelToKey[normalizeHeader(syn)] = f.Key
		}
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		if key, ok := labelToKey[normalizeHeader(h)]; ok {
			mapped[i] = key
		} else {
			mapped[i] = ""
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ValidateProductFile parses and validates an uploaded product file for a
// project. Accepted formats are .csv and .xlsx, decided by file extension.
func ValidateProductFile(file multipart.File, fileName string) (*ValidationResult, error) {
	fields := ProductTemplateFields()

	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys, unrecognized := mapHeadersToFields(headers, fields)

	keyToLabel := make(map[string]string, len(fields))
	for _, f := range fields {
		keyToLabel[f.Key] = f.Label
	}

	result := &ValidationResult{
		TotalRows:    len(dataRows),
		FileName:     fileName,
		Unrecognized: unrecognized,
		ParsedRows:   make([]map[string]string, 0, len(dataRows)),
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)

		for colIdx, key := range columnKeys {
			if key == "" {
				continue
			}
			value := ""
			if colIdx < len(row) {
				value = strings.TrimSpace(row[colIdx])
			}
			rowData[key] = value
		}

		rowErrors := validateProductRow(rowNum, rowData, fields, keyToLabel)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
		} else {
			result.ValidRows++
		}
		result.ParsedRows = append(result.ParsedRows, rowData)
	}
	return result, nil
}

// validateProductRow checks required fields, numeric hours and date formats
// on one parsed row.
func validateProductRow(rowNum int, rowData map[string]string, fields []TemplateField, keyToLabel map[string]string) []ValidationError {
	var errs []ValidationError

	for _, f := range fields {
		if f.AlwaysRequired && rowData[f.Key] == "" {
			errs = append(errs, ValidationError{
				Row:     rowNum,
				Field:   f.Label,
				Message: fmt.Sprintf("%s is required", f.Label),
			})
		}
	}

	if status := rowData["status"]; status != "" {
		switch status {
		case "pending", "in_progress", "complete":
		default:
			errs = append(errs, ValidationError{
				Row:     rowNum,
				Field:   "Status",
				Message: fmt.Sprintf("%q is not a valid status", status),
			})
		}
	}

	for _, dept := range Departments {
		hoursKey := dept + "_hours"
		if v := rowData[hoursKey]; v != "" {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				errs = append(errs, ValidationError{
					Row:     rowNum,
					Field:   keyToLabel[hoursKey],
					Message: fmt.Sprintf("%q is not a number", v),
				})
			}
		}
		for _, suffix := range []string{"_start", "_end"} {
			key := dept + suffix
			if v := rowData[key]; v != "" {
				if _, err := time.Parse(importDateLayout, v); err != nil {
					errs = append(errs, ValidationError{
						Row:     rowNum,
						Field:   keyToLabel[key],
						Message: fmt.Sprintf("%q is not a date (expected YYYY-MM-DD)", v),
					})
				}
			}
		}
	}
	return errs
}
