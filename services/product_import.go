package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

const importBatchSize = 100

// ImportResult holds the outcome of a batch import operation.
type ImportResult struct {
	TotalRows  int               `json:"total_rows"`
	Imported   int               `json:"imported"`
	Failed     int               `json:"failed"`
	Errors     []ValidationError `json:"errors,omitempty"`
	RolledBack bool              `json:"rolled_back"`
}

// CommitProductImport re-validates and batch-inserts parsed product rows.
// Rows are processed in chunks of importBatchSize; when any insert in a chunk
// fails the whole chunk is rolled back and recorded as failed, and the next
// chunk still runs.
func CommitProductImport(app *pocketbase.PocketBase, projectID string, parsedRows []map[string]string) (*ImportResult, error) {
	fields := ProductTemplateFields()
	keyToLabel := make(map[string]string, len(fields))
	for _, f := range fields {
		keyToLabel[f.Key] = f.Label
	}

	var revalidationErrors []ValidationError
	for i, rowData := range parsedRows {
		revalidationErrors = append(revalidationErrors, validateProductRow(i+2, rowData, fields, keyToLabel)...)
	}
	if len(revalidationErrors) > 0 {
		errorRowSet := make(map[int]bool)
		for _, e := range revalidationErrors {
			errorRowSet[e.Row] = true
		}
		return &ImportResult{
			TotalRows:  len(parsedRows),
			Failed:     len(errorRowSet),
			Errors:     revalidationErrors,
			RolledBack: true,
		}, nil
	}

	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return nil, fmt.Errorf("products collection not found: %w", err)
	}

	result := &ImportResult{TotalRows: len(parsedRows)}

	for chunkStart := 0; chunkStart < len(parsedRows); chunkStart += importBatchSize {
		chunkEnd := chunkStart + importBatchSize
		if chunkEnd > len(parsedRows) {
			chunkEnd = len(parsedRows)
		}
		chunk := parsedRows[chunkStart:chunkEnd]

		chunkErrors := insertProductChunk(app, col, projectID, chunk, chunkStart)
		if len(chunkErrors) > 0 {
			result.Errors = append(result.Errors, chunkErrors...)
			result.Failed += len(chunk)
			result.RolledBack = true
		} else {
			result.Imported += len(chunk)
		}
	}
	return result, nil
}

// insertProductChunk inserts a batch of rows inside one transaction. Any
// failed row rolls back the entire chunk.
func insertProductChunk(app *pocketbase.PocketBase, col *core.Collection, projectID string, rows []map[string]string, startOffset int) []ValidationError {
	var chunkErrors []ValidationError

	err := app.RunInTransaction(func(txApp core.App) error {
		for i, rowData := range rows {
			rowNum := startOffset + i + 2 // 1-indexed + header row

			record := core.NewRecord(col)
			record.Set("project", projectID)
			record.Set("name", rowData["name"])
			record.Set("drawing_number", rowData["drawing_number"])
			status := rowData["status"]
			if status == "" {
				status = "pending"
			}
			record.Set("status", status)

			for _, dept := range Departments {
				if v := rowData[dept+"_hours"]; v != "" {
					hours, _ := strconv.ParseFloat(v, 64)
					record.Set(dept+"_hours", hours)
				}
				for _, suffix := range []string{"_start", "_end"} {
					if v := rowData[dept+suffix]; v != "" {
						d, _ := time.Parse(importDateLayout, v)
						record.Set(dept+suffix, d)
					}
				}
			}

			if err := txApp.Save(record); err != nil {
				chunkErrors = append(chunkErrors, ValidationError{
					Row:     rowNum,
					Field:   "Product Name",
					Message: fmt.Sprintf("failed to save row: %v", err),
				})
				return err
			}
		}
		return nil
	})
	if err != nil && len(chunkErrors) == 0 {
		chunkErrors = append(chunkErrors, ValidationError{
			Row:     startOffset + 2,
			Message: fmt.Sprintf("chunk insert failed: %v", err),
		})
	}
	return chunkErrors
}

// GenerateErrorReportCSV renders validation errors as a downloadable CSV.
func GenerateErrorReportCSV(errors []ValidationError) []byte {
	rows := [][]string{{"Row", "Field", "Message"}}
	for _, e := range errors {
		rows = append(rows, []string{strconv.Itoa(e.Row), e.Field, e.Message})
	}
	return writeCSV(rows)
}
