package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

// maxImportUpload caps product import uploads at 10 MB.
const maxImportUpload = 10 << 20

// HandleProductTemplateDownload handles GET /projects/{projectId}/products/import/template.
func HandleProductTemplateDownload(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := app.FindRecordById("projects", e.Request.PathValue("projectId")); err != nil {
			return notFound(e, "project")
		}

		data, err := services.GenerateProductTemplate()
		if err != nil {
			log.Printf("product_import: template generation failed: %v", err)
			return serverError(e)
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="product-import-template.xlsx"`)
		_, err = e.Response.Write(data)
		return err
	}
}

// HandleProductValidate handles POST /projects/{projectId}/products/import.
// The multipart "file" field is parsed and validated; the parsed rows come
// back in the response so the client can send them to the commit endpoint.
func HandleProductValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := app.FindRecordById("projects", e.Request.PathValue("projectId")); err != nil {
			return notFound(e, "project")
		}

		if err := e.Request.ParseMultipartForm(maxImportUpload); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid upload")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return validationMissing(e, "file")
		}
		defer file.Close()

		result, err := services.ValidateProductFile(file, header.Filename)
		if err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, err.Error())
		}

		return e.JSON(http.StatusOK, map[string]any{
			"total_rows":           result.TotalRows,
			"valid_rows":           result.ValidRows,
			"error_rows":           result.ErrorRows,
			"errors":               result.Errors,
			"unrecognized_columns": result.Unrecognized,
			"parsed_rows":          result.ParsedRows,
		})
	}
}

// HandleProductImportCommit handles POST /projects/{projectId}/products/import/commit.
// The body carries the parsed rows returned by the validate step.
func HandleProductImportCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		body := struct {
			ParsedRows []map[string]string `json:"parsed_rows"`
		}{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}
		if len(body.ParsedRows) == 0 {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "file data missing, re-upload and try again")
		}

		result, err := services.CommitProductImport(app, projectID, body.ParsedRows)
		if err != nil {
			log.Printf("product_import: commit failed: %v", err)
			return serverError(e)
		}
		return e.JSON(http.StatusOK, result)
	}
}

// HandleProductImportErrorReport handles POST /projects/{projectId}/products/import/errors.
// Returns the validation errors from the request body as a downloadable CSV.
func HandleProductImportErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		body := struct {
			Errors []services.ValidationError `json:"errors"`
		}{}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, ErrKindValidation, "invalid request body")
		}

		data := services.GenerateErrorReportCSV(body.Errors)
		e.Response.Header().Set("Content-Type", "text/csv")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="import-errors.csv"`)
		_, err := e.Response.Write(data)
		return err
	}
}
