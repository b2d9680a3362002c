package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricemanager/services"
)

// HandleCatalogValidate receives a catalog file upload (.csv or .xlsx),
// validates it and returns the result plus the parsed rows to be posted
// back on commit.
// Route: POST /products/import
func HandleCatalogValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Max 10MB upload.
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return apiError(e, http.StatusBadRequest, "Arquivo muito grande ou formulário inválido")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return apiError(e, http.StatusBadRequest, "Selecione um arquivo para enviar")
		}
		defer file.Close()

		result, err := services.ValidateCatalogFile(file, header.Filename)
		if err != nil {
			log.Printf("catalog_import: validate %q: %v", header.Filename, err)
			return apiError(e, http.StatusBadRequest, err.Error())
		}

		body := map[string]any{
			"file_name":  header.Filename,
			"total_rows": result.TotalRows,
			"valid_rows": result.ValidRows,
			"error_rows": result.ErrorRows,
			"errors":     result.Errors,
		}
		if result.ErrorRows == 0 {
			body["rows"] = result.ParsedRows
		}
		return e.JSON(http.StatusOK, body)
	}
}

// HandleCatalogCommit upserts previously validated rows into the
// catalog. The body is the rows array returned by the validate step.
// Route: POST /products/import/commit
func HandleCatalogCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload struct {
			Rows []map[string]string `json:"rows"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Corpo da requisição inválido")
		}
		if len(payload.Rows) == 0 {
			return apiError(e, http.StatusBadRequest, "Nenhuma linha para importar")
		}

		created, updated, err := services.CommitCatalogImport(app, &services.ImportResult{ParsedRows: payload.Rows})
		if err != nil {
			log.Printf("catalog_import: commit: %v", err)
			return apiError(e, http.StatusInternalServerError, "Falha ao gravar a importação")
		}

		return e.JSON(http.StatusOK, map[string]int{
			"created": created,
			"updated": updated,
		})
	}
}
