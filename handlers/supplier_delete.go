package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleSupplierDelete removes a supplier. Products keep their rows; the
// relation just clears.
// Route: DELETE /suppliers/{id}
func HandleSupplierDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("suppliers", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Fornecedor não encontrado")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("supplier_delete: %v", err)
			return apiError(e, http.StatusInternalServerError, "Não foi possível excluir o fornecedor")
		}

		return e.JSON(http.StatusOK, map[string]string{"deleted": record.Id})
	}
}
