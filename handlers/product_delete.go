package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProductDelete removes a product.
// Route: DELETE /products/{id}
func HandleProductDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Produto não encontrado")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("product_delete: %v", err)
			return apiError(e, http.StatusInternalServerError, "Não foi possível excluir o produto")
		}

		return e.JSON(http.StatusOK, map[string]string{"deleted": record.Id})
	}
}
