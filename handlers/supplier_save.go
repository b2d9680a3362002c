package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleSupplierCreate creates a supplier from form data.
// Route: POST /suppliers
func HandleSupplierCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("suppliers")
		if err != nil {
			log.Printf("supplier_save: suppliers collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Coleção de fornecedores indisponível")
		}
		return saveSupplier(app, e, core.NewRecord(col), http.StatusCreated)
	}
}

// HandleSupplierUpdate updates an existing supplier.
// Route: POST /suppliers/{id}
func HandleSupplierUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("suppliers", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Fornecedor não encontrado")
		}
		return saveSupplier(app, e, record, http.StatusOK)
	}
}

func saveSupplier(app *pocketbase.PocketBase, e *core.RequestEvent, record *core.Record, okStatus int) error {
	if err := e.Request.ParseForm(); err != nil {
		return apiError(e, http.StatusBadRequest, "Dados do formulário inválidos")
	}

	name := strings.TrimSpace(e.Request.FormValue("name"))
	if name == "" {
		return apiError(e, http.StatusBadRequest, "Nome é obrigatório")
	}

	record.Set("name", name)
	for _, field := range []string{"cnpj", "city", "state", "phone", "email", "contact_name"} {
		record.Set(field, strings.TrimSpace(e.Request.FormValue(field)))
	}

	if err := app.Save(record); err != nil {
		log.Printf("supplier_save: save %q: %v", name, err)
		return apiError(e, http.StatusInternalServerError, "Não foi possível salvar o fornecedor")
	}

	return e.JSON(okStatus, supplierJSON(record))
}
