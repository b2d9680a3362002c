package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricemanager/services"
)

// HandleProductCreate creates a product from form data.
// Route: POST /products
func HandleProductCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			log.Printf("product_save: products collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Coleção de produtos indisponível")
		}
		return saveProduct(app, e, core.NewRecord(col), http.StatusCreated)
	}
}

// HandleProductUpdate updates an existing product.
// Route: POST /products/{id}
func HandleProductUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Produto não encontrado")
		}
		return saveProduct(app, e, record, http.StatusOK)
	}
}

func saveProduct(app *pocketbase.PocketBase, e *core.RequestEvent, record *core.Record, okStatus int) error {
	if err := e.Request.ParseForm(); err != nil {
		return apiError(e, http.StatusBadRequest, "Dados do formulário inválidos")
	}

	code := strings.TrimSpace(e.Request.FormValue("code"))
	name := strings.TrimSpace(e.Request.FormValue("name"))
	if code == "" {
		return apiError(e, http.StatusBadRequest, "Código é obrigatório")
	}
	if name == "" {
		return apiError(e, http.StatusBadRequest, "Descrição é obrigatória")
	}

	// Duplicate code guard, except when updating the same record.
	if existing, err := app.FindFirstRecordByData("products", "code", code); err == nil && existing.Id != record.Id {
		return apiError(e, http.StatusConflict, "Já existe um produto com esse código")
	}

	record.Set("code", code)
	record.Set("name", name)
	record.Set("active", e.Request.FormValue("active") != "false")

	// Money fields accept plain numbers or BRL strings.
	for _, field := range []string{"cost_total", "freight_cost", "ipi_cost", "sell_price", "promo_price"} {
		if raw := strings.TrimSpace(e.Request.FormValue(field)); raw != "" {
			record.Set(field, services.ParseCurrency(raw))
		}
	}

	for field, collection := range map[string]string{"category": "categories", "supplier": "suppliers"} {
		raw := strings.TrimSpace(e.Request.FormValue(field))
		if raw == "" {
			continue
		}
		rel, err := app.FindRecordById(collection, raw)
		if err != nil {
			return apiError(e, http.StatusBadRequest, "Relação inválida: "+field)
		}
		record.Set(field, rel.Id)
	}

	if err := app.Save(record); err != nil {
		log.Printf("product_save: save %q: %v", code, err)
		return apiError(e, http.StatusInternalServerError, "Não foi possível salvar o produto")
	}

	return e.JSON(okStatus, productJSON(app, record))
}
