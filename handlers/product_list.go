package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProductList returns the product catalog as JSON, optionally
// filtered by the q query parameter (code or name, case-insensitive).
// Route: GET /products
func HandleProductList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		searchQuery := strings.TrimSpace(e.Request.URL.Query().Get("q"))

		var records []*core.Record
		var err error

		if searchQuery != "" {
			records, err = app.FindRecordsByFilter(
				"products",
				"code ~ {:q} || name ~ {:q}",
				"name",
				0, 0,
				map[string]any{"q": searchQuery},
			)
		} else {
			records, err = app.FindRecordsByFilter(
				"products",
				"1=1",
				"name",
				0, 0,
				nil,
			)
		}
		if err != nil {
			log.Printf("product_list: could not query products: %v", err)
			records = nil
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, productJSON(app, rec))
		}

		return e.JSON(http.StatusOK, map[string]any{
			"products":    items,
			"total_count": len(items),
			"query":       searchQuery,
		})
	}
}

// HandleProductView returns one product.
// Route: GET /products/{id}
func HandleProductView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Produto não encontrado")
		}
		return e.JSON(http.StatusOK, productJSON(app, record))
	}
}
