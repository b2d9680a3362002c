package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleSupplierList returns suppliers as JSON, optionally filtered by
// the q query parameter (name, city or contact, case-insensitive).
// Route: GET /suppliers
func HandleSupplierList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		searchQuery := strings.TrimSpace(e.Request.URL.Query().Get("q"))

		var records []*core.Record
		var err error

		if searchQuery != "" {
			records, err = app.FindRecordsByFilter(
				"suppliers",
				"name ~ {:q} || city ~ {:q} || contact_name ~ {:q}",
				"name",
				0, 0,
				map[string]any{"q": searchQuery},
			)
		} else {
			records, err = app.FindRecordsByFilter(
				"suppliers",
				"1=1",
				"name",
				0, 0,
				nil,
			)
		}
		if err != nil {
			log.Printf("supplier_list: could not query suppliers: %v", err)
			records = nil
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, supplierJSON(rec))
		}

		return e.JSON(http.StatusOK, map[string]any{
			"suppliers":   items,
			"total_count": len(items),
			"query":       searchQuery,
		})
	}
}

// HandleSupplierView returns one supplier.
// Route: GET /suppliers/{id}
func HandleSupplierView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("suppliers", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Fornecedor não encontrado")
		}
		return e.JSON(http.StatusOK, supplierJSON(record))
	}
}
