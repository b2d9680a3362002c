package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricemanager/services"
)

// HandleCatalogExport downloads the product catalog as a styled Excel
// file, honoring the same q filter as the list.
// Route: GET /products/export
func HandleCatalogExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		searchQuery := e.Request.URL.Query().Get("q")

		filter := "1=1"
		var params map[string]any
		if searchQuery != "" {
			filter = "code ~ {:q} || name ~ {:q}"
			params = map[string]any{"q": searchQuery}
		}
		records, err := app.FindRecordsByFilter("products", filter, "name", 0, 0, params)
		if err != nil {
			log.Printf("catalog_export: query: %v", err)
			return apiError(e, http.StatusInternalServerError, "Falha ao consultar o catálogo")
		}

		data := services.CatalogExportData{
			Title:       "Catálogo de Produtos",
			GeneratedAt: time.Now().Format("02/01/2006 15:04"),
		}
		for _, rec := range records {
			data.Rows = append(data.Rows, services.CatalogExportRow{
				Code:       rec.GetString("code"),
				Name:       rec.GetString("name"),
				Category:   relationName(app, "categories", rec.GetString("category")),
				Supplier:   relationName(app, "suppliers", rec.GetString("supplier")),
				CostTotal:  rec.GetFloat("cost_total"),
				Freight:    rec.GetFloat("freight_cost"),
				IPI:        rec.GetFloat("ipi_cost"),
				SellPrice:  rec.GetFloat("sell_price"),
				PromoPrice: rec.GetFloat("promo_price"),
				Active:     rec.GetBool("active"),
			})
		}

		out, err := services.GenerateCatalogExcel(data)
		if err != nil {
			log.Printf("catalog_export: generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "Falha ao gerar o Excel")
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="catalogo_produtos.xlsx"`)
		_, err = e.Response.Write(out)
		return err
	}
}
