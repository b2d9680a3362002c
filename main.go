package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricemanager/collections"
	"pricemanager/handlers"
)

func main() {
	_ = godotenv.Load()

	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Product catalog ──────────────────────────────────────
		se.Router.GET("/products", handlers.HandleProductList(app))
		se.Router.POST("/products", handlers.HandleProductCreate(app))
		se.Router.GET("/products/export", handlers.HandleCatalogExport(app))
		se.Router.POST("/products/import", handlers.HandleCatalogValidate(app))
		se.Router.POST("/products/import/commit", handlers.HandleCatalogCommit(app))
		se.Router.GET("/products/{id}", handlers.HandleProductView(app))
		se.Router.POST("/products/{id}", handlers.HandleProductUpdate(app))
		se.Router.DELETE("/products/{id}", handlers.HandleProductDelete(app))

		// ── Suppliers ────────────────────────────────────────────
		se.Router.GET("/suppliers", handlers.HandleSupplierList(app))
		se.Router.POST("/suppliers", handlers.HandleSupplierCreate(app))
		se.Router.GET("/suppliers/{id}", handlers.HandleSupplierView(app))
		se.Router.POST("/suppliers/{id}", handlers.HandleSupplierUpdate(app))
		se.Router.DELETE("/suppliers/{id}", handlers.HandleSupplierDelete(app))

		// ── Price update ─────────────────────────────────────────
		runner := handlers.NewPriceUpdateRunner()
		se.Router.POST("/price-update/run", runner.HandleRun(app))
		se.Router.GET("/price-update/status", runner.HandleStatus(app))
		se.Router.GET("/price-update/report", runner.HandleReport(app))
		se.Router.GET("/price-update/config", handlers.HandleConfigView(app))
		se.Router.POST("/price-update/config", handlers.HandleConfigSave(app))

		// ── Athos ────────────────────────────────────────────────
		se.Router.POST("/athos/generate", handlers.HandleAthosGenerate(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
