package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type supplierDef struct {
	name        string
	city        string
	state       string
	contactName string
}

type productDef struct {
	code       string
	name       string
	category   string
	supplier   string
	costTotal  float64
	freight    float64
	sellPrice  float64
	promoPrice float64
}

var seedCategories = []string{
	"Poltrona",
	"Namoradeira",
	"Sofá",
	"Puff",
	"Banqueta",
	"Cadeira",
}

var seedSuppliers = []supplierDef{
	{name: "Estofados Sul", city: "Bento Gonçalves", state: "RS", contactName: "Marcos"},
	{name: "Madeiras Paraná", city: "Arapongas", state: "PR", contactName: "Cida"},
}

var seedProducts = []productDef{
	{code: "1001", name: "Poltrona Costela", category: "Poltrona", supplier: "Estofados Sul",
		costTotal: 420, freight: 60, sellPrice: 1299.90, promoPrice: 1199.90},
	{code: "1002", name: "Cadeira Eiffel", category: "Cadeira", supplier: "Madeiras Paraná",
		costTotal: 95, freight: 18, sellPrice: 289.90, promoPrice: 289.90},
	{code: "2001", name: "Sofá Retrátil 3 Lugares", category: "Sofá", supplier: "Estofados Sul",
		costTotal: 980, freight: 140, sellPrice: 2599.90, promoPrice: 2399.90},
}

// Seed populates the database with the default categories, a couple of
// suppliers and sample products, plus the settings record the price
// updater reads its defaults from. It is a no-op when settings already
// has a record.
func Seed(app *pocketbase.PocketBase) error {
	settingsCol, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		return fmt.Errorf("settings collection not found: %w", err)
	}
	if existing, _ := app.FindAllRecords(settingsCol); len(existing) > 0 {
		return nil
	}

	categoryIDs := map[string]string{}
	for _, name := range seedCategories {
		id, err := upsertByName(app, "categories", name, nil)
		if err != nil {
			return err
		}
		categoryIDs[name] = id
	}

	supplierIDs := map[string]string{}
	for _, s := range seedSuppliers {
		id, err := upsertByName(app, "suppliers", s.name, func(r *core.Record) {
			r.Set("city", s.city)
			r.Set("state", s.state)
			r.Set("contact_name", s.contactName)
		})
		if err != nil {
			return err
		}
		supplierIDs[s.name] = id
	}

	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("products collection not found: %w", err)
	}
	for _, p := range seedProducts {
		record := core.NewRecord(productsCol)
		record.Set("code", p.code)
		record.Set("name", p.name)
		record.Set("category", categoryIDs[p.category])
		record.Set("supplier", supplierIDs[p.supplier])
		record.Set("cost_total", p.costTotal)
		record.Set("freight_cost", p.freight)
		record.Set("sell_price", p.sellPrice)
		record.Set("promo_price", p.promoPrice)
		record.Set("active", true)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed product %q: %w", p.code, err)
		}
	}

	settings := core.NewRecord(settingsCol)
	settings.Set("company_name", "D'Rossi")
	settings.Set("mode", "Fornecedor")
	settings.Set("apply_90_cents", true)
	if err := app.Save(settings); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	return nil
}

func upsertByName(app *pocketbase.PocketBase, collection, name string, set func(*core.Record)) (string, error) {
	if existing, err := app.FindFirstRecordByData(collection, "name", name); err == nil {
		return existing.Id, nil
	}

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		return "", fmt.Errorf("%s collection not found: %w", collection, err)
	}
	record := core.NewRecord(col)
	record.Set("name", name)
	if set != nil {
		set(record)
	}
	if err := app.Save(record); err != nil {
		return "", fmt.Errorf("seed %s %q: %w", collection, name, err)
	}
	return record.Id, nil
}
