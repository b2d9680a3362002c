package handlers

import (
	"github.com/pocketbase/pocketbase/core"
)

// apiError sends a JSON error body with the given status.
func apiError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, map[string]string{"error": message})
}

// productJSON flattens a product record for API responses, resolving the
// category and supplier relations to their names.
func productJSON(app core.App, rec *core.Record) map[string]any {
	out := map[string]any{
		"id":           rec.Id,
		"code":         rec.GetString("code"),
		"name":         rec.GetString("name"),
		"cost_total":   rec.GetFloat("cost_total"),
		"freight_cost": rec.GetFloat("freight_cost"),
		"ipi_cost":     rec.GetFloat("ipi_cost"),
		"sell_price":   rec.GetFloat("sell_price"),
		"promo_price":  rec.GetFloat("promo_price"),
		"active":       rec.GetBool("active"),
	}
	out["category"] = relationName(app, "categories", rec.GetString("category"))
	out["supplier"] = relationName(app, "suppliers", rec.GetString("supplier"))
	return out
}

func supplierJSON(rec *core.Record) map[string]any {
	return map[string]any{
		"id":           rec.Id,
		"name":         rec.GetString("name"),
		"cnpj":         rec.GetString("cnpj"),
		"city":         rec.GetString("city"),
		"state":        rec.GetString("state"),
		"phone":        rec.GetString("phone"),
		"email":        rec.GetString("email"),
		"contact_name": rec.GetString("contact_name"),
	}
}

func relationName(app core.App, collection, id string) string {
	if id == "" {
		return ""
	}
	rec, err := app.FindRecordById(collection, id)
	if err != nil {
		return ""
	}
	return rec.GetString("name")
}
