package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleConfigView returns the saved price-update defaults.
// Route: GET /price-update/config
func HandleConfigView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		settings := loadSettings(app)
		if settings == nil {
			return apiError(e, http.StatusNotFound, "Configuração não encontrada")
		}
		return e.JSON(http.StatusOK, settingsJSON(settings))
	}
}

// HandleConfigSave updates the price-update defaults. Only the fields
// present in the form change.
// Route: POST /price-update/config
func HandleConfigSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Dados do formulário inválidos")
		}

		settings := loadSettings(app)
		if settings == nil {
			col, err := app.FindCollectionByNameOrId("settings")
			if err != nil {
				log.Printf("config_save: settings collection: %v", err)
				return apiError(e, http.StatusInternalServerError, "Coleção de configurações indisponível")
			}
			settings = core.NewRecord(col)
		}

		if raw, ok := formField(e, "mode"); ok {
			mode, valid := parseMode(raw)
			if !valid {
				return apiError(e, http.StatusBadRequest, "Modo inválido: use Fábrica ou Fornecedor")
			}
			settings.Set("mode", string(mode))
		}
		for _, field := range []string{"company_name", "base_file_path", "athos_template_path", "athos_output_dir"} {
			if raw, ok := formField(e, field); ok {
				settings.Set(field, raw)
			}
		}
		if raw, ok := formField(e, "apply_90_cents"); ok {
			settings.Set("apply_90_cents", raw != "false")
		}

		if err := app.Save(settings); err != nil {
			log.Printf("config_save: %v", err)
			return apiError(e, http.StatusInternalServerError, "Não foi possível salvar a configuração")
		}

		return e.JSON(http.StatusOK, settingsJSON(settings))
	}
}

func formField(e *core.RequestEvent, name string) (string, bool) {
	if _, ok := e.Request.Form[name]; !ok {
		return "", false
	}
	return strings.TrimSpace(e.Request.FormValue(name)), true
}

func settingsJSON(settings *core.Record) map[string]any {
	return map[string]any{
		"company_name":        settings.GetString("company_name"),
		"base_file_path":      settings.GetString("base_file_path"),
		"mode":                settings.GetString("mode"),
		"apply_90_cents":      settings.GetBool("apply_90_cents"),
		"athos_template_path": settings.GetString("athos_template_path"),
		"athos_output_dir":    settings.GetString("athos_output_dir"),
	}
}
