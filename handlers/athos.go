package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricemanager/services"
)

// HandleAthosGenerate runs the rule engine over an SQL export workbook
// and writes one template copy per non-empty rule plus the consolidated
// report. Template and output dir fall back to the saved settings.
// Route: POST /athos/generate
func HandleAthosGenerate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Dados do formulário inválidos")
		}

		settings := loadSettings(app)

		exportFile := strings.TrimSpace(e.Request.FormValue("export_file"))
		templateFile := strings.TrimSpace(e.Request.FormValue("template_file"))
		outDir := strings.TrimSpace(e.Request.FormValue("output_dir"))
		if templateFile == "" && settings != nil {
			templateFile = settings.GetString("athos_template_path")
		}
		if outDir == "" && settings != nil {
			outDir = settings.GetString("athos_output_dir")
		}
		if exportFile == "" || templateFile == "" || outDir == "" {
			return apiError(e, http.StatusBadRequest, "Informe o export, o template e o diretório de saída")
		}

		summary, err := services.GenerateAthos(exportFile, templateFile, outDir)
		if err != nil {
			log.Printf("athos: generate: %v", err)
			return apiError(e, http.StatusBadRequest, err.Error())
		}

		return e.JSON(http.StatusOK, summary)
	}
}
