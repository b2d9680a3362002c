package handlers

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricemanager/services"
)

// PriceUpdateRunner owns the single in-flight price update. Runs are
// serialized: starting while one is running returns 409.
type PriceUpdateRunner struct {
	mu       sync.Mutex
	running  bool
	progress float64
	messages []string
	summary  *services.RunSummary
	lastErr  error
	report   services.RunReport
}

func NewPriceUpdateRunner() *PriceUpdateRunner {
	return &PriceUpdateRunner{}
}

// HandleRun starts a price update in the background.
// Route: POST /price-update/run
func (r *PriceUpdateRunner) HandleRun(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Dados do formulário inválidos")
		}

		settings := loadSettings(app)

		baseFile := strings.TrimSpace(e.Request.FormValue("base_file"))
		if baseFile == "" && settings != nil {
			baseFile = settings.GetString("base_file_path")
		}
		productsFile := strings.TrimSpace(e.Request.FormValue("products_file"))
		if baseFile == "" || productsFile == "" {
			return apiError(e, http.StatusBadRequest, "Informe a base de custos e a planilha de produtos")
		}

		modeRaw := strings.TrimSpace(e.Request.FormValue("mode"))
		if modeRaw == "" && settings != nil {
			modeRaw = settings.GetString("mode")
		}
		mode, ok := parseMode(modeRaw)
		if !ok {
			return apiError(e, http.StatusBadRequest, "Modo inválido: use Fábrica ou Fornecedor")
		}

		applyRule := true
		if raw := e.Request.FormValue("apply_90_cents"); raw != "" {
			applyRule = raw != "false"
		} else if settings != nil {
			applyRule = settings.GetBool("apply_90_cents")
		}

		r.mu.Lock()
		if r.running {
			r.mu.Unlock()
			return apiError(e, http.StatusConflict, "Já existe uma atualização em andamento")
		}
		r.running = true
		r.progress = 0
		r.messages = nil
		r.summary = nil
		r.lastErr = nil
		r.mu.Unlock()

		companyName := ""
		if settings != nil {
			companyName = settings.GetString("company_name")
		}

		go r.run(baseFile, productsFile, mode, applyRule, companyName)

		return e.JSON(http.StatusAccepted, map[string]any{
			"started":        true,
			"base_file":      baseFile,
			"products_file":  productsFile,
			"mode":           string(mode),
			"apply_90_cents": applyRule,
		})
	}
}

func (r *PriceUpdateRunner) run(baseFile, productsFile string, mode services.Mode, applyRule bool, companyName string) {
	summary, err := services.RunPriceUpdate(baseFile, productsFile, services.RunOptions{
		Mode:             mode,
		ApplyNinetyCents: applyRule,
		Status: func(m string) {
			r.mu.Lock()
			r.messages = append(r.messages, m)
			r.mu.Unlock()
		},
		Progress: func(p float64) {
			r.mu.Lock()
			r.progress = p
			r.mu.Unlock()
		},
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.summary = summary
	r.lastErr = err
	if err != nil {
		log.Printf("priceupdate: run failed: %v", err)
		return
	}
	r.report = services.RunReport{
		CompanyName: companyName,
		GeneratedAt: time.Now().Format("02/01/2006 15:04"),
		BaseFile:    baseFile,
		OutputFile:  summary.OutputFile,
		Mode:        string(mode),
		Summary:     *summary,
	}
}

// HandleStatus reports progress, log messages and the final summary.
// Route: GET /price-update/status
func (r *PriceUpdateRunner) HandleStatus(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		body := map[string]any{
			"running":  r.running,
			"progress": r.progress,
			"messages": append([]string(nil), r.messages...),
		}
		if r.summary != nil {
			body["summary"] = r.summary
		}
		if r.lastErr != nil {
			body["error"] = r.lastErr.Error()
		}
		return e.JSON(http.StatusOK, body)
	}
}

// HandleReport downloads the PDF report of the last finished run.
// Route: GET /price-update/report
func (r *PriceUpdateRunner) HandleReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		r.mu.Lock()
		report := r.report
		ready := r.summary != nil && r.lastErr == nil && !r.running
		r.mu.Unlock()

		if !ready {
			return apiError(e, http.StatusNotFound, "Nenhuma atualização concluída para gerar relatório")
		}

		pdf, err := services.GenerateRunReportPDF(report)
		if err != nil {
			log.Printf("priceupdate: report: %v", err)
			return apiError(e, http.StatusInternalServerError, "Falha ao gerar o PDF")
		}

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="relatorio_precos.pdf"`)
		_, err = e.Response.Write(pdf)
		return err
	}
}

func parseMode(raw string) (services.Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "fábrica", "fabrica":
		return services.ModeFactory, true
	case "fornecedor", "":
		return services.ModeSupplier, true
	default:
		return "", false
	}
}

func loadSettings(app *pocketbase.PocketBase) *core.Record {
	col, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		return nil
	}
	records, err := app.FindAllRecords(col)
	if err != nil || len(records) == 0 {
		return nil
	}
	return records[0]
}
