package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"pricemanager/testhelpers"
)

func priceUpdateFixtures(t *testing.T) (base, products string) {
	t.Helper()
	base = writeTestWorkbook(t, "Estofados", [][]any{
		{"Base de Custos"},
		{"TC", "Código Fabricante", "Custo For", "Custo Fre", "Preço De", "IPI", "Preço Por"},
		{"A", "100", "10,00", "2,00", "50,00"},
	})
	products = writeTestWorkbook(t, "PRODUTO", [][]any{
		{"Código Fabricante", "VR Custo Total", "Custo Frete", "Custo IPI", "Preço de Venda", "Preço Promoção"},
		{"100A"},
	})
	return base, products
}

func waitForRun(t *testing.T, runner *PriceUpdateRunner) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		runner.mu.Lock()
		running := runner.running
		runner.mu.Unlock()
		if !running {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("price update did not finish in time")
}

func TestPriceUpdateRunner_EndToEnd(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	base, products := priceUpdateFixtures(t)
	runner := NewPriceUpdateRunner()

	req := newFormRequest("/price-update/run", url.Values{
		"base_file":      {base},
		"products_file":  {products},
		"mode":           {"Fornecedor"},
		"apply_90_cents": {"true"},
	})
	rec := httptest.NewRecorder()
	if err := runner.HandleRun(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}

	waitForRun(t, runner)

	req = httptest.NewRequest(http.MethodGet, "/price-update/status", nil)
	rec = httptest.NewRecorder()
	if err := runner.HandleStatus(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("status error: %v", err)
	}
	body := decodeJSON(t, rec)
	if body["running"] != false {
		t.Errorf("running = %v, want false", body["running"])
	}
	if body["progress"] != float64(1) {
		t.Errorf("progress = %v, want 1", body["progress"])
	}
	if _, hasErr := body["error"]; hasErr {
		t.Fatalf("run failed: %v", body["error"])
	}
	summary := body["summary"].(map[string]any)
	if summary["updated"] != float64(1) {
		t.Errorf("summary.updated = %v, want 1", summary["updated"])
	}
	if msgs := body["messages"].([]any); len(msgs) == 0 {
		t.Error("expected status messages")
	}

	req = httptest.NewRequest(http.MethodGet, "/price-update/report", nil)
	rec = httptest.NewRecorder()
	if err := runner.HandleReport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("report error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); len(got) < 5 || got[:5] != "%PDF-" {
		t.Errorf("report is not a PDF, starts with %q", got[:min(5, len(got))])
	}
}

func TestPriceUpdateRunner_ConflictWhileRunning(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	base, products := priceUpdateFixtures(t)
	runner := NewPriceUpdateRunner()
	runner.running = true

	req := newFormRequest("/price-update/run", url.Values{
		"base_file":     {base},
		"products_file": {products},
	})
	rec := httptest.NewRecorder()
	if err := runner.HandleRun(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
}

func TestPriceUpdateRunner_BadRequests(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	base, products := priceUpdateFixtures(t)
	runner := NewPriceUpdateRunner()

	tests := []struct {
		name   string
		values url.Values
	}{
		{"missing files", url.Values{}},
		{"invalid mode", url.Values{
			"base_file":     {base},
			"products_file": {products},
			"mode":          {"Atacado"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := newTestRequestEvent(app, newFormRequest("/price-update/run", tt.values), rec)
			if err := runner.HandleRun(app)(e); err != nil {
				t.Fatalf("run error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestPriceUpdateRunner_ReportBeforeAnyRun(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	runner := NewPriceUpdateRunner()

	req := httptest.NewRequest(http.MethodGet, "/price-update/report", nil)
	rec := httptest.NewRecorder()
	if err := runner.HandleReport(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("report error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestPriceUpdateRunner_FailedRunExposesError(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	_, products := priceUpdateFixtures(t)
	runner := NewPriceUpdateRunner()

	req := newFormRequest("/price-update/run", url.Values{
		"base_file":     {"/nonexistent/base.xlsx"},
		"products_file": {products},
	})
	rec := httptest.NewRecorder()
	if err := runner.HandleRun(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}

	waitForRun(t, runner)

	rec = httptest.NewRecorder()
	statusReq := httptest.NewRequest(http.MethodGet, "/price-update/status", nil)
	if err := runner.HandleStatus(app)(newTestRequestEvent(app, statusReq, rec)); err != nil {
		t.Fatalf("status error: %v", err)
	}
	body := decodeJSON(t, rec)
	if _, hasErr := body["error"]; !hasErr {
		t.Error("expected error in status after failed run")
	}
}
