package services

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProcessCode_Simple(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("100A")
	if !res.Found {
		t.Fatalf("expected Found, got detail %q", res.Detail)
	}
	if res.CostTotal != 10 || res.Freight != 2 || res.IPI != 0 || res.ListPrice != 50 {
		t.Errorf("unexpected fields: %+v", res)
	}
	// Promo price defaults to the list price when the stored promo is zero.
	if res.PromoPrice != 50 {
		t.Errorf("PromoPrice = %v, want 50 (defaulted to list price)", res.PromoPrice)
	}
}

func TestProcessCode_SimpleWithStoredPromo(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("200A")
	if !res.Found {
		t.Fatalf("expected Found, got detail %q", res.Detail)
	}
	if res.PromoPrice != 70 {
		t.Errorf("PromoPrice = %v, want stored promo 70", res.PromoPrice)
	}
	if res.IPI != 1.5 {
		t.Errorf("IPI = %v, want 1.5", res.IPI)
	}
}

func TestProcessCode_NotFound(t *testing.T) {
	base := testCostBase(t)

	tests := []struct {
		name   string
		code   string
		detail string
	}{
		{"empty code", "", "Código vazio"},
		{"blank code", "   ", "Código vazio"},
		{"unknown trailing letter", "100Z", "TC não identificado"},
		{"no silent pattern fallback", "100a", "TC não identificado"},
		{"known line but unknown code", "999A", "Código não encontrado"},
		{"bad multiplier", "x*100A", "multiplicador inválido"},
		{"multiplier without line", "2*100Z", "TC não identificado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := base.ProcessCode(tt.code)
			if res.Found {
				t.Fatalf("ProcessCode(%q) found = true, want false", tt.code)
			}
			if !strings.Contains(res.Detail, tt.detail) {
				t.Errorf("detail = %q, want it to contain %q", res.Detail, tt.detail)
			}
		})
	}
}

func TestProcessCode_MultiplierDistributesOverAllFields(t *testing.T) {
	base := testCostBase(t)

	single := base.ProcessCode("200A")
	double := base.ProcessCode("2*200A")
	if !double.Found {
		t.Fatalf("expected Found, got detail %q", double.Detail)
	}

	pairs := []struct {
		name     string
		got, ref float64
	}{
		{"CostTotal", double.CostTotal, single.CostTotal},
		{"Freight", double.Freight, single.Freight},
		{"IPI", double.IPI, single.IPI},
		{"ListPrice", double.ListPrice, single.ListPrice},
		{"PromoPrice", double.PromoPrice, single.PromoPrice},
	}
	for _, p := range pairs {
		if !almostEqual(p.got, 2*p.ref) {
			t.Errorf("%s = %v, want %v", p.name, p.got, 2*p.ref)
		}
	}
}

func TestProcessCode_FractionalMultiplier(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("0.5*100A")
	if !res.Found {
		t.Fatalf("expected Found, got detail %q", res.Detail)
	}
	if !almostEqual(res.CostTotal, 5) {
		t.Errorf("CostTotal = %v, want 5", res.CostTotal)
	}
}

func TestProcessCode_KitSumsComponents(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("100/200A")
	if !res.Found {
		t.Fatalf("expected Found, got detail %q", res.Detail)
	}
	if !almostEqual(res.CostTotal, 30) || !almostEqual(res.Freight, 6) ||
		!almostEqual(res.IPI, 1.5) || !almostEqual(res.ListPrice, 130) ||
		!almostEqual(res.PromoPrice, 120) {
		t.Errorf("unexpected kit sums: %+v", res)
	}
	if !strings.Contains(res.Detail, "2/2 encontrados") {
		t.Errorf("detail = %q, want 2/2 component count", res.Detail)
	}
}

func TestProcessCode_KitWithComponentMultiplier(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("2*100/200A")
	if !res.Found {
		t.Fatalf("expected Found, got detail %q", res.Detail)
	}
	// 2×100A + 200A
	if !almostEqual(res.CostTotal, 40) {
		t.Errorf("CostTotal = %v, want 40", res.CostTotal)
	}
}

func TestProcessCode_KitPartialSuccess(t *testing.T) {
	base := testCostBase(t)

	kit := base.ProcessCode("100/999A")
	if !kit.Found {
		t.Fatalf("kit with one resolvable component must succeed, got %q", kit.Detail)
	}

	alone := base.ProcessCode("100A")
	if !almostEqual(kit.CostTotal, alone.CostTotal) || !almostEqual(kit.ListPrice, alone.ListPrice) {
		t.Errorf("partial kit totals %+v, want totals of the resolved component alone %+v", kit, alone)
	}
	if !strings.Contains(kit.Detail, "999(TC A): NÃO ENCONTRADO") {
		t.Errorf("detail = %q, want the missing component flagged", kit.Detail)
	}
	if !strings.Contains(kit.Detail, "1/2 encontrados") {
		t.Errorf("detail = %q, want 1/2 component count", kit.Detail)
	}
}

func TestProcessCode_KitAllComponentsMissing(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("888/999A")
	if res.Found {
		t.Fatal("kit with no resolvable component must fail")
	}
	if !strings.Contains(res.Detail, "Nenhum componente encontrado") {
		t.Errorf("detail = %q", res.Detail)
	}
}

func TestProcessCode_KitBadComponentMultiplierIsSoft(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("x*100/200A")
	if !res.Found {
		t.Fatalf("kit must survive one malformed component, got %q", res.Detail)
	}
	if !almostEqual(res.CostTotal, 20) {
		t.Errorf("CostTotal = %v, want 20 (only the valid component)", res.CostTotal)
	}
	if !strings.Contains(res.Detail, "FORMATO MULTIPLICADOR INVÁLIDO") {
		t.Errorf("detail = %q, want malformed multiplier flagged", res.Detail)
	}
}

func TestProcessCode_KitWithoutValidTrailingLine(t *testing.T) {
	base := testCostBase(t)

	res := base.ProcessCode("100/200Z")
	if res.Found {
		t.Fatal("kit with unregistered trailing letter must fail")
	}
	if !strings.Contains(res.Detail, "TC não identificado no kit") {
		t.Errorf("detail = %q", res.Detail)
	}
}

func TestSplitCode(t *testing.T) {
	base := testCostBase(t)

	tests := []struct {
		name     string
		full     string
		wantCode string
		wantLine string
		wantOK   bool
	}{
		{"valid line A", "100A", "100", "A", true},
		{"valid line B", "100B", "100", "B", true},
		{"unregistered letter", "100Z", "", "", false},
		{"single char", "A", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, line, ok := base.SplitCode(tt.full)
			if code != tt.wantCode || line != tt.wantLine || ok != tt.wantOK {
				t.Errorf("SplitCode(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.full, code, line, ok, tt.wantCode, tt.wantLine, tt.wantOK)
			}
		})
	}
}
