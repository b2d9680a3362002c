package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

type sheetDef struct {
	name string
	rows [][]any
}

// writeWorkbook writes the given sheets to a temp .xlsx (rows start at
// row 1) and returns its path.
func writeWorkbook(t *testing.T, sheets []sheetDef) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else {
			if _, err := f.NewSheet(s.name); err != nil {
				t.Fatalf("new sheet %q: %v", s.name, err)
			}
		}
		for r := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(s.name, cell, &s.rows[r]); err != nil {
				t.Fatalf("set row %d on %q: %v", r+1, s.name, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

var costBaseHeader = []any{"TC", "Código Fabricante", "Custo For", "Custo Fre", "Preço De", "IPI", "Preço Por"}

// costBaseFixture builds a supplier-mode cost-base workbook: one sheet,
// title on row 1, headers on row 2, data from row 3.
func costBaseFixture(t *testing.T, data ...[]any) string {
	t.Helper()
	rows := [][]any{{"Base de Custos"}, costBaseHeader}
	rows = append(rows, data...)
	return writeWorkbook(t, []sheetDef{{name: "Estofados", rows: rows}})
}

// productsFixture builds a products workbook with the PRODUTO sheet,
// headers on row 1 and one data row per code.
func productsFixture(t *testing.T, codes ...string) string {
	t.Helper()
	rows := [][]any{{codeHeader, "VR Custo Total", "Custo Frete", "Custo IPI", "Preço de Venda", "Preço Promoção"}}
	for _, c := range codes {
		rows = append(rows, []any{c})
	}
	return writeWorkbook(t, []sheetDef{{name: productsSheet, rows: rows}})
}

func loadCostBaseFixture(t *testing.T, path string, mode Mode) (*CostBase, LoadStats) {
	t.Helper()
	base, stats, err := LoadCostBase(path, mode)
	if err != nil {
		t.Fatalf("LoadCostBase(%q) error = %v", path, err)
	}
	return base, stats
}

// testCostBase builds an in-memory index for grammar tests: codes 100
// and 200 on line A (200 has IPI and a distinct promo price), code 100
// on line B.
func testCostBase(t *testing.T) *CostBase {
	t.Helper()
	b := NewCostBase(NewFabricLineSet(map[string]int{"A": 3, "B": 1}))
	b.Put("100", "A", BaseCost{SupplierCost: 10, FreightCost: 2, ListPrice: 50, Sheet: "Estofados", Row: 3})
	b.Put("200", "A", BaseCost{SupplierCost: 20, FreightCost: 4, IPI: 1.5, ListPrice: 80, PromoPrice: 70, Sheet: "Estofados", Row: 4})
	b.Put("100", "B", BaseCost{SupplierCost: 11, FreightCost: 3, ListPrice: 60, Sheet: "Estofados", Row: 5})
	return b
}

// readFileBytes loads a fixture file into memory.
func readFileBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %q: %v", path, err)
	}
	return data
}

// readCells returns the values of the given cells from a saved workbook.
func readCells(t *testing.T, path, sheet string, cells ...string) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open %q: %v", path, err)
	}
	defer f.Close()

	out := make([]string, len(cells))
	for i, c := range cells {
		v, err := f.GetCellValue(sheet, c)
		if err != nil {
			t.Fatalf("get cell %s: %v", c, err)
		}
		out[i] = v
	}
	return out
}
