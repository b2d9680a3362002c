package services

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteBack_WritesByCapturedRow(t *testing.T) {
	path := productsFixture(t, "100A", "999Z", "200A")

	updates := []CellUpdate{
		{Row: 2, CostTotal: 10, Freight: 2, IPI: 0, SellPrice: 50.90, PromoPrice: 50.90},
		{Row: 4, CostTotal: 20, Freight: 4, IPI: 1.5, SellPrice: 80.90, PromoPrice: 70.90},
	}
	if err := WriteBack(path, updates); err != nil {
		t.Fatalf("WriteBack() error = %v", err)
	}

	got := readCells(t, path, productsSheet, "B2", "C2", "D2", "E2", "F2")
	want := []string{"10", "2", "0", "50.9", "50.9"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row 2 cell %d = %q, want %q", i, got[i], want[i])
		}
	}

	// Row 3 was not matched: its cells stay untouched.
	row3 := readCells(t, path, productsSheet, "B3", "E3")
	if row3[0] != "" || row3[1] != "" {
		t.Errorf("unmatched row 3 was written: %v", row3)
	}

	row4 := readCells(t, path, productsSheet, "B4", "D4", "F4")
	if row4[0] != "20" || row4[1] != "1.5" || row4[2] != "70.9" {
		t.Errorf("row 4 = %v", row4)
	}
}

func TestWriteBack_CreatesMissingOutputColumns(t *testing.T) {
	// Sheet with only the code column: the five output columns must be
	// created at the end of the header row.
	path := writeWorkbook(t, []sheetDef{
		{name: productsSheet, rows: [][]any{
			{codeHeader},
			{"100A"},
		}},
	})

	updates := []CellUpdate{{Row: 2, CostTotal: 10, Freight: 2, SellPrice: 50.90, PromoPrice: 50.90}}
	if err := WriteBack(path, updates); err != nil {
		t.Fatalf("WriteBack() error = %v", err)
	}

	headers := readCells(t, path, productsSheet, "B1", "C1", "D1", "E1", "F1")
	for i, h := range outputHeaders {
		if headers[i] != h {
			t.Errorf("created header %d = %q, want %q", i, headers[i], h)
		}
	}
	values := readCells(t, path, productsSheet, "B2", "E2")
	if values[0] != "10" || values[1] != "50.9" {
		t.Errorf("values = %v", values)
	}
}

func TestWriteBack_StopsBeyondSheetEnd(t *testing.T) {
	path := productsFixture(t, "100A")

	updates := []CellUpdate{
		{Row: 2, CostTotal: 10, SellPrice: 50.90, PromoPrice: 50.90},
		{Row: 99, CostTotal: 1},
	}
	if err := WriteBack(path, updates); err != nil {
		t.Fatalf("WriteBack() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(productsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) > 2 {
		t.Errorf("sheet was extended to %d rows", len(rows))
	}
}

func TestWriteBack_PreservesFormatting(t *testing.T) {
	path := productsFixture(t, "100A")

	// Style the code cell before the write phase.
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	if err := f.SetCellStyle(productsSheet, "A2", "A2", styleID); err != nil {
		t.Fatalf("set style: %v", err)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	if err := WriteBack(path, []CellUpdate{{Row: 2, CostTotal: 10, SellPrice: 50.90, PromoPrice: 50.90}}); err != nil {
		t.Fatalf("WriteBack() error = %v", err)
	}

	f, err = excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	gotStyle, err := f.GetCellStyle(productsSheet, "A2")
	if err != nil {
		t.Fatalf("get style: %v", err)
	}
	if gotStyle != styleID {
		t.Errorf("cell style = %d, want %d (formatting must survive the write)", gotStyle, styleID)
	}
}

func TestWriteBack_MissingHeaderIsSchemaError(t *testing.T) {
	path := writeWorkbook(t, []sheetDef{
		{name: productsSheet, rows: [][]any{
			{"qualquer coisa"},
			{"100A"},
		}},
	})

	err := WriteBack(path, []CellUpdate{{Row: 2}})
	if err == nil {
		t.Fatal("expected error when the header row cannot be located")
	}
	if _, ok := err.(*SchemaError); !ok {
		t.Errorf("error type = %T, want *SchemaError", err)
	}
}
