package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// BaseCost is one cost-base row, keyed by (manufacturer code, fabric
// line). Records are immutable after the load that produced them.
type BaseCost struct {
	SupplierCost float64
	FreightCost  float64
	IPI          float64
	ListPrice    float64
	PromoPrice   float64
	Sheet        string
	Row          int // 1-based Excel row the record came from
}

// CostBase is the lookup table for one processing run: manufacturer code
// → fabric line → cost record, plus the fabric-line set the load was
// built against.
type CostBase struct {
	lines   FabricLineSet
	records map[string]map[string]BaseCost
}

// NewCostBase returns an empty index bound to the given fabric-line set.
func NewCostBase(lines FabricLineSet) *CostBase {
	return &CostBase{lines: lines, records: map[string]map[string]BaseCost{}}
}

// Lines returns the fabric-line set this index was built against.
func (b *CostBase) Lines() FabricLineSet {
	return b.lines
}

// Put inserts a record, overwriting any existing entry for the same
// (code, line) key. It reports whether an entry was replaced.
func (b *CostBase) Put(code, line string, rec BaseCost) bool {
	variants, ok := b.records[code]
	if !ok {
		variants = map[string]BaseCost{}
		b.records[code] = variants
	}
	_, replaced := variants[line]
	variants[line] = rec
	return replaced
}

// Get returns the record for (code, line), if any.
func (b *CostBase) Get(code, line string) (BaseCost, bool) {
	rec, ok := b.records[code][line]
	return rec, ok
}

// Len returns the number of distinct manufacturer codes loaded.
func (b *CostBase) Len() int {
	return len(b.records)
}

// Variants returns the total number of (code, line) records loaded.
func (b *CostBase) Variants() int {
	n := 0
	for _, v := range b.records {
		n += len(v)
	}
	return n
}

// LoadStats summarizes one cost-base load.
type LoadStats struct {
	SheetsUsed int
	Products   int
	Variants   int
	Duplicates int // (code, line) keys seen more than once (last one wins)
	BadValues  int // non-blank cells that failed currency parsing
}

var costBaseSpecs = []HeaderSpec{
	{Field: "tc", Labels: []string{"TC"}, Required: true},
	{Field: "code", Labels: []string{"Código Fabricante", "Codigo Fabricante"}, Required: true},
	{Field: "supplier_cost", Labels: []string{"Custo For", "Custo Fornecedor"}, Required: true},
	{Field: "freight_cost", Labels: []string{"Custo Fre", "Custo Frete"}, Required: true},
	{Field: "list_price", Labels: []string{"Preço De", "Preco De"}, Required: true},
	{Field: "ipi", Labels: []string{"IPI"}},
	{Field: "promo_price", Labels: []string{"Preço Por", "Preco Por"}},
}

// LoadCostBase opens the cost-base workbook, detects the fabric lines and
// builds the lookup index in one step.
func LoadCostBase(path string, mode Mode) (*CostBase, LoadStats, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("abrir base de custos: %w", err)
	}
	defer f.Close()

	lines := DetectFabricLines(f, mode)
	return BuildCostBase(f, mode, lines)
}

// BuildCostBase loads every usable sheet of an already-open workbook into
// a CostBase keyed by (manufacturer code, fabric line). It requires a
// non-empty fabric-line set from a prior DetectFabricLines call. A sheet
// missing required columns is skipped with a warning; the workbook is
// valid as long as one sheet is usable. Duplicate keys follow
// last-write-wins with a logged warning.
func BuildCostBase(f *excelize.File, mode Mode, lines FabricLineSet) (*CostBase, LoadStats, error) {
	if lines.Empty() {
		return nil, LoadStats{}, errors.New("nenhuma linha TC válida detectada na base de custos")
	}

	base := NewCostBase(lines)
	stats := LoadStats{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			log.Printf("costbase: aba %q ilegível: %v", sheet, err)
			continue
		}

		headerRow := mode.HeaderRow(sheet)
		if len(rows) < headerRow {
			log.Printf("costbase: aba %q vazia, ignorando", sheet)
			continue
		}

		cols, err := LocateColumns(sheet, rows[headerRow-1], costBaseSpecs)
		if err != nil {
			log.Printf("costbase: ignorando %v", err)
			continue
		}
		stats.SheetsUsed++

		for i, row := range rows[headerRow:] {
			excelRow := headerRow + 1 + i
			code := cols.Cell(row, "code")
			line := strings.ToUpper(cols.Cell(row, "tc"))
			if code == "" || !lines.Contains(line) {
				continue
			}

			rec := BaseCost{
				SupplierCost: parseCounting(cols.Cell(row, "supplier_cost"), &stats),
				FreightCost:  parseCounting(cols.Cell(row, "freight_cost"), &stats),
				ListPrice:    parseCounting(cols.Cell(row, "list_price"), &stats),
				Sheet:        sheet,
				Row:          excelRow,
			}
			if cols.Has("ipi") {
				rec.IPI = parseCounting(cols.Cell(row, "ipi"), &stats)
			}
			if cols.Has("promo_price") {
				rec.PromoPrice = parseCounting(cols.Cell(row, "promo_price"), &stats)
			}

			if base.Put(code, line, rec) {
				stats.Duplicates++
				log.Printf("costbase: chave duplicada %s(TC %s) na aba %q linha %d, sobrescrevendo",
					code, line, sheet, excelRow)
			}
			stats.Variants++
		}
	}

	stats.Products = base.Len()
	if stats.BadValues > 0 {
		log.Printf("costbase: %d valores monetários ilegíveis tratados como 0,00", stats.BadValues)
	}
	return base, stats, nil
}

func parseCounting(raw string, stats *LoadStats) float64 {
	v, ok := parseCurrencyChecked(raw)
	if !ok {
		stats.BadValues++
	}
	return v
}
