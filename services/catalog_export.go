package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// CatalogExportRow is one product of the catalog export.
type CatalogExportRow struct {
	Code       string
	Name       string
	Category   string
	Supplier   string
	CostTotal  float64
	Freight    float64
	IPI        float64
	SellPrice  float64
	PromoPrice float64
	Active     bool
}

// CatalogExportData holds everything the catalog export writes.
type CatalogExportData struct {
	Title       string
	GeneratedAt string
	Rows        []CatalogExportRow
}

// GenerateCatalogExcel creates a styled Excel file of the product
// catalog and returns the file contents as a byte slice.
func GenerateCatalogExcel(data CatalogExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Catálogo"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("renomear aba: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	lastCol := columns[len(columns)-1]

	widths := []float64{18, 40, 16, 20, 14, 12, 12, 14, 14, 8}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("largura da coluna %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("estilo de título: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("estilo de subtítulo: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("estilo de cabeçalho: %w", err)
	}

	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("estilo de linha: %w", err)
	}

	// ── Header rows ─────────────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("mesclar título: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("mesclar data: %w", err)
	}
	f.SetCellValue(sheetName, "A2", "Gerado em: "+data.GeneratedAt)
	f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)

	headers := []string{
		"Código Fabricante", "Descrição", "Categoria", "Fornecedor",
		"VR Custo Total", "Custo Frete", "Custo IPI",
		"Preço de Venda", "Preço Promoção", "Ativo",
	}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s4", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A4", lastCol+"4", headerStyle)

	// ── Data rows ───────────────────────────────────────────────────────

	row := 5
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(r.Code))
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.Name))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(r.Category))
		f.SetCellValue(sheetName, "D"+rowStr, sanitizeExcelCell(r.Supplier))
		f.SetCellValue(sheetName, "E"+rowStr, r.CostTotal)
		f.SetCellValue(sheetName, "F"+rowStr, r.Freight)
		f.SetCellValue(sheetName, "G"+rowStr, r.IPI)
		f.SetCellValue(sheetName, "H"+rowStr, r.SellPrice)
		f.SetCellValue(sheetName, "I"+rowStr, r.PromoPrice)
		active := "Não"
		if r.Active {
			active = "Sim"
		}
		f.SetCellValue(sheetName, "J"+rowStr, active)

		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, rowStyle)
		row++
	}

	// ── Footer ──────────────────────────────────────────────────────────

	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%d produtos", len(data.Rows)))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("gravar excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous
// leading characters with a single quote. Excel interprets cells
// starting with =, +, -, @, \t or \r as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
