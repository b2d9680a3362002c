package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellUpdate carries the computed values for one product row, addressed
// by the Excel row number captured when the sheet was read. Writing by
// captured row instead of re-derived position keeps the write correct
// even if the in-memory table is ever filtered or reordered.
type CellUpdate struct {
	Row        int // 1-based Excel row
	CostTotal  float64
	Freight    float64
	IPI        float64
	SellPrice  float64
	PromoPrice float64
}

const (
	productsSheet   = "PRODUTO"
	codeHeader      = "Código Fabricante"
	headerScanLimit = 6
)

// outputHeaders are the five columns written per matched product row,
// in workbook order.
var outputHeaders = []string{
	"VR Custo Total",
	"Custo Frete",
	"Custo IPI",
	"Preço de Venda",
	"Preço Promoção",
}

// WriteBack reopens the products workbook and writes the computed values
// cell by cell, so every style, merge and format outside the five target
// columns survives. The header row is relocated independently from the
// read step; output columns missing from the sheet are created at the
// end of the header row. Rows beyond the end of the sheet stop the write
// with a warning rather than extending it.
func WriteBack(path string, updates []CellUpdate) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("reabrir planilha de produtos: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(productsSheet)
	if err != nil {
		return fmt.Errorf("ler aba %s: %w", productsSheet, err)
	}

	headerIdx := findHeaderRow(rows, codeHeader, headerScanLimit)
	if headerIdx < 0 {
		return &SchemaError{Sheet: productsSheet, Missing: []string{codeHeader}}
	}

	colFor, err := ensureOutputColumns(f, rows[headerIdx], headerIdx+1)
	if err != nil {
		return err
	}

	maxRow := len(rows)
	for _, u := range updates {
		if u.Row > maxRow {
			log.Printf("writeback: linha %d além do fim da aba (%d linhas), interrompendo", u.Row, maxRow)
			break
		}
		values := []float64{u.CostTotal, u.Freight, u.IPI, u.SellPrice, u.PromoPrice}
		for i, header := range outputHeaders {
			cell, err := excelize.CoordinatesToCellName(colFor[header], u.Row)
			if err != nil {
				return fmt.Errorf("endereçar célula: %w", err)
			}
			if err := f.SetCellValue(productsSheet, cell, values[i]); err != nil {
				return fmt.Errorf("escrever célula %s: %w", cell, err)
			}
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("salvar planilha de produtos: %w", err)
	}
	return nil
}

// ensureOutputColumns locates the five output columns on the header row,
// creating any missing one after the last used header cell. It returns
// header label → 1-based column index.
func ensureOutputColumns(f *excelize.File, header []string, headerRow int) (map[string]int, error) {
	colFor := make(map[string]int, len(outputHeaders))
	next := len(header) + 1

	for _, h := range outputHeaders {
		idx := -1
		for i, cell := range header {
			if strings.TrimSpace(cell) == h {
				idx = i + 1
				break
			}
		}
		if idx < 0 {
			idx = next
			next++
			cell, err := excelize.CoordinatesToCellName(idx, headerRow)
			if err != nil {
				return nil, fmt.Errorf("endereçar cabeçalho: %w", err)
			}
			if err := f.SetCellValue(productsSheet, cell, h); err != nil {
				return nil, fmt.Errorf("criar coluna %q: %w", h, err)
			}
			log.Printf("writeback: coluna %q criada na posição %d", h, idx)
		}
		colFor[h] = idx
	}
	return colFor, nil
}

// rewriteSheet is the degraded-mode fallback: it rewrites every cell of
// the PRODUTO sheet from the in-memory rows with the updates applied.
// Formatting may be lost, but the workbook is never left half-written.
func rewriteSheet(path string, rows [][]string, headerIdx int, updates []CellUpdate) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("reabrir planilha de produtos: %w", err)
	}
	defer f.Close()

	// Make sure the five output headers exist on the in-memory header
	// row and remember their indices.
	header := rows[headerIdx]
	colFor := make(map[string]int, len(outputHeaders))
	for _, h := range outputHeaders {
		idx := -1
		for i, cell := range header {
			if strings.TrimSpace(cell) == h {
				idx = i
				break
			}
		}
		if idx < 0 {
			header = append(header, h)
			idx = len(header) - 1
		}
		colFor[h] = idx
	}
	rows[headerIdx] = header

	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}

	for _, u := range updates {
		i := u.Row - 1
		if i < 0 || i >= len(out) {
			continue
		}
		values := []float64{u.CostTotal, u.Freight, u.IPI, u.SellPrice, u.PromoPrice}
		for k, h := range outputHeaders {
			idx := colFor[h]
			for len(out[i]) <= idx {
				out[i] = append(out[i], "")
			}
			out[i][idx] = values[k]
		}
	}

	for i := range out {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("endereçar linha %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(productsSheet, cell, &out[i]); err != nil {
			return fmt.Errorf("regravar linha %d: %w", i+1, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("salvar planilha de produtos: %w", err)
	}
	return nil
}
