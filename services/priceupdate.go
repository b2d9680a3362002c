package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RunOptions configures one price-update run. Status and Progress are
// optional; when set they are invoked synchronously from within the run.
type RunOptions struct {
	Mode             Mode
	ApplyNinetyCents bool
	Status           func(message string)
	Progress         func(fraction float64)
}

// CodeMiss records one product code that failed to resolve.
type CodeMiss struct {
	Row    int    `json:"row"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// RunSummary is the outcome of one price-update run.
type RunSummary struct {
	Total       int        `json:"total"`
	Updated     int        `json:"updated"`
	NotFound    int        `json:"not_found"`
	Skipped     int        `json:"skipped"`
	Kits        int        `json:"kits"`
	InvalidLine int        `json:"invalid_line"` // misses caused by an unrecognized fabric line
	OutputFile  string     `json:"output_file"`
	Misses      []CodeMiss `json:"misses,omitempty"`
}

var productSpecs = []HeaderSpec{
	{Field: "code", Labels: []string{codeHeader}, Required: true},
}

// RunPriceUpdate loads the cost base, resolves every product code on the
// PRODUTO sheet and writes the five computed columns back in place,
// preserving the workbook's formatting. Unmatched rows keep their
// existing cell values. The run is synchronous and not reentrant-safe;
// callers serialize invocations.
func RunPriceUpdate(baseFile, productsFile string, opts RunOptions) (*RunSummary, error) {
	status := opts.Status
	if status == nil {
		status = func(string) {}
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(float64) {}
	}

	progress(0.02)
	status("Carregando base de custos...")

	if _, err := os.Stat(baseFile); err != nil {
		return nil, fmt.Errorf("base de custos inacessível: %w", err)
	}

	base, stats, err := LoadCostBase(baseFile, opts.Mode)
	if err != nil {
		return nil, fmt.Errorf("carregar base de custos: %w", err)
	}
	status(fmt.Sprintf("Base carregada: %d produtos, %d variantes em %d abas (linhas TC: %s)",
		stats.Products, stats.Variants, stats.SheetsUsed, base.Lines()))

	progress(0.15)
	status("Lendo aba PRODUTO da planilha de produtos...")

	rows, headerIdx, cols, err := readProductsSheet(productsFile)
	if err != nil {
		return nil, err
	}

	progress(0.20)
	status("Processando códigos e calculando preços...")

	summary := &RunSummary{}
	var updates []CellUpdate

	dataRows := rows[headerIdx+1:]
	for i, row := range dataRows {
		excelRow := headerIdx + 2 + i
		summary.Total++

		code := cols.Cell(row, "code")
		if code == "" {
			summary.Skipped++
			continue
		}

		res := base.ProcessCode(code)
		if !res.Found {
			summary.NotFound++
			if strings.Contains(res.Detail, "TC não identificado") ||
				strings.Contains(res.Detail, "TC inválido") {
				summary.InvalidLine++
			}
			summary.Misses = append(summary.Misses, CodeMiss{Row: excelRow, Code: code, Detail: res.Detail})
			continue
		}

		sellPrice := res.ListPrice
		promoPrice := res.PromoPrice
		if opts.ApplyNinetyCents {
			if sellPrice > 0 {
				sellPrice = ApplyNinetyCents(sellPrice)
			}
			if promoPrice > 0 {
				promoPrice = ApplyNinetyCents(promoPrice)
			}
		}

		updates = append(updates, CellUpdate{
			Row:        excelRow,
			CostTotal:  res.CostTotal,
			Freight:    res.Freight,
			IPI:        res.IPI,
			SellPrice:  sellPrice,
			PromoPrice: promoPrice,
		})
		summary.Updated++
		if strings.Contains(code, "/") {
			summary.Kits++
		}

		progress(0.20 + 0.65*float64(i+1)/float64(len(dataRows)))
	}

	progress(0.90)
	status("Salvando na aba PRODUTO (preservando formatação)...")

	if err := WriteBack(productsFile, updates); err != nil {
		log.Printf("priceupdate: escrita preservando formatação falhou: %v", err)
		status("Falha ao preservar formatação; regravando a aba inteira (formatação será perdida)...")
		if err := rewriteSheet(productsFile, rows, headerIdx, updates); err != nil {
			return nil, fmt.Errorf("regravar aba %s: %w", productsSheet, err)
		}
	}

	summary.OutputFile = productsFile
	progress(1.0)
	status(fmt.Sprintf("Concluído: %d atualizados, %d não encontrados, %d ignorados de %d linhas",
		summary.Updated, summary.NotFound, summary.Skipped, summary.Total))
	return summary, nil
}

// readProductsSheet opens the products workbook, reads the PRODUTO sheet
// and locates its header row by scanning the first rows for the
// manufacturer-code label. The file is closed before returning so the
// write phase reopens it fresh.
func readProductsSheet(path string) (rows [][]string, headerIdx int, cols ColumnMap, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("abrir planilha de produtos: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(productsSheet)
	if err != nil || idx < 0 {
		return nil, 0, nil, fmt.Errorf("aba %q não encontrada na planilha de produtos", productsSheet)
	}

	rows, err = f.GetRows(productsSheet)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("ler aba %s: %w", productsSheet, err)
	}
	if len(rows) == 0 {
		return nil, 0, nil, errors.New("aba PRODUTO está vazia")
	}

	headerIdx = findHeaderRow(rows, codeHeader, headerScanLimit)
	if headerIdx < 0 {
		return nil, 0, nil, &SchemaError{Sheet: productsSheet, Missing: []string{codeHeader}}
	}

	cols, err = LocateColumns(productsSheet, rows[headerIdx], productSpecs)
	if err != nil {
		return nil, 0, nil, err
	}
	return rows, headerIdx, cols, nil
}
