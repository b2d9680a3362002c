package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// AthosSummary reports what one generation produced.
type AthosSummary struct {
	RowsRead   int               `json:"rows_read"`
	Claimed    int               `json:"claimed"`
	PerRule    map[string]int    `json:"per_rule"`
	Workbooks  []string          `json:"workbooks"`
	ReportFile string            `json:"report_file"`
	Report     []AthosReportLine `json:"-"`
}

const (
	athosTemplateSheet  = "PRODUTO"
	athosHeaderScanRows = 6
)

var athosExportSpecs = []HeaderSpec{
	{Field: "ean", Labels: []string{"CODBARRA", "COD_BARRA", "CODBARRA_PRODUTO", "EAN"}, Required: true},
	{Field: "tipo", Labels: []string{"TIPO"}},
	{Field: "marca", Labels: []string{"MARCA", "FABRICANTE", "FABRICANTE_PRODUTO"}},
	{Field: "grupo3", Labels: []string{"NOME GRUPO3", "GRUPO3", "NOME_GRUPO3"}},
	{Field: "estoque", Labels: []string{"ESTOQUE REAL", "ESTOQUE_REAL", "ESTOQUE"}, Required: true},
	{Field: "prazo", Labels: []string{"PRAZO", "PRAZO_PRODUTO"}},
}

// GenerateAthos reads the SQL export workbook, buckets its rows into the
// ordered rules, copies the template workbook once per non-empty rule and
// fills its product sheet, then writes the consolidated text report to
// outDir. Workbook and report paths come back in the summary.
func GenerateAthos(exportPath, templatePath, outDir string) (*AthosSummary, error) {
	rows, err := readAthosExport(exportPath)
	if err != nil {
		return nil, err
	}

	rules, err := NewAthosRuleSet()
	if err != nil {
		return nil, err
	}

	buckets, report, err := ClassifyAthosRows(rules, rows)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("criar diretório de saída: %w", err)
	}

	summary := &AthosSummary{
		RowsRead: len(rows),
		PerRule:  map[string]int{},
		Report:   report,
	}

	for _, rule := range rules {
		outputs := buckets[rule.Name]
		summary.PerRule[rule.Name] = len(outputs)
		summary.Claimed += len(outputs)
		if len(outputs) == 0 {
			continue
		}

		target := filepath.Join(outDir, fmt.Sprintf("Athos - %s.xlsx", rule.Name))
		if err := copyFile(templatePath, target); err != nil {
			return nil, fmt.Errorf("copiar template para %q: %w", target, err)
		}
		written, err := fillRuleWorkbook(target, outputs)
		if err != nil {
			return nil, err
		}
		log.Printf("athos: %s: %d linhas gravadas", filepath.Base(target), written)
		summary.Workbooks = append(summary.Workbooks, target)
	}

	reportPath := filepath.Join(outDir, "Athos - Relatório.txt")
	if err := writeAthosReport(reportPath, report); err != nil {
		return nil, err
	}
	summary.ReportFile = reportPath

	return summary, nil
}

// readAthosExport loads the first sheet of the export workbook and
// normalizes each data row.
func readAthosExport(path string) ([]AthosRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("abrir export %q: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ler aba %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("export %q está vazio", path)
	}

	var cols ColumnMap
	headerIdx := -1
	var lastErr error
	for i := 0; i < len(raw) && i < athosHeaderScanRows; i++ {
		cols, lastErr = LocateColumns(sheet, raw[i], athosExportSpecs)
		if lastErr == nil {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, lastErr
	}

	var rows []AthosRow
	for _, row := range raw[headerIdx+1:] {
		r := AthosRow{
			EAN:     normalizeEAN(cols.Cell(row, "ean")),
			Tipo:    strings.ToUpper(cols.Cell(row, "tipo")),
			Marca:   normalizeBrand(cols.Cell(row, "marca")),
			Grupo3:  strings.ToUpper(cols.Cell(row, "grupo3")),
			Estoque: parseStock(cols.Cell(row, "estoque")),
			Prazo:   parseDays(cols.Cell(row, "prazo")),
		}
		if r.EAN == "" {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// fillRuleWorkbook writes the rule outputs below the header row of the
// template's product sheet, matching cells by header name. Columns the
// template does not carry are skipped.
func fillRuleWorkbook(path string, outputs []AthosOutput) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("abrir %q: %w", path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(athosTemplateSheet)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("aba %q não existe no template %q", athosTemplateSheet, filepath.Base(path))
	}

	raw, err := f.GetRows(athosTemplateSheet)
	if err != nil {
		return 0, fmt.Errorf("ler aba %q: %w", athosTemplateSheet, err)
	}
	if len(raw) == 0 {
		return 0, fmt.Errorf("template sem cabeçalho na aba %q", athosTemplateSheet)
	}

	headerCols := map[string]int{}
	for i, cell := range raw[0] {
		label := strings.ToUpper(strings.TrimSpace(cell))
		if label == "" {
			continue
		}
		if _, ok := headerCols[label]; !ok {
			headerCols[label] = i + 1
		}
	}

	// Clear stale data rows, values only so the template styling stays.
	for r := 2; r <= len(raw); r++ {
		for c := 1; c <= len(raw[0]); c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellValue(athosTemplateSheet, cell, nil); err != nil {
				return 0, fmt.Errorf("limpar célula %s: %w", cell, err)
			}
		}
	}

	for i, out := range outputs {
		rowNum := i + 2
		for header, value := range out.Cells {
			col, ok := headerCols[header]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col, rowNum)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellValue(athosTemplateSheet, cell, value); err != nil {
				return 0, fmt.Errorf("escrever célula %s: %w", cell, err)
			}
		}
	}

	if err := f.Save(); err != nil {
		return 0, fmt.Errorf("salvar %q: %w", path, err)
	}
	return len(outputs), nil
}

// writeAthosReport writes the consolidated report as pipe-separated text.
func writeAthosReport(path string, report []AthosReportLine) error {
	var b strings.Builder
	b.WriteString("PLANILHA | COD_BARRA | TIPO | MARCA | GRUPO3 | ACAO\n")
	for _, line := range report {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s\n",
			line.Rule, line.EAN, line.Tipo, line.Marca, line.Grupo3, line.Action)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("gravar relatório: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

// normalizeEAN trims the barcode and strips the ".0" tail that numeric
// cells pick up on export.
func normalizeEAN(v string) string {
	s := strings.TrimSpace(v)
	if strings.HasSuffix(s, ".0") {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return strconv.FormatInt(int64(n), 10)
		}
	}
	return s
}

// normalizeBrand collapses internal whitespace and uppercases.
func normalizeBrand(v string) string {
	return strings.ToUpper(strings.Join(strings.Fields(v), " "))
}

// parseStock reads a stock cell. Unlike prices, stock can be negative,
// so the sign must survive.
func parseStock(v string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseDays extracts the digits of a lead-time cell. Anything without
// digits is zero.
func parseDays(v string) int {
	var digits strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
