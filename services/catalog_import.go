package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"
)

// CatalogField describes one column of the catalog import template.
type CatalogField struct {
	Key      string
	Label    string
	Synonyms []string
	Required bool
	Numeric  bool
}

// CatalogTemplateFields returns the columns recognized by the catalog
// importer, in template order.
func CatalogTemplateFields() []CatalogField {
	return []CatalogField{
		{Key: "code", Label: "Código Fabricante", Synonyms: []string{"Codigo Fabricante", "Código"}, Required: true},
		{Key: "name", Label: "Descrição", Synonyms: []string{"Descricao", "Nome"}, Required: true},
		{Key: "category", Label: "Categoria", Synonyms: []string{"Grupo"}},
		{Key: "supplier", Label: "Fornecedor", Synonyms: []string{"Fabricante"}},
		{Key: "cost_total", Label: "VR Custo Total", Synonyms: []string{"Custo Total", "Custo"}, Numeric: true},
		{Key: "freight_cost", Label: "Custo Frete", Numeric: true},
		{Key: "ipi_cost", Label: "Custo IPI", Synonyms: []string{"IPI"}, Numeric: true},
		{Key: "sell_price", Label: "Preço de Venda", Synonyms: []string{"Preco de Venda", "Preço De"}, Numeric: true},
		{Key: "promo_price", Label: "Preço Promoção", Synonyms: []string{"Preco Promocao", "Preço Por"}, Numeric: true},
	}
}

// ImportError represents a single field-level error on one row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing and validating an uploaded
// catalog file.
type ImportResult struct {
	TotalRows  int                 `json:"total_rows"`
	ValidRows  int                 `json:"valid_rows"`
	ErrorRows  int                 `json:"error_rows"`
	Errors     []ImportError       `json:"errors"`
	ParsedRows []map[string]string `json:"-"`
	FileName   string              `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao ler CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("arquivo precisa de uma linha de cabeçalho e ao menos uma de dados")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the
// first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao abrir Excel: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao ler aba: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("arquivo precisa de uma linha de cabeçalho e ao menos uma de dados")
	}
	return rows[0], rows[1:], nil
}

// mapHeadersToFields maps uploaded column headers to catalog field keys.
// It returns one key per column ("" for unrecognized) plus the list of
// unrecognized headers.
func mapHeadersToFields(headers []string, fields []CatalogField) ([]string, []string) {
	labelToKey := map[string]string{}
	for _, f := range fields {
		labelToKey[strings.ToLower(strings.TrimSpace(f.Label))] = f.Key
		for _, syn := range f.Synonyms {
			labelToKey[strings.ToLower(strings.TrimSpace(syn))] = f.Key
		}
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSuffix(norm, " *")
		if key, ok := labelToKey[strings.TrimSpace(norm)]; ok {
			mapped[i] = key
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ValidateCatalogFile parses and validates an uploaded catalog file
// (.csv or .xlsx). Row numbers in errors are 1-based spreadsheet rows.
func ValidateCatalogFile(file io.Reader, fileName string) (*ImportResult, error) {
	fields := CatalogTemplateFields()

	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("formato não suportado: use .csv ou .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys, _ := mapHeadersToFields(headers, fields)

	fieldByKey := map[string]CatalogField{}
	for _, f := range fields {
		fieldByKey[f.Key] = f
	}

	result := &ImportResult{FileName: fileName}
	for i, row := range dataRows {
		rowNum := i + 2 // 1-based, after the header row
		result.TotalRows++

		parsed := map[string]string{}
		for c, key := range columnKeys {
			if key == "" {
				continue
			}
			parsed[key] = strings.TrimSpace(cellAt(row, c))
		}

		rowOK := true
		for _, f := range fields {
			value := parsed[f.Key]
			if f.Required && value == "" {
				result.Errors = append(result.Errors, ImportError{
					Row: rowNum, Field: f.Key,
					Message: fmt.Sprintf("%s é obrigatório", f.Label),
				})
				rowOK = false
				continue
			}
			if f.Numeric && value != "" {
				if _, ok := parseCurrencyChecked(value); !ok {
					result.Errors = append(result.Errors, ImportError{
						Row: rowNum, Field: f.Key,
						Message: fmt.Sprintf("%s: valor monetário inválido %q", f.Label, value),
					})
					rowOK = false
				}
			}
		}

		if rowOK {
			result.ValidRows++
			result.ParsedRows = append(result.ParsedRows, parsed)
		} else {
			result.ErrorRows++
		}
	}

	return result, nil
}

// CommitCatalogImport upserts the validated rows into the products
// collection, keyed by manufacturer code. Category and supplier names
// are resolved to records, created on first sight.
func CommitCatalogImport(app *pocketbase.PocketBase, result *ImportResult) (created, updated int, err error) {
	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return 0, 0, fmt.Errorf("coleção products não encontrada: %w", err)
	}

	for _, parsed := range result.ParsedRows {
		code := parsed["code"]

		record, findErr := app.FindFirstRecordByData("products", "code", code)
		isNew := findErr != nil
		if isNew {
			record = core.NewRecord(productsCol)
			record.Set("code", code)
		}

		record.Set("name", parsed["name"])
		for _, key := range []string{"cost_total", "freight_cost", "ipi_cost", "sell_price", "promo_price"} {
			record.Set(key, ParseCurrency(parsed[key]))
		}

		if name := parsed["category"]; name != "" {
			id, err := findOrCreateByName(app, "categories", name)
			if err != nil {
				return created, updated, err
			}
			record.Set("category", id)
		}
		if name := parsed["supplier"]; name != "" {
			id, err := findOrCreateByName(app, "suppliers", name)
			if err != nil {
				return created, updated, err
			}
			record.Set("supplier", id)
		}

		if err := app.Save(record); err != nil {
			return created, updated, fmt.Errorf("salvar produto %q: %w", code, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

func findOrCreateByName(app *pocketbase.PocketBase, collection, name string) (string, error) {
	record, err := app.FindFirstRecordByData(collection, "name", name)
	if err == nil {
		return record.Id, nil
	}

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		return "", fmt.Errorf("coleção %s não encontrada: %w", collection, err)
	}
	record = core.NewRecord(col)
	record.Set("name", name)
	if err := app.Save(record); err != nil {
		return "", fmt.Errorf("criar %s %q: %w", collection, name, err)
	}
	return record.Id, nil
}
