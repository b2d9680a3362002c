package services

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// AthosRow is one normalized line of the SQL export workbook, the
// environment the rule conditions are evaluated against.
type AthosRow struct {
	EAN     string
	Tipo    string
	Marca   string
	Grupo3  string
	Estoque float64
	Prazo   int
}

// AthosOutput is what a matched rule writes: template cells keyed by
// PRODUTO header name, plus the action text for the report.
type AthosOutput struct {
	Cells  map[string]any
	Action string
}

// AthosReportLine is one entry of the consolidated run report.
type AthosReportLine struct {
	Rule   string
	EAN    string
	Tipo   string
	Marca  string
	Grupo3 string
	Action string
}

// AthosRule pairs a compiled boolean condition with the action that
// produces the template row. Rules are evaluated in order and the first
// match locks the EAN: later rules never see it again.
type AthosRule struct {
	Name      string
	Condition string
	Apply     func(AthosRow) AthosOutput

	program *vm.Program
}

// Matches evaluates the compiled condition against the row.
func (r *AthosRule) Matches(row AthosRow) (bool, error) {
	out, err := expr.Run(r.program, row)
	if err != nil {
		return false, fmt.Errorf("regra %q: %w", r.Name, err)
	}
	return out.(bool), nil
}

// Brands with own stock that ship the same day.
var immediateBrands = map[string]bool{
	"KONFORT":      true,
	"CASA DO PUFF": true,
	"DIVINI DECOR": true,
	"LUMIL":        true,
	"MADERATTO":    true,
}

// Brands that dispatch in three days and carry a safety-stock buffer.
var threeDayBrands = map[string]bool{
	"DMOV":  true,
	"DMOV2": true,
}

// deliveryTerms returns the lead time and the immediate-shipping flag
// for a brand. Unknown brands get the default one-day term.
func deliveryTerms(marca string) (prazo int, imediata bool) {
	switch m := strings.ToUpper(strings.TrimSpace(marca)); {
	case immediateBrands[m]:
		return 0, true
	case threeDayBrands[m]:
		return 3, false
	default:
		return 1, false
	}
}

// leadTimeCells fills the delivery columns. Immediate shipping writes
// the literal IMEDIATA availability instead of a day count.
func leadTimeCells(cells map[string]any, prazo int, imediata bool) {
	if imediata {
		cells["DATA_ENTREGA"] = 0
		cells["SITE_DISPONIBILIDADE"] = "IMEDIATA"
		return
	}
	cells["DATA_ENTREGA"] = prazo
	cells["SITE_DISPONIBILIDADE"] = prazo
}

func prazoLabel(prazo int, imediata bool) string {
	if imediata {
		return "IMEDIATA"
	}
	return fmt.Sprintf("%d", prazo)
}

func baseCells(row AthosRow) map[string]any {
	tipo := row.Tipo
	if tipo == "" {
		tipo = "PA"
	}
	return map[string]any{"COD_BARRA": row.EAN, "TIPO": tipo}
}

// NewAthosRuleSet compiles the five rules in evaluation order.
func NewAthosRuleSet() ([]AthosRule, error) {
	rules := []AthosRule{
		{
			Name:      "FORA DE LINHA",
			Condition: `Estoque <= 0.0 && Grupo3 != "ESTOQUE COMPARTILHADO" && Grupo3 != "OUTLET"`,
			Apply: func(row AthosRow) AthosOutput {
				cells := baseCells(row)
				cells["PRODUTO_INATIVO"] = "T"
				return AthosOutput{Cells: cells, Action: "PRODUTO INATIVADO"}
			},
		},
		{
			Name:      "ESTOQUE COMPARTILHADO",
			Condition: `Grupo3 == "ESTOQUE COMPARTILHADO"`,
			Apply: func(row AthosRow) AthosOutput {
				cells := baseCells(row)
				leadTimeCells(cells, row.Prazo, false)
				return AthosOutput{
					Cells:  cells,
					Action: fmt.Sprintf("PRAZO = %d (MESMO DO PA)", row.Prazo),
				}
			},
		},
		{
			Name:      "ENVIO IMEDIATO",
			Condition: `Grupo3 == "ENVIO IMEDIATO"`,
			Apply: func(row AthosRow) AthosOutput {
				prazo, imediata := deliveryTerms(row.Marca)
				cells := baseCells(row)
				cells["GRUPO3"] = "ENVIO IMEDIATO"
				if threeDayBrands[strings.ToUpper(row.Marca)] {
					cells["ESTOQUE_SEG"] = 1000
				} else {
					cells["ESTOQUE_SEG"] = 0
				}
				leadTimeCells(cells, prazo, imediata)
				return AthosOutput{
					Cells: cells,
					Action: fmt.Sprintf("MANTIDO NO GRUPO3 ENVIO IMEDIATO + PRAZO %s",
						prazoLabel(prazo, imediata)),
				}
			},
		},
		{
			Name:      "NENHUM GRUPO",
			Condition: `Grupo3 == ""`,
			Apply: func(row AthosRow) AthosOutput {
				cells := baseCells(row)
				if row.Estoque > 0 {
					cells["GRUPO3"] = "OUTLET"
					cells["ESTOQUE_SEG"] = 0
					leadTimeCells(cells, 1, false)
					return AthosOutput{Cells: cells, Action: "SEM GRUPO -> OUTLET (1 dia)"}
				}
				cells["ESTOQUE_SEG"] = 1000
				leadTimeCells(cells, row.Prazo, false)
				return AthosOutput{Cells: cells, Action: "SEM GRUPO + ESTOQUE<=0 -> INCLUIDO 1000 ESTOQUE SEG"}
			},
		},
		{
			Name:      "OUTLET",
			Condition: `Grupo3 == "OUTLET"`,
			Apply: func(row AthosRow) AthosOutput {
				cells := baseCells(row)
				cells["GRUPO3"] = "OUTLET"
				if row.Estoque <= 0 {
					cells["ESTOQUE_SEG"] = 1000
					leadTimeCells(cells, row.Prazo, false)
					return AthosOutput{
						Cells:  cells,
						Action: fmt.Sprintf("INCLUIDO 1000 ESTOQUE SEG + PRAZO FORNECEDOR %d", row.Prazo),
					}
				}
				prazo, imediata := deliveryTerms(row.Marca)
				cells["ESTOQUE_SEG"] = 0
				leadTimeCells(cells, prazo, imediata)
				return AthosOutput{
					Cells: cells,
					Action: fmt.Sprintf("INCLUIDO 0 ESTOQUE SEG + PRAZO %s",
						prazoLabel(prazo, imediata)),
				}
			},
		},
	}

	for i := range rules {
		program, err := expr.Compile(rules[i].Condition, expr.Env(AthosRow{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compilar condição da regra %q: %w", rules[i].Name, err)
		}
		rules[i].program = program
	}
	return rules, nil
}

// ClassifyAthosRows buckets export rows into the ordered rules. Each EAN
// lands in at most one bucket: the first rule that matches claims it and
// later rows with the same EAN are ignored.
func ClassifyAthosRows(rules []AthosRule, rows []AthosRow) (map[string][]AthosOutput, []AthosReportLine, error) {
	buckets := map[string][]AthosOutput{}
	var report []AthosReportLine
	claimed := map[string]bool{}

	for _, row := range rows {
		if row.EAN == "" || claimed[row.EAN] {
			continue
		}
		for i := range rules {
			ok, err := rules[i].Matches(row)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			out := rules[i].Apply(row)
			buckets[rules[i].Name] = append(buckets[rules[i].Name], out)
			report = append(report, AthosReportLine{
				Rule:   rules[i].Name,
				EAN:    row.EAN,
				Tipo:   row.Tipo,
				Marca:  row.Marca,
				Grupo3: row.Grupo3,
				Action: out.Action,
			})
			claimed[row.EAN] = true
			break
		}
	}
	return buckets, report, nil
}
