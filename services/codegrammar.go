package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup is the result of resolving one product code against the cost
// base. When Found is false the numeric fields are zero and Detail says
// why.
type Lookup struct {
	Found      bool
	CostTotal  float64
	Freight    float64
	IPI        float64
	ListPrice  float64
	PromoPrice float64
	Detail     string
}

func notFound(detail string) Lookup {
	return Lookup{Detail: detail}
}

// SplitCode splits a full product code into base code and trailing
// fabric-line letter. The trailing character must be a detected fabric
// line; there is deliberately no fallback pattern-matching: an
// unrecognized trailing letter fails instead of being guessed.
func (b *CostBase) SplitCode(full string) (code, line string, ok bool) {
	full = strings.TrimSpace(full)
	if len(full) < 2 {
		return "", "", false
	}
	last := full[len(full)-1:]
	if !b.lines.Contains(last) {
		return "", "", false
	}
	return full[:len(full)-1], last, true
}

// ProcessCode resolves a product-row code string. Codes containing "/"
// are kits (summed component-wise, sharing the kit's trailing fabric
// line), codes containing "*" carry a multiplier, anything else is a
// simple (base code + fabric line) lookup.
func (b *CostBase) ProcessCode(raw string) Lookup {
	code := strings.TrimSpace(raw)
	if code == "" {
		return notFound("Código vazio")
	}

	if strings.Contains(code, "/") {
		return b.lookupKit(code)
	}

	if strings.Contains(code, "*") {
		parts := strings.Split(code, "*")
		if len(parts) == 2 {
			multiplier, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			if err != nil {
				return notFound(fmt.Sprintf("Formato de multiplicador inválido: %s", code))
			}
			baseCode, line, ok := b.SplitCode(parts[1])
			if !ok {
				return notFound(fmt.Sprintf("TC não identificado em: %s. TCs disponíveis: %s",
					strings.TrimSpace(parts[1]), b.lines))
			}
			return b.lookupMultiplied(multiplier, baseCode, line)
		}
	}

	baseCode, line, ok := b.SplitCode(code)
	if !ok {
		return notFound(fmt.Sprintf("TC não identificado em: %s. TCs disponíveis: %s", code, b.lines))
	}
	return b.lookupSimple(baseCode, line)
}

func (b *CostBase) lookupSimple(code, line string) Lookup {
	if !b.lines.Contains(line) {
		return notFound(fmt.Sprintf("TC inválido ou não encontrado: %q. TCs disponíveis: %s", line, b.lines))
	}

	rec, ok := b.Get(code, line)
	if !ok {
		return notFound(fmt.Sprintf("Código não encontrado: %s na linha TC %s", code, line))
	}

	// Promotional price defaults to the list price at lookup time, not
	// at load time.
	promo := rec.PromoPrice
	if promo <= 0 {
		promo = rec.ListPrice
	}

	detail := fmt.Sprintf("Encontrado %s(TC %s): For %s, Fre %s",
		code, line, FormatBRL(rec.SupplierCost), FormatBRL(rec.FreightCost))
	if rec.IPI > 0 {
		detail += ", IPI " + FormatBRL(rec.IPI)
	}

	return Lookup{
		Found:      true,
		CostTotal:  rec.SupplierCost,
		Freight:    rec.FreightCost,
		IPI:        rec.IPI,
		ListPrice:  rec.ListPrice,
		PromoPrice: promo,
		Detail:     detail,
	}
}

func (b *CostBase) lookupMultiplied(multiplier float64, code, line string) Lookup {
	res := b.lookupSimple(code, line)
	if !res.Found {
		return res
	}
	return Lookup{
		Found:      true,
		CostTotal:  res.CostTotal * multiplier,
		Freight:    res.Freight * multiplier,
		IPI:        res.IPI * multiplier,
		ListPrice:  res.ListPrice * multiplier,
		PromoPrice: res.PromoPrice * multiplier,
		Detail:     fmt.Sprintf("Multiplicado %gx: %s", multiplier, res.Detail),
	}
}

// lookupKit resolves a composite "A/B/C" code. The fabric line is
// extracted once from the whole kit string; each component may carry its
// own "N*" multiplier. The kit succeeds if at least one component
// resolves; unresolved components are excluded from the sums and flagged
// in the detail.
func (b *CostBase) lookupKit(kit string) Lookup {
	baseKit, line, ok := b.SplitCode(kit)
	if !ok {
		return notFound(fmt.Sprintf("TC não identificado no kit: %s. TCs disponíveis: %s", kit, b.lines))
	}

	components := strings.Split(baseKit, "/")

	var total Lookup
	found := 0
	var details []string

	for _, component := range components {
		component = strings.TrimSpace(component)
		if component == "" {
			continue
		}

		multiplier := 1.0
		code := component
		if strings.Contains(component, "*") {
			parts := strings.Split(component, "*")
			if len(parts) == 2 {
				m, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
				if err != nil {
					details = append(details, component+": FORMATO MULTIPLICADOR INVÁLIDO")
					continue
				}
				multiplier = m
				code = strings.TrimSpace(parts[1])
			}
		}

		res := b.lookupSimple(code, line)
		if !res.Found {
			details = append(details, fmt.Sprintf("%s(TC %s): NÃO ENCONTRADO", component, line))
			continue
		}

		total.CostTotal += res.CostTotal * multiplier
		total.Freight += res.Freight * multiplier
		total.IPI += res.IPI * multiplier
		total.ListPrice += res.ListPrice * multiplier
		total.PromoPrice += res.PromoPrice * multiplier
		found++
		details = append(details, fmt.Sprintf("%s(TC %s): OK", component, line))
	}

	if found == 0 {
		return notFound(fmt.Sprintf("Nenhum componente encontrado no kit TC %s: %s", line, kit))
	}

	total.Found = true
	total.Detail = fmt.Sprintf("Kit TC %s processado (%d/%d encontrados): %s",
		line, found, len(components), strings.Join(details, " | "))
	return total
}
