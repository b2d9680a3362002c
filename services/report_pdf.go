package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// RunReport holds everything the run-report PDF needs.
type RunReport struct {
	CompanyName string
	GeneratedAt string
	BaseFile    string
	OutputFile  string
	Mode        string
	Summary     RunSummary
}

// maxReportMisses caps the not-found listing so a badly mismatched
// workbook does not produce a hundred-page report.
const maxReportMisses = 100

// GenerateRunReportPDF creates a PDF summary of one price-update run
// using maroto/v2. It returns the raw PDF bytes or an error.
func GenerateRunReportPDF(report RunReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addReportHeader(m, report)
	addSummaryTable(m, report.Summary)
	addMissListing(m, report.Summary.Misses)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("gerar PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addReportHeader(m core.Maroto, report RunReport) {
	title := "Relatório de Atualização de Preços"
	if report.CompanyName != "" {
		title = report.CompanyName + " - " + title
	}

	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{Size: 15, Style: fontstyle.Bold, Align: align.Center}),
			),
		),
		row.New(7).Add(
			col.New(6).Add(
				text.New("Modo: "+report.Mode, props.Text{Size: 9, Color: &props.Color{Red: 80, Green: 80, Blue: 80}}),
			),
			col.New(6).Add(
				text.New("Data: "+report.GeneratedAt, props.Text{Size: 9, Align: align.Right, Color: &props.Color{Red: 80, Green: 80, Blue: 80}}),
			),
		),
		row.New(6).Add(
			col.New(12).Add(
				text.New("Base: "+report.BaseFile, props.Text{Size: 8}),
			),
		),
		row.New(6).Add(
			col.New(12).Add(
				text.New("Produtos: "+report.OutputFile, props.Text{Size: 8}),
			),
		),
		row.New(4),
	)
}

func addSummaryTable(m core.Maroto, s RunSummary) {
	entries := []struct {
		label string
		value int
	}{
		{"Linhas processadas", s.Total},
		{"Atualizadas", s.Updated},
		{"Não encontradas", s.NotFound},
		{"Ignoradas (código vazio)", s.Skipped},
		{"Kits processados", s.Kits},
		{"Códigos com TC inválido", s.InvalidLine},
	}

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New("Resumo", props.Text{Size: 11, Style: fontstyle.Bold}),
			),
		),
	)
	for _, e := range entries {
		m.AddRows(
			row.New(6).Add(
				col.New(8).Add(text.New(e.label, props.Text{Size: 9})),
				col.New(4).Add(text.New(fmt.Sprintf("%d", e.value), props.Text{Size: 9, Align: align.Right})),
			),
		)
	}
	m.AddRows(row.New(4))
}

func addMissListing(m core.Maroto, misses []CodeMiss) {
	if len(misses) == 0 {
		return
	}

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New("Códigos não encontrados", props.Text{Size: 11, Style: fontstyle.Bold}),
			),
		),
	)

	shown := misses
	if len(shown) > maxReportMisses {
		shown = shown[:maxReportMisses]
	}
	for _, miss := range shown {
		m.AddRows(
			row.New(5).Add(
				col.New(2).Add(text.New(fmt.Sprintf("linha %d", miss.Row), props.Text{Size: 8})),
				col.New(3).Add(text.New(miss.Code, props.Text{Size: 8, Style: fontstyle.Bold})),
				col.New(7).Add(text.New(miss.Detail, props.Text{Size: 8})),
			),
		)
	}
	if len(misses) > maxReportMisses {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New(fmt.Sprintf("... e mais %d códigos", len(misses)-maxReportMisses), props.Text{Size: 8}),
				),
			),
		)
	}
}
