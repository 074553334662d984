// Package pdf genera la versión imprimible del reporte de confirmación de una conciliación.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Documento conciliado  │  Estado + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: confirmadas / fallidas / omitidas                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Descripción | Cant | Costo unit. | Estado       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ADVERTENCIAS                                               │
//	│  FOOTER: QR con el id de la conciliación                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorError   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// CommitReportGenerator genera el PDF de un CommitReport con Maroto v2.
type CommitReportGenerator struct {
	now func() time.Time
}

// NewCommitReportGenerator construye el generador.
func NewCommitReportGenerator() *CommitReportGenerator {
	return &CommitReportGenerator{now: time.Now}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *CommitReportGenerator) Generate(_ context.Context, report *reconciliation.CommitReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Conciliación "+report.DocumentReference, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(report.Lines)...)

	if len(report.Warnings) > 0 {
		m.AddRows(row.New(3))
		m.AddRows(warningRows(report.Warnings)...)
	}

	m.AddRows(row.New(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *reconciliation.CommitReport, at time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REPORTE DE CONCILIACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Documento: "+nonEmpty(report.DocumentReference, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(strings.ToUpper(report.State.String()), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func summaryRow(report *reconciliation.CommitReport) core.Row {
	cell := func(label string, n int) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Center}),
			text.New(fmt.Sprintf("%d", n), props.Text{Style: fontstyle.Bold, Size: 12, Top: 6, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("CONFIRMADAS", report.Committed),
		cell("FALLIDAS", report.Failed),
		cell("OMITIDAS", report.Skipped),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Cant.", 1, align.Right),
		h("Costo unit.", 2, align.Right),
		h("Estado", 3, align.Left),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableLineRows(lines []reconciliation.CommitLineResult) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		status := l.Status
		statusColor := colorGray
		if l.Code != "" {
			status += " (" + l.Code + ")"
			statusColor = colorError
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Line+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.Description, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatAmount(l.UnitCost, 2), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(status, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1, Color: statusColor})),
		))
	}
	return result
}

func warningRows(warnings []reconciliation.Warning) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("ADVERTENCIAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	for _, w := range warnings {
		msg := w.Code + ": " + w.Message
		if w.Line != nil {
			msg = fmt.Sprintf("Línea %d · %s", *w.Line+1, msg)
		}
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(msg, props.Text{Size: 7, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	return rows
}

func footerRow(report *reconciliation.CommitReport) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(report.ReconciliationID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Conciliación "+report.ReconciliationID, props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Las líneas fallidas no modificaron el inventario; las confirmadas no se revierten.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount redondea a places y separa miles con punto y decimales con coma.
// Ej: 1234567.891 → "1.234.567,89"
func formatAmount(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if d.IsNegative() && !d.Round(places).IsZero() {
		out = "-" + out
	}
	return out
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
