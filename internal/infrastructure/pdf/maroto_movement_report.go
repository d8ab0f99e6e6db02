// Package pdf genera el informe imprimible de la bitácora de movimientos.
//
// Layout de la página A4 horizontal:
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│  ENCABEZADO (se repite en cada página)                               │
//	│    Título + ubicación          │  Generado / Folio                   │
//	│    ID | Fecha | Hora | Tipo | Producto | ... | Usuario | Ubicación   │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  FILAS: un movimiento por fila, fondo alterno                        │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  RESUMEN: total, entradas, salidas, ajustes                          │
//	└──────────────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ordena/bitacora-api/internal/application/history"
	"github.com/ordena/bitacora-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorHeader  = &props.Color{Red: 70, Green: 130, Blue: 180}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 245, Blue: 250}
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
)

const gridSize = 24

// anchos sobre una grilla de 24, en el orden de history.ExportHeaders
var columnSizes = []int{1, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 1}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportEncoder implementa history.ReportEncoder usando Maroto v2.
type MarotoReportEncoder struct {
	printer *message.Printer
}

// NewMarotoReportEncoder construye el generador. Las cantidades se formatean en es-CL.
func NewMarotoReportEncoder() *MarotoReportEncoder {
	return &MarotoReportEncoder{printer: message.NewPrinter(language.MustParse("es-CL"))}
}

// EncodeMovements genera el PDF y devuelve sus bytes.
func (g *MarotoReportEncoder) EncodeMovements(ctx context.Context, meta history.ReportMeta, rows []history.ExportRow) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithMaxGridSize(gridSize).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle(meta.Title, true).
		WithSubject(meta.Subtitle, true).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterHeader(titleRow(meta), line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}), tableHeaderRow()); err != nil {
		return nil, fmt.Errorf("pdf: registrar encabezado: %w", err)
	}

	if len(rows) == 0 {
		m.AddRows(row.New(10).Add(col.New(gridSize).Add(
			text.New("Sin movimientos para los filtros seleccionados", props.Text{
				Size: 9, Align: align.Center, Top: 3, Color: colorGray,
			}),
		)))
	}
	for i, r := range rows {
		m.AddRows(g.detailRow(i, r))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.summaryRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// titleRow: título y ubicación (izq), fecha de generación y folio (der).
func titleRow(meta history.ReportMeta) core.Row {
	return row.New(14).Add(
		col.New(16).Add(
			text.New(meta.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(meta.Subtitle, props.Text{
				Size: 9, Top: 8, Color: colorGray,
			}),
		),
		col.New(8).Add(
			text.New("Generado: "+meta.GeneratedAt.Format("02-01-2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Folio: "+meta.Folio, props.Text{
				Size: 6.5, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla con fondo azul.
func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(history.ExportHeaders))
	for i, label := range history.ExportHeaders {
		cols = append(cols, col.New(columnSizes[i]).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: align.Center,
			Color: colorWhite, Top: 2, Left: 0.5, Right: 0.5,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

// detailRow: un movimiento; las filas impares llevan fondo.
func (g *MarotoReportEncoder) detailRow(i int, r history.ExportRow) core.Row {
	cells := r.Cells()
	cells[6] = g.quantity(r.Quantity)

	cols := make([]core.Col, 0, len(cells))
	for c, v := range cells {
		a := align.Left
		if c == 0 || (c >= 6 && c <= 8) {
			a = align.Right
		}
		cols = append(cols, col.New(columnSizes[c]).Add(text.New(v, props.Text{
			Size: 6.5, Align: a, Top: 1, Left: 0.5, Right: 0.5,
		})))
	}
	rw := row.New(6).Add(cols...)
	if i%2 == 1 {
		rw = rw.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return rw
}

// summaryRow: conteo por tipo de movimiento.
func (g *MarotoReportEncoder) summaryRow(rows []history.ExportRow) core.Row {
	var entries, exits, adjustments int
	for _, r := range rows {
		switch entity.MovementKind(r.Kind) {
		case entity.MovementKindEntry:
			entries++
		case entity.MovementKindExit:
			exits++
		case entity.MovementKindAdjustment:
			adjustments++
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Top: 2, Color: colorPrimary})
	}
	return row.New(8).Add(
		col.New(6).Add(label(g.printer.Sprintf("Total movimientos: %d", len(rows)))),
		col.New(6).Add(label(g.printer.Sprintf("Entradas: %d", entries))),
		col.New(6).Add(label(g.printer.Sprintf("Salidas: %d", exits))),
		col.New(6).Add(label(g.printer.Sprintf("Ajustes: %d", adjustments))),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// quantity formatea con separador de miles local sin redondear la parte decimal.
// La parte entera pasa por el printer es-CL; los decimales se copian tal cual.
func (g *MarotoReportEncoder) quantity(d decimal.Decimal) string {
	abs := d.Abs()
	whole := abs.Truncate(0)
	out := g.printer.Sprint(number.Decimal(whole.IntPart()))
	if frac := abs.Sub(whole); !frac.IsZero() {
		out += "," + strings.TrimPrefix(frac.String(), "0.")
	}
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}
