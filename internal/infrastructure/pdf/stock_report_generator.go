// Package pdf genera el reporte de existencias por producto y área.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + área        │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Área | Cantidad                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Bodega / Surtido / Total                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoStockReportGenerator implementa inventory.StockReportGenerator usando Maroto v2.
type MarotoStockReportGenerator struct {
	printer *message.Printer
	title   string
}

var _ inventory.StockReportGenerator = (*MarotoStockReportGenerator)(nil)

// NewMarotoStockReportGenerator construye el generador. title va en el encabezado (nombre de la app).
func NewMarotoStockReportGenerator(title string) *MarotoStockReportGenerator {
	return &MarotoStockReportGenerator{
		printer: message.NewPrinter(language.Spanish),
		title:   nonEmpty(title, "Inventario"),
	}
}

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoStockReportGenerator) GenerateStockReport(_ context.Context, report inventory.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de existencias", true).
		WithAuthor(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableRows(report.Rows)...)
	if len(report.Rows) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin existencias registradas.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRows(report)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + área (izq) y fecha (der).
func (g *MarotoStockReportGenerator) headerRow(report inventory.StockReport) core.Row {
	scope := "Todas las áreas"
	if report.Area != "" {
		scope = "Área: " + areaLabel(report.Area)
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("REPORTE DE EXISTENCIAS · "+scope, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(report.GeneratedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla con fondo azul.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 3, align.Left),
		h("Producto", 5, align.Left),
		h("Área", 2, align.Center),
		h("Cantidad", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableRows: una fila por (producto, área), con filas alternas sombreadas.
func (g *MarotoStockReportGenerator) tableRows(levels []*entity.InventoryLevel) []core.Row {
	result := make([]core.Row, 0, len(levels))
	for i, l := range levels {
		r := row.New(7).Add(
			col.New(3).Add(text.New(nonEmpty(l.SKU, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(areaLabel(l.Area), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.formatQuantity(l.Quantity), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, r)
	}
	return result
}

// totalsRows: total por área y general, alineados a la derecha.
func (g *MarotoStockReportGenerator) totalsRows(report inventory.StockReport) []core.Row {
	totalRow := func(label string, q decimal.Decimal, bold bool) core.Row {
		style := props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1}
		if bold {
			style.Style = fontstyle.Bold
			style.Color = colorPrimary
		}
		return row.New(6).Add(
			col.New(6),
			col.New(4).Add(text.New(label, style)),
			col.New(2).Add(text.New(g.formatQuantity(q), style)),
		)
	}

	var rows []core.Row
	grand := decimal.Zero
	for _, a := range entity.Areas {
		if report.Area != "" && report.Area != a {
			continue
		}
		q := report.Totals[a]
		grand = grand.Add(q)
		rows = append(rows, totalRow("Total "+areaLabel(a)+":", q, false))
	}
	rows = append(rows, totalRow("TOTAL:", grand, true))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatQuantity formatea con separadores de miles en español, hasta 3 decimales.
// Ej: 12345.5 → "12.345,5"
func (g *MarotoStockReportGenerator) formatQuantity(q decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(q.InexactFloat64(), number.MaxFractionDigits(3)))
}

func areaLabel(a entity.Area) string {
	switch a {
	case entity.AreaBodega:
		return "Bodega"
	case entity.AreaSurtido:
		return "Surtido"
	}
	return string(a)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
