// Package pdf genera el comprobante imprimible de los documentos de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: tipo de documento + número  │  estado + fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN / DESTINO / TERCERO                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Cant | UdM | Origen | Destino       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con la referencia + usuario                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ inventory.SlipGenerator = (*SlipGenerator)(nil)

// SlipGenerator comprobantes PDF con Maroto v2. Las cantidades se formatean según Locale.
type SlipGenerator struct {
	printer *message.Printer
}

// NewSlipGenerator locale vacío = español.
func NewSlipGenerator(locale string) *SlipGenerator {
	tag := language.Spanish
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	return &SlipGenerator{printer: message.NewPrinter(tag)}
}

// GenerateSlip genera el PDF y devuelve sus bytes.
func (g *SlipGenerator) GenerateSlip(_ context.Context, slip inventory.DocumentSlip) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title(slip.Header), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(slip.Header))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(slip))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.lineRows(slip.Lines)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(slip))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante %s: %w", slip.Header.Number, err)
	}
	return doc.GetBytes(), nil
}

func title(h entity.DocumentHeader) string {
	return h.Kind.Label() + " " + h.Number
}

func headerRow(h entity.DocumentHeader) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(title(h), props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Ref: "+nonEmpty(h.Reference, "-"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(string(h.Status), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha: "+h.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func partiesRow(slip inventory.DocumentSlip) core.Row {
	field := func(label, value string, top float64) core.Component {
		return text.New(label+": "+nonEmpty(value, "-"), props.Text{Size: 8, Top: top})
	}
	party := "Tercero"
	if slip.Header.Kind == entity.KindAdjustment {
		party = "Motivo"
	}
	return row.New(14).Add(
		col.New(6).Add(
			field("Origen", slip.Source, 1),
			field("Destino", slip.Target, 6),
		),
		col.New(6).Add(field(party, slip.Partner, 1)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Right),
		h("UdM", 1, align.Center),
		h("Origen", 2, align.Left),
		h("Destino", 2, align.Left),
	)
}

func (g *SlipGenerator) lineRows(lines []inventory.SlipLine) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			cell(l.SKU, 2, align.Left),
			cell(l.ProductName, 4, align.Left),
			cell(g.quantity(l.Quantity), 1, align.Right),
			cell(l.UnitMeasure, 1, align.Center),
			cell(nonEmpty(l.From, "-"), 2, align.Left),
			cell(nonEmpty(l.To, "-"), 2, align.Left),
		))
	}
	return rows
}

// quantity separadores de miles y decimales del locale; hasta 4 decimales.
func (g *SlipGenerator) quantity(q decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(q.InexactFloat64(), number.MaxFractionDigits(4)))
}

func footerRow(slip inventory.DocumentSlip) core.Row {
	ref := slip.Header.Kind.MoveReference(slip.Header.ID)
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(ref, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Registrado por: "+nonEmpty(slip.CreatedBy, "-"), props.Text{Size: 8, Top: 10, Left: 3}),
			text.New(fmt.Sprintf("%d línea(s)", len(slip.Lines)), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 18, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
