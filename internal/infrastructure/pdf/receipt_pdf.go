// Package pdf genera el comprobante (ticket) de una venta confirmada.
//
// Layout A4 compacto:
//
//	┌───────────────────────────────────────────────┐
//	│  COMPROBANTE DE VENTA        N° + fecha/hora  │
//	│  Cliente (o CONSUMIDOR FINAL)                 │
//	│  ─────────────────────────────────────────    │
//	│  Cant | Producto | P.Unit | Subtotal          │
//	│  ─────────────────────────────────────────    │
//	│  TOTAL                                        │
//	│  Leyenda: comprobante no fiscal               │
//	└───────────────────────────────────────────────┘
package pdf

import (
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

	"github.com/kiosco-app/ventas-api/internal/application/sales"
)

var (
	colorPrimary = &props.Color{Red: 30, Green: 30, Blue: 30}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// es-AR: separador de miles "." y decimal ",".
var amountPrinter = message.NewPrinter(language.MustParse("es-AR"))

var _ sales.ReceiptRenderer = (*MarotoReceiptRenderer)(nil)

// MarotoReceiptRenderer implementa sales.ReceiptRenderer usando Maroto v2.
type MarotoReceiptRenderer struct {
	storeName string // encabezado del ticket, ej. nombre del comercio
}

// NewMarotoReceiptRenderer construye el renderer.
func NewMarotoReceiptRenderer(storeName string) *MarotoReceiptRenderer {
	if storeName == "" {
		storeName = "Comprobante de venta"
	}
	return &MarotoReceiptRenderer{storeName: storeName}
}

// Render genera el PDF del comprobante y devuelve sus bytes.
func (g *MarotoReceiptRenderer) Render(data *sales.ReceiptData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName, data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, l := range data.Lines {
		m.AddRows(lineRow(l))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(totalRow(data.Total))
	m.AddRows(row.New(8).Add(
		col.New(12).Add(
			text.New("Documento no válido como factura.", props.Text{
				Size: 7, Top: 3, Color: colorGray, Align: align.Center,
			}),
		),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(storeName string, data *sales.ReceiptData) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New(storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("Venta "+shortID(data.SaleID), props.Text{
				Size: 9, Top: 1, Align: align.Right, Color: colorGray,
			}),
			text.New(data.Date.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Top: 6, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func customerRow(data *sales.ReceiptData) core.Row {
	name := data.CustomerName
	if name == "" {
		name = "CONSUMIDOR FINAL"
	}
	return row.New(8).Add(
		col.New(12).Add(
			text.New("Cliente: "+name, props.Text{Size: 9, Top: 2}),
		),
	)
}

func tableHeaderRow() core.Row {
	style := props.Text{Style: fontstyle.Bold, Size: 9, Top: 2, Color: colorPrimary}
	right := style
	right.Align = align.Right
	return row.New(8).Add(
		col.New(2).Add(text.New("Cant.", style)),
		col.New(5).Add(text.New("Producto", style)),
		col.New(2).Add(text.New("P. Unit", right)),
		col.New(3).Add(text.New("Subtotal", right)),
	)
}

func lineRow(l sales.ReceiptLine) core.Row {
	cell := props.Text{Size: 9, Top: 1}
	right := cell
	right.Align = align.Right
	return row.New(6).Add(
		col.New(2).Add(text.New(fmt.Sprintf("%d", l.Quantity), cell)),
		col.New(5).Add(text.New(l.ProductName, cell)),
		col.New(2).Add(text.New(FormatAmount(l.UnitPrice), right)),
		col.New(3).Add(text.New(FormatAmount(l.Subtotal), right)),
	)
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(7),
		col.New(2).Add(text.New("TOTAL", props.Text{
			Style: fontstyle.Bold, Size: 11, Top: 2, Align: align.Right,
		})),
		col.New(3).Add(text.New(FormatAmount(total), props.Text{
			Style: fontstyle.Bold, Size: 11, Top: 2, Align: align.Right,
		})),
	)
}

// FormatAmount formatea un importe en es-AR ("$ 1.234,50"). Solo presentación:
// el redondeo a dos decimales ocurre acá, nunca en la aritmética de la venta.
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return amountPrinter.Sprintf("$ %.2f", f)
}

// shortID primeros 8 caracteres del uuid, suficiente para el ticket.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
