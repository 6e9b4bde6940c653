// Package pdf implementa la confirmación de pedido en PDF para el dashboard.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: N° Pedido + Estado  │  Fecha + Origen              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Empresa / Contacto / Email                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | SKU | Producto | P.Unit | Total línea        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL DEL PEDIDO                                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ANOMALÍAS DETECTADAS (si las hay)                          │
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

	"github.com/jhoicas/orderflow-api/internal/application/orders"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 60, Blue: 0}
)

// Ensure MarotoOrderPDF implements orders.OrderPDFGenerator.
var _ orders.OrderPDFGenerator = (*MarotoOrderPDF)(nil)

// MarotoOrderPDF genera la confirmación de pedido usando Maroto v2.
type MarotoOrderPDF struct{}

// NewMarotoOrderPDF construye el generador.
func NewMarotoOrderPDF() *MarotoOrderPDF { return &MarotoOrderPDF{} }

// GenerateOrderPDF genera el PDF y devuelve sus bytes.
func (g *MarotoOrderPDF) GenerateOrderPDF(
	_ context.Context,
	order *entity.Order,
	customer *entity.Customer,
	items []*entity.OrderItem,
	flags []*entity.AnomalyFlag,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Confirmación de Pedido "+order.OrderNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(order))

	if len(flags) > 0 {
		m.AddRows(line.NewRow(3))
		for _, r := range flagRows(flags) {
			m.AddRows(r)
		}
	}

	if order.ErrorMessage != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("ERROR DE PROCESAMIENTO: "+order.ErrorMessage, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 2,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: número de pedido + estado (izq) y fecha + origen (der).
func headerRow(order *entity.Order) core.Row {
	fecha := order.CreatedAt.Format("02/01/2006 15:04")
	origen := "Mensaje de texto"
	if order.SourceType == entity.SourceVoiceMessage {
		origen = "Nota de voz"
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New("CONFIRMACIÓN DE PEDIDO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(order.OrderNumber, props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
			text.New("Estado: "+statusLabel(order.Status), props.Text{
				Size: 9, Top: 13, Color: statusColor(order.Status),
			}),
		),
		col.New(5).Add(
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Origen: "+origen, props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente.
func customerRow(customer *entity.Customer) core.Row {
	if customer == nil {
		customer = &entity.Customer{CompanyName: "—"}
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.CompanyName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Contacto: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(customer.ContactName, "—"),
				nonEmpty(customer.Email, "—"),
				nonEmpty(customer.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Producto", 5, align.Left),
		h("P.Unit.", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableItemRows: una fila por línea de pedido.
func tableItemRows(items []*entity.OrderItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				it.SKU,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(5).Add(text.New(
				it.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+it.UnitPrice.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+it.LineTotal.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: total del pedido alineado a la derecha.
func totalRow(order *entity.Order) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL DEL PEDIDO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+order.TotalAmount.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// flagRows: sección de anomalías detectadas.
func flagRows(flags []*entity.AnomalyFlag) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("ANOMALÍAS DETECTADAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 1,
			}),
		)),
	}
	for _, f := range flags {
		c := colorGray
		if f.Severity == entity.SeverityReviewRequired {
			c = colorAlert
		}
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("• [%s] %s", f.Category, f.Reason), props.Text{
				Size: 7.5, Color: c, Top: 0.5, Left: 2,
			}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func statusLabel(status string) string {
	switch status {
	case entity.OrderStatusProcessing:
		return "En procesamiento"
	case entity.OrderStatusReview:
		return "Requiere revisión"
	case entity.OrderStatusCompleted:
		return "Completado"
	case entity.OrderStatusError:
		return "Error"
	case entity.OrderStatusCancelled:
		return "Cancelado"
	}
	return status
}

func statusColor(status string) *props.Color {
	switch status {
	case entity.OrderStatusReview, entity.OrderStatusError:
		return colorAlert
	default:
		return colorGray
	}
}
