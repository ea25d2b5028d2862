// Package pdf genera la representación imprimible de los documentos de inventario:
// remisión de traslado y comprobante de movimiento.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de documento  │  N° + Fecha + Estado           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BODEGAS: Origen / Destino (o bodega del documento)          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Producto | Lote | Vence | Cant. | (P.Unit | Valor)│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL (traslados) + firmas + QR con el número               │
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

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.DocumentRenderer = (*MarotoRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var transactionTitles = map[entity.StockTransactionType]string{
	entity.TransactionTypeImport:    "ENTRADA DE INVENTARIO",
	entity.TransactionTypeExport:    "SALIDA DE INVENTARIO",
	entity.TransactionTypeTransfer:  "TRASLADO ENTRE BODEGAS",
	entity.TransactionTypeDisposal:  "BAJA DE INVENTARIO",
	entity.TransactionTypeStocktake: "AJUSTE POR CONTEO FÍSICO",
}

// MarotoRenderer implementa inventory.DocumentRenderer usando Maroto v2.
type MarotoRenderer struct {
	company string
}

// NewMarotoRenderer construye el generador. company aparece como autor y en el encabezado.
func NewMarotoRenderer(company string) *MarotoRenderer {
	return &MarotoRenderer{company: company}
}

func (g *MarotoRenderer) newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.company, true).
		Build()
	return maroto.New(cfg)
}

// RenderTransfer genera la remisión de un traslado con tránsito.
func (g *MarotoRenderer) RenderTransfer(_ context.Context, doc inventory.TransferDocument) ([]byte, error) {
	t := doc.Transfer
	m := g.newDocument("Remisión de traslado " + t.Number)

	m.AddRows(headerRow(g.company, "REMISIÓN DE TRASLADO", t.Number, t.CreatedAt, string(t.Status)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(warehousesRow(
		"ORIGEN", warehouseLabel(doc.Source),
		"DESTINO", warehouseLabel(doc.Destination),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(true))
	for _, d := range t.Details {
		m.AddRows(detailRow(detailLine{
			no:       d.LineNo,
			product:  productLabel(doc.ProductNames, d.ProductID),
			batch:    d.BatchNumber,
			expiry:   d.ExpiryDate,
			quantity: d.Quantity,
			price:    &d.UnitPrice,
			value:    d.LineValue(),
		}, true))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(t.TotalValue))
	m.AddRows(notesRow(t.Reason, t.Notes))
	m.AddRows(footerRow(t.Number, "Despacha", "Recibe"))

	return generate(m)
}

// RenderTransaction genera el comprobante de un documento de inventario.
func (g *MarotoRenderer) RenderTransaction(_ context.Context, doc inventory.TransactionDocument) ([]byte, error) {
	tx := doc.Transaction
	title := transactionTitles[tx.Type]
	if title == "" {
		title = strings.ToUpper(string(tx.Type))
	}
	m := g.newDocument(title + " " + tx.Number)

	m.AddRows(headerRow(g.company, title, tx.Number, tx.CreatedAt, string(tx.Status)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if tx.Type == entity.TransactionTypeTransfer {
		m.AddRows(warehousesRow(
			"ORIGEN", warehouseLabel(doc.Warehouses[tx.SourceWarehouseID]),
			"DESTINO", warehouseLabel(doc.Warehouses[tx.DestinationWarehouseID]),
		))
	} else {
		m.AddRows(warehousesRow("BODEGA", warehouseLabel(doc.Warehouses[tx.WarehouseID]), "", ""))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(false))
	for _, d := range tx.Details {
		m.AddRows(detailRow(detailLine{
			no:       d.LineNo,
			product:  productLabel(doc.ProductNames, d.ProductID),
			batch:    stocktakeNote(d),
			expiry:   d.ExpiryDate,
			quantity: d.Quantity,
		}, false))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(notesRow(tx.Reason, tx.Notes))
	approver := "Aprueba"
	if tx.ApprovedBy != nil {
		approver = "Aprobado por " + *tx.ApprovedBy
	}
	m.AddRows(footerRow(tx.Number, "Solicita "+tx.RequestedBy, approver))

	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company, title, number string, date time.Time, status string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company, "Inventario"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(title, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+date.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+strings.ToUpper(status), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func warehousesRow(leftLabel, left, rightLabel, right string) core.Row {
	block := func(label, value string) core.Col {
		if label == "" {
			return col.New(6)
		}
		return col.New(6).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 9, Top: 6}),
		)
	}
	return row.New(13).Add(block(leftLabel, left), block(rightLabel, right))
}

func tableHeaderRow(withValues bool) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	if withValues {
		return row.New(8).Add(
			h("#", 1, align.Center),
			h("Producto", 4, align.Left),
			h("Lote", 2, align.Left),
			h("Cant.", 1, align.Right),
			h("P.Unit", 2, align.Right),
			h("Valor", 2, align.Right),
		)
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Producto", 5, align.Left),
		h("Lote / Conteo", 3, align.Left),
		h("Vence", 1, align.Center),
		h("Cant.", 2, align.Right),
	)
}

type detailLine struct {
	no       int
	product  string
	batch    string
	expiry   *time.Time
	quantity decimal.Decimal
	price    *decimal.Decimal
	value    decimal.Decimal
}

func detailRow(d detailLine, withValues bool) core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	if withValues {
		return row.New(7).Add(
			cell(fmt.Sprint(d.no), 1, align.Center),
			cell(d.product, 4, align.Left),
			cell(nonEmpty(d.batch, "—"), 2, align.Left),
			cell(d.quantity.String(), 1, align.Right),
			cell("$"+formatMoney(d.price.StringFixed(0)), 2, align.Right),
			cell("$"+formatMoney(d.value.StringFixed(0)), 2, align.Right),
		)
	}
	expiry := "—"
	if d.expiry != nil {
		expiry = d.expiry.Format("02/01/06")
	}
	return row.New(7).Add(
		cell(fmt.Sprint(d.no), 1, align.Center),
		cell(d.product, 5, align.Left),
		cell(nonEmpty(d.batch, "—"), 3, align.Left),
		cell(expiry, 1, align.Center),
		cell(d.quantity.String(), 2, align.Right),
	)
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(9).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(2).Add(text.New("$"+formatMoney(total.StringFixed(0)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func notesRow(reason, notes string) core.Row {
	body := "Motivo: " + nonEmpty(reason, "—")
	if notes != "" {
		body += "   |   Notas: " + notes
	}
	return row.New(10).Add(col.New(12).Add(
		text.New(body, props.Text{Size: 8, Top: 3, Color: colorGray}),
	))
}

// footerRow: firmas y QR con el número del documento (para escanear en bodega).
func footerRow(number, leftSign, rightSign string) core.Row {
	sign := func(label string) core.Col {
		return col.New(4).Add(
			text.New("_____________________________", props.Text{Size: 8, Top: 18, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Top: 23, Align: align.Center, Color: colorGray}),
		)
	}
	return row.New(35).Add(
		sign(leftSign),
		sign(rightSign),
		col.New(4).Add(code.NewQr(number, props.Rect{Percent: 80, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func warehouseLabel(w *entity.Warehouse) string {
	if w == nil {
		return "—"
	}
	if w.Code != "" {
		return w.Code + " · " + w.Name
	}
	return w.Name
}

func productLabel(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// stocktakeNote en conteos muestra sistema → contado en lugar del lote.
func stocktakeNote(d entity.StockTransactionDetail) string {
	if d.SystemQuantity != nil && d.ActualQuantity != nil {
		return fmt.Sprintf("%s → %s", d.SystemQuantity.String(), d.ActualQuantity.String())
	}
	return d.BatchNumber
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
