package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// openingLine una fila del archivo de saldos iniciales.
type openingLine struct {
	Row         int
	WarehouseID string
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   *decimal.Decimal
}

// readOpeningBalances lee warehouse_id;product_id;quantity;unit_price.
// Acepta encabezado, líneas vacías, comentarios con # y coma decimal ("12,5").
func readOpeningBalances(r io.Reader, latin1 bool) ([]openingLine, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []openingLine
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer CSV: %w", err)
		}
		row, _ := cr.FieldPos(0)
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(rec[0]), "warehouse_id") {
				continue
			}
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("fila %d: se esperan al menos 3 columnas, hay %d", row, len(rec))
		}
		line := openingLine{
			Row:         row,
			WarehouseID: strings.TrimSpace(rec[0]),
			ProductID:   strings.TrimSpace(rec[1]),
		}
		if line.WarehouseID == "" || line.ProductID == "" {
			return nil, fmt.Errorf("fila %d: bodega y producto son obligatorios", row)
		}
		if line.Quantity, err = parseAmount(rec[2]); err != nil {
			return nil, fmt.Errorf("fila %d: cantidad: %w", row, err)
		}
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("fila %d: la cantidad debe ser mayor que cero", row)
		}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			price, err := parseAmount(rec[3])
			if err != nil {
				return nil, fmt.Errorf("fila %d: precio: %w", row, err)
			}
			if price.IsNegative() {
				return nil, fmt.Errorf("fila %d: el precio no puede ser negativo", row)
			}
			line.UnitPrice = &price
		}
		out = append(out, line)
	}
	return out, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return decimal.NewFromString(s)
}

// groupByWarehouse agrupa las filas por bodega, con las bodegas en orden.
func groupByWarehouse(lines []openingLine) ([]string, map[string][]openingLine) {
	groups := make(map[string][]openingLine)
	for _, l := range lines {
		groups[l.WarehouseID] = append(groups[l.WarehouseID], l)
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, groups
}
