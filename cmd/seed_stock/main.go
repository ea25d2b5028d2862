// seed_stock carga saldos iniciales desde un CSV separado por ';'
// (warehouse_id;product_id;quantity;unit_price) creando y aprobando una entrada por bodega.
//
// Uso: go run ./cmd/seed_stock -file saldos.csv [-latin1] [-user seed] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-ledger/internal/app"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	file := flag.String("file", "saldos.csv", "archivo CSV de saldos iniciales")
	latin1 := flag.Bool("latin1", false, "el archivo viene en ISO-8859-1 (exportes de Excel)")
	user := flag.String("user", "seed_stock", "usuario que solicita y aprueba las entradas")
	reason := flag.String("reason", "saldo inicial", "motivo de las entradas")
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir CSV")
	}
	lines, err := readOpeningBalances(f, *latin1)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	warehouses, groups := groupByWarehouse(lines)
	log.Info().Int("lines", len(lines)).Int("warehouses", len(warehouses)).Msg("archivo válido")
	if *dryRun {
		return
	}

	ctx := context.Background()
	st, err := app.OpenStorage(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.Close()
	svc := app.NewServices(st, cfg.Inventory, log.Zerolog())

	failed := 0
	for _, wh := range warehouses {
		number, err := seedWarehouse(ctx, svc.Transactions, wh, groups[wh], *user, *reason)
		if err != nil {
			failed++
			log.Error().Err(err).Str("warehouse_id", wh).Msg("entrada de saldos no aplicada")
			continue
		}
		log.Info().Str("warehouse_id", wh).Str("number", number).Int("lines", len(groups[wh])).Msg("saldos aplicados")
	}
	if failed > 0 {
		st.Close()
		os.Exit(1)
	}
}

// seedWarehouse crea la entrada de la bodega y la aprueba en seguida.
func seedWarehouse(ctx context.Context, txs *inventory.StockTransactionService, warehouseID string, lines []openingLine, user, reason string) (string, error) {
	in := inventory.CreateTransactionInput{
		WarehouseID: warehouseID,
		RequestedBy: user,
		Reason:      reason,
		Lines:       make([]inventory.TransactionLineInput, 0, len(lines)),
	}
	for _, l := range lines {
		in.Lines = append(in.Lines, inventory.TransactionLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Notes:     fmt.Sprintf("fila %d", l.Row),
		})
	}
	tx, err := txs.CreateImport(ctx, in)
	if err != nil {
		return "", err
	}
	if _, err := txs.Approve(ctx, tx.ID, user, reason); err != nil {
		return tx.Number, err
	}
	return tx.Number, nil
}
