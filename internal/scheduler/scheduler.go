package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

// AlertSource entrega las listas de alertas de inventario.
type AlertSource interface {
	LowStock(ctx context.Context, warehouseID string) ([]dto.LowStockAlertDTO, error)
	ExpiringLots(ctx context.Context, warehouseID string, withinDays int) ([]dto.ExpiringLotDTO, error)
}

// Config del job de alertas.
type Config struct {
	Spec       string // expresión cron de 5 campos
	ExpiryDays int
	Timeout    time.Duration
}

// Scheduler corre el escaneo periódico de stock bajo y lotes por vencer.
type Scheduler struct {
	cron   *cron.Cron
	alerts AlertSource
	cfg    Config
	log    zerolog.Logger
}

// New crea el scheduler. Usa el parser estándar de robfig/cron (min hora dom mes dow).
func New(cfg Config, alerts AlertSource, log zerolog.Logger) *Scheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Scheduler{
		cron:   cron.New(),
		alerts: alerts,
		cfg:    cfg,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registra el job y arranca el cron. Falla si la expresión no es válida.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, s.RunNow); err != nil {
		return fmt.Errorf("programar alertas de inventario %q: %w", s.cfg.Spec, err)
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.cfg.Spec).Msg("scheduler iniciado")
	return nil
}

// Stop detiene el cron y espera a que termine el job en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler detenido")
}

// RunNow ejecuta el escaneo de forma síncrona.
func (s *Scheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	low, err := s.alerts.LowStock(ctx, "")
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudo calcular stock bajo")
	} else {
		for _, a := range low {
			s.log.Warn().
				Str("warehouse_id", a.WarehouseID).
				Str("product_id", a.ProductID).
				Str("sku", a.SKU).
				Str("available", a.Available.String()).
				Str("reorder_point", a.ReorderPoint.String()).
				Str("suggested_order_qty", a.SuggestedOrderQty.String()).
				Int("priority", a.Priority).
				Msg("stock bajo punto de reorden")
		}
	}

	lots, err := s.alerts.ExpiringLots(ctx, "", s.cfg.ExpiryDays)
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudieron calcular lotes por vencer")
	} else {
		for _, l := range lots {
			s.log.Warn().
				Str("warehouse_id", l.WarehouseID).
				Str("product_id", l.ProductID).
				Str("batch_number", l.BatchNumber).
				Str("quantity", l.Quantity.String()).
				Int("days_to_expiry", l.DaysToExpiry).
				Msg("lote próximo a vencer")
		}
	}

	s.log.Info().Int("low_stock", len(low)).Int("expiring_lots", len(lots)).Msg("escaneo de alertas terminado")
}
