package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// catalog valida referencias a bodegas y productos fuera de la tx (solo lectura).
type catalog struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
}

func (c catalog) requireWarehouse(ctx context.Context, field, id string) (*entity.Warehouse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError(field, "requerido")
	}
	wh, err := c.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar bodega: %w", err)
	}
	if wh == nil {
		return nil, domain.NewNotFound("bodega", id)
	}
	if !wh.Active {
		return nil, domain.NewValidationError(field, "bodega inactiva")
	}
	return wh, nil
}

func (c catalog) requireProduct(ctx context.Context, field, id string) (*entity.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError(field, "requerido")
	}
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar producto: %w", err)
	}
	if p == nil {
		return nil, domain.NewNotFound("producto", id)
	}
	return p, nil
}

// productNames resuelve nombres para documentos impresos; un producto ausente se muestra por ID.
func (c catalog) productNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		names[id] = id
		if p, err := c.products.GetByID(ctx, id); err == nil && p != nil {
			names[id] = p.SKU + " " + p.Name
		}
	}
	return names
}

// documentNumber genera un consecutivo legible: IMP-20260115-1a2b3c4d.
func documentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), uuid.New().String()[:8])
}
