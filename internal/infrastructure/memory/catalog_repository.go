package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
)

// WarehouseRepo bodegas.
type WarehouseRepo struct {
	store *Store
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.store.write(false, func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return fmt.Errorf("bodega %s: %w", w.ID, domain.ErrDuplicate)
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.store.read(false, func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var list []*entity.Warehouse
	r.store.read(false, func(st *state) {
		for _, w := range st.warehouses {
			w := w
			list = append(list, &w)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

// ProductRepo productos.
type ProductRepo struct {
	store *Store
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.store.write(false, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return fmt.Errorf("producto %s: %w", p.ID, domain.ErrDuplicate)
		}
		for _, other := range st.products {
			if other.SKU == p.SKU {
				return fmt.Errorf("sku %s: %w", p.SKU, domain.ErrDuplicate)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.store.read(false, func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	r.store.read(false, func(st *state) {
		for _, p := range st.products {
			p := p
			list = append(list, &p)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return page(list, limit, offset), nil
}
