package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// parseTimeQuery acepta YYYY-MM-DD o RFC3339. Con fecha sola, "to" cubre el día completo.
func parseTimeQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, domain.NewValidationError(key, "formato esperado YYYY-MM-DD o RFC3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parsePage(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	p.Limit = repository.NormalizeLimit(p.Limit)
	return p
}

func parseRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = parseTimeQuery(c, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = parseTimeQuery(c, "to", true); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	return from, to, nil
}

func parseDocumentFilter(c *fiber.Ctx) (repository.DocumentFilter, dto.PageRequest, error) {
	page := parsePage(c)
	from, to, err := parseRange(c)
	if err != nil {
		return repository.DocumentFilter{}, page, err
	}
	return repository.DocumentFilter{
		WarehouseID: c.Query("warehouse_id"),
		ProductID:   c.Query("product_id"),
		Type:        c.Query("type"),
		Status:      c.Query("status"),
		From:        from,
		To:          to,
		Limit:       page.Limit,
		Offset:      page.Offset,
	}, page, nil
}

func parseMovementFilter(c *fiber.Ctx) (repository.MovementFilter, dto.PageRequest, error) {
	page := parsePage(c)
	from, to, err := parseRange(c)
	if err != nil {
		return repository.MovementFilter{}, page, err
	}
	return repository.MovementFilter{
		WarehouseID:   c.Query("warehouse_id"),
		ProductID:     c.Query("product_id"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
		From:          from,
		To:            to,
		Limit:         page.Limit,
		Offset:        page.Offset,
	}, page, nil
}
