package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

const (
	whNorte = "wh-norte"
	whSur   = "wh-sur"
	prodA   = "prod-a"
	prodB   = "prod-b"
)

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()
	for _, id := range []string{whNorte, whSur} {
		require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: id, Code: id, Name: "Bodega " + id, Active: true, CreatedAt: now}))
	}
	for _, id := range []string{prodA, prodB} {
		require.NoError(t, store.Products().Create(ctx, &entity.Product{
			ID: id, SKU: "SKU-" + id, Name: "Producto " + id, ReorderPoint: decimal.NewFromInt(5), Active: true, CreatedAt: now,
		}))
	}

	log := zerolog.Nop()
	ledger := inventory.NewLedger(store, store.Records(), store.Movements(), store.Products(), store.Warehouses(), log)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:      usecase.NewWarehouseUseCase(store.Warehouses()),
		ProductUC:        usecase.NewProductUseCase(store.Products()),
		Ledger:           ledger,
		Reservations:     inventory.NewReservationService(ledger, store, log),
		Transactions:     inventory.NewStockTransactionService(store, store.Transactions(), store.Products(), store.Warehouses(), log),
		Transfers:        inventory.NewStockTransferService(store, store.Transfers(), store.Products(), store.Warehouses(), entity.TransferDebitAtApprove, log),
		Alerts:           inventory.NewAlertsUseCase(store.Records(), store.Transactions()),
		Documents:        inventory.NewDocumentsUseCase(store.Transactions(), store.Transfers(), store.Products(), store.Warehouses(), pdf.NewMarotoRenderer("Inventario Test")),
		ExpiryWindowDays: 30,
		JWTSecret:        testJWTSecret,
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func callJSON(t *testing.T, app *fiber.App, method, path, role string, body any) (int, map[string]any) {
	t.Helper()
	resp := call(t, app, method, path, role, body)
	defer resp.Body.Close()
	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func importBody(wh, prod string, qty int) map[string]any {
	return map[string]any{
		"warehouse_id": wh,
		"reason":       "compra",
		"lines":        []map[string]any{{"product_id": prod, "quantity": qty, "unit_price": 1000}},
	}
}

func recordQuantity(t *testing.T, app *fiber.App, wh, prod string) string {
	t.Helper()
	status, body := callJSON(t, app, http.MethodGet, "/api/inventory/records?warehouse_id="+wh+"&product_id="+prod, pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	return items[0].(map[string]any)["quantity"].(string)
}

func TestAPI_SinToken(t *testing.T) {
	app, _ := buildTestApp(t)
	status, body := callJSON(t, app, http.MethodGet, "/api/stock-transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])

	status, _ = callJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_EntradaSoloLaApruebaUnSupervisor(t *testing.T) {
	app, _ := buildTestApp(t)

	status, created := callJSON(t, app, http.MethodPost, "/api/stock-transactions/import", pkgjwt.RoleBodeguero, importBody(whNorte, prodA, 10))
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, testUserID, created["requested_by"])
	id := created["id"].(string)
	assert.Equal(t, "0", recordQuantity(t, app, whNorte, prodA), "pendiente no mueve existencias")

	status, body := callJSON(t, app, http.MethodPost, "/api/stock-transactions/"+id+"/approve", pkgjwt.RoleBodeguero, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, approved := callJSON(t, app, http.MethodPost, "/api/stock-transactions/"+id+"/approve", pkgjwt.RoleSupervisor, map[string]any{"notes": "ok"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approved", approved["status"])
	assert.Equal(t, "ok", approved["approval_notes"])
	assert.Equal(t, "10", recordQuantity(t, app, whNorte, prodA))

	status, body = callJSON(t, app, http.MethodPost, "/api/stock-transactions/"+id+"/approve", pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["code"])
	assert.Equal(t, "10", recordQuantity(t, app, whNorte, prodA), "aprobar dos veces no duplica el efecto")
}

func TestAPI_SalidaSinExistenciasDevuelveFaltante(t *testing.T) {
	app, _ := buildTestApp(t)
	_, created := callJSON(t, app, http.MethodPost, "/api/stock-transactions/import", pkgjwt.RoleBodeguero, importBody(whNorte, prodA, 5))
	status, _ := callJSON(t, app, http.MethodPost, "/api/stock-transactions/"+created["id"].(string)+"/approve", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)

	_, export := callJSON(t, app, http.MethodPost, "/api/stock-transactions/export", pkgjwt.RoleBodeguero, importBody(whNorte, prodA, 8))
	status, body := callJSON(t, app, http.MethodPost, "/api/stock-transactions/"+export["id"].(string)+"/approve", pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_INVENTORY", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "3", details["shortage"])
	assert.Equal(t, prodA, details["product_id"])

	_, got := callJSON(t, app, http.MethodGet, "/api/stock-transactions/"+export["id"].(string), pkgjwt.RoleVendedor, nil)
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "5", recordQuantity(t, app, whNorte, prodA))
}

func TestAPI_Validaciones(t *testing.T) {
	app, _ := buildTestApp(t)

	status, body := callJSON(t, app, http.MethodPost, "/api/stock-transactions/regalo", pkgjwt.RoleBodeguero, importBody(whNorte, prodA, 1))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = callJSON(t, app, http.MethodPost, "/api/stock-transactions/import", pkgjwt.RoleBodeguero, importBody(whNorte, "no-existe", 1))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, _ = callJSON(t, app, http.MethodGet, "/api/stock-transfers/no-existe", pkgjwt.RoleVendedor, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = callJSON(t, app, http.MethodGet, "/api/inventory/movements?from=ayer", pkgjwt.RoleVendedor, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestAPI_ReservasDeOrden(t *testing.T) {
	app, _ := buildTestApp(t)
	status, _ := callJSON(t, app, http.MethodPost, "/api/inventory/set", pkgjwt.RoleSupervisor, map[string]any{
		"warehouse_id": whNorte, "product_id": prodA, "quantity": 10, "reason": "conteo inicial",
	})
	require.Equal(t, http.StatusOK, status)

	order := map[string]any{
		"warehouse_id":   whNorte,
		"reference_type": "sales_order",
		"reference_id":   "SO-100",
		"items":          []map[string]any{{"product_id": prodA, "quantity": 4}},
	}
	status, _ = callJSON(t, app, http.MethodPost, "/api/inventory/reservations", pkgjwt.RoleVendedor, order)
	require.Equal(t, http.StatusOK, status)

	status, avail := callJSON(t, app, http.MethodPost, "/api/inventory/availability", pkgjwt.RoleVendedor, map[string]any{
		"warehouse_id": whNorte,
		"items":        []map[string]any{{"product_id": prodA, "quantity": 7}},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, avail["all_available"])
	item := avail["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "6", item["available_quantity"])
	assert.Equal(t, "1", item["shortage"])

	status, released := callJSON(t, app, http.MethodPost, "/api/inventory/reservations/release", pkgjwt.RoleVendedor, map[string]any{
		"reference_type": "sales_order", "reference_id": "SO-100", "all": true,
	})
	require.Equal(t, http.StatusOK, status)
	rec := released["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "0", rec["reserved_quantity"])

	status, movs := callJSON(t, app, http.MethodGet, "/api/inventory/movements?reference_id=SO-100", pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, movs["items"], 2)
}

func TestAPI_TrasladoConTransitoYRemision(t *testing.T) {
	app, _ := buildTestApp(t)
	status, _ := callJSON(t, app, http.MethodPost, "/api/inventory/adjust", pkgjwt.RoleAdmin, map[string]any{
		"warehouse_id": whNorte, "product_id": prodB, "delta": 20, "reason": "saldo inicial",
	})
	require.Equal(t, http.StatusOK, status)

	status, tr := callJSON(t, app, http.MethodPost, "/api/stock-transfers", pkgjwt.RoleBodeguero, map[string]any{
		"source_warehouse_id":      whNorte,
		"destination_warehouse_id": whSur,
		"reason":                   "reposición",
		"lines":                    []map[string]any{{"product_id": prodB, "quantity": 6, "unit_price": 250}},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "1500", tr["total_value"])
	id := tr["id"].(string)

	status, tr = callJSON(t, app, http.MethodPost, "/api/stock-transfers/"+id+"/approve", pkgjwt.RoleSupervisor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "in_transit", tr["status"])
	assert.Equal(t, "14", recordQuantity(t, app, whNorte, prodB))
	assert.Equal(t, "0", recordQuantity(t, app, whSur, prodB))

	status, tr = callJSON(t, app, http.MethodPost, "/api/stock-transfers/"+id+"/complete", pkgjwt.RoleBodeguero, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", tr["status"])
	assert.Equal(t, "6", recordQuantity(t, app, whSur, prodB))

	resp := call(t, app, http.MethodGet, "/api/stock-transfers/"+id+"/pdf", pkgjwt.RoleVendedor, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))
}

func TestAPI_AlertasDeStockBajo(t *testing.T) {
	app, _ := buildTestApp(t)
	status, _ := callJSON(t, app, http.MethodPost, "/api/inventory/set", pkgjwt.RoleAdmin, map[string]any{
		"warehouse_id": whSur, "product_id": prodA, "quantity": 2, "reason": "conteo",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := callJSON(t, app, http.MethodGet, "/api/inventory/alerts/low-stock?warehouse_id="+whSur, pkgjwt.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])

	status, body = callJSON(t, app, http.MethodGet, "/api/inventory/alerts/expiring?days=0", pkgjwt.RoleVendedor, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}
