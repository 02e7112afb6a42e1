package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-stock/internal/application/dto"
	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/memstore"
	apphttp "github.com/jhoicas/bodega-stock/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/bodega-stock/pkg/jwt"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

type fakePDF struct{}

func (fakePDF) GenerateStockReport(_ context.Context, _ inventory.StockReport) ([]byte, error) {
	return []byte("%PDF-1.4 test"), nil
}

// buildInventoryApp monta el router completo sobre el store en memoria.
func buildInventoryApp(t *testing.T) (*fiber.App, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	log := logger.NewNop()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RecordMovement: inventory.NewRecordMovementUseCase(s, s.ProductRepository(), nil, log),
		Transfer:       inventory.NewTransferUseCase(s, s.ProductRepository(), s.StockRepository(), nil, log),
		Reconcile:      inventory.NewReconcileUseCase(s, s.ProductRepository(), s.MovementRepository(), s.StockRepository(), log),
		AreaMigration:  inventory.NewAreaMigrationUseCase(s, nil, log),
		Import:         inventory.NewImportUseCase(s, log),
		Query:          inventory.NewQueryUseCase(s.LevelRepository(), s.MovementRepository(), s.ProductRepository(), decimal.Zero),
		Report:         inventory.NewReportUseCase(s.LevelRepository(), fakePDF{}),
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return app, s
}

func call(t *testing.T, app *fiber.App, method, path, role string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, out
}

func decodeErr(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos y traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestMovement_IngresoYSalida(t *testing.T) {
	app, s := buildInventoryApp(t)
	p := s.AddProduct("SKU-1", "Harina")

	resp, raw := call(t, app, http.MethodPost, "/api/manager/inventory/movement", pkgjwt.RoleDescargue,
		map[string]interface{}{"sku": "SKU-1", "area": "bodega", "type": "ingreso", "quantity": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.OK)
	assert.Equal(t, p.ID, out.ProductID)
	assert.True(t, decimal.NewFromInt(10).Equal(out.Stock))

	// cantidad como string decimal
	resp, raw = call(t, app, http.MethodPost, "/api/manager/inventory/movement", pkgjwt.RoleBodega,
		map[string]interface{}{"sku": "SKU-1", "area": "bodega", "type": "salida", "quantity": "2.5"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "7.5", out.Stock.String())

	q, _ := s.StockOf(p.ID, entity.AreaBodega)
	assert.Equal(t, "7.5", q.String())
}

func TestMovement_ErroresDeNegocio(t *testing.T) {
	app, s := buildInventoryApp(t)
	s.AddProduct("SKU-1", "Harina")

	cases := []struct {
		name   string
		body   map[string]interface{}
		status int
		code   string
	}{
		{"area invalida", map[string]interface{}{"sku": "SKU-1", "area": "patio", "type": "ingreso", "quantity": 1}, 400, "INVALID_AREA"},
		{"tipo invalido", map[string]interface{}{"sku": "SKU-1", "area": "bodega", "type": "robo", "quantity": 1}, 400, "INVALID_TYPE"},
		{"cantidad cero", map[string]interface{}{"sku": "SKU-1", "area": "bodega", "type": "ingreso", "quantity": 0}, 400, "INVALID_QUANTITY"},
		{"ingreso a surtido", map[string]interface{}{"sku": "SKU-1", "area": "surtido", "type": "ingreso", "quantity": 1}, 400, "INGRESS_TO_SURTIDO_FORBIDDEN"},
		{"salida sin stock", map[string]interface{}{"sku": "SKU-1", "area": "bodega", "type": "salida", "quantity": 1}, 400, "NEGATIVE_STOCK"},
		{"sku desconocido", map[string]interface{}{"sku": "NOPE", "area": "bodega", "type": "ingreso", "quantity": 1}, 404, "PRODUCT_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := call(t, app, http.MethodPost, "/api/manager/inventory/movement", pkgjwt.RoleManager, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(raw))
			assert.Equal(t, tc.code, decodeErr(t, raw).Code)
		})
	}
	assert.Empty(t, s.Movements(), "ningún rechazo deja rastro en el log")
}

func TestMovement_CuerpoInvalido(t *testing.T) {
	app, _ := buildInventoryApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/manager/inventory/movement", bytes.NewReader([]byte("{no-json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleManager))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransfer_Endpoint(t *testing.T) {
	app, s := buildInventoryApp(t)
	p := s.AddProduct("SKU-1", "Harina")
	s.SetStock(p.ID, entity.AreaBodega, decimal.NewFromInt(8))

	resp, raw := call(t, app, http.MethodPost, "/api/manager/inventory/transfer", pkgjwt.RoleSurtido,
		map[string]interface{}{"sku": "SKU-1", "fromArea": "bodega", "toArea": "surtido", "quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out dto.TransferResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, decimal.NewFromInt(5).Equal(out.FromStock))
	assert.True(t, decimal.NewFromInt(3).Equal(out.ToStock))
	assert.NotEmpty(t, out.TransactionID)

	resp, raw = call(t, app, http.MethodPost, "/api/manager/inventory/transfer", pkgjwt.RoleManager,
		map[string]interface{}{"sku": "SKU-1", "fromArea": "bodega", "toArea": "surtido", "quantity": 50})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeErr(t, raw).Code)

	resp, raw = call(t, app, http.MethodPost, "/api/manager/inventory/transfer", pkgjwt.RoleManager,
		map[string]interface{}{"sku": "SKU-1", "fromArea": "bodega", "toArea": "bodega", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SAME_AREA", decodeErr(t, raw).Code)

	resp, _ = call(t, app, http.MethodPost, "/api/manager/inventory/transfer", pkgjwt.RoleDescargue,
		map[string]interface{}{"sku": "SKU-1", "fromArea": "bodega", "toArea": "surtido", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "descargue no traslada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestStockSummaryYActividad(t *testing.T) {
	app, s := buildInventoryApp(t)
	p := s.AddProduct("SKU-1", "Harina")
	call(t, app, http.MethodPost, "/api/manager/inventory/movement", pkgjwt.RoleManager,
		map[string]interface{}{"sku": "SKU-1", "area": "bodega", "type": "ingreso", "quantity": 4})

	resp, raw := call(t, app, http.MethodGet, "/api/manager/inventory/stock?area=bodega&q=har", pkgjwt.RoleBodega, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.StockListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Harina", list.Items[0].Name)

	resp, raw = call(t, app, http.MethodGet, "/api/manager/inventory/summary", pkgjwt.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum dto.SummaryResponse
	require.NoError(t, json.Unmarshal(raw, &sum))
	assert.True(t, decimal.NewFromInt(4).Equal(sum.StockBodegaTotal))
	assert.True(t, sum.StockSurtidoTotal.IsZero())
	require.Len(t, sum.LowStock, 1)
	require.Len(t, sum.LastMovements, 1)
	assert.Equal(t, "SKU-1", sum.LastMovements[0].SKU)

	resp, _ = call(t, app, http.MethodGet, "/api/manager/inventory/summary", pkgjwt.RoleBodega, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = call(t, app, http.MethodGet, "/api/manager/products/"+p.ID+"/activity", pkgjwt.RoleDescargue, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var act dto.ActivityResponse
	require.NoError(t, json.Unmarshal(raw, &act))
	assert.Equal(t, "SKU-1", act.SKU)
	require.Len(t, act.Activity, 1)
	assert.Equal(t, "ingreso", act.Activity[0].Type)
	assert.Equal(t, testUserID, act.Activity[0].UserID)

	resp, _ = call(t, app, http.MethodGet, "/api/manager/products/no-existe/activity", pkgjwt.RoleManager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStockReportPDF_Endpoint(t *testing.T) {
	app, _ := buildInventoryApp(t)

	resp, raw := call(t, app, http.MethodGet, "/api/manager/inventory/report.pdf", pkgjwt.RoleManager, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Mantenimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestRebuildDriftYVerify(t *testing.T) {
	app, s := buildInventoryApp(t)
	p := s.AddProduct("SKU-1", "Harina")
	call(t, app, http.MethodPost, "/api/manager/inventory/movement", pkgjwt.RoleManager,
		map[string]interface{}{"sku": "SKU-1", "area": "bodega", "type": "ingreso", "quantity": 6})
	s.SetStock(p.ID, entity.AreaBodega, decimal.NewFromInt(99)) // desvío manual

	resp, raw := call(t, app, http.MethodGet, "/api/manager/inventory/drift", pkgjwt.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var drift dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(raw, &drift))
	assert.True(t, drift.DryRun)
	require.Len(t, drift.Changed, 1)

	resp, raw = call(t, app, http.MethodGet, "/api/manager/inventory/verify?sku=SKU-1&area=bodega", pkgjwt.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v dto.VerifyResponse
	require.NoError(t, json.Unmarshal(raw, &v))
	assert.False(t, v.Consistent)
	assert.True(t, decimal.NewFromInt(6).Equal(v.Replayed))

	resp, raw = call(t, app, http.MethodPost, "/api/manager/inventory/rebuild-stock", pkgjwt.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rebuilt dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(raw, &rebuilt))
	assert.False(t, rebuilt.DryRun)
	require.Len(t, rebuilt.Changed, 1)

	q, _ := s.StockOf(p.ID, entity.AreaBodega)
	assert.True(t, decimal.NewFromInt(6).Equal(q))

	resp, _ = call(t, app, http.MethodPost, "/api/manager/inventory/rebuild-stock", pkgjwt.RoleBodega, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMoveAllToBodega_Endpoint(t *testing.T) {
	app, s := buildInventoryApp(t)
	p := s.AddProduct("SKU-1", "Harina")
	s.SetStock(p.ID, entity.AreaBodega, decimal.NewFromInt(2))
	s.SetStock(p.ID, entity.AreaSurtido, decimal.NewFromInt(3))

	resp, raw := call(t, app, http.MethodPost, "/api/manager/inventory/move-all-to-bodega", pkgjwt.RoleManager, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.MoveAllToBodegaResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 1, out.Products)
	q, _ := s.StockOf(p.ID, entity.AreaBodega)
	assert.True(t, decimal.NewFromInt(5).Equal(q))
	_, exists := s.StockOf(p.ID, entity.AreaSurtido)
	assert.False(t, exists)
}

func TestImport_Endpoint(t *testing.T) {
	app, s := buildInventoryApp(t)
	p := s.AddProduct("SKU-1", "Harina")

	body := map[string]interface{}{
		"inventory_stock": []map[string]interface{}{
			{"sku": "SKU-1", "area": "bodega", "quantity": "12"},
			{"sku": "NOPE", "area": "bodega", "quantity": "1"},
		},
	}
	resp, raw := call(t, app, http.MethodPost, "/api/manager/import", pkgjwt.RoleManager, body)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.ImportResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 1, out.Stock)
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, "NOPE", out.Skipped[0].SKU)
	q, _ := s.StockOf(p.ID, entity.AreaBodega)
	assert.True(t, decimal.NewFromInt(12).Equal(q))
}
