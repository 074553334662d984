package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-reconciliation/internal/application/dto"
	appinventory "github.com/jhoicas/stock-reconciliation/internal/application/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
	"github.com/jhoicas/stock-reconciliation/internal/application/usecase"
	"github.com/jhoicas/stock-reconciliation/internal/domain/entity"
	"github.com/jhoicas/stock-reconciliation/internal/domain/matching"
	"github.com/jhoicas/stock-reconciliation/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-reconciliation/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/stock-reconciliation/internal/interfaces/http"
	"github.com/jhoicas/stock-reconciliation/pkg/logger"
)

// newAPI arma la API completa sobre SQLite en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	db, err := sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	items := sqlite.NewCatalogItemRepository(db)
	ledger := appinventory.NewLedger(sqlite.NewTxRunner(db), items, sqlite.NewStockMovementRepository(db), 5*time.Second, logger.Nop())
	catalog := usecase.NewCatalogUseCase(items)
	orch := reconciliation.NewOrchestrator(catalog, ledger,
		matching.NewResolver(matching.DefaultResolverConfig()), reconciliation.DefaultConfig(), logger.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CatalogUC:      catalog,
		Ledger:         ledger,
		Replenishment:  appinventory.NewReplenishmentUseCase(items),
		Orchestrator:   orch,
		ReportRenderer: pdf.NewCommitReportGenerator(),
		JWTSecret:      testJWTSecret,
	})
	return app
}

// call lanza una petición autenticada como role y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, role, method, path string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func createItem(t *testing.T, app *fiber.App, code, desc, minQty string) dto.CatalogItemResponse {
	t.Helper()
	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/catalog", fiber.Map{
		"code": code, "description": desc, "min_quantity": minQty,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var out dto.CatalogItemResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Code
}

func TestAPI_RequiereToken(t *testing.T) {
	app := newAPI(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/catalog", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogAPI_CRUD(t *testing.T) {
	app := newAPI(t)
	it := createItem(t, app, "A-1", "Filtro de óleo XYZ", "5")
	assert.Equal(t, "UN", it.UnitMeasure)
	assert.True(t, it.Quantity.IsZero())

	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/catalog", fiber.Map{
		"code": "A-1", "description": "otro",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", errorCode(t, body))

	status, body = call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/catalog", fiber.Map{"code": "Z"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, body = call(t, app, apphttp.RoleOperator, http.MethodGet, "/api/catalog/"+it.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var got dto.CatalogItemResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Filtro de óleo XYZ", got.Description)

	status, body = call(t, app, apphttp.RoleOperator, http.MethodGet, "/api/catalog/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ITEM_NOT_FOUND", errorCode(t, body))

	status, body = call(t, app, apphttp.RoleOperator, http.MethodPut, "/api/catalog/"+it.ID, fiber.Map{"description": "Filtro de aceite XYZ"})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Filtro de aceite XYZ", got.Description)

	status, _ = call(t, app, apphttp.RoleOperator, http.MethodDelete, "/api/catalog/"+it.ID, nil)
	assert.Equal(t, http.StatusForbidden, status, "solo admin desactiva")

	status, _ = call(t, app, apphttp.RoleAdmin, http.MethodDelete, "/api/catalog/"+it.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = call(t, app, apphttp.RoleOperator, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.CatalogItemListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Items, "el ítem desactivado no se lista por defecto")

	status, body = call(t, app, apphttp.RoleOperator, http.MethodGet, "/api/catalog?include_inactive=true", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Items, 1)
	assert.False(t, list.Items[0].Active)
}

func TestInventoryAPI_Movimientos(t *testing.T) {
	app := newAPI(t)
	it := createItem(t, app, "P-1", "Parafuso M8", "0")

	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/inventory/movements", fiber.Map{
		"item_id": it.ID, "kind": "entry", "quantity": "10", "unit_cost": "5.00",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	status, body = call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/inventory/movements", fiber.Map{
		"item_id": it.ID, "kind": "entry", "quantity": "5", "unit_cost": "7.00",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var out dto.RegisterMovementResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, decimal.RequireFromString("15").Equal(out.Item.Quantity))
	assert.Equal(t, "5.67", out.Item.AverageCost.StringFixed(2))
	assert.Equal(t, testActorID, out.Movement.ActorID)
	assert.Equal(t, "entry", out.Movement.Kind)

	status, body = call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/inventory/movements", fiber.Map{
		"item_id": it.ID, "kind": "exit", "quantity": "20",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	status, body = call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/inventory/movements", fiber.Map{
		"item_id": it.ID, "kind": "transfer", "quantity": "1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	status, body = call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/inventory/movements", fiber.Map{
		"item_id": uuid.NewString(), "kind": "exit", "quantity": "1",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ITEM_NOT_FOUND", errorCode(t, body))

	status, body = call(t, app, apphttp.RoleOperator, http.MethodGet, "/api/catalog/"+it.ID+"/movements", nil)
	require.Equal(t, http.StatusOK, status)
	var hist dto.MovementListResponse
	require.NoError(t, json.Unmarshal(body, &hist))
	require.Len(t, hist.Items, 2, "los movimientos rechazados no se registran")
	assert.Equal(t, "7", hist.Items[0].UnitCost.String(), "más reciente primero")
}

func TestInventoryAPI_CuerpoInvalido(t *testing.T) {
	app := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/movements", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleOperator))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventoryAPI_StockBajo(t *testing.T) {
	app := newAPI(t)
	low := createItem(t, app, "L-1", "Correa dentada", "10")
	createItem(t, app, "N-1", "Sin mínimo", "0")

	status, body := call(t, app, apphttp.RoleOperator, http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, status)
	var out struct {
		Total int                   `json:"total"`
		Items []dto.LowStockItemDTO `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, 1, out.Total)
	assert.Equal(t, low.ID, out.Items[0].ItemID)
	assert.Equal(t, "15", out.Items[0].SuggestedOrderQty.String())
}

func importedDoc(lines ...entity.ImportedLineItem) entity.ImportedDocument {
	return entity.ImportedDocument{
		Supplier: entity.Supplier{Name: "Distribuidora Sul", TaxID: "12.345.678/0001-90"},
		Number:   "NF-2001",
		Items:    lines,
	}
}

func importedLine(code, desc, qty, unit string) entity.ImportedLineItem {
	q, u := decimal.RequireFromString(qty), decimal.RequireFromString(unit)
	return entity.ImportedLineItem{SupplierCode: code, Description: desc, Unit: "UN", Quantity: q, UnitValue: u, LineTotal: q.Mul(u)}
}

func TestReconciliationAPI_Match(t *testing.T) {
	app := newAPI(t)
	it := createItem(t, app, "", "Parafuso M8 Sextavado", "0")

	doc := importedDoc(
		importedLine("", "PARAFUSO M8", "10", "1.50"),
		importedLine("", "Chave de fenda", "1", "20"),
	)
	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/reconciliations/match", doc)
	require.Equal(t, http.StatusOK, status, string(body))

	var out reconciliation.MatchResult
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, reconciliation.StateMatched, out.State)
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, it.ID, out.Candidates[0].ItemID)
	assert.True(t, out.Candidates[0].AutoAccepted)
	assert.True(t, out.Candidates[1].RequiresNewItem)
}

func TestReconciliationAPI_CommitParcialYPDF(t *testing.T) {
	app := newAPI(t)
	createItem(t, app, "A-1", "Filtro de óleo XYZ", "0")
	createItem(t, app, "B-2", "Arruela lisa 8mm", "0")

	req := dto.CommitRequest{Document: importedDoc(
		importedLine("A-1", "Filtro de óleo XYZ", "2", "5"),
		importedLine("B-2", "Arruela lisa 8mm", "0", "1"),
	)}
	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/reconciliations/commit", req)
	require.Equal(t, http.StatusMultiStatus, status, string(body))

	var report reconciliation.CommitReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, reconciliation.StateCommitted, report.State)
	assert.Equal(t, 1, report.Committed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "VALIDATION", report.Lines[1].Code)

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodPost, "/api/reconciliations/report.pdf", bytes.NewReader(raw))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", tokenForRole(t, apphttp.RoleOperator))
	resp, err := app.Test(httpReq, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))
}

func TestReconciliationAPI_CommitCompleto(t *testing.T) {
	app := newAPI(t)
	createItem(t, app, "A-1", "Filtro de óleo XYZ", "0")

	req := dto.CommitRequest{
		Document: importedDoc(
			importedLine("A-1", "Filtro de óleo XYZ", "2", "5"),
			importedLine("", "Lubricante sintético 1L", "3", "12"),
		),
		Decisions: []dto.DecisionRequest{{Line: 1, Accepted: true, CreateNew: true}},
	}
	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/reconciliations/commit", req)
	require.Equal(t, http.StatusOK, status, string(body))

	var report reconciliation.CommitReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 2, report.Committed)
	assert.NotEmpty(t, report.Lines[1].NewCatalogItemID)

	status, body = call(t, app, apphttp.RoleOperator, http.MethodGet, "/api/catalog/"+report.Lines[1].NewCatalogItemID, nil)
	require.Equal(t, http.StatusOK, status)
	var it dto.CatalogItemResponse
	require.NoError(t, json.Unmarshal(body, &it))
	assert.Equal(t, "3", it.Quantity.String())
	assert.Equal(t, "12", it.AverageCost.String())
}

func TestReconciliationAPI_NadaQueConfirmar(t *testing.T) {
	app := newAPI(t)
	req := dto.CommitRequest{Document: importedDoc(importedLine("", "Producto desconocido", "1", "10"))}

	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/reconciliations/commit", req)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "NOTHING_TO_COMMIT", errorCode(t, body))
}

func TestReconciliationAPI_ReportSinID(t *testing.T) {
	app := newAPI(t)
	status, body := call(t, app, apphttp.RoleOperator, http.MethodPost, "/api/reconciliations/report.pdf", fiber.Map{"lines": []any{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}
