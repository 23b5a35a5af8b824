package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-empleados-api/internal/application/cart"
	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/internal/application/fulfillment"
	"github.com/jhoicas/tienda-empleados-api/internal/application/orders"
	"github.com/jhoicas/tienda-empleados-api/internal/application/receipt"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/tienda-empleados-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/tienda-empleados-api/pkg/jwt"
)

type pdfStub struct{}

func (pdfStub) Generate(_ context.Context, d receipt.Data) ([]byte, error) {
	return []byte("%PDF-" + d.TransactionID), nil
}

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

// newServer arma la API completa sobre el almacén en memoria. Lunes 2024-05-20, día bloqueado miércoles.
func newServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	store.PutAccount(entity.Account{ID: "acc-1", EmployeeCode: "E-001", Name: "Ana Mora", Email: "ana@example.com", Status: entity.AccountActive})
	store.PutAccount(entity.Account{ID: "acc-2", EmployeeCode: "E-002", Name: "Luis Solano", Status: entity.AccountActive})
	store.PutProduct(entity.Product{ID: "p-cafe", Code: "1001", Name: "Café molido", Price: decimal.NewFromInt(2500), Active: true})

	monday := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	now := func() time.Time { return monday }
	cal := order.Calendar{Location: time.UTC, WeekStart: time.Thursday, Blackout: time.Wednesday}
	quota := decimal.NewFromInt(12000)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CartUC: cart.NewUseCase(store, now),
		CheckoutUC: checkout.NewUseCase(store, checkout.OrderWriter{}, nil, nil, checkout.Config{
			Quota: quota, Calendar: cal, IdempotencyWindow: time.Hour, Now: now,
		}, nil),
		FulfillmentUC:  fulfillment.NewUseCase(store, now, nil),
		QueryUC:        orders.NewQueryUseCase(store, quota, cal, pdfStub{}, now),
		JWTSecret:      testJWTSecret,
		RequestTimeout: 5 * time.Second,
		Location:       time.UTC,
	})
	return &testServer{app: app, store: store}
}

func bearer(t *testing.T, accountID, code, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{AccountID: accountID, EmployeeCode: code, Role: role}, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) do(t *testing.T, method, path, auth, body string, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(raw, &out)
	} else {
		out["raw"] = string(raw)
	}
	return resp, out
}

func TestCheckout_CreaYReintento(t *testing.T) {
	s := newServer(t)
	emp := bearer(t, "acc-1", "E-001", entity.RoleEmployee)

	resp, _ := s.do(t, http.MethodPost, "/api/cart", emp, `{"product_id":"p-cafe","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, first := s.do(t, http.MethodPost, "/api/checkout", emp, "",
		apphttp.HeaderIdempotencyKey, "k-1", "User-Agent", "Mozilla/5.0 (Linux; Android 14)")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, false, first["replayed"])
	assert.Equal(t, string(entity.StatusRequested), first["status"])

	resp, again := s.do(t, http.MethodPost, "/api/checkout", emp, `{"idempotency_key":"k-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, again["replayed"])
	assert.Equal(t, first["transaction_id"], again["transaction_id"])

	placed := s.store.Orders()
	require.Len(t, placed, 1)
	assert.Equal(t, "Android", placed[0].Device)
}

func TestCheckout_CuotaExcedidaDevuelveGastoYCuota(t *testing.T) {
	s := newServer(t)
	emp := bearer(t, "acc-1", "E-001", entity.RoleEmployee)

	resp, _ := s.do(t, http.MethodPost, "/api/cart", emp, `{"product_id":"p-cafe","quantity":5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/checkout", emp, "", apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "QUOTA_EXCEEDED", body["code"])
	assert.Equal(t, "0", body["spent"])
	assert.Equal(t, "12000", body["quota"])
	assert.Empty(t, s.store.Orders())
}

func TestCart_CantidadSobreElTope(t *testing.T) {
	s := newServer(t)
	emp := bearer(t, "acc-1", "E-001", entity.RoleEmployee)

	resp, body := s.do(t, http.MethodPost, "/api/cart", emp, `{"product_id":"p-cafe","quantity":1000}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", body["code"])

	resp, body = s.do(t, http.MethodPost, "/api/cart", emp, `{"product_id":"p-cafe","quantity":9223372036854775807}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", body["code"])
}

func TestCheckout_SinLlave(t *testing.T) {
	s := newServer(t)
	emp := bearer(t, "acc-1", "E-001", entity.RoleEmployee)

	resp, body := s.do(t, http.MethodPost, "/api/checkout", emp, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_IDEMPOTENCY_KEY", body["code"])
}

func TestStaff_EmpleadoNoAccede(t *testing.T) {
	s := newServer(t)
	emp := bearer(t, "acc-1", "E-001", entity.RoleEmployee)

	resp, body := s.do(t, http.MethodGet, "/api/staff/orders", emp, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])

	disp := bearer(t, "staff-1", "D-001", entity.RoleDispatcher)
	resp, _ = s.do(t, http.MethodPost, "/api/staff/dispatch/resync", disp, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStaff_CheckoutYCambioDeEstado(t *testing.T) {
	s := newServer(t)
	disp := bearer(t, "staff-1", "D-001", entity.RoleDispatcher)

	resp, created := s.do(t, http.MethodPost, "/api/staff/checkout", disp,
		`{"employee_code":"E-002","idempotency_key":"mostrador-1","items":[{"product_id":"p-cafe","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := created["order_id"].(string)
	require.NotEmpty(t, orderID)
	assert.Equal(t, "acc-2", created["account_id"])

	resp, list := s.do(t, http.MethodGet, "/api/staff/orders?employee_code=E-002", disp, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := list["items"].([]any)
	assert.Len(t, items, 1)

	resp, updated := s.do(t, http.MethodPut, "/api/staff/orders/"+orderID+"/status", disp, `{"status":"PROCESSING"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(entity.StatusProcessing), updated["status"])

	resp, body := s.do(t, http.MethodPut, "/api/staff/orders/"+orderID+"/status", disp, `{"status":"DELIVERED"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])

	resp, body = s.do(t, http.MethodGet, "/api/staff/orders?from=ayer", disp, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestReceiptYCancelacion(t *testing.T) {
	s := newServer(t)
	emp := bearer(t, "acc-1", "E-001", entity.RoleEmployee)
	other := bearer(t, "acc-2", "E-002", entity.RoleEmployee)

	s.do(t, http.MethodPost, "/api/cart", emp, `{"product_id":"p-cafe","quantity":1}`)
	resp, created := s.do(t, http.MethodPost, "/api/checkout", emp, "", apphttp.HeaderIdempotencyKey, "k-3")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx, _ := created["transaction_id"].(string)

	resp, body := s.do(t, http.MethodGet, "/api/orders/"+tx+"/receipt", emp, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Factura_"+tx+".pdf")
	assert.Equal(t, "%PDF-"+tx, body["raw"])

	resp, _ = s.do(t, http.MethodGet, "/api/orders/"+tx+"/receipt", other, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/orders/cancel", other, `{"transaction_id":"`+tx+`"}`)
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)

	resp, cancelled := s.do(t, http.MethodPost, "/api/orders/cancel", emp, `{"transaction_id":"`+tx+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(entity.StatusCancelled), cancelled["status"])

	resp, spend := s.do(t, http.MethodGet, "/api/me/spend", emp, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", spend["spend"])
}

func TestDeviceFromUserAgent(t *testing.T) {
	cases := map[string]string{
		"":                                           entity.DeviceUnknown,
		"Mozilla/5.0 (Linux; Android 14; Pixel 8)":   "Android",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)":   "iOS",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)":  "Windows",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14)": "MacOS",
		"Mozilla/5.0 (X11; Linux x86_64)":            "Linux",
		"curl/8.4.0":                                 entity.DeviceUnknown,
	}
	for ua, want := range cases {
		assert.Equal(t, want, apphttp.DeviceFromUserAgent(ua), ua)
	}
}
