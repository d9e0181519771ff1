package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/vitrine-backend/config"
	"github.com/ikkim/vitrine-backend/internal/app/controller"
	"github.com/ikkim/vitrine-backend/internal/app/repository"
	"github.com/ikkim/vitrine-backend/internal/app/service"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	apperrors "github.com/ikkim/vitrine-backend/internal/errors"
	"github.com/ikkim/vitrine-backend/internal/middleware"
	"github.com/ikkim/vitrine-backend/internal/router"
	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/ikkim/vitrine-backend/internal/websocket"
	"github.com/ikkim/vitrine-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationSecret = "integration-secret"

type TestServer struct {
	Router *gin.Engine
	Hub    *websocket.Hub
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:   config.ServerConfig{GinMode: gin.TestMode},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
		Checkout: config.CheckoutConfig{WhatsAppNumber: "212665358533"},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	cat, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	storefrontService := service.NewStorefrontService(
		repository.NewMemorySessionRepository(),
		storefront.NewController(cat, cfg.Checkout.WhatsAppNumber),
		service.StorefrontOptions{
			Secret:    integrationSecret,
			TokenTTL:  time.Hour,
			IdleTTL:   time.Hour,
			Publisher: hub,
			Metrics:   metrics.NewStorefrontMetrics(registry),
		},
	)

	r := router.NewRouter(
		controller.NewSessionController(storefrontService),
		controller.NewCatalogController(service.NewCatalogService(cat)),
		controller.NewStorefrontController(storefrontService, service.NewExportService()),
		controller.NewWSController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewSessionMiddleware(integrationSecret),
		metrics.NewHTTPMetrics(registry),
		registry,
		cfg,
	)
	return &TestServer{Router: r.Setup(), Hub: hub}
}

func (ts *TestServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) newSession(t *testing.T) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var info service.SessionInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	require.NotEmpty(t, info.Token)
	return info.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type effectsBody struct {
	Effects []storefront.Effect `json:"effects"`
	URL     string              `json:"url"`
}

func TestIntegration_Health(t *testing.T) {
	ts := setupIntegrationTest(t)
	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestIntegration_SessionRequired(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp apperrors.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, apperrors.SessionTokenInvalid, resp.Error)
}

func TestIntegration_DeletedSessionIsRejected(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := ts.newSession(t)

	w := ts.do(t, http.MethodDelete, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp apperrors.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, apperrors.SessionNotFound, resp.Error)
}

func TestIntegration_CatalogIsStateless(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.do(t, http.MethodGet, "/api/v1/catalog/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Products []storefront.Card `json:"products"`
		Count    int               `json:"count"`
		Shops    []string          `json:"shops"`
	}
	decode(t, w, &list)
	assert.Equal(t, len(list.Products), list.Count)
	assert.NotEmpty(t, list.Shops)

	w = ts.do(t, http.MethodGet, "/api/v1/catalog/products/3001", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Static Drugs")

	w = ts.do(t, http.MethodGet, "/api/v1/catalog/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_ShoppingFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := ts.newSession(t)

	// quick add accepts numeric ids
	w := ts.do(t, http.MethodPost, "/api/v1/storefront/quick-add", token, map[string]interface{}{"product_id": 3001})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var eb effectsBody
	decode(t, w, &eb)
	assert.Len(t, eb.Effects, 2)

	w = ts.do(t, http.MethodPost, "/api/v1/storefront/quick-add", token, map[string]interface{}{"product_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// box modal needs every slot
	w = ts.do(t, http.MethodPost, "/api/v1/modal", token, map[string]interface{}{"product_id": "99901"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPut, "/api/v1/modal/slots/0", token, map[string]interface{}{"option_id": "217"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v1/modal/commit", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp apperrors.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, apperrors.SelectionIncomplete, errResp.Error)

	w = ts.do(t, http.MethodGet, "/api/v1/modal", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/modal", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v1/modal/commit", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/modal", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// send gate
	w = ts.do(t, http.MethodPost, "/api/v1/checkout/send", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errResp = apperrors.ErrorResponse{}
	decode(t, w, &errResp)
	assert.Equal(t, apperrors.CheckoutFieldsRequired, errResp.Error)
	assert.Equal(t, []string{"department", "address", "slot"}, errResp.Fields)
	assert.NotNil(t, errResp.Effects)

	w = ts.do(t, http.MethodPut, "/api/v1/checkout/fields", token, map[string]string{
		"department": "75", "address": "1 rue de Rivoli", "slot": "Soir",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/checkout/send", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	eb = effectsBody{}
	decode(t, w, &eb)
	assert.True(t, strings.HasPrefix(eb.URL, "https://wa.me/212665358533?text="), eb.URL)

	w = ts.do(t, http.MethodGet, "/api/v1/checkout/link", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var link struct {
		URL string `json:"url"`
	}
	decode(t, w, &link)
	assert.Equal(t, eb.URL, link.URL)

	// cart survives the send
	w = ts.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart storefront.CartView
	decode(t, w, &cart)
	assert.Equal(t, 1, cart.Count)
	assert.Equal(t, "500 €", cart.TotalLabel)

	w = ts.do(t, http.MethodGet, "/api/v1/cart/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())

	w = ts.do(t, http.MethodPost, "/api/v1/cart/adjust", token, map[string]interface{}{"key": cart.Lines[0].Key, "delta": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPut, "/api/v1/cart/qty", token, map[string]interface{}{"key": cart.Lines[0].Key, "qty": 5})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	cart = storefront.CartView{}
	decode(t, w, &cart)
	assert.Equal(t, 5, cart.Count)

	w = ts.do(t, http.MethodDelete, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v1/checkout/send", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errResp = apperrors.ErrorResponse{}
	decode(t, w, &errResp)
	assert.Equal(t, apperrors.CartEmpty, errResp.Error)
}

func TestIntegration_InvalidInput(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := ts.newSession(t)

	w := ts.do(t, http.MethodPost, "/api/v1/storefront/quick-add", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/v1/modal/slots/x", token, map[string]string{"option_id": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/v1/modal/tier", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegration_GridFilter(t *testing.T) {
	ts := setupIntegrationTest(t)
	token := ts.newSession(t)

	w := ts.do(t, http.MethodGet, "/api/v1/storefront/grid", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grid storefront.GridView
	decode(t, w, &grid)
	assert.Equal(t, catalog.FilterNew, grid.Filter)
	assert.Len(t, grid.Cards, 2)

	w = ts.do(t, http.MethodPut, "/api/v1/storefront/filter", token, map[string]string{"filter": "shop3"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/storefront/grid", token, nil)
	grid = storefront.GridView{}
	decode(t, w, &grid)
	assert.Equal(t, "shop3", grid.Filter)
	require.Len(t, grid.Cards, 1)
	assert.Equal(t, "Static Drugs", grid.Cards[0].Title)

	w = ts.do(t, http.MethodPut, "/api/v1/storefront/filter", token, map[string]string{"filter": catalog.FilterNew})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPut, "/api/v1/storefront/search", token, map[string]string{"search": "  CUSTOM "})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/storefront/grid", token, nil)
	grid = storefront.GridView{}
	decode(t, w, &grid)
	assert.Equal(t, "custom", grid.Search)
	require.Len(t, grid.Cards, 1)
	assert.True(t, grid.Cards[0].IsBox)
}

func TestIntegration_Metrics(t *testing.T) {
	ts := setupIntegrationTest(t)
	ts.newSession(t)

	w := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_sessions_created_total 1")
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
