package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantee/storefront/config"
	"github.com/plantee/storefront/internal/app"
	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/webserver"
)

type testServer struct {
	app     *app.Application
	handler http.Handler
}

func newTestServer(t *testing.T, mutate func(cfg *config.AppConfig)) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.System.Workdir = t.TempDir()
	cfg.System.Env = config.EnvProduction
	cfg.Database.Type = app.DBTypeMemory
	cfg.Web.Metrics = false
	cfg.Web.Swagger = false
	cfg.Assistant.APIKey = ""
	if mutate != nil {
		mutate(cfg)
	}
	a := app.NewApplication(cfg)
	require.NoError(t, a.Init())
	t.Cleanup(a.Release)

	webserver.Init(a)
	Init()
	return &testServer{app: a, handler: webserver.Handler()}
}

// do sends body as JSON unless it is already a string
func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) plants(t *testing.T) []domain.Plant {
	t.Helper()
	plants, err := s.app.Store().Plants.List(context.Background())
	require.NoError(t, err)
	return plants
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	decode(t, rec, &body)
	return body.Message
}

func TestWelcome(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the Plantee API", message(t, rec))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", message(t, rec))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodOptions, "/api/plants", nil,
		echo.HeaderOrigin, "http://localhost:3000",
		echo.HeaderAccessControlRequestMethod, http.MethodPatch)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPatch)

	rec = s.do(t, http.MethodGet, "/api/plants", nil, echo.HeaderOrigin, "http://evil.example")
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/orders/test", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order routes are working", message(t, rec))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 24)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/contact", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSwaggerRoute(t *testing.T) {
	s := newTestServer(t, func(cfg *config.AppConfig) { cfg.Web.Swagger = true })
	rec := s.do(t, http.MethodGet, "/swagger/doc.json", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Plantee API")

	var doc struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	decode(t, rec, &doc)
	param := regexp.MustCompile(`:(\w+)`)
	for _, r := range webserver.Routes() {
		if !strings.HasPrefix(r.Path, "/api/") {
			continue
		}
		p := param.ReplaceAllString(strings.TrimPrefix(r.Path, "/api"), "{$1}")
		require.Contains(t, doc.Paths, p, "route %s %s is documented", r.Method, r.Path)
		assert.Contains(t, doc.Paths[p], strings.ToLower(r.Method), "route %s %s is documented", r.Method, r.Path)
	}
}
