package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gonarrate/internal/config"
	"gonarrate/internal/container"
	"gonarrate/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) (*container.Container, *testkit.TestKit) {
	t.Helper()
	return newTestContainerWith(t, nil)
}

func newTestContainerWith(t *testing.T, adjust func(*config.Config)) (*container.Container, *testkit.TestKit) {
	t.Helper()
	kit, err := testkit.NewTestKit(t.TempDir())
	require.NoError(t, err)

	cfg := kit.Config()
	if adjust != nil {
		adjust(cfg)
	}
	c, err := container.New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))
	return c, kit
}

func do(t *testing.T, h http.Handler, method, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestServerIndex(t *testing.T) {
	c, _ := newTestContainer(t)
	h := NewServer(c).Handler()

	rec := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "On delivering Appendix 1")
	assert.Contains(t, rec.Body.String(), "</html>")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServerIndexFailsWhole(t *testing.T) {
	c, kit := newTestContainer(t)
	require.NoError(t, os.Remove(filepath.Join(kit.DataDir, "soilgrid_corr.csv")))
	h := NewServer(c).Handler()

	rec := do(t, h, http.MethodGet, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page unavailable")
	assert.NotContains(t, rec.Body.String(), "Soil organic carbon")
}

func TestServerHealth(t *testing.T) {
	c, _ := newTestContainer(t)
	rec := do(t, NewServer(c).Handler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestServerDatasets(t *testing.T) {
	c, _ := newTestContainer(t)
	rec := do(t, NewServer(c).Handler(), http.MethodGet, "/api/datasets")
	require.Equal(t, http.StatusOK, rec.Code)

	datasets := decode(t, rec)["datasets"].([]interface{})
	require.Len(t, datasets, 4)
	first := datasets[0].(map[string]interface{})
	assert.Equal(t, "ocarbon", first["name"])
}

func TestServerMean(t *testing.T) {
	c, kit := newTestContainer(t)
	h := NewServer(c).Handler()

	rec := do(t, h, http.MethodGet, "/api/datasets/ocarbon/mean/value")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum float64
	for _, s := range kit.Carbon {
		sum += s.Value
	}
	body := decode(t, rec)
	assert.InDelta(t, sum/float64(len(kit.Carbon)), body["mean"].(float64), 1e-9)
	assert.Equal(t, float64(len(kit.Carbon)), body["rows"])

	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/api/datasets/ocarbon/mean/avg_oc", http.StatusUnprocessableEntity, "COLUMN_NOT_FOUND"},
		{"/api/datasets/ocarbon/mean/site", http.StatusUnprocessableEntity, "COLUMN_NOT_FOUND"},
		{"/api/datasets/ghost/mean/value", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.target)
		assert.Equal(t, tt.status, rec.Code, tt.target)
		assert.Equal(t, tt.code, decode(t, rec)["code"], tt.target)
	}
}

func TestServerSummary(t *testing.T) {
	c, kit := newTestContainer(t)
	h := NewServer(c).Handler()

	rec := do(t, h, http.MethodGet, "/api/datasets/ocarbon/summary/value")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "value", body["column"])
	assert.Equal(t, float64(len(kit.Carbon)), body["n"])
	assert.LessOrEqual(t, body["min"].(float64), body["median"].(float64))
	assert.LessOrEqual(t, body["median"].(float64), body["max"].(float64))

	rec = do(t, h, http.MethodGet, "/api/datasets/ocarbon/summary/site")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServerRegression(t *testing.T) {
	c, _ := newTestContainer(t)
	h := NewServer(c).Handler()

	rec := do(t, h, http.MethodGet, "/api/datasets/soilgrid_corr/regression?x=observed&y=predicted")
	require.Equal(t, http.StatusOK, rec.Code)
	fit := decode(t, rec)["regression"].(map[string]interface{})
	assert.Greater(t, fit["slope"].(float64), 0.0)
	assert.Greater(t, fit["n"].(float64), 2.0)

	rec = do(t, h, http.MethodGet, "/api/datasets/soilgrid_corr/regression?x=observed")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, rec)["code"])
}

func TestServerInvalidateRefusedByDefault(t *testing.T) {
	c, _ := newTestContainer(t)
	h := NewServer(c).Handler()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/datasets/ocarbon/mean/value").Code)

	rec := do(t, h, http.MethodPost, "/api/datasets/ocarbon/invalidate")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec)["code"])

	rec = do(t, h, http.MethodPost, "/api/datasets/ocarbon/invalidate", "X-Admin-Token", "anything")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var loaded bool
	for _, e := range c.Cache.Entries() {
		if e.Name == "ocarbon" {
			loaded = e.Loaded
		}
	}
	assert.True(t, loaded, "a refused invalidate leaves the cache alone")
}

func TestServerInvalidate(t *testing.T) {
	c, _ := newTestContainerWith(t, func(cfg *config.Config) {
		cfg.Server.AdminToken = "s3cret"
	})
	h := NewServer(c).Handler()
	auth := []string{"X-Admin-Token", "s3cret"}

	rec := do(t, h, http.MethodPost, "/api/datasets/ocarbon/invalidate", "X-Admin-Token", "wrong")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/datasets/ocarbon/invalidate", auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["invalidated"])

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/datasets/ocarbon/mean/value").Code)

	rec = do(t, h, http.MethodGet, "/api/datasets/ocarbon/stale")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["stale"])

	rec = do(t, h, http.MethodPost, "/api/datasets/ocarbon/invalidate", "Authorization", "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["invalidated"])

	rec = do(t, h, http.MethodPost, "/api/datasets/ghost/invalidate", auth...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerRows(t *testing.T) {
	c, kit := newTestContainer(t)
	h := NewServer(c).Handler()

	rec := do(t, h, http.MethodGet, "/api/datasets/ocarbon/rows?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(len(kit.Carbon)), body["rows"])
	records := body["records"].([]interface{})
	require.Len(t, records, 3)
	first := records[0].(map[string]interface{})
	assert.Equal(t, kit.Carbon[0].Site, first["site"])
	assert.InDelta(t, kit.Carbon[0].Value, first["value"].(float64), 1e-9)

	rec = do(t, h, http.MethodGet, "/api/datasets/ocarbon/rows")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["records"], 20)

	for _, bad := range []string{"0", "-1", "x", "1001"} {
		rec = do(t, h, http.MethodGet, "/api/datasets/ocarbon/rows?limit="+bad)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, bad)
	}

	rec = do(t, h, http.MethodGet, "/api/datasets/ghost/rows")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppIndexUsesStaticImages(t *testing.T) {
	c, kit := newTestContainer(t)
	require.NoError(t, os.WriteFile(filepath.Join(kit.Dir, "static", "images", "ocarbon_sites.png"), []byte("png"), 0o644))

	app, err := NewApp(c, Config{})
	require.NoError(t, err)

	rec := do(t, app.Handler(), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")
	assert.NotContains(t, rec.Body.String(), "echarts.min.js")

	rec = do(t, app.Handler(), http.MethodGet, "/static/images/ocarbon_sites.png")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewAppRequiresInit(t *testing.T) {
	kit, err := testkit.NewTestKit(t.TempDir())
	require.NoError(t, err)
	c, err := container.New(kit.Config())
	require.NoError(t, err)

	_, err = NewApp(c, Config{})
	assert.Error(t, err)
}
