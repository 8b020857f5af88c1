package sync_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proxydash/core/catalog"
	"proxydash/core/detection"
	"proxydash/core/reconcile"
	proxysync "proxydash/feature/sync"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const catalogDocument = `[
	{"name": "Grafana", "description": "Dashboards", "category": "Monitoring"},
	{"name": "Jellyfin", "description": "Media server", "category": "Media"},
	{"name": "Jellyseerr", "description": "Requests", "category": "Media"}
]`

func newSyncApp(t *testing.T, service *proxysync.Service, scheduler *proxysync.Scheduler) *fiber.App {
	t.Helper()
	app := fiber.New()
	require.NoError(t, proxysync.NewFeature(service, scheduler, false).Load(app))
	return app
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestHandleSync(t *testing.T) {
	source := routesSource{routes: map[uint][]reconcile.Route{
		1: {{RouteID: 1, DomainNames: []string{"photos.example.com"}, Enabled: true}},
	}}
	f := newFixture(t, source)
	require.NoError(t, f.store.SaveInstance(context.Background(), &reconcile.Instance{Name: "main", Mode: reconcile.ModeDatabase, Priority: 1, Active: true}))
	app := newSyncApp(t, f.service, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync?dry_run=true", nil), 5000)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	plan := decode[reconcile.Plan](t, resp)
	assert.Equal(t, 1, plan.Summary.Creates)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, reconcile.ActionCreate, plan.Actions[0].Type)

	resp, err = app.Test(httptest.NewRequest("POST", "/sync", nil), 5000)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	stats := decode[reconcile.Stats](t, resp)
	assert.Equal(t, 1, stats.Created)
	assert.NotEmpty(t, stats.RunID)

	resp, err = app.Test(httptest.NewRequest("POST", "/sync?async=true", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/last", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleRedetect(t *testing.T) {
	f := newFixture(t, routesSource{})
	require.NoError(t, f.store.CreateApplication(context.Background(), &reconcile.Application{URL: "https://photos.example.com"}))
	app := newSyncApp(t, f.service, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/applications/1/redetect", nil), 5000)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	res := decode[proxysync.RedetectResult](t, resp)
	assert.Equal(t, detection.MethodSubdomain, res.Method)
	assert.Contains(t, res.Changed, "detected_type")

	resp, err = app.Test(httptest.NewRequest("POST", "/applications/404/redetect", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/applications/x/redetect", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(catalogDocument))
	}))
	defer srv.Close()

	f := newFixture(t, routesSource{})
	cat := catalog.New(catalog.Config{URL: srv.URL, TTL: time.Hour})
	table, err := detection.ParseTable([]byte(testSignatures))
	require.NoError(t, err)
	cascade := detection.NewCascade(table, nil, cat, 0.7, zap.NewNop())
	service := proxysync.NewService(nil, f.store, cascade, cat, true, zap.NewNop())
	app := newSyncApp(t, service, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog/search?q=jelly&limit=5", nil), 5000)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	results := decode[[]catalog.Result](t, resp)
	require.Len(t, results, 2)
	assert.Equal(t, "Jellyfin", results[0].Name)

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/search", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/stats", nil), 5000)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	stats := decode[proxysync.CatalogStats](t, resp)
	assert.True(t, stats.OnlineAvailable)
	assert.Equal(t, 3, stats.OnlineCount)
	assert.Equal(t, 3, stats.PatternCount)
}

func TestHandleCatalogUnavailable(t *testing.T) {
	f := newFixture(t, routesSource{})
	app := newSyncApp(t, f.service, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog/search?q=grafana", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}
