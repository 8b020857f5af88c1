package sources_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"proxydash/core/database"
	"proxydash/core/reconcile"
	"proxydash/feature/sources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const proxyHostSchema = `CREATE TABLE proxy_host (
	id INTEGER PRIMARY KEY,
	is_deleted INTEGER NOT NULL DEFAULT 0,
	domain_names TEXT NOT NULL,
	forward_host TEXT NOT NULL,
	forward_port INTEGER NOT NULL,
	forward_scheme TEXT NOT NULL DEFAULT 'http',
	enabled INTEGER NOT NULL DEFAULT 1,
	access_list_id INTEGER NOT NULL DEFAULT 0,
	certificate_id INTEGER NOT NULL DEFAULT 0,
	ssl_forced INTEGER NOT NULL DEFAULT 0,
	advanced_config TEXT NOT NULL DEFAULT ''
)`

func newProxyDB(t *testing.T, schema string, inserts ...string) reconcile.Instance {
	t.Helper()
	path := filepath.Join(t.TempDir(), "npm.sqlite")
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: path})
	require.NoError(t, err)
	require.NoError(t, db.Exec(schema).Error)
	for _, stmt := range inserts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	require.NoError(t, database.Close(db))

	return reconcile.Instance{ID: 1, Name: "main", Mode: reconcile.ModeDatabase, DBDriver: database.DriverSQLite, DBName: path}
}

func TestDirectStoreFetch(t *testing.T) {
	inst := newProxyDB(t, proxyHostSchema,
		`INSERT INTO proxy_host (id, domain_names, forward_host, forward_port, certificate_id) VALUES (1, '["photos.example.com","pics.example.com"]', '10.0.0.5', 2342, 3)`,
		`INSERT INTO proxy_host (id, domain_names, forward_host, forward_port, access_list_id) VALUES (2, '["grafana.example.com"]', 'grafana', 3000, 1)`,
		`INSERT INTO proxy_host (id, domain_names, forward_host, forward_port, advanced_config) VALUES (3, '["wiki.example.com"]', 'wiki', 80, 'auth_request /authelia;')`,
		`INSERT INTO proxy_host (id, domain_names, forward_host, forward_port, enabled) VALUES (4, '["old.example.com"]', 'old', 80, 0)`,
		`INSERT INTO proxy_host (id, is_deleted, domain_names, forward_host, forward_port) VALUES (5, 1, '["gone.example.com"]', 'gone', 80)`,
	)

	store := sources.NewDirectStore(nil, nil)
	routes, degraded, err := store.Fetch(context.Background(), inst)
	require.NoError(t, err)
	assert.False(t, degraded)
	require.Len(t, routes, 4)

	photos := routes[0]
	assert.Equal(t, 1, photos.RouteID)
	assert.Equal(t, []string{"photos.example.com", "pics.example.com"}, photos.DomainNames)
	assert.Equal(t, "10.0.0.5", photos.ForwardHost)
	assert.Equal(t, 2342, photos.ForwardPort)
	assert.Equal(t, "http", photos.ForwardScheme)
	assert.True(t, photos.Enabled)
	assert.Equal(t, "https://photos.example.com", photos.URL())
	assert.False(t, photos.Protected())

	assert.True(t, routes[1].Protected())
	assert.True(t, routes[2].Protected())
	assert.False(t, routes[3].Enabled)
}

func TestDirectStoreKeepsRouteWithMalformedDomains(t *testing.T) {
	inst := newProxyDB(t, proxyHostSchema,
		`INSERT INTO proxy_host (id, domain_names, forward_host, forward_port) VALUES (1, 'not json', 'a', 80)`,
		`INSERT INTO proxy_host (id, domain_names, forward_host, forward_port) VALUES (2, '["b.example.com"]', 'b', 80)`,
	)

	routes, _, err := sources.NewDirectStore(nil, nil).Fetch(context.Background(), inst)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, 1, routes[0].RouteID)
	assert.Empty(t, routes[0].DomainNames)
	assert.Equal(t, "", routes[0].PrimaryDomain())
	assert.Equal(t, "a", routes[0].ForwardHost)

	assert.Equal(t, 2, routes[1].RouteID)
	assert.Equal(t, []string{"b.example.com"}, routes[1].DomainNames)
}

func TestDirectStoreMissingColumns(t *testing.T) {
	inst := newProxyDB(t, "CREATE TABLE proxy_host (id INTEGER PRIMARY KEY, domain_names TEXT)")

	_, _, err := sources.NewDirectStore(nil, nil).Fetch(context.Background(), inst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrSourceUnreachable))
	assert.Contains(t, err.Error(), "forward_host")
}

func TestDirectStoreConnectFailure(t *testing.T) {
	var got database.Config
	connect := func(cfg database.Config) (*gorm.DB, error) {
		got = cfg
		return nil, errors.New("connection refused")
	}
	inst := reconcile.Instance{Name: "edge", Mode: reconcile.ModeDatabase, DBHost: "npm.lan", DBUser: "npm", DBName: "npm"}

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	_, _, err := sources.NewDirectStore(connect, nil).Fetch(ctx, inst)

	var srcErr *reconcile.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "edge", srcErr.Instance)
	assert.Equal(t, database.DriverMySQL, got.Driver)
	assert.Equal(t, 3306, got.Port)
	assert.Equal(t, "npm.lan", got.Host)
	assert.Equal(t, 1, got.TimeoutSeconds)
}
