package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"proxydash/core/database"
	"proxydash/core/reconcile"
	"proxydash/core/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// proxyHostTable is the proxy manager table holding proxy hosts.
const proxyHostTable = "proxy_host"

// proxyHostColumns are read from every row.
var proxyHostColumns = []string{
	"id", "domain_names", "forward_host", "forward_port", "forward_scheme",
	"enabled", "is_deleted", "access_list_id", "certificate_id", "ssl_forced", "advanced_config",
}

// Connector opens a database connection.
type Connector func(cfg database.Config) (*gorm.DB, error)

// DirectStore reads proxy hosts straight from a proxy manager database.
type DirectStore struct {
	connect Connector
	logger  *zap.Logger
}

// NewDirectStore creates a direct database source. A nil connector uses database.Connect.
func NewDirectStore(connect Connector, logger *zap.Logger) *DirectStore {
	if connect == nil {
		connect = database.Connect
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectStore{connect: connect, logger: logger}
}

// Fetch returns all non-deleted proxy hosts. The direct transport is never degraded.
func (s *DirectStore) Fetch(ctx context.Context, inst reconcile.Instance) ([]reconcile.Route, bool, error) {
	db, err := s.connect(databaseConfig(ctx, inst))
	if err != nil {
		return nil, false, reconcile.Unreachable(inst, err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			s.logger.Debug("Failed to close instance database", zap.String("instance", inst.Name), zap.Error(err))
		}
	}()

	missing, err := database.MissingColumns(db.WithContext(ctx), proxyHostTable, proxyHostColumns)
	if err != nil {
		return nil, false, reconcile.Unreachable(inst, err)
	}
	if len(missing) > 0 {
		return nil, false, reconcile.Unreachable(inst, fmt.Errorf("table %s is missing columns %v", proxyHostTable, missing))
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_deleted = 0 ORDER BY id", strings.Join(proxyHostColumns, ", "), proxyHostTable)
	rows, err := db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, false, reconcile.Unreachable(inst, fmt.Errorf("failed to query %s: %w", proxyHostTable, err))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, false, reconcile.Unreachable(inst, fmt.Errorf("failed to get columns: %w", err))
	}

	var routes []reconcile.Route
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, false, reconcile.Unreachable(inst, fmt.Errorf("failed to scan row: %w", err))
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[strings.ToLower(col)] = values[i]
		}

		route, err := routeFromRow(row)
		if err != nil {
			s.logger.Warn("Proxy host has unreadable domains",
				zap.String("instance", inst.Name),
				zap.Int("route_id", route.RouteID),
				zap.Error(err))
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, false, reconcile.Unreachable(inst, fmt.Errorf("failed to read rows: %w", err))
	}

	return routes, false, nil
}

// routeFromRow converts one proxy_host row. Undecodable domain_names leave
// the route without domains and are reported alongside it, so the route is
// still known to exist.
func routeFromRow(row map[string]any) (reconcile.Route, error) {
	var domains []string
	var domainErr error
	if raw := utils.ToString(row["domain_names"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &domains); err != nil {
			domains = nil
			domainErr = fmt.Errorf("invalid domain_names: %w", err)
		}
	}

	return reconcile.Route{
		RouteID:        utils.ToInt(row["id"]),
		DomainNames:    domains,
		ForwardHost:    utils.ToString(row["forward_host"]),
		ForwardPort:    utils.ToInt(row["forward_port"]),
		ForwardScheme:  utils.ToString(row["forward_scheme"]),
		Enabled:        utils.ToBool(row["enabled"]),
		AccessListID:   utils.ToInt(row["access_list_id"]),
		CertificateID:  utils.ToInt(row["certificate_id"]),
		SSLForced:      utils.ToBool(row["ssl_forced"]),
		AdvancedConfig: utils.ToString(row["advanced_config"]),
	}, domainErr
}

// databaseConfig maps an instance onto a connection config. The
// connection timeout follows the context deadline.
func databaseConfig(ctx context.Context, inst reconcile.Instance) database.Config {
	timeout := 0
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > time.Second {
			timeout = int(d / time.Second)
		} else {
			timeout = 1
		}
	}
	driver := inst.DBDriver
	if driver == "" {
		driver = database.DriverMySQL
	}
	port := inst.DBPort
	if port == 0 && driver == database.DriverMySQL {
		port = 3306
	}
	return database.Config{
		Driver:         driver,
		Host:           inst.DBHost,
		Port:           port,
		User:           inst.DBUser,
		Password:       inst.DBPassword,
		Name:           inst.DBName,
		TimeoutSeconds: timeout,
	}
}
