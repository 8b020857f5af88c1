// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections from
// the application's configuration. The same Connect function serves the local
// inventory database and the direct-store proxy manager databases, which may be
// MySQL/MariaDB or the SQLite file Nginx Proxy Manager ships with.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let callers verify a foreign schema before
// querying it, so an incompatible upstream fails with a clear error instead of a
// scan failure halfway through a result set.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "proxy_host", []string{"domain_names"})
package database
