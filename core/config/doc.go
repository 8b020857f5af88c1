// Package config provides configuration management for proxydash.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults live next to each section's struct in
// `default` tags and are registered by reflection.
//
// # Configuration Structure
//
//   - Server: HTTP port and API key
//   - Database: inventory database (MySQL or SQLite)
//   - Storage: S3/MinIO credentials for signature tables and catalog snapshots
//   - Log: logging level and format
//   - Sync: reconciliation interval, hide-list, online fallback
//   - Detection: signature table source, fingerprint fetch limits
//   - Catalog: online catalog URL, TTL and query cache backend
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Interval)
package config
