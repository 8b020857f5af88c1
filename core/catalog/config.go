package catalog

import "time"

// Config holds configuration for the online application catalog.
type Config struct {
	// URL points at a JSON array of catalog entries. Empty disables the catalog.
	URL string `mapstructure:"url" default:""`
	// TTL is the staleness window for the index and for cached queries.
	TTL time.Duration `mapstructure:"ttl" default:"24h"`
	// TimeoutSeconds bounds a single catalog download.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// RedisAddr enables the Redis query cache when set.
	RedisAddr string `mapstructure:"redis_addr" default:""`
	// RedisPassword authenticates against Redis.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB selects the Redis logical database.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// SnapshotObject is the object name of the last good catalog document.
	SnapshotObject string `mapstructure:"snapshot_object" default:"catalog/apps.json"`
}

// Timeout returns the download bound.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StaleAfter returns the TTL, falling back to a day.
func (c Config) StaleAfter() time.Duration {
	if c.TTL <= 0 {
		return 24 * time.Hour
	}
	return c.TTL
}
