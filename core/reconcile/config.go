package reconcile

import (
	"strings"
	"time"
)

// Config holds configuration for reconciliation runs.
type Config struct {
	// Interval between scheduled runs; zero disables the scheduler.
	Interval time.Duration `mapstructure:"interval" default:"15m"`
	// OnlineFallback enables the catalog tier on scheduled runs.
	OnlineFallback bool `mapstructure:"online_fallback" default:"true"`
	// HideList holds domains created invisible. "*.example.com" matches subdomains.
	HideList []string `mapstructure:"hide_list" default:""`
	// SourceTimeoutSeconds bounds reading one instance.
	SourceTimeoutSeconds int `mapstructure:"source_timeout_seconds" default:"20"`
}

// SourceTimeout returns the per-instance read bound.
func (c Config) SourceTimeout() time.Duration {
	if c.SourceTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

// Hidden reports whether domain is on the hide-list.
func (c Config) Hidden(domain string) bool {
	domain = strings.ToLower(domain)
	for _, entry := range c.HideList {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if entry == domain {
			return true
		}
		if strings.HasPrefix(entry, "*.") && strings.HasSuffix(domain, entry[1:]) {
			return true
		}
	}
	return false
}
