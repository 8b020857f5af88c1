package detection

import "time"

// Config holds configuration for the detection cascade.
type Config struct {
	// SignaturesFile loads the signature table from a local YAML file.
	SignaturesFile string `mapstructure:"signatures_file" default:""`
	// SignaturesObject loads the signature table from object storage; wins over SignaturesFile.
	SignaturesObject string `mapstructure:"signatures_object" default:""`
	// FetchTimeoutSeconds bounds the fingerprint GET.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" default:"10"`
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" default:"524288"`
	// RatePerSecond limits outbound fingerprint requests.
	RatePerSecond float64 `mapstructure:"rate_per_second" default:"10"`
	// Burst is the limiter bucket size.
	Burst int `mapstructure:"burst" default:"5"`
	// RedetectMinConfidence is the floor for replacing an earlier detection on manual re-detect.
	RedetectMinConfidence float64 `mapstructure:"redetect_min_confidence" default:"0.7"`
}

// FetchTimeout returns the fingerprint request bound.
func (c Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
