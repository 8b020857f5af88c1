package detection

import (
	"context"

	"proxydash/core/metrics"

	"go.uber.org/zap"
)

// Cascade runs the three detection tiers in order over an immutable table.
type Cascade struct {
	table         *Table
	fetcher       PageFetcher
	catalog       Lookuper
	minConfidence float64
	logger        *zap.Logger

	heuristics   []Strategy[[]string]
	fingerprints []Strategy[*Page]
}

// NewCascade builds a cascade. A nil fetcher disables tier 2 and a nil
// catalog disables tier 3.
func NewCascade(table *Table, fetcher PageFetcher, lookup Lookuper, minConfidence float64, logger *zap.Logger) *Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cascade{
		table:         table,
		fetcher:       fetcher,
		catalog:       lookup,
		minConfidence: minConfidence,
		logger:        logger,
		heuristics:    heuristicStrategies(table),
		fingerprints:  fingerprintStrategies(table),
	}
}

// Table returns the signature table in use.
func (c *Cascade) Table() *Table {
	return c.table
}

// MinConfidence returns the floor applied by DetectStrict.
func (c *Cascade) MinConfidence() float64 {
	return c.minConfidence
}

// Detect is the bulk sync entry point: the first tier that produces a
// result wins regardless of its confidence. A nil result means no tier
// could classify the target.
func (c *Cascade) Detect(ctx context.Context, t Target, online bool) *Result {
	r := c.detect(ctx, t, online)
	method := "none"
	if r != nil {
		method = string(r.Method)
	}
	metrics.DetectionsTotal.WithLabelValues(method).Inc()
	return r
}

// DetectStrict is the manual re-detect entry point. It runs the same tiers
// and also reports whether the result clears the confidence floor
// required to replace an earlier detection.
func (c *Cascade) DetectStrict(ctx context.Context, t Target, online bool) (*Result, bool) {
	r := c.Detect(ctx, t, online)
	if r == nil {
		return nil, false
	}
	return r, r.Confidence >= c.minConfidence
}

// Heuristic runs tier 1 alone.
func (c *Cascade) Heuristic(ctx context.Context, domain string) *Result {
	return FirstMatch(ctx, Labels(domain), c.heuristics)
}

// Fingerprint runs tier 2 alone against an already fetched page.
func (c *Cascade) Fingerprint(ctx context.Context, p *Page) *Result {
	return BestByConfidence(ctx, p, c.fingerprints)
}

// Online runs tier 3 alone against the names extracted from a page.
func (c *Cascade) Online(ctx context.Context, p *Page) *Result {
	if c.catalog == nil {
		return nil
	}
	return FirstMatch(ctx, p, onlineStrategies(c.catalog, p.Names()))
}

func (c *Cascade) detect(ctx context.Context, t Target, online bool) *Result {
	if r := c.Heuristic(ctx, t.Domain); r != nil {
		return r
	}

	if c.fetcher == nil || t.URL == "" {
		return nil
	}
	page, err := c.fetcher.Fetch(ctx, t.URL)
	if err != nil {
		c.logger.Debug("Fingerprint fetch failed", zap.String("url", t.URL), zap.Error(err))
		return nil
	}

	if r := c.Fingerprint(ctx, page); r != nil {
		return r
	}

	if !online {
		return nil
	}
	return c.Online(ctx, page)
}
