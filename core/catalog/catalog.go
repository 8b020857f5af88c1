package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"proxydash/core/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// maxDocumentBytes caps a catalog download.
const maxDocumentBytes = 32 << 20

// ErrUnavailable is returned when neither the remote catalog nor a snapshot could be loaded.
var ErrUnavailable = errors.New("online catalog unavailable")

// Catalog is a lazily refreshed, TTL-bounded view of the online catalog.
// Index refreshes are single-flight; per-query results, not-found included,
// are memoized through the QueryCache.
type Catalog struct {
	cfg      Config
	client   *http.Client
	cache    QueryCache
	snapshot SnapshotStore
	now      Clock
	logger   *zap.Logger
	breaker  *gobreaker.CircuitBreaker[[]byte]

	mu    sync.RWMutex
	index *Index
	sf    singleflight.Group
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithQueryCache replaces the default in-memory query cache.
func WithQueryCache(cache QueryCache) Option {
	return func(c *Catalog) { c.cache = cache }
}

// WithSnapshot enables snapshot save and fallback load.
func WithSnapshot(store SnapshotStore) Option {
	return func(c *Catalog) { c.snapshot = store }
}

// WithClock injects the time source used for staleness checks.
func WithClock(now Clock) Option {
	return func(c *Catalog) { c.now = now }
}

// WithHTTPClient replaces the download client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Catalog) { c.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// New creates a Catalog. Nothing is fetched until the first query.
func New(cfg Config, opts ...Option) *Catalog {
	c := &Catalog{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewMemoryCache(c.now)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.RecordBreakerTransition(name, from, to)
		},
	})
	return c
}

// Lookup resolves a product name or page title to a catalog entry.
// A nil result with a nil error means the catalog has no such entry.
func (c *Catalog) Lookup(ctx context.Context, name string) (*Result, error) {
	key := "lookup:" + exactKey(name)
	if key == "lookup:" {
		return nil, nil
	}

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Debug("Query cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached cachedLookup
		if err := json.Unmarshal(raw, &cached); err == nil {
			if !cached.Found {
				return nil, nil
			}
			return &cached.Result, nil
		}
	}

	idx, err := c.ensure(ctx)
	if idx == nil {
		return nil, err
	}

	r, found := idx.Lookup(name)
	if raw, err := json.Marshal(cachedLookup{Found: found, Result: r}); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.cfg.StaleAfter()); err != nil {
			c.logger.Debug("Query cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	if !found {
		return nil, nil
	}
	return &r, nil
}

// Search returns entries whose normalized name contains the query.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	idx, err := c.ensure(ctx)
	if idx == nil {
		return nil, err
	}
	return idx.Search(query, limit), nil
}

// Count returns the number of entries in the loaded index.
func (c *Catalog) Count() int {
	return c.current().Len()
}

// Available reports whether an index is loaded.
func (c *Catalog) Available() bool {
	return c.current() != nil
}

// Refresh downloads and reparses the catalog when stale or when forced.
// Concurrent callers share one download, which outlives the caller that
// started it and is bounded by the download timeout.
func (c *Catalog) Refresh(ctx context.Context, force bool) error {
	_, err, _ := c.sf.Do("refresh", func() (any, error) {
		if !force && !c.stale(c.current()) {
			return nil, nil
		}
		return nil, c.refresh(context.WithoutCancel(ctx))
	})
	return err
}

func (c *Catalog) ensure(ctx context.Context) (*Index, error) {
	err := c.Refresh(ctx, false)
	idx := c.current()
	if err != nil {
		if idx != nil {
			c.logger.Debug("Using stale catalog index", zap.Error(err))
			return idx, nil
		}
		return nil, err
	}
	return idx, nil
}

func (c *Catalog) refresh(ctx context.Context) error {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.download(ctx)
	})
	if err == nil {
		var idx *Index
		if idx, err = ParseIndex(data, c.now()); err == nil {
			c.setIndex(idx)
			metrics.CatalogRefreshTotal.WithLabelValues("remote", "success").Inc()
			c.logger.Info("Catalog refreshed", zap.Int("entries", idx.Len()))
			c.saveSnapshot(ctx, data)
			return nil
		}
	}
	metrics.CatalogRefreshTotal.WithLabelValues("remote", "failure").Inc()
	c.logger.Warn("Catalog refresh failed", zap.String("url", c.cfg.URL), zap.Error(err))

	if c.current() == nil && c.snapshot != nil {
		if loadErr := c.loadSnapshot(ctx); loadErr == nil {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (c *Catalog) download(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return data, nil
}

func (c *Catalog) saveSnapshot(ctx context.Context, data []byte) {
	if c.snapshot == nil {
		return
	}
	if err := c.snapshot.Save(ctx, data); err != nil {
		c.logger.Warn("Failed to save catalog snapshot", zap.Error(err))
	}
}

// loadSnapshot installs the stored document with a zero fetch time so the
// next query tries the remote again.
func (c *Catalog) loadSnapshot(ctx context.Context) error {
	data, err := c.snapshot.Load(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("snapshot", "failure").Inc()
		c.logger.Warn("Failed to load catalog snapshot", zap.Error(err))
		return err
	}
	idx, err := ParseIndex(data, time.Time{})
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("snapshot", "failure").Inc()
		return err
	}
	c.setIndex(idx)
	metrics.CatalogRefreshTotal.WithLabelValues("snapshot", "success").Inc()
	c.logger.Info("Catalog loaded from snapshot", zap.Int("entries", idx.Len()))
	return nil
}

func (c *Catalog) stale(idx *Index) bool {
	return idx == nil || c.now().Sub(idx.FetchedAt) > c.cfg.StaleAfter()
}

func (c *Catalog) current() *Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

func (c *Catalog) setIndex(idx *Index) {
	c.mu.Lock()
	c.index = idx
	c.mu.Unlock()
}

type cachedLookup struct {
	Found  bool   `json:"found"`
	Result Result `json:"result"`
}
