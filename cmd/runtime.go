package cmd

import (
	"context"
	"fmt"
	"time"

	"proxydash/core/catalog"
	"proxydash/core/config"
	"proxydash/core/database"
	"proxydash/core/detection"
	"proxydash/core/reconcile"
	"proxydash/core/storage"
	"proxydash/feature/inventory"
	"proxydash/feature/sources"
	proxysync "proxydash/feature/sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the components shared by the server and the one-shot commands.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	store   *inventory.Store
	objects storage.Client
	redis   *redis.Client
	catalog *catalog.Catalog
	cascade *detection.Cascade
	engine  *reconcile.Engine
	service *proxysync.Service
}

// newRuntime connects the inventory and wires detection and sync.
// Object storage and Redis are optional; failures there only log.
func newRuntime(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logg}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to inventory database: %w", err)
	}
	rt.db = db
	rt.store = inventory.NewStore(db)
	if err := rt.store.Migrate(); err != nil {
		rt.Close()
		return nil, err
	}
	logg.Info("Connected to inventory database", zap.String("driver", cfg.Database.Driver))

	if cfg.Storage.Enabled {
		rt.objects = connectStorage(ctx, cfg.Storage, logg)
	}

	table, err := detection.LoadTable(ctx, cfg.Detection, rt.objects, cfg.Storage.Bucket)
	if err != nil {
		logg.Warn("Failed to load signature table, using embedded default", zap.Error(err))
		if table, err = detection.DefaultTable(); err != nil {
			rt.Close()
			return nil, err
		}
	}
	logg.Info("Signature table loaded",
		zap.String("version", table.Version),
		zap.Int("patterns", table.PatternCount()),
		zap.Int("types", table.TypeCount()))

	var lookup detection.Lookuper
	if cfg.Catalog.URL != "" {
		rt.catalog = rt.newCatalog(ctx)
		lookup = rt.catalog
	}

	rt.cascade = detection.NewCascade(table, detection.NewHTTPFetcher(cfg.Detection), lookup, cfg.Detection.RedetectMinConfidence, logg)

	source := sources.NewMux(
		sources.NewDirectStore(nil, logg),
		sources.NewRemoteAPI(cfg.Sync.SourceTimeout(), logg),
	)
	rt.engine = reconcile.NewEngine(rt.store, source, rt.cascade, cfg.Sync, logg)
	rt.service = proxysync.NewService(rt.engine, rt.store, rt.cascade, rt.catalog, cfg.Sync.OnlineFallback, logg)
	return rt, nil
}

func connectStorage(ctx context.Context, cfg storage.Config, logg *zap.Logger) storage.Client {
	client, err := storage.NewClient(cfg)
	if err != nil {
		logg.Warn("Object storage disabled", zap.Error(err))
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket); err != nil {
		logg.Warn("Object storage disabled", zap.String("bucket", cfg.Bucket), zap.Error(err))
		return nil
	}
	logg.Info("Connected to object storage", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return client
}

func (rt *runtime) newCatalog(ctx context.Context) *catalog.Catalog {
	cfg := rt.cfg.Catalog
	opts := []catalog.Option{catalog.WithLogger(rt.logger)}

	if rt.objects != nil && cfg.SnapshotObject != "" {
		opts = append(opts, catalog.WithSnapshot(&catalog.ObjectSnapshot{
			Client: rt.objects,
			Bucket: rt.cfg.Storage.Bucket,
			Object: cfg.SnapshotObject,
		}))
	}

	if cfg.RedisAddr != "" {
		client := catalog.NewRedisClient(cfg)
		pctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
		err := client.Ping(pctx).Err()
		cancel()
		if err != nil {
			rt.logger.Warn("Redis unavailable, caching catalog queries in memory", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = client.Close()
		} else {
			rt.redis = client
			opts = append(opts, catalog.WithQueryCache(catalog.NewRedisCache(client)))
			rt.logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	return catalog.New(cfg, opts...)
}

// Close releases database and Redis connections.
func (rt *runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if err := database.Close(rt.db); err != nil {
		rt.logger.Warn("Failed to close database", zap.Error(err))
	}
}
