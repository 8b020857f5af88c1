package sync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"proxydash/core/catalog"
	"proxydash/core/detection"
	"proxydash/core/reconcile"
	"proxydash/feature/inventory"

	"go.uber.org/zap"
)

// ErrApplicationNotFound is returned by RedetectOne for an unknown id.
var ErrApplicationNotFound = errors.New("application not found")

// Applications is the slice of the inventory used by re-detection.
type Applications interface {
	GetApplication(ctx context.Context, id uint) (*reconcile.Application, error)
	UpdateApplication(ctx context.Context, id uint, changes map[string]any) error
}

// RedetectResult describes the outcome of a manual re-detection.
type RedetectResult struct {
	Changed []string          `json:"changed"`
	Method  detection.Method  `json:"method,omitempty"`
	Message string            `json:"message"`
	Result  *detection.Result `json:"result,omitempty"`
}

// CatalogStats summarizes the detection tables and the online catalog.
type CatalogStats struct {
	SignatureVersion string `json:"signature_version"`
	PatternCount     int    `json:"pattern_count"`
	TypeCount        int    `json:"type_count"`
	OnlineAvailable  bool   `json:"online_available"`
	OnlineCount      int    `json:"online_count"`
}

// Service runs syncs and manual detection.
type Service struct {
	engine  *reconcile.Engine
	apps    Applications
	cascade *detection.Cascade
	catalog *catalog.Catalog
	online  bool
	logger  *zap.Logger
}

// NewService creates a sync service. catalog may be nil when no online
// catalog is configured. online is the default for manual re-detection.
func NewService(engine *reconcile.Engine, apps Applications, cascade *detection.Cascade, cat *catalog.Catalog, online bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:  engine,
		apps:    apps,
		cascade: cascade,
		catalog: cat,
		online:  online,
		logger:  logger,
	}
}

// RunSync reconciles every active instance. Failures are reported in Stats.
func (s *Service) RunSync(ctx context.Context, useOnlineFallback bool) reconcile.Stats {
	return s.engine.Run(ctx, useOnlineFallback)
}

// Plan computes a sync without writing anything.
func (s *Service) Plan(ctx context.Context, useOnlineFallback bool) (*reconcile.Plan, error) {
	return s.engine.Plan(ctx, useOnlineFallback)
}

// classificationColumns are the fields re-detection may write.
var classificationColumns = map[string]struct{}{
	"name": {}, "icon": {}, "description": {}, "category": {}, "detected_type": {},
}

// RedetectOne classifies one application again. A result below the
// confidence floor does not replace an existing detection. When no tier
// succeeds the application is left untouched and only a message is
// returned.
func (s *Service) RedetectOne(ctx context.Context, id uint) (RedetectResult, error) {
	app, err := s.apps.GetApplication(ctx, id)
	if errors.Is(err, inventory.ErrNotFound) {
		return RedetectResult{}, fmt.Errorf("%w: %d", ErrApplicationNotFound, id)
	}
	if err != nil {
		return RedetectResult{}, err
	}

	target := targetFor(app)
	det, confident := s.cascade.DetectStrict(ctx, target, s.online)
	if det == nil {
		return RedetectResult{Message: "no detection possible"}, nil
	}
	if !confident && app.DetectedType != "" {
		return RedetectResult{
			Method:  det.Method,
			Result:  det,
			Message: fmt.Sprintf("detection %s (%.2f) below confidence floor %.2f; kept %s", det.Type, det.Confidence, s.cascade.MinConfidence(), app.DetectedType),
		}, nil
	}

	candidate := reconcile.Candidate{
		URL:            app.URL,
		IsProtected:    app.IsProtected,
		ForwardHost:    app.ForwardHost,
		ForwardPort:    app.ForwardPort,
		ForwardScheme:  app.ForwardScheme,
		Classification: det,
	}
	all, _ := reconcile.Diff(app, candidate)
	changes := make(map[string]any)
	var changed []string
	for column, v := range all {
		if _, ok := classificationColumns[column]; ok {
			changes[column] = v
			changed = append(changed, column)
		}
	}
	sort.Strings(changed)

	res := RedetectResult{Changed: changed, Method: det.Method, Result: det}
	if len(changes) == 0 {
		res.Message = fmt.Sprintf("detected %s; nothing changed", det.Type)
		return res, nil
	}
	if err := s.apps.UpdateApplication(ctx, id, changes); err != nil {
		return RedetectResult{}, err
	}
	s.logger.Info("Application re-detected",
		zap.Uint("id", id),
		zap.String("type", det.Type),
		zap.String("method", string(det.Method)),
		zap.Strings("changed", changed))
	res.Message = fmt.Sprintf("detected %s", det.Type)
	return res, nil
}

// SearchCatalog searches the online catalog.
func (s *Service) SearchCatalog(ctx context.Context, query string, limit int) ([]catalog.Result, error) {
	if s.catalog == nil {
		return nil, catalog.ErrUnavailable
	}
	return s.catalog.Search(ctx, query, limit)
}

// CatalogStats reports signature table sizes and online catalog status.
func (s *Service) CatalogStats(ctx context.Context) CatalogStats {
	table := s.cascade.Table()
	stats := CatalogStats{
		SignatureVersion: table.Version,
		PatternCount:     table.PatternCount(),
		TypeCount:        table.TypeCount(),
	}
	if s.catalog == nil {
		return stats
	}
	if err := s.catalog.Refresh(ctx, false); err != nil {
		s.logger.Debug("Catalog refresh failed", zap.Error(err))
	}
	stats.OnlineAvailable = s.catalog.Available()
	stats.OnlineCount = s.catalog.Count()
	return stats
}

func targetFor(app *reconcile.Application) detection.Target {
	t := detection.Target{URL: app.URL}
	if u, err := url.Parse(app.URL); err == nil && u.Hostname() != "" {
		t.Domain = u.Hostname()
	} else {
		t.Domain = app.URL
	}
	return t
}
