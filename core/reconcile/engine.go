package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"proxydash/core/detection"
	"proxydash/core/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine reconciles proxy routes into the application inventory.
type Engine struct {
	store    Store
	source   Source
	detector Detector
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates an engine. A nil detector leaves routes unclassified.
func NewEngine(store Store, source Source, detector Detector, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		source:   source,
		detector: detector,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Run plans and applies one reconciliation. It never returns an error;
// every failure is recorded in the returned Stats.
func (e *Engine) Run(ctx context.Context, online bool) Stats {
	started := e.now()
	plan, err := e.Plan(ctx, online)
	if err != nil {
		stats := Stats{RunID: uuid.NewString(), StartedAt: started}
		stats.addError("plan: %v", err)
		stats.Duration = e.now().Sub(started)
		e.logger.Error("Sync planning failed", zap.Error(err))
		metrics.RecordSync("apply", stats.Duration, stats.Outcomes())
		return stats
	}

	stats := e.Apply(ctx, plan)
	stats.StartedAt = started
	stats.Duration = e.now().Sub(started)
	metrics.RecordSync("apply", stats.Duration, stats.Outcomes())

	e.logger.Info("Sync finished",
		zap.String("run_id", stats.RunID),
		zap.Int("routes", stats.TotalRoutes),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("errored", stats.Errored),
		zap.Int("removed", stats.Removed),
		zap.Int("instances_failed", stats.InstancesFailed),
		zap.Duration("duration", stats.Duration))
	return stats
}

// fetchResult is the outcome of reading one instance.
type fetchResult struct {
	routes   []Route
	degraded bool
	err      error
}

// Plan collects routes, resolves conflicts, matches and classifies them and
// computes the actions. It does not write anything. An error is returned
// only when the inventory itself cannot be read.
func (e *Engine) Plan(ctx context.Context, online bool) (*Plan, error) {
	plan := &Plan{RunID: uuid.NewString(), CreatedAt: e.now()}

	instances, err := e.store.ListInstances(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].Priority != instances[j].Priority {
			return instances[i].Priority < instances[j].Priority
		}
		return instances[i].ID < instances[j].ID
	})

	results := e.fetchAll(ctx, instances)

	var routes []Route
	succeeded := make(map[uint]struct{})
	valid := make(map[RouteKey]struct{})
	for i, inst := range instances {
		res := results[i]
		report := InstanceReport{ID: inst.ID, Name: inst.Name}
		if res.err != nil {
			report.Error = res.err.Error()
			plan.Summary.InstancesFailed++
			plan.Errors = append(plan.Errors, res.err.Error())
			plan.Instances = append(plan.Instances, report)
			continue
		}

		report.Online = true
		report.Degraded = res.degraded
		report.Routes = len(res.routes)
		plan.Summary.InstancesSynced++
		if res.degraded {
			plan.Summary.InstancesDegraded++
		}
		plan.Instances = append(plan.Instances, report)
		succeeded[inst.ID] = struct{}{}

		for _, r := range res.routes {
			r.InstanceID = inst.ID
			r.InstancePriority = inst.Priority
			r.Arrival = len(routes)
			routes = append(routes, r)
			valid[r.Key()] = struct{}{}
		}
	}
	plan.Summary.TotalRoutes = len(routes)

	resolution := Resolve(routes)
	plan.Summary.ResolvedDomains = resolution.Len()

	apps, err := e.store.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	matcher := NewMatcher(apps)
	now := e.now()
	// owners maps a route to the non-manual application serving it this run.
	owners := make(map[RouteKey]uint)

	for _, route := range resolution.Winners() {
		domain := route.PrimaryDomain()
		app := matcher.Match(route)

		var det *detection.Result
		if e.needsDetection(app) {
			det = e.detector.Detect(ctx, detection.Target{Domain: domain, URL: route.URL()}, online)
		}
		cand := CandidateFor(route, det)
		if app != nil && !app.IsManual {
			owners[route.Key()] = app.ID
		}

		if app == nil {
			plan.add(Action{
				Type:        ActionCreate,
				Domain:      domain,
				Reason:      "new route " + route.Key().String(),
				Detection:   det,
				Application: NewApplication(cand, !e.cfg.Hidden(domain), now),
			})
			continue
		}

		changes, fields := Diff(app, cand)
		if len(changes) == 0 {
			plan.add(Action{
				Type:          ActionUnchanged,
				Domain:        domain,
				ApplicationID: app.ID,
				Reason:        "up to date",
				Detection:     det,
			})
			continue
		}
		plan.add(Action{
			Type:          ActionUpdate,
			Domain:        domain,
			ApplicationID: app.ID,
			Reason:        fmt.Sprintf("changed: %v", fields),
			Fields:        fields,
			Detection:     det,
			Changes:       changes,
		})
	}

	for i := range apps {
		app := &apps[i]
		if app.IsManual || matcher.Claimed(app.ID) {
			continue
		}
		key, linked := app.RouteKey()
		if !linked {
			continue
		}
		if owner, ok := owners[key]; ok && owner != app.ID {
			plan.add(Action{
				Type:          ActionDelete,
				ApplicationID: app.ID,
				Reason:        fmt.Sprintf("route %s now served by application %d", key, owner),
			})
			continue
		}
		if _, ok := succeeded[key.InstanceID]; !ok {
			continue
		}
		if _, ok := valid[key]; ok {
			continue
		}
		plan.add(Action{
			Type:          ActionDelete,
			ApplicationID: app.ID,
			Reason:        "route " + key.String() + " no longer reported",
		})
	}

	return plan, nil
}

// needsDetection skips applications that already carry a classification
// or whose classified fields are all overridden.
func (e *Engine) needsDetection(app *Application) bool {
	if e.detector == nil {
		return false
	}
	if app == nil {
		return true
	}
	return app.DetectedType == "" && !app.Overrides.Has(OverrideAll)
}

// fetchAll reads every instance concurrently. Results keep instance order.
func (e *Engine) fetchAll(ctx context.Context, instances []Instance) []fetchResult {
	results := make([]fetchResult, len(instances))
	var g errgroup.Group
	for i, inst := range instances {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout())
			defer cancel()

			routes, degraded, err := e.source.Fetch(fctx, inst)
			if err != nil && !errors.Is(err, ErrSourceUnreachable) {
				err = Unreachable(inst, err)
			}
			mode, result := string(inst.Mode), "success"
			if err != nil {
				result = "failure"
				e.logger.Warn("Instance unreachable",
					zap.String("instance", inst.Name),
					zap.String("mode", mode),
					zap.Error(err))
			}
			metrics.SourceFetchTotal.WithLabelValues(mode, result).Inc()
			results[i] = fetchResult{routes: routes, degraded: degraded, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Apply executes a plan. Per-route failures are counted and recorded;
// deletions run in one transaction and are rolled back together.
func (e *Engine) Apply(ctx context.Context, plan *Plan) Stats {
	stats := Stats{
		RunID:             plan.RunID,
		StartedAt:         plan.CreatedAt,
		TotalRoutes:       plan.Summary.TotalRoutes,
		InstancesSynced:   plan.Summary.InstancesSynced,
		InstancesFailed:   plan.Summary.InstancesFailed,
		InstancesDegraded: plan.Summary.InstancesDegraded,
		Tier2Detections:   plan.Summary.Tier2Detections,
		Errors:            append([]string(nil), plan.Errors...),
	}
	now := e.now()

	for _, r := range plan.Instances {
		status := InstanceStatus{IsOnline: r.Online, IsDegraded: r.Degraded, LastError: r.Error}
		if r.Online {
			status.LastSyncedAt = &now
		}
		if err := e.store.UpdateInstanceStatus(ctx, r.ID, status); err != nil {
			stats.addError("instance %s status: %v", r.Name, err)
		}
	}

	for _, a := range plan.Actions {
		switch a.Type {
		case ActionCreate:
			if err := e.store.CreateApplication(ctx, a.Application); err != nil {
				stats.Errored++
				stats.addError("create %s: %v", a.Domain, err)
				continue
			}
			stats.Created++
		case ActionUpdate:
			changes := make(map[string]any, len(a.Changes)+1)
			for k, v := range a.Changes {
				changes[k] = v
			}
			changes["last_synced_at"] = now
			if err := e.store.UpdateApplication(ctx, a.ApplicationID, changes); err != nil {
				stats.Errored++
				stats.addError("update %s: %v", a.Domain, err)
				continue
			}
			stats.Updated++
		case ActionUnchanged:
			if err := e.store.UpdateApplication(ctx, a.ApplicationID, map[string]any{"last_synced_at": now}); err != nil {
				stats.Errored++
				stats.addError("touch %s: %v", a.Domain, err)
				continue
			}
			stats.Unchanged++
		}
	}

	if ids := plan.deleteIDs(); len(ids) > 0 {
		if err := e.store.DeleteApplications(ctx, ids); err != nil {
			stats.addError("orphan removal rolled back: %v", err)
			e.logger.Error("Orphan removal failed", zap.Int("count", len(ids)), zap.Error(err))
		} else {
			stats.Removed = len(ids)
		}
	}

	return stats
}
