// Package reconcile merges proxy routes from several proxy manager
// instances into the canonical application inventory.
//
// A run has two phases. Plan reads every active instance concurrently,
// resolves domains claimed by more than one instance, matches each winning
// route to an existing application, classifies it when needed and computes
// actions. Apply executes those actions. Run does both and never returns an
// error: failures are collected in Stats.
//
// # Resolution
//
// Resolve is a pure fold over the concatenated routes. For each primary
// domain the route from the lowest priority number wins; equal priorities
// keep the earliest arrival.
//
// # Matching
//
// The Matcher tries exact URL, URL with http/https swapped, the
// (instance, route) pair, then the domain as the host of any non-manual
// application. Manual applications only match by URL.
//
// # Overrides and orphans
//
// Override bits gate name, icon, description and category. Forward target,
// protection and detected type are metadata and follow the route. An
// application is an orphan when it is not manual, its owning instance was
// read successfully this run and its (instance, route) pair was not
// reported. Orphans are deleted in a single transaction.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(store, source, cascade, cfg.Sync, log)
//	stats := engine.Run(ctx, true)
//
//	// Dry run
//	plan, err := engine.Plan(ctx, false)
package reconcile
