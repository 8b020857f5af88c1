// Package catalog indexes a remote catalog of self-hosted applications and
// answers name lookups for the last detection tier.
//
// The catalog document is a JSON array of {name, description, category,
// icon, website}. It is parsed into an exact-name map, a normalized-name map
// and a sorted key list for substring search. The index is refreshed when
// never loaded, older than the configured TTL (24h by default), or on a
// forced refresh; concurrent refreshes collapse into one download.
//
// Individual lookups, misses included, are memoized through a QueryCache:
// an in-memory map by default or Redis when configured. Successful
// downloads are snapshotted to object storage and the snapshot is loaded
// when the remote is down and nothing has been indexed yet.
//
// # Usage
//
//	cat := catalog.New(cfg.Catalog, catalog.WithLogger(log))
//	res, err := cat.Lookup(ctx, "Grafana - Login")
package catalog
