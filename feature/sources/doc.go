// Package sources reads proxy routes from proxy manager instances.
//
// Two transports exist. DirectStore opens the instance's own database and
// reads the proxy_host table, including access lists and advanced config.
// RemoteAPI logs in to the management API and lists proxy hosts; it cannot
// see protection metadata and reports every run as degraded. Mux picks the
// transport from the instance mode.
package sources
