// Package sync exposes reconciliation and detection as a service, a
// background scheduler and HTTP routes.
package sync
