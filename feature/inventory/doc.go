// Package inventory stores proxy manager instances and dashboard
// applications with gorm, and serves them over HTTP.
//
// Store implements reconcile.Store. Orphan deletion runs inside one
// transaction and never touches manual applications. Manual edits made
// through the service set override bits so later syncs leave the edited
// fields alone.
package inventory
