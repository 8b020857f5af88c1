package reconcile

import (
	"context"
	"errors"
	"fmt"

	"proxydash/core/detection"
)

// ErrSourceUnreachable marks an instance that could not be read this run.
var ErrSourceUnreachable = errors.New("source unreachable")

// SourceError wraps a transport failure for one instance.
type SourceError struct {
	Instance string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("instance %s unreachable: %v", e.Instance, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrSourceUnreachable.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnreachable
}

// Unreachable wraps err as a SourceError for inst.
func Unreachable(inst Instance, err error) error {
	return &SourceError{Instance: inst.Name, Err: err}
}

// Source reads the routes of one instance.
// Implementations return a SourceError on any transport failure.
type Source interface {
	// Fetch returns the instance's routes and whether the transport is
	// degraded (per-route metadata such as access lists unavailable).
	Fetch(ctx context.Context, inst Instance) ([]Route, bool, error)
}

// Detector classifies a route. A nil result means nothing matched.
type Detector interface {
	Detect(ctx context.Context, target detection.Target, online bool) *detection.Result
}

// Store persists instances and applications.
type Store interface {
	// ListInstances returns instances ordered by priority then id.
	ListInstances(ctx context.Context, activeOnly bool) ([]Instance, error)
	// ListApplications returns every application.
	ListApplications(ctx context.Context) ([]Application, error)
	// CreateApplication inserts app and sets its ID.
	CreateApplication(ctx context.Context, app *Application) error
	// UpdateApplication writes only the given columns.
	UpdateApplication(ctx context.Context, id uint, changes map[string]any) error
	// DeleteApplications removes all ids in one transaction or none of them.
	DeleteApplications(ctx context.Context, ids []uint) error
	// UpdateInstanceStatus records the outcome of reading an instance.
	UpdateInstanceStatus(ctx context.Context, id uint, status InstanceStatus) error
}
