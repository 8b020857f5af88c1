package sources

import (
	"context"
	"fmt"

	"proxydash/core/reconcile"
)

// Mux dispatches each instance to the source for its mode.
type Mux struct {
	sources map[reconcile.InstanceMode]reconcile.Source
}

// NewMux routes database-mode instances to direct and api-mode instances to api.
func NewMux(direct, api reconcile.Source) *Mux {
	return &Mux{sources: map[reconcile.InstanceMode]reconcile.Source{
		reconcile.ModeDatabase: direct,
		reconcile.ModeAPI:      api,
	}}
}

// Fetch reads inst through the source registered for its mode.
func (m *Mux) Fetch(ctx context.Context, inst reconcile.Instance) ([]reconcile.Route, bool, error) {
	src, ok := m.sources[inst.Mode]
	if !ok || src == nil {
		return nil, false, reconcile.Unreachable(inst, fmt.Errorf("unsupported instance mode %q", inst.Mode))
	}
	return src.Fetch(ctx, inst)
}
