package inventory

import (
	"context"
	"errors"
	"fmt"

	"proxydash/core/reconcile"

	"go.uber.org/zap"
)

// ErrInvalidEdit is returned for edits naming unknown fields.
var ErrInvalidEdit = errors.New("invalid edit")

// Edit is a manual change to an application. Nil fields are left alone.
// Editing a synced field pins it against future syncs; Release unpins.
type Edit struct {
	Name        *string  `json:"name,omitempty"`
	Icon        *string  `json:"icon,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Visible     *bool    `json:"is_visible,omitempty"`
	Release     []string `json:"release,omitempty"`
}

// Service exposes the inventory to HTTP handlers.
type Service struct {
	store  *Store
	logger *zap.Logger
}

// NewService creates a new inventory service.
func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// ListApplications returns every application.
func (s *Service) ListApplications(ctx context.Context) ([]reconcile.Application, error) {
	return s.store.ListApplications(ctx)
}

// ListInstances returns every configured instance.
func (s *Service) ListInstances(ctx context.Context) ([]reconcile.Instance, error) {
	return s.store.ListInstances(ctx, false)
}

// EditApplication applies a manual edit and updates the override bits.
func (s *Service) EditApplication(ctx context.Context, id uint, edit Edit) (*reconcile.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	overrides := app.Overrides
	pin := func(column string, value *string) {
		if value == nil {
			return
		}
		changes[column] = *value
		bit, _ := reconcile.OverrideFor(column)
		overrides = overrides.With(bit)
	}
	pin("name", edit.Name)
	pin("icon", edit.Icon)
	pin("description", edit.Description)
	pin("category", edit.Category)

	for _, column := range edit.Release {
		bit, ok := reconcile.OverrideFor(column)
		if !ok {
			return nil, fmt.Errorf("%w: field %q cannot be released", ErrInvalidEdit, column)
		}
		overrides = overrides.Without(bit)
	}
	if edit.Visible != nil {
		changes["is_visible"] = *edit.Visible
	}
	if overrides != app.Overrides {
		changes["overrides"] = overrides
	}
	if len(changes) == 0 {
		return app, nil
	}

	if err := s.store.UpdateApplication(ctx, id, changes); err != nil {
		return nil, err
	}
	s.logger.Info("Application edited", zap.Uint("id", id), zap.Int("fields", len(changes)))
	reconcile.ApplyChanges(app, changes)
	return app, nil
}
