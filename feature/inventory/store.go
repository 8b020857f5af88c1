package inventory

import (
	"context"
	"errors"
	"fmt"

	"proxydash/core/reconcile"

	"gorm.io/gorm"
)

// ErrNotFound is returned when an application or instance does not exist.
var ErrNotFound = errors.New("not found")

// Store persists instances and applications with gorm.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the inventory tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&reconcile.Instance{}, &reconcile.Application{}); err != nil {
		return fmt.Errorf("failed to migrate inventory: %w", err)
	}
	return nil
}

// ListInstances returns instances ordered by priority then id.
func (s *Store) ListInstances(ctx context.Context, activeOnly bool) ([]reconcile.Instance, error) {
	var instances []reconcile.Instance
	q := s.db.WithContext(ctx).Order("priority ASC").Order("id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	return instances, nil
}

// SaveInstance inserts or updates an instance.
func (s *Store) SaveInstance(ctx context.Context, inst *reconcile.Instance) error {
	if err := s.db.WithContext(ctx).Save(inst).Error; err != nil {
		return fmt.Errorf("failed to save instance %s: %w", inst.Name, err)
	}
	return nil
}

// ListApplications returns every application ordered by id.
func (s *Store) ListApplications(ctx context.Context) ([]reconcile.Application, error) {
	var apps []reconcile.Application
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// GetApplication returns one application or ErrNotFound.
func (s *Store) GetApplication(ctx context.Context, id uint) (*reconcile.Application, error) {
	var app reconcile.Application
	err := s.db.WithContext(ctx).First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("application %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application %d: %w", id, err)
	}
	return &app, nil
}

// CreateApplication inserts app and sets its ID.
func (s *Store) CreateApplication(ctx context.Context, app *reconcile.Application) error {
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application %s: %w", app.URL, err)
	}
	return nil
}

// UpdateApplication writes only the given columns.
func (s *Store) UpdateApplication(ctx context.Context, id uint, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&reconcile.Application{}).Where("id = ?", id).Updates(changes).Error
	if err != nil {
		return fmt.Errorf("failed to update application %d: %w", id, err)
	}
	return nil
}

// DeleteApplications removes the given synced applications in one
// transaction. Manual applications are never deleted.
func (s *Store) DeleteApplications(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id IN ? AND is_manual = ?", ids, false).Delete(&reconcile.Application{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete applications: %w", err)
		}
		return nil
	})
}

// UpdateInstanceStatus records the outcome of reading an instance.
func (s *Store) UpdateInstanceStatus(ctx context.Context, id uint, status reconcile.InstanceStatus) error {
	changes := map[string]any{
		"is_online":   status.IsOnline,
		"is_degraded": status.IsDegraded,
		"last_error":  status.LastError,
	}
	if status.LastSyncedAt != nil {
		changes["last_synced_at"] = *status.LastSyncedAt
	}
	err := s.db.WithContext(ctx).Model(&reconcile.Instance{}).Where("id = ?", id).Updates(changes).Error
	if err != nil {
		return fmt.Errorf("failed to update instance %d status: %w", id, err)
	}
	return nil
}
