package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// memStore is an in-memory Store used by engine tests.
type memStore struct {
	mu        sync.Mutex
	instances []Instance
	apps      map[uint]*Application
	nextID    uint
	statuses  map[uint]InstanceStatus

	failCreate map[string]bool
	failDelete bool
	writes     int
}

func newMemStore(instances ...Instance) *memStore {
	return &memStore{
		instances:  instances,
		apps:       make(map[uint]*Application),
		nextID:     1,
		statuses:   make(map[uint]InstanceStatus),
		failCreate: make(map[string]bool),
	}
}

func (s *memStore) ListInstances(_ context.Context, activeOnly bool) ([]Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Instance
	for _, inst := range s.instances {
		if activeOnly && !inst.Active {
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}

func (s *memStore) ListApplications(context.Context) ([]Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Application, 0, len(s.apps))
	for _, app := range s.apps {
		out = append(out, *app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) CreateApplication(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate[app.URL] {
		return errors.New("disk full")
	}
	s.writes++
	app.ID = s.nextID
	s.nextID++
	stored := *app
	s.apps[app.ID] = &stored
	return nil
}

func (s *memStore) UpdateApplication(_ context.Context, id uint, changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return errors.New("not found")
	}
	s.writes++
	ApplyChanges(app, changes)
	return nil
}

func (s *memStore) DeleteApplications(_ context.Context, ids []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errors.New("deadlock detected")
	}
	s.writes++
	for _, id := range ids {
		delete(s.apps, id)
	}
	return nil
}

func (s *memStore) UpdateInstanceStatus(_ context.Context, id uint, status InstanceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	return nil
}

// put inserts an application directly and returns its id.
func (s *memStore) put(app Application) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	app.ID = s.nextID
	s.nextID++
	s.apps[app.ID] = &app
	return app.ID
}

func (s *memStore) get(id uint) *Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app, ok := s.apps[id]; ok {
		cp := *app
		return &cp
	}
	return nil
}

func (s *memStore) byURL(url string) *Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.URL == url {
			cp := *app
			return &cp
		}
	}
	return nil
}
