package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation of Repository. It is safe
// for concurrent use and loses everything on restart.
type MemoryRepository struct {
	mu        sync.RWMutex
	vehicles  map[string]Vehicle
	scenarios map[string]Scenario
	feeSets   []FeeSet
	now       func() time.Time
}

// NewMemoryRepository creates an empty repository seeded with feeSets.
func NewMemoryRepository(feeSets ...FeeSet) *MemoryRepository {
	r := &MemoryRepository{
		vehicles:  make(map[string]Vehicle),
		scenarios: make(map[string]Scenario),
		now:       time.Now,
	}
	for _, fs := range feeSets {
		if fs.ID == "" {
			fs.ID = uuid.New().String()
		}
		r.feeSets = append(r.feeSets, fs)
	}
	return r
}

// ListVehicles returns all vehicles ordered by name.
func (r *MemoryRepository) ListVehicles(_ context.Context) ([]Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vehicles := make([]Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		vehicles = append(vehicles, v)
	}
	sort.SliceStable(vehicles, func(i, j int) bool {
		a, b := strings.ToLower(vehicles[i].Name), strings.ToLower(vehicles[j].Name)
		if a == b {
			return vehicles[i].ID < vehicles[j].ID
		}
		return a < b
	})
	return vehicles, nil
}

// GetVehicle returns the vehicle with id.
func (r *MemoryRepository) GetVehicle(_ context.Context, id string) (Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[id]
	if !ok {
		return Vehicle{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return v, nil
}

// CreateVehicle stores v under a new ID.
func (r *MemoryRepository) CreateVehicle(_ context.Context, v Vehicle) (Vehicle, error) {
	if err := v.Validate(); err != nil {
		return Vehicle{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	v.ID = uuid.New().String()
	v.InsertedAt = r.now()
	r.vehicles[v.ID] = v
	return v, nil
}

// UpdateVehicle replaces the stored vehicle with the same ID.
func (r *MemoryRepository) UpdateVehicle(_ context.Context, v Vehicle) (Vehicle, error) {
	if err := v.Validate(); err != nil {
		return Vehicle{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.vehicles[v.ID]
	if !ok {
		return Vehicle{}, fmt.Errorf("vehicle %s: %w", v.ID, ErrNotFound)
	}
	v.InsertedAt = existing.InsertedAt
	r.vehicles[v.ID] = v
	return v, nil
}

// DeleteVehicle removes the vehicle with id.
func (r *MemoryRepository) DeleteVehicle(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[id]; !ok {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	delete(r.vehicles, id)
	return nil
}

// ListScenarios returns all scenarios, newest first.
func (r *MemoryRepository) ListScenarios(_ context.Context) ([]Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenarios := make([]Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		scenarios = append(scenarios, s)
	}
	sort.SliceStable(scenarios, func(i, j int) bool {
		if scenarios[i].InsertedAt.Equal(scenarios[j].InsertedAt) {
			return scenarios[i].ID < scenarios[j].ID
		}
		return scenarios[i].InsertedAt.After(scenarios[j].InsertedAt)
	})
	return scenarios, nil
}

// GetScenario returns the scenario with id.
func (r *MemoryRepository) GetScenario(_ context.Context, id string) (Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scenarios[id]
	if !ok {
		return Scenario{}, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// CreateScenario stores s under a new ID.
func (r *MemoryRepository) CreateScenario(_ context.Context, s Scenario) (Scenario, error) {
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = uuid.New().String()
	s.InsertedAt = r.now()
	r.scenarios[s.ID] = s
	return s, nil
}

// DeleteScenario removes the scenario with id.
func (r *MemoryRepository) DeleteScenario(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scenarios[id]; !ok {
		return fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	delete(r.scenarios, id)
	return nil
}

// ListFeeSets returns the fee sets matching filter ordered by label.
func (r *MemoryRepository) ListFeeSets(_ context.Context, filter FeeSetFilter) ([]FeeSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []FeeSet
	for _, fs := range r.feeSets {
		if filter.Matches(fs) {
			matched = append(matched, fs)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Label < matched[j].Label
	})
	return matched, nil
}
