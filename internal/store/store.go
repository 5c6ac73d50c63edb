// Package store persists vehicles, saved scenarios and fee presets, and
// provides the key/value caches used for rate tables and geocoder answers.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
)

// Sentinel errors returned by repositories.
var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid record")
)

// Vehicle is a car under consideration, with the dealer's location.
type Vehicle struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MSRP       float64   `json:"msrp"`
	Location   string    `json:"location,omitempty"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	County     string    `json:"county,omitempty"`
	InsertedAt time.Time `json:"insertedAt"`
}

// Validate checks the fields a vehicle must carry.
func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: vehicle name is required", ErrInvalid)
	}
	if v.MSRP < 0 {
		return fmt.Errorf("%w: vehicle MSRP cannot be negative", ErrInvalid)
	}
	return nil
}

// Scenario is a named snapshot of calculator inputs.
type Scenario struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Notes      string                `json:"notes,omitempty"`
	Snapshot   calculator.LoanInputs `json:"snapshot"`
	InsertedAt time.Time             `json:"insertedAt"`
}

// Validate checks the fields a scenario must carry.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: scenario title is required", ErrInvalid)
	}
	return nil
}

// FeeSetKind distinguishes dealer fee presets from government fee presets.
type FeeSetKind string

// Fee set kinds.
const (
	FeeSetDealer FeeSetKind = "dealer"
	FeeSetGov    FeeSetKind = "gov"
)

// FeeSet is a reusable list of fee line items for a jurisdiction.
type FeeSet struct {
	ID                string           `json:"id"`
	Label             string           `json:"label"`
	Kind              FeeSetKind       `json:"kind"`
	AppliesStateCode  string           `json:"appliesStateCode,omitempty"`
	AppliesCountyFIPS string           `json:"appliesCountyFips,omitempty"`
	Items             []calculator.Fee `json:"items"`
}

// FeeSetFilter narrows a fee set listing. Empty fields match everything.
// County FIPS only applies to government fee sets.
type FeeSetFilter struct {
	Kind       FeeSetKind
	StateCode  string
	CountyFIPS string
}

// Matches reports whether fs passes the filter.
func (f FeeSetFilter) Matches(fs FeeSet) bool {
	if f.Kind != "" && fs.Kind != f.Kind {
		return false
	}
	if f.StateCode != "" && !strings.EqualFold(fs.AppliesStateCode, f.StateCode) {
		return false
	}
	if f.CountyFIPS != "" && fs.Kind == FeeSetGov && fs.AppliesCountyFIPS != f.CountyFIPS {
		return false
	}
	return true
}

// Repository is the persistence contract for the calculator's records.
// Vehicles list by name, scenarios newest first and fee sets by label.
type Repository interface {
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	GetVehicle(ctx context.Context, id string) (Vehicle, error)
	CreateVehicle(ctx context.Context, v Vehicle) (Vehicle, error)
	UpdateVehicle(ctx context.Context, v Vehicle) (Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error

	ListScenarios(ctx context.Context) ([]Scenario, error)
	GetScenario(ctx context.Context, id string) (Scenario, error)
	CreateScenario(ctx context.Context, s Scenario) (Scenario, error)
	DeleteScenario(ctx context.Context, id string) error

	ListFeeSets(ctx context.Context, filter FeeSetFilter) ([]FeeSet, error)
}
