package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables PostgresRepository reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name        TEXT NOT NULL,
	msrp        DOUBLE PRECISION NOT NULL DEFAULT 0,
	location    TEXT,
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	county      TEXT,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS scenarios (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title       TEXT NOT NULL,
	notes       TEXT,
	snapshot    JSONB NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS dealer_fee_sets (
	id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	label              TEXT NOT NULL,
	applies_state_code TEXT,
	items              JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS gov_fee_sets (
	id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	label               TEXT NOT NULL,
	applies_state_code  TEXT,
	applies_county_fips TEXT,
	items               JSONB NOT NULL DEFAULT '[]'
);
`

// Connect opens a connection pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates any missing tables.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const vehicleColumns = `id::text, name, msrp, COALESCE(location, ''), latitude, longitude, COALESCE(county, ''), inserted_at`

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.Name, &v.MSRP, &v.Location, &v.Latitude, &v.Longitude, &v.County, &v.InsertedAt)
	return v, err
}

// ListVehicles returns all vehicles ordered by name.
func (r *PostgresRepository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// GetVehicle returns the vehicle with id.
func (r *PostgresRepository) GetVehicle(ctx context.Context, id string) (Vehicle, error) {
	v, err := scanVehicle(r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

// CreateVehicle inserts v and returns the stored row.
func (r *PostgresRepository) CreateVehicle(ctx context.Context, v Vehicle) (Vehicle, error) {
	if err := v.Validate(); err != nil {
		return Vehicle{}, err
	}
	query := `
		INSERT INTO vehicles (name, msrp, location, latitude, longitude, county)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''))
		RETURNING ` + vehicleColumns
	created, err := scanVehicle(r.pool.QueryRow(ctx, query, v.Name, v.MSRP, v.Location, v.Latitude, v.Longitude, v.County))
	if err != nil {
		return Vehicle{}, fmt.Errorf("failed to save vehicle: %w", err)
	}
	return created, nil
}

// UpdateVehicle overwrites the vehicle with the same ID.
func (r *PostgresRepository) UpdateVehicle(ctx context.Context, v Vehicle) (Vehicle, error) {
	if err := v.Validate(); err != nil {
		return Vehicle{}, err
	}
	query := `
		UPDATE vehicles
		SET name = $2, msrp = $3, location = NULLIF($4, ''), latitude = $5, longitude = $6, county = NULLIF($7, '')
		WHERE id::text = $1
		RETURNING ` + vehicleColumns
	updated, err := scanVehicle(r.pool.QueryRow(ctx, query, v.ID, v.Name, v.MSRP, v.Location, v.Latitude, v.Longitude, v.County))
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, fmt.Errorf("vehicle %s: %w", v.ID, ErrNotFound)
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return updated, nil
}

// DeleteVehicle removes the vehicle with id.
func (r *PostgresRepository) DeleteVehicle(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "vehicles", "vehicle", id)
}

const scenarioColumns = `id::text, title, COALESCE(notes, ''), snapshot, inserted_at`

func scanScenario(row pgx.Row) (Scenario, error) {
	var s Scenario
	var snapshot []byte
	if err := row.Scan(&s.ID, &s.Title, &s.Notes, &snapshot, &s.InsertedAt); err != nil {
		return Scenario{}, err
	}
	if err := json.Unmarshal(snapshot, &s.Snapshot); err != nil {
		return Scenario{}, fmt.Errorf("failed to decode scenario snapshot: %w", err)
	}
	return s, nil
}

// ListScenarios returns all scenarios, newest first.
func (r *PostgresRepository) ListScenarios(ctx context.Context) ([]Scenario, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+scenarioColumns+` FROM scenarios ORDER BY inserted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario row: %w", err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, rows.Err()
}

// GetScenario returns the scenario with id.
func (r *PostgresRepository) GetScenario(ctx context.Context, id string) (Scenario, error) {
	s, err := scanScenario(r.pool.QueryRow(ctx, `SELECT `+scenarioColumns+` FROM scenarios WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Scenario{}, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to get scenario: %w", err)
	}
	return s, nil
}

// CreateScenario inserts s with its snapshot serialized to JSONB.
func (r *PostgresRepository) CreateScenario(ctx context.Context, s Scenario) (Scenario, error) {
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	snapshot, err := json.Marshal(s.Snapshot)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to marshal scenario snapshot: %w", err)
	}
	query := `
		INSERT INTO scenarios (title, notes, snapshot)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING ` + scenarioColumns
	created, err := scanScenario(r.pool.QueryRow(ctx, query, s.Title, s.Notes, snapshot))
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to save scenario: %w", err)
	}
	return created, nil
}

// DeleteScenario removes the scenario with id.
func (r *PostgresRepository) DeleteScenario(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "scenarios", "scenario", id)
}

func (r *PostgresRepository) deleteByID(ctx context.Context, table, kind, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// ListFeeSets returns dealer and government fee sets matching filter,
// each kind ordered by label.
func (r *PostgresRepository) ListFeeSets(ctx context.Context, filter FeeSetFilter) ([]FeeSet, error) {
	var sets []FeeSet
	if filter.Kind == "" || filter.Kind == FeeSetDealer {
		dealer, err := r.queryFeeSets(ctx, FeeSetDealer, `
			SELECT id::text, label, COALESCE(applies_state_code, ''), ''::text, items
			FROM dealer_fee_sets
			WHERE ($1::text = '' OR applies_state_code = $1)
			ORDER BY label`, filter.StateCode)
		if err != nil {
			return nil, err
		}
		sets = append(sets, dealer...)
	}
	if filter.Kind == "" || filter.Kind == FeeSetGov {
		gov, err := r.queryFeeSets(ctx, FeeSetGov, `
			SELECT id::text, label, COALESCE(applies_state_code, ''), COALESCE(applies_county_fips, ''), items
			FROM gov_fee_sets
			WHERE ($1::text = '' OR applies_state_code = $1)
			  AND ($2::text = '' OR applies_county_fips = $2)
			ORDER BY label`, filter.StateCode, filter.CountyFIPS)
		if err != nil {
			return nil, err
		}
		sets = append(sets, gov...)
	}
	return sets, nil
}

func (r *PostgresRepository) queryFeeSets(ctx context.Context, kind FeeSetKind, query string, args ...any) ([]FeeSet, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s fee sets: %w", kind, err)
	}
	defer rows.Close()

	var sets []FeeSet
	for rows.Next() {
		fs := FeeSet{Kind: kind}
		var items []byte
		if err := rows.Scan(&fs.ID, &fs.Label, &fs.AppliesStateCode, &fs.AppliesCountyFIPS, &items); err != nil {
			return nil, fmt.Errorf("failed to scan fee set row: %w", err)
		}
		if err := json.Unmarshal(items, &fs.Items); err != nil {
			return nil, fmt.Errorf("failed to decode fee set items: %w", err)
		}
		sets = append(sets, fs)
	}
	return sets, rows.Err()
}
