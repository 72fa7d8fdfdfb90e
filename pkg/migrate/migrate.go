package migrate

import (
	"database/sql"
	"fmt"
	"sort"
)

// Latest stands for the highest version a provider knows about
const Latest = -1

// Migration is one numbered schema change with its reverse
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB is satisfied by both *sql.DB and *sql.Tx
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MigrationProvider loads migrations and keeps the applied version
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	GetCurrentVersion(db *sql.DB) (int, error)
	SetVersion(db DB, version int) error
	CreateMigrationTable(db *sql.DB) error
}

// Logf receives one line per applied step
type Logf func(template string, args ...interface{})

// Direction says which half of a migration a step runs
type Direction bool

const (
	Up   Direction = true
	Down Direction = false
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Step is one migration run in one direction. Applying it leaves the schema
// at ResultVersion.
type Step struct {
	Migration
	Direction Direction
}

// SQL is the script the step executes
func (s Step) SQL() string {
	if s.Direction == Up {
		return s.Up
	}
	return s.Down
}

// ResultVersion is the schema version once the step is committed
func (s Step) ResultVersion() int {
	if s.Direction == Up {
		return s.Version
	}
	return s.Version - 1
}

// VersionStatus reports one known migration against the database
type VersionStatus struct {
	Version    int
	Name       string
	Applied    bool
	Reversible bool
}

// Migrator moves a database between schema versions, one transaction per step
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
	logf     Logf
}

// NewMigrator returns a migrator over db. logf may be nil.
func NewMigrator(db *sql.DB, provider MigrationProvider, logf Logf) *Migrator {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Migrator{db: db, provider: provider, logf: logf}
}

// sorted returns the provider's migrations ordered by version
func (m *Migrator) sorted() ([]Migration, error) {
	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// GetCurrentVersion returns the applied version, creating the version table first
func (m *Migrator) GetCurrentVersion() (int, error) {
	if err := m.provider.CreateMigrationTable(m.db); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}
	version, err := m.provider.GetCurrentVersion(m.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// Plan lists the steps that take the database from its current version to
// target, in the order they would run. Nothing is executed.
func (m *Migrator) Plan(target int) ([]Step, error) {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return nil, err
	}
	migrations, err := m.sorted()
	if err != nil {
		return nil, err
	}
	return plan(migrations, current, target), nil
}

func plan(migrations []Migration, current, target int) []Step {
	if target == Latest {
		target = current
		if n := len(migrations); n > 0 && migrations[n-1].Version > target {
			target = migrations[n-1].Version
		}
	}

	var steps []Step
	if target >= current {
		for _, mig := range migrations {
			if mig.Version > current && mig.Version <= target {
				steps = append(steps, Step{Migration: mig, Direction: Up})
			}
		}
		return steps
	}
	for i := len(migrations) - 1; i >= 0; i-- {
		if mig := migrations[i]; mig.Version > target && mig.Version <= current {
			steps = append(steps, Step{Migration: mig, Direction: Down})
		}
	}
	return steps
}

// MigrateUp applies every pending migration
func (m *Migrator) MigrateUp() error {
	return m.MigrateTo(Latest)
}

// MigrateDown rolls back to target, which must be below the current version
func (m *Migrator) MigrateDown(target int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}
	if target >= current {
		return fmt.Errorf("target version %d must be less than current version %d", target, current)
	}
	return m.MigrateTo(target)
}

// MigrateTo runs up or down migrations until the schema is at target. Latest
// means the highest known version. Each step commits on its own, so a failure
// leaves the database at the last version that succeeded.
func (m *Migrator) MigrateTo(target int) error {
	steps, err := m.Plan(target)
	if err != nil {
		return err
	}
	for _, step := range steps {
		if err := m.apply(step); err != nil {
			return fmt.Errorf("migration %d %s: %w", step.Version, step.Direction, err)
		}
	}
	return nil
}

// Status reports every known migration and whether it is applied
func (m *Migrator) Status() ([]VersionStatus, error) {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return nil, err
	}
	migrations, err := m.sorted()
	if err != nil {
		return nil, err
	}

	status := make([]VersionStatus, len(migrations))
	for i, mig := range migrations {
		status[i] = VersionStatus{
			Version:    mig.Version,
			Name:       mig.Name,
			Applied:    mig.Version <= current,
			Reversible: mig.Down != "",
		}
	}
	return status, nil
}

// GetPendingMigrations returns the migrations above the current version, lowest first
func (m *Migrator) GetPendingMigrations() ([]Migration, error) {
	steps, err := m.Plan(Latest)
	if err != nil {
		return nil, err
	}
	pending := make([]Migration, 0, len(steps))
	for _, s := range steps {
		pending = append(pending, s.Migration)
	}
	return pending, nil
}

func (m *Migrator) apply(step Step) error {
	script := step.SQL()
	if script == "" {
		return fmt.Errorf("no %s script", step.Direction)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if err := m.provider.SetVersion(tx, step.ResultVersion()); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	m.logf("schema migration %d (%s) %s, now at version %d", step.Version, step.Name, step.Direction, step.ResultVersion())
	return nil
}

// SetVersion overwrites the recorded version without running any SQL
func (m *Migrator) SetVersion(version int) error {
	return m.provider.SetVersion(m.db, version)
}
