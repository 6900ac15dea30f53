package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/trackforge/trackforge/pkg/engine"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements HistoryStore on a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	cfg  Config
}

// Config holds SQLite store configuration.
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	return &SQLiteStore{path: cfg.Path, cfg: cfg}, nil
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Foreign keys are a connection-level setting.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations from the embedded migration files.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// SavePlan persists a plan: one summary row plus one row per action, and
// the full kind-tagged JSON payload for lossless retrieval.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *engine.Plan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (id, created_at, total_actions, destructive, missing, drifted, deletable, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		plan.ID,
		plan.CreatedAt,
		plan.Summary.TotalActions,
		plan.Summary.Destructive,
		plan.Summary.Missing,
		plan.Summary.Drifted,
		plan.Summary.Deletable,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	for i, a := range plan.Actions {
		spec, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode action %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO plan_actions (plan_id, position, kind, destructive, spec)
			VALUES (?, ?, ?, ?, ?)
		`,
			plan.ID, i, string(a.Kind()), a.Kind().IsDestructive(), string(spec),
		)
		if err != nil {
			return fmt.Errorf("failed to insert action %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a persisted plan by ID.
func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*engine.Plan, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM plans WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	var plan engine.Plan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode stored plan %s: %w", id, err)
	}
	return &plan, nil
}

// ListPlans lists persisted plan summaries, newest first.
func (s *SQLiteStore) ListPlans(ctx context.Context, limit, offset int) ([]*PlanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, total_actions, destructive, missing, drifted, deletable
		FROM plans
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	records := []*PlanRecord{}
	for rows.Next() {
		record := &PlanRecord{}
		err := rows.Scan(
			&record.ID,
			&record.CreatedAt,
			&record.TotalActions,
			&record.Destructive,
			&record.Missing,
			&record.Drifted,
			&record.Deletable,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}
	return records, nil
}

// DeletePlan removes a plan. Action and run rows cascade.
func (s *SQLiteStore) DeletePlan(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("plan not found: %s", id)
	}
	return nil
}

// SaveRun persists the outcome of applying a plan.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *engine.RunResult) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (plan_id, status, started_at, completed_at)
		VALUES (?, ?, ?, ?)
	`, run.PlanID, string(run.Status), run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, res := range run.Results {
		var errMsg *string
		if res.Err != nil {
			msg := res.Err.Error()
			errMsg = &msg
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_results (plan_id, position, kind, status, error, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			run.PlanID, res.Position, string(res.Action.Kind()),
			string(res.Status), errMsg, res.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert result %d: %w", res.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a persisted run by plan ID.
func (s *SQLiteStore) GetRun(ctx context.Context, planID string) (*RunRecord, error) {
	record := &RunRecord{}
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT plan_id, status, started_at, completed_at
		FROM runs
		WHERE plan_id = ?
	`, planID).Scan(&record.PlanID, &status, &record.StartedAt, &record.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found for plan: %s", planID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	record.Status = engine.RunStatus(status)

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, kind, status, error, duration_ms
		FROM run_results
		WHERE plan_id = ?
		ORDER BY position ASC
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			res        ActionResultRecord
			kind       string
			resStatus  string
			errMsg     sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&res.Position, &kind, &resStatus, &errMsg, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		res.ActionKind = engine.ActionKind(kind)
		res.Status = engine.ApplyStatus(resStatus)
		if errMsg.Valid {
			res.Error = errMsg.String
		}
		res.Duration = time.Duration(durationMS) * time.Millisecond
		record.Results = append(record.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run results: %w", err)
	}

	return record, nil
}

// HealthCheck verifies the database connection is healthy.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}
