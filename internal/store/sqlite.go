package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"Quackito/internal/model"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the current schema version of the duck database.
const SchemaVersion = 1

// SQLiteStore persists ducks to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("open sqlite: empty db path")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ducks (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			code         TEXT NOT NULL UNIQUE,
			name         TEXT NOT NULL,
			hunger       REAL NOT NULL DEFAULT 80,
			happiness    REAL NOT NULL DEFAULT 80,
			energy       REAL NOT NULL DEFAULT 80,
			last_updated INTEGER NOT NULL,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			duck_id   INTEGER NOT NULL,
			action    TEXT NOT NULL,
			food_type TEXT,
			timestamp INTEGER NOT NULL,
			FOREIGN KEY(duck_id) REFERENCES ducks(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_duck_ts ON interactions(duck_id, timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Create(ctx context.Context, d *model.Duck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM ducks WHERE code = ?`, d.Code).Scan(&exists)
	if err == nil {
		return ErrCodeTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("create duck: check code: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO ducks
		(code, name, hunger, happiness, energy, last_updated, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		d.Code, d.Name, d.Snapshot.Hunger, d.Snapshot.Happiness, d.Snapshot.Energy,
		toUnixNano(d.Snapshot.LastUpdated), toUnixNano(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create duck: insert: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create duck: last insert id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, code string) (*model.Duck, error) {
	return getDuck(ctx, s.db, code)
}

func (s *SQLiteStore) Update(ctx context.Context, code string, fn Mutation) (*model.Duck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update duck: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	d, err := getDuck(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	in, err := fn(d)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE ducks SET hunger = ?, happiness = ?, energy = ?, last_updated = ? WHERE id = ?`,
		d.Snapshot.Hunger, d.Snapshot.Happiness, d.Snapshot.Energy, toUnixNano(d.Snapshot.LastUpdated), d.ID,
	); err != nil {
		return nil, fmt.Errorf("update duck: write: %w", err)
	}

	if in != nil {
		in.DuckID = d.ID
		var food any
		if in.FoodType != "" {
			food = string(in.FoodType)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO interactions (duck_id, action, food_type, timestamp) VALUES (?,?,?,?)`,
			in.DuckID, string(in.Action), food, toUnixNano(in.Timestamp),
		)
		if err != nil {
			return nil, fmt.Errorf("update duck: log interaction: %w", err)
		}
		if in.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("update duck: interaction id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update duck: commit: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) Interactions(ctx context.Context, duckID int64) ([]model.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, duck_id, action, food_type, timestamp FROM interactions WHERE duck_id = ? ORDER BY timestamp ASC, id ASC`,
		duckID)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var out []model.Interaction
	for rows.Next() {
		var in model.Interaction
		var action string
		var ts int64
		var food sql.NullString
		if err := rows.Scan(&in.ID, &in.DuckID, &action, &food, &ts); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Action = model.Action(action)
		if food.Valid {
			in.FoodType = model.FoodType(food.String)
		}
		in.Timestamp = fromUnixNano(ts)
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDuck(ctx context.Context, q queryer, code string) (*model.Duck, error) {
	var d model.Duck
	var lastUpdated, createdAt int64
	err := q.QueryRowContext(ctx,
		`SELECT id, code, name, hunger, happiness, energy, last_updated, created_at FROM ducks WHERE code = ?`, code,
	).Scan(&d.ID, &d.Code, &d.Name, &d.Snapshot.Hunger, &d.Snapshot.Happiness, &d.Snapshot.Energy, &lastUpdated, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get duck: scan: %w", err)
	}
	d.Snapshot.LastUpdated = fromUnixNano(lastUpdated)
	d.CreatedAt = fromUnixNano(createdAt)
	return &d, nil
}

// Times are stored as unix nanoseconds so ORDER BY is chronological.
func toUnixNano(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
