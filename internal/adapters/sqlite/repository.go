// Package sqlite implements the ports.SignalRepository interface: a
// persistent audit log of fired signals that the hourly digest is built
// from.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.SignalRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite signal log instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signals.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory %q: %v: %w", filepath.Dir(dbPath), err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite signal log initialization failed")
		return nil, err
	}

	// WAL mode: the scanner writes while the digest command reads.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at %q: %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite signal log initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at %q: %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite signal log initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize schema: %v: %w", err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite signal log initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite signal log ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		kind TEXT NOT NULL,
		price REAL NOT NULL,
		rsi REAL NOT NULL,
		target_price REAL DEFAULT NULL,
		fired_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_signals_symbol_fired_at
		ON signals (symbol, fired_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Insert saves a fired signal and returns its assigned ID.
func (r *Repository) Insert(ctx context.Context, symbol string, sig domain.Signal) (int64, error) {
	const query = `
	INSERT INTO signals (symbol, kind, price, rsi, target_price, fired_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	var target sql.NullFloat64
	if sig.TargetPrice != nil {
		target = sql.NullFloat64{Float64: *sig.TargetPrice, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		symbol, string(sig.Kind), sig.Price, sig.RSI, target, sig.Time.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting signal: %v: %w", err, ports.ErrQueryFailed)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted signal ID: %v: %w", err, ports.ErrQueryFailed)
	}
	return id, nil
}

// FindSince retrieves all signals for a symbol fired at or after the given
// time, ordered oldest first.
func (r *Repository) FindSince(ctx context.Context, symbol string, since time.Time) ([]domain.Signal, error) {
	const query = `
	SELECT kind, price, rsi, target_price, fired_at
	FROM signals
	WHERE symbol = ? AND fired_at >= ?
	ORDER BY fired_at ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying signals: %v: %w", err, ports.ErrQueryFailed)
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var (
			sig    domain.Signal
			kind   string
			target sql.NullFloat64
		)
		if err := rows.Scan(&kind, &sig.Price, &sig.RSI, &target, &sig.Time); err != nil {
			return nil, fmt.Errorf("scanning signal row: %v: %w", err, ports.ErrQueryFailed)
		}
		sig.Kind = domain.SignalKind(kind)
		if target.Valid {
			t := target.Float64
			sig.TargetPrice = &t
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signal rows: %v: %w", err, ports.ErrQueryFailed)
	}

	return signals, nil
}
