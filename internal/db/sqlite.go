package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteKV stores named slots in the kv_slots table. Transactions are opened
// with BEGIN IMMEDIATE so a read-modify-write holds the write lock from the
// first read.
type SQLiteKV struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(path, migrationsDir string, log *zap.Logger) (*SQLiteKV, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", filepath.ToSlash(path))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	kv, err := NewSQLiteKV(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	n, err := RunMigrations(sqlDB, migrationsDir)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if n > 0 {
		log.Info("applied sqlite migrations", zap.Int("count", n), zap.String("path", path))
	}
	return kv, nil
}

func NewSQLiteKV(db *sql.DB, log *zap.Logger) (*SQLiteKV, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = zap.NewNop()
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteKV{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteKV) Update(ctx context.Context, key string, fn func(cur []byte, ok bool) ([]byte, error)) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
				s.log.Warn("sqlite rollback failed", zap.Error(rerr))
			}
		}
	}()

	var cur []byte
	ok := true
	switch qerr := tx.QueryRowContext(ctx, `SELECT value FROM kv_slots WHERE key = ?`, key).Scan(&cur); {
	case errors.Is(qerr, sql.ErrNoRows):
		ok = false
	case qerr != nil:
		return fmt.Errorf("sqlite read %s: %w", key, qerr)
	}

	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	if next == nil {
		return tx.Commit()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, next, s.now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite write %s: %w", key, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteKV) Close() error { return s.db.Close() }
