// Package store handles SQLite persistence of fit runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/humtemp/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for fit history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fits (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			data_path TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			samples INTEGER NOT NULL,
			lin_slope REAL NOT NULL,
			lin_intercept REAL NOT NULL,
			lin_r2 REAL NOT NULL,
			lin_mae REAL NOT NULL,
			lin_rmse REAL NOT NULL,
			quad_c0 REAL NOT NULL,
			quad_c1 REAL NOT NULL,
			quad_c2 REAL NOT NULL,
			quad_r2 REAL NOT NULL,
			quad_mae REAL NOT NULL,
			quad_rmse REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fits_created_at ON fits(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_fits_fingerprint ON fits(fingerprint);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// createdAtLayout is fixed width so text order matches time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const fitColumns = `id, created_at, data_path, fingerprint, samples,
	lin_slope, lin_intercept, lin_r2, lin_mae, lin_rmse,
	quad_c0, quad_c1, quad_c2, quad_r2, quad_mae, quad_rmse`

// InsertFit stores a fit run and returns its id.
func (s *Store) InsertFit(ctx context.Context, rec model.FitRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fits (created_at, data_path, fingerprint, samples,
			lin_slope, lin_intercept, lin_r2, lin_mae, lin_rmse,
			quad_c0, quad_c1, quad_c2, quad_r2, quad_mae, quad_rmse)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt.UTC().Format(createdAtLayout),
		rec.DataPath,
		formatFingerprint(rec.Fingerprint),
		rec.Samples,
		rec.LinearSlope,
		rec.LinearIntercept,
		rec.LinearR2,
		rec.LinearMAE,
		rec.LinearRMSE,
		rec.QuadC0,
		rec.QuadC1,
		rec.QuadC2,
		rec.QuadR2,
		rec.QuadMAE,
		rec.QuadRMSE,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListFits returns fit runs in ascending time order, filtered by cfg.
func (s *Store) ListFits(ctx context.Context, cfg model.HistoryConfig) ([]model.FitRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.DataPath != "" {
		clauses = append(clauses, "data_path = ?")
		args = append(args, cfg.DataPath)
	}
	query := fmt.Sprintf(`SELECT %s FROM fits WHERE %s ORDER BY created_at ASC, id ASC`,
		fitColumns, strings.Join(clauses, " AND "))
	records, err := s.queryFits(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	return records, nil
}

// LatestByFingerprint returns the most recent fit of a dataset with the same
// content. The boolean is false when none exists.
func (s *Store) LatestByFingerprint(ctx context.Context, fingerprint uint64) (model.FitRecord, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM fits WHERE fingerprint = ? ORDER BY created_at DESC, id DESC LIMIT 1`, fitColumns)
	records, err := s.queryFits(ctx, query, formatFingerprint(fingerprint))
	if err != nil {
		return model.FitRecord{}, false, err
	}
	if len(records) == 0 {
		return model.FitRecord{}, false, nil
	}
	return records[0], true, nil
}

func (s *Store) queryFits(ctx context.Context, query string, args ...any) ([]model.FitRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.FitRecord
	for rows.Next() {
		var rec model.FitRecord
		var createdAt, fingerprint string
		if err := rows.Scan(&rec.ID, &createdAt, &rec.DataPath, &fingerprint, &rec.Samples,
			&rec.LinearSlope, &rec.LinearIntercept, &rec.LinearR2, &rec.LinearMAE, &rec.LinearRMSE,
			&rec.QuadC0, &rec.QuadC1, &rec.QuadC2, &rec.QuadR2, &rec.QuadMAE, &rec.QuadRMSE); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(createdAtLayout, createdAt)
		if err != nil {
			return nil, err
		}
		rec.CreatedAt = parsed
		fp, err := parseFingerprint(fingerprint)
		if err != nil {
			return nil, err
		}
		rec.Fingerprint = fp
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SQLite integers are signed 64-bit, so fingerprints are stored as hex text.
func formatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

func parseFingerprint(s string) (uint64, error) {
	var fp uint64
	if _, err := fmt.Sscanf(s, "%x", &fp); err != nil {
		return 0, errors.Join(fmt.Errorf("invalid fingerprint %q", s), err)
	}
	return fp, nil
}
