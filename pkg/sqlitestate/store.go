// Package sqlitestate stores auth session records in a single SQLite database
// instead of one file per record. It honors the same read and write semantics
// as the multi-file store.
package sqlitestate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harun/walet/internal/observability"
	"github.com/harun/walet/internal/tracing"
	"github.com/harun/walet/pkg/authstate"
	"github.com/harun/walet/pkg/credentials"
	"github.com/harun/walet/pkg/jsonblob"
)

// Store keeps keyed records and credential bundles in one SQLite database.
// Reads that fail for any reason fold to absent, writes and removes surface
// their errors, and a nil update value deletes the row, matching the
// multi-file store.
type Store struct {
	db   *sql.DB
	path string
}

var _ authstate.KeyStore = (*Store)(nil)

// Open opens or creates the database at path and prepares the schema.
func Open(path string) (*Store, error) {
	observability.EnsureRegistered()

	if path == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", path).Msg("SQLite key store opened")
	return s, nil
}

// initSchema creates database tables
func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			category TEXT NOT NULL,
			id TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (category, id)
		);
		CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);

		CREATE TABLE IF NOT EXISTS bundles (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get loads the requested records in one category. Absent and unreadable rows
// yield nil entries; app state sync keys come back decoded.
func (s *Store) Get(ctx context.Context, category string, ids []string) map[string]interface{} {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(
		ctx,
		"sqlitestate.get",
		attribute.String("category", category),
		attribute.Int("ids", len(ids)),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("category", category).Logger()
	start := time.Now()
	defer func() {
		observability.RecordSQLiteOp("get", time.Since(start))
	}()

	result := make(map[string]interface{}, len(ids))
	for _, id := range ids {
		var raw string
		err := s.db.QueryRowContext(
			ctx,
			"SELECT value FROM records WHERE category = ? AND id = ?",
			category, id,
		).Scan(&raw)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				logger.Debug().Err(err).Str("id", id).Msg("Record query folded to absent")
			}
			result[id] = foldReadFailure(err)
			continue
		}

		var value interface{}
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			logger.Debug().Err(err).Str("id", id).Msg("Record parse folded to absent")
			result[id] = foldReadFailure(err)
			continue
		}
		value = jsonblob.Revive(value)

		if category == authstate.CategoryAppStateSyncKey && value != nil {
			decoded, err := credentials.DecodeAppStateSyncKey(value)
			if err != nil {
				logger.Debug().Err(err).Str("id", id).Msg("Sync key decode folded to absent")
				result[id] = foldReadFailure(err)
				continue
			}
			value = decoded
		}

		result[id] = value
	}
	return result
}

// Set applies the batched updates in one transaction: nil values delete rows,
// everything else is upserted. Unlike the multi-file store the batch is
// atomic, a failed update rolls the whole transaction back.
func (s *Store) Set(ctx context.Context, updates map[string]map[string]interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(
		ctx,
		"sqlitestate.set",
		attribute.Int("categories", len(updates)),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)
	start := time.Now()
	defer func() {
		observability.RecordSQLiteOp("set", time.Since(start))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for category, entries := range updates {
		for id, value := range entries {
			if value == nil {
				if _, err := tx.Exec(
					"DELETE FROM records WHERE category = ? AND id = ?",
					category, id,
				); err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					return fmt.Errorf("failed to delete record: %w", err)
				}
				continue
			}

			raw, err := json.Marshal(value)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("failed to marshal record: %w", err)
			}
			if _, err := tx.Exec(
				"INSERT OR REPLACE INTO records (category, id, value, updated_at) VALUES (?, ?, ?, ?)",
				category, id, string(raw), now,
			); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("failed to upsert record: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit updates: %w", err)
	}

	logger.Debug().Int("categories", len(updates)).Msg("Record batch applied")
	return nil
}

// LoadCreds returns the stored credential bundle under name, or ok=false when
// the row is absent or unreadable.
func (s *Store) LoadCreds(ctx context.Context, name string) (creds *credentials.Creds, ok bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "sqlitestate.load_creds", attribute.String("bundle", name))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("bundle", name).Logger()
	start := time.Now()
	defer func() {
		observability.RecordSQLiteOp("load_creds", time.Since(start))
	}()

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM bundles WHERE name = ?", name).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Debug().Err(err).Msg("Bundle query folded to absent")
		}
		foldReadFailure(err)
		return nil, false
	}

	// Unmarshal leaves creds untouched for a null document, which would
	// report a zero-value bundle as stored.
	if strings.TrimSpace(raw) == "null" {
		logger.Debug().Msg("Null bundle folded to absent")
		observability.RecordReadMiss("malformed")
		return nil, false
	}

	creds = &credentials.Creds{}
	if err := json.Unmarshal([]byte(raw), creds); err != nil {
		logger.Debug().Err(err).Msg("Bundle parse folded to absent")
		foldReadFailure(err)
		return nil, false
	}
	return creds, true
}

// SaveCreds upserts the credential bundle under name.
func (s *Store) SaveCreds(ctx context.Context, name string, creds *credentials.Creds) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "sqlitestate.save_creds", attribute.String("bundle", name))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("bundle", name).Logger()
	start := time.Now()
	defer func() {
		observability.RecordSQLiteOp("save_creds", time.Since(start))
	}()

	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if _, err := s.db.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO bundles (name, value, updated_at) VALUES (?, ?, ?)",
		name, string(raw), time.Now().Unix(),
	); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordBundleAudit(ctx, "bundle_saved", s.path, "failure")
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	observability.RecordBundleAudit(ctx, "bundle_saved", s.path, "success")
	logger.Debug().Msg("Credential bundle saved")
	return nil
}

// IDs lists the record ids stored under category in ascending order. Unlike
// Get, listing failures surface: the caller is inspecting the store, not
// running the protocol.
func (s *Store) IDs(ctx context.Context, category string) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "sqlitestate.ids", attribute.String("category", category))
	defer span.End()
	start := time.Now()
	defer func() {
		observability.RecordSQLiteOp("ids", time.Since(start))
	}()

	rows, err := s.db.QueryContext(
		ctx,
		"SELECT id FROM records WHERE category = ? ORDER BY id",
		category,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return ids, nil
}

// RecordCounts returns the stored record count per category and in total.
func (s *Store) RecordCounts(ctx context.Context) (map[string]int, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "sqlitestate.record_counts")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.RecordSQLiteOp("record_counts", time.Since(start))
	}()

	rows, err := s.db.QueryContext(ctx, "SELECT category, COUNT(*) FROM records GROUP BY category")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	total := 0
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, 0, fmt.Errorf("failed to scan record count: %w", err)
		}
		counts[category] = n
		total += n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}
	return counts, total, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// foldReadFailure reports the miss class and yields the absent value, keeping
// the read-to-nil policy of the multi-file store.
func foldReadFailure(err error) interface{} {
	observability.RecordReadMiss(sqliteMissClass(err))
	return nil
}

func sqliteMissClass(err error) string {
	if errors.Is(err, sql.ErrNoRows) {
		return "not_found"
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "malformed"
	}
	return "io"
}
