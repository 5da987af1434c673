package authstate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/harun/walet/internal/observability"
	"github.com/harun/walet/internal/tracing"
	"github.com/harun/walet/pkg/jsonblob"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RecordStore reads, writes, and removes serialized records inside a session
// directory. Every operation resolves a sanitized file name and holds that
// path's lock for its full duration, including error paths.
type RecordStore struct {
	dir   string
	locks *PathLocker
}

// NewRecordStore creates a record store over dir using the given lock table.
func NewRecordStore(dir string, locks *PathLocker) *RecordStore {
	return &RecordStore{dir: dir, locks: locks}
}

// resolve composes the on disk path for a record file name.
func (rs *RecordStore) resolve(fileName string) string {
	return filepath.Join(rs.dir, SanitizeFileToken(fileName))
}

// Write serializes value as indented JSON and replaces the record file.
// I/O failures propagate to the caller.
func (rs *RecordStore) Write(ctx context.Context, fileName string, value interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithRecordName(ctx, fileName)
	ctx, span := tracing.StartSpan(ctx, "records.write", attribute.String("record", fileName))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("record", fileName).Logger()
	start := time.Now()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordWrite(time.Since(start), false)
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	path := rs.resolve(fileName)
	release := rs.locks.Acquire(path)
	defer release()

	if err := os.WriteFile(path, data, 0600); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordWrite(time.Since(start), false)
		return fmt.Errorf("failed to write record: %w", err)
	}

	observability.RecordWrite(time.Since(start), true)
	logger.Debug().Int("bytes", len(data)).Msg("Record written")
	return nil
}

// WriteAtomic writes the record through a temp file and atomic rename, so a
// crash mid write never truncates the previous content. Used for the
// credential bundle.
func (rs *RecordStore) WriteAtomic(ctx context.Context, fileName string, value interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithRecordName(ctx, fileName)
	ctx, span := tracing.StartSpan(ctx, "records.write_atomic", attribute.String("record", fileName))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("record", fileName).Logger()
	start := time.Now()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordWrite(time.Since(start), false)
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	path := rs.resolve(fileName)
	release := rs.locks.Acquire(path)
	defer release()

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordWrite(time.Since(start), false)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordWrite(time.Since(start), false)
		return fmt.Errorf("failed to replace record: %w", err)
	}

	observability.RecordWrite(time.Since(start), true)
	logger.Debug().Int("bytes", len(data)).Msg("Record written atomically")
	return nil
}

// Read returns the decoded record value with binary payloads revived, or nil
// when the record is absent or unreadable. Read failures never surface; see
// classifyReadFailure.
func (rs *RecordStore) Read(ctx context.Context, fileName string) interface{} {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithRecordName(ctx, fileName)
	ctx, span := tracing.StartSpan(ctx, "records.read", attribute.String("record", fileName))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("record", fileName).Logger()
	start := time.Now()
	defer func() {
		observability.RecordRead(time.Since(start))
	}()

	path := rs.resolve(fileName)
	release := rs.locks.Acquire(path)
	defer release()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug().Err(err).Msg("Record read folded to absent")
		return classifyReadFailure(err)
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		logger.Debug().Err(err).Msg("Record parse folded to absent")
		return classifyReadFailure(err)
	}

	return jsonblob.Revive(value)
}

// ReadInto decodes the record into out, reporting whether a usable record
// was found. Failures and null documents fold to absent exactly like Read.
func (rs *RecordStore) ReadInto(ctx context.Context, fileName string, out interface{}) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithRecordName(ctx, fileName)
	ctx, span := tracing.StartSpan(ctx, "records.read_into", attribute.String("record", fileName))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("record", fileName).Logger()
	start := time.Now()
	defer func() {
		observability.RecordRead(time.Since(start))
	}()

	path := rs.resolve(fileName)
	release := rs.locks.Acquire(path)
	defer release()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug().Err(err).Msg("Record read folded to absent")
		classifyReadFailure(err)
		return false
	}
	// Unmarshal treats a null document as a no-op on out, which would report
	// an untouched zero value as loaded.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		logger.Debug().Msg("Null record folded to absent")
		observability.RecordReadMiss("malformed")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Debug().Err(err).Msg("Record parse folded to absent")
		classifyReadFailure(err)
		return false
	}
	return true
}

// Remove deletes the record file. Deleting an absent record is not an error.
func (rs *RecordStore) Remove(ctx context.Context, fileName string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithRecordName(ctx, fileName)
	ctx, span := tracing.StartSpan(ctx, "records.remove", attribute.String("record", fileName))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger).With().Str("record", fileName).Logger()

	path := rs.resolve(fileName)
	release := rs.locks.Acquire(path)
	defer release()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordRemove(false)
		return fmt.Errorf("failed to remove record: %w", err)
	}

	observability.RecordRemove(true)
	logger.Debug().Msg("Record removed")
	return nil
}

// classifyReadFailure folds a record read failure into the absent value.
// Missing files, permission errors, and malformed content are all reported
// as "no record"; callers cannot distinguish them from true absence.
func classifyReadFailure(err error) interface{} {
	observability.RecordReadMiss(readFailureClass(err))
	return nil
}

// readFailureClass names the failure class for the read miss metric.
func readFailureClass(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "not_found"
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "malformed"
	}
	return "io"
}
