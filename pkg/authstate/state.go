package authstate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/harun/walet/internal/observability"
	"github.com/harun/walet/internal/tracing"
	"github.com/harun/walet/pkg/credentials"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Record categories used by the session protocol. Only
// CategoryAppStateSyncKey gets special decoding on Get; the store accepts
// arbitrary category strings.
const (
	CategoryPreKey              = "pre-key"
	CategorySession             = "session"
	CategorySenderKey           = "sender-key"
	CategoryAppStateSyncKey     = "app-state-sync-key"
	CategoryAppStateSyncVersion = "app-state-sync-version"
	CategorySenderKeyMemory     = "sender-key-memory"
)

// ErrNotDirectory reports that the session path is occupied by a
// non-directory.
var ErrNotDirectory = errors.New("session path exists but is not a directory")

// KeyStore is the batched key accessor the session protocol consumes.
type KeyStore interface {
	Get(ctx context.Context, category string, ids []string) map[string]interface{}
	Set(ctx context.Context, updates map[string]map[string]interface{}) error
}

// Options configures Open.
type Options struct {
	// Name scopes the credential bundle file name. It is sanitized to at
	// most 8 characters and falls back to "auth".
	Name string
	// Locks overrides the facade owned lock table. Two states over the same
	// directory must share one to keep per path serialization.
	Locks *PathLocker
}

// State is the ready handle over a session directory. Creds is the in
// memory credential bundle; callers mutate it and persist with SaveCreds.
type State struct {
	Creds *credentials.Creds

	dir      string
	baseName string
	store    *RecordStore
	locks    *PathLocker
}

var _ KeyStore = (*State)(nil)

// Open ensures the session directory exists, loads or initializes the
// credential bundle, and returns a ready state handle. The bundle file is
// only created by the first SaveCreds.
func Open(dir string, opts Options) (*State, error) {
	observability.EnsureRegistered()

	if dir == "" {
		return nil, fmt.Errorf("session directory is required")
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat session directory: %w", err)
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	locks := opts.Locks
	if locks == nil {
		locks = NewPathLocker()
	}

	st := &State{
		dir:      dir,
		baseName: SanitizeBaseName(opts.Name),
		store:    NewRecordStore(dir, locks),
		locks:    locks,
	}

	var creds credentials.Creds
	if st.store.ReadInto(context.Background(), st.CredsFileName(), &creds) {
		st.Creds = &creds
		log.Info().Str("dir", dir).Str("bundle", st.CredsFileName()).Msg("Credential bundle loaded")
	} else {
		fresh, err := credentials.NewCreds()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize credentials: %w", err)
		}
		st.Creds = fresh
		log.Info().Str("dir", dir).Str("bundle", st.CredsFileName()).Msg("Credential bundle initialized")
		observability.RecordBundleAudit(context.Background(), "bundle_initialized", dir, "success")
	}

	return st, nil
}

// Dir returns the session directory.
func (s *State) Dir() string {
	return s.dir
}

// CredsFileName returns the credential bundle file name inside the session
// directory.
func (s *State) CredsFileName() string {
	return s.baseName + ".json"
}

// Store exposes the underlying record store.
func (s *State) Store() *RecordStore {
	return s.store
}

// recordFileName composes the raw record file name for a category and id.
// Sanitization happens in the record store on the whole composed name.
func recordFileName(category, id string) string {
	return category + "-" + id + ".json"
}

// Get reads one record per id concurrently and collects the results into a
// map keyed by id. Absent or unreadable records yield nil entries. Values
// in the app-state-sync-key category are decoded into their structured form.
func (s *State) Get(ctx context.Context, category string, ids []string) map[string]interface{} {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(
		ctx,
		"authstate.get",
		attribute.String("category", category),
		attribute.Int("ids", len(ids)),
	)
	defer span.End()

	result := make(map[string]interface{}, len(ids))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			value := s.store.Read(ctx, recordFileName(category, id))
			if value != nil && category == CategoryAppStateSyncKey {
				decoded, err := credentials.DecodeAppStateSyncKey(value)
				if err != nil {
					value = classifyReadFailure(err)
				} else {
					value = decoded
				}
			}

			mu.Lock()
			result[id] = value
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return result
}

// Set applies all updates concurrently: a non nil value writes the record,
// a nil value removes it. Set waits for every dispatched operation and
// returns the first failure. Application is best effort: records that
// succeeded before a failure stay applied, nothing is rolled back.
func (s *State) Set(ctx context.Context, updates map[string]map[string]interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "authstate.set", attribute.Int("categories", len(updates)))
	defer span.End()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for category, entries := range updates {
		for id, value := range entries {
			wg.Add(1)
			go func(category, id string, value interface{}) {
				defer wg.Done()

				fileName := recordFileName(category, id)
				var err error
				if value != nil {
					err = s.store.Write(ctx, fileName, value)
				} else {
					err = s.store.Remove(ctx, fileName)
				}
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}(category, id, value)
		}
	}
	wg.Wait()

	if firstErr != nil {
		span.RecordError(firstErr)
		span.SetStatus(codes.Error, firstErr.Error())
	}
	return firstErr
}

// SaveCreds persists the in memory credential bundle to its fixed file name.
func (s *State) SaveCreds(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithSessionDir(ctx, s.dir)
	ctx, span := tracing.StartSpan(ctx, "authstate.save_creds", attribute.String("bundle", s.CredsFileName()))
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)
	start := time.Now()
	defer func() {
		observability.RecordCredsSave(time.Since(start))
	}()

	if err := s.store.WriteAtomic(ctx, s.CredsFileName(), s.Creds); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordBundleAudit(ctx, "bundle_saved", s.dir, "failure")
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	observability.RecordBundleAudit(ctx, "bundle_saved", s.dir, "success")
	logger.Debug().Str("bundle", s.CredsFileName()).Msg("Credentials saved")
	return nil
}
