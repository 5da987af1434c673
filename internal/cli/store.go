package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harun/walet/internal/config"
	"github.com/harun/walet/internal/logger"
	"github.com/harun/walet/internal/observability"
	"github.com/harun/walet/pkg/authstate"
	"github.com/harun/walet/pkg/credentials"
	"github.com/harun/walet/pkg/sqlitestate"
)

// sessionStore adapts the configured store backend to the operations the
// commands need: bundle access, record lookup and mutation, id listing, and
// per-category counts. Exactly one of files or db is set.
type sessionStore struct {
	backend string
	where   string
	name    string
	lg      *logger.Logger
	files   *authstate.State
	db      *sqlitestate.Store
}

// openSessionStore opens the backend named in the config, honoring the --dir
// and --name flags. With requireExisting the store must already have been
// created by walet init.
func openSessionStore(requireExisting bool) (*sessionStore, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dir, name := resolveSession(cfg)
	sqlite := cfg.Store.Backend == config.BackendSQLite

	where := dir
	if sqlite {
		where = cfg.Store.SQLitePath
	}

	// Checked before the logger comes up so a missing store does not leave
	// log files behind.
	if requireExisting {
		if _, err := os.Stat(where); os.IsNotExist(err) {
			if sqlite {
				return nil, fmt.Errorf("no session database at %s (run: walet init)", where)
			}
			return nil, fmt.Errorf("no session directory at %s (run: walet init)", where)
		}
	}

	lg, err := newRunLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	s := &sessionStore{backend: cfg.Store.Backend, where: where, name: name, lg: lg}
	if sqlite {
		if err := os.MkdirAll(filepath.Dir(where), 0755); err != nil {
			lg.Close()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := sqlitestate.Open(where)
		if err != nil {
			lg.Close()
			return nil, err
		}
		s.db = db
	} else {
		st, err := authstate.Open(dir, authstate.Options{Name: name})
		if err != nil {
			lg.Close()
			return nil, err
		}
		s.files = st
	}

	return s, nil
}

// Close releases the backend and flushes the run logger.
func (s *sessionStore) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	s.lg.Close()
}

// Where names the backing store for messages: the session directory for the
// files backend, the database path for sqlite.
func (s *sessionStore) Where() string { return s.where }

func (s *sessionStore) Backend() string { return s.backend }

// BundleLabel names the credential bundle: its file name under the files
// backend, its row name under sqlite.
func (s *sessionStore) BundleLabel() string {
	if s.files != nil {
		return s.files.CredsFileName()
	}
	return s.name
}

// Creds returns the stored credential bundle, generating a fresh one in
// memory when the backend holds none yet. Nothing is persisted here.
func (s *sessionStore) Creds(ctx context.Context) (*credentials.Creds, error) {
	if s.files != nil {
		return s.files.Creds, nil
	}
	if creds, ok := s.db.LoadCreds(ctx, s.name); ok {
		return creds, nil
	}
	return credentials.NewCreds()
}

// InitCreds loads or generates the credential bundle and persists it.
func (s *sessionStore) InitCreds(ctx context.Context) (*credentials.Creds, error) {
	if s.files != nil {
		if err := s.files.SaveCreds(ctx); err != nil {
			return nil, err
		}
		return s.files.Creds, nil
	}

	creds, ok := s.db.LoadCreds(ctx, s.name)
	if !ok {
		var err error
		creds, err = credentials.NewCreds()
		if err != nil {
			return nil, fmt.Errorf("failed to generate credentials: %w", err)
		}
		observability.RecordBundleAudit(ctx, "bundle_initialized", s.where, "success")
	}
	if err := s.db.SaveCreds(ctx, s.name, creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// Get looks one category's records up by id.
func (s *sessionStore) Get(ctx context.Context, category string, ids []string) map[string]interface{} {
	if s.files != nil {
		return s.files.Get(ctx, category, ids)
	}
	return s.db.Get(ctx, category, ids)
}

// Set applies record updates, nil values delete.
func (s *sessionStore) Set(ctx context.Context, updates map[string]map[string]interface{}) error {
	if s.files != nil {
		return s.files.Set(ctx, updates)
	}
	return s.db.Set(ctx, updates)
}

// IDs lists the record ids stored under category in ascending order.
func (s *sessionStore) IDs(ctx context.Context, category string) ([]string, error) {
	if s.db != nil {
		return s.db.IDs(ctx, category)
	}
	return listRecordIDs(s.files.Dir(), category)
}

// RecordCounts tallies stored records per category.
func (s *sessionStore) RecordCounts(ctx context.Context) (map[string]int, int, error) {
	if s.db != nil {
		return s.db.RecordCounts(ctx)
	}
	return countRecords(s.files.Dir(), s.files.CredsFileName())
}

func listRecordIDs(dir, category string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	prefix := category + "-"
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || !strings.HasPrefix(name, prefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// recordCategories is ordered longest first so composite prefixes match
// before their shorter stems.
var recordCategories = []string{
	authstate.CategoryAppStateSyncVersion,
	authstate.CategoryAppStateSyncKey,
	authstate.CategorySenderKeyMemory,
	authstate.CategorySenderKey,
	authstate.CategoryPreKey,
	authstate.CategorySession,
}

func countRecords(dir, credsFile string) (map[string]int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read session directory: %w", err)
	}

	counts := make(map[string]int)
	total := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == credsFile || !strings.HasSuffix(name, ".json") {
			continue
		}

		total++
		matched := false
		for _, category := range recordCategories {
			if strings.HasPrefix(name, category+"-") {
				counts[category]++
				matched = true
				break
			}
		}
		if !matched {
			counts["other"]++
		}
	}

	return counts, total, nil
}
