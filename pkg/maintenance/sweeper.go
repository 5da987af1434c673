// Package maintenance cleans up session directories on demand or on a cron
// schedule.
package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/harun/walet/internal/observability"
	"github.com/harun/walet/internal/tracing"
	"github.com/harun/walet/pkg/authstate"
)

// DefaultMaxAge is how old a temp file must be before a sweep removes it.
// Younger temp files may belong to a write still in flight.
const DefaultMaxAge = time.Hour

// categoryPrefixes orders known categories longest first so
// "sender-key-memory" wins over "sender-key".
var categoryPrefixes = []string{
	authstate.CategoryAppStateSyncVersion,
	authstate.CategoryAppStateSyncKey,
	authstate.CategorySenderKeyMemory,
	authstate.CategorySenderKey,
	authstate.CategoryPreKey,
	authstate.CategorySession,
}

// SweeperOptions configures a sweeper.
type SweeperOptions struct {
	Dir      string
	MaxAge   time.Duration
	Schedule string
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Result describes one completed sweep run.
type Result struct {
	RunID        string         `json:"runId"`
	RemovedTemp  int            `json:"removedTemp"`
	RecordCounts map[string]int `json:"recordCounts"`
	DurationMs   int64          `json:"durationMs"`
}

// Sweeper removes stale temp files from a session directory and reports
// per-category record counts. Record files themselves are never touched.
type Sweeper struct {
	dir    string
	maxAge time.Duration
	logger zerolog.Logger
	now    func() time.Time

	schedule cron.Schedule

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// NewSweeper creates a sweeper for one session directory.
func NewSweeper(opts SweeperOptions) (*Sweeper, error) {
	observability.EnsureRegistered()

	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("session directory is required")
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	s := &Sweeper{
		dir:    opts.Dir,
		maxAge: maxAge,
		logger: opts.Logger.With().Str("component", "sweeper").Logger(),
		now:    nowFn,
	}

	if opts.Schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		schedule, err := parser.Parse(opts.Schedule)
		if err != nil {
			return nil, fmt.Errorf("invalid sweep schedule: %w", err)
		}
		s.schedule = schedule
	}

	return s, nil
}

// Sweep runs one pass over the session directory.
func (s *Sweeper) Sweep(ctx context.Context) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := s.now()

	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}
	ctx = tracing.WithRunID(ctx, runID)
	logger := tracing.LoggerFromContext(ctx, s.logger)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		observability.RecordSweepRun(false, 0)
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	result := &Result{
		RunID:        runID,
		RecordCounts: make(map[string]int),
	}
	cutoff := start.Add(-s.maxAge)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		if strings.HasSuffix(name, ".tmp") {
			info, err := entry.Info()
			if err != nil {
				logger.Warn().Err(err).Str("file", name).Msg("Failed to stat temp file")
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
				logger.Warn().Err(err).Str("file", name).Msg("Failed to remove temp file")
				continue
			}
			result.RemovedTemp++
			continue
		}

		if strings.HasSuffix(name, ".json") {
			result.RecordCounts[categoryOf(name)]++
		}
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	observability.RecordSweepRun(true, result.RemovedTemp)
	observability.RecordSweepAudit(ctx, s.dir, "success", map[string]interface{}{
		"run_id":       runID,
		"removed_temp": result.RemovedTemp,
	})

	logger.Info().
		Int("removedTemp", result.RemovedTemp).
		Int("categories", len(result.RecordCounts)).
		Msg("Sweep completed")

	return result, nil
}

// Start begins periodic sweeps on the configured schedule.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == nil {
		return fmt.Errorf("sweep schedule is required")
	}
	if s.started {
		return fmt.Errorf("sweeper already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.started = true

	go s.run(ctx)

	s.logger.Info().Msg("Sweeper started")
	return nil
}

// Stop cancels periodic sweeps. A sweep in progress finishes first.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.started = false
}

func (s *Sweeper) run(ctx context.Context) {
	for {
		next := s.schedule.Next(s.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("Scheduled sweep failed")
			}
		}
	}
}

// categoryOf maps a record file name to its category, or "other" when the
// name matches none.
func categoryOf(name string) string {
	for _, category := range categoryPrefixes {
		if strings.HasPrefix(name, category+"-") {
			return category
		}
	}
	return "other"
}
