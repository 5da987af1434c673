package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// RunIDKey is the context key for maintenance run ID
	RunIDKey ContextKey = "run_id"
	// SessionDirKey is the context key for the session directory
	SessionDirKey ContextKey = "session_dir"
	// RecordNameKey is the context key for the record file name
	RecordNameKey ContextKey = "record"
)

// TraceContext holds tracing information
type TraceContext struct {
	TraceID    string
	RunID      string
	SessionDir string
	RecordName string
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithRunID adds a maintenance run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithSessionDir adds the session directory to the context
func WithSessionDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, SessionDirKey, dir)
}

// WithRecordName adds the record file name to the context
func WithRecordName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, RecordNameKey, name)
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetRunID retrieves the maintenance run ID from the context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// GetSessionDir retrieves the session directory from the context
func GetSessionDir(ctx context.Context) string {
	if dir, ok := ctx.Value(SessionDirKey).(string); ok {
		return dir
	}
	return ""
}

// GetRecordName retrieves the record file name from the context
func GetRecordName(ctx context.Context) string {
	if name, ok := ctx.Value(RecordNameKey).(string); ok {
		return name
	}
	return ""
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:    GetTraceID(ctx),
		RunID:      GetRunID(ctx),
		SessionDir: GetSessionDir(ctx),
		RecordName: GetRecordName(ctx),
	}
}

// NewContext creates a new context with tracing information
func NewContext(ctx context.Context, tc *TraceContext) context.Context {
	if tc.TraceID != "" {
		ctx = WithTraceID(ctx, tc.TraceID)
	}
	if tc.RunID != "" {
		ctx = WithRunID(ctx, tc.RunID)
	}
	if tc.SessionDir != "" {
		ctx = WithSessionDir(ctx, tc.SessionDir)
	}
	if tc.RecordName != "" {
		ctx = WithRecordName(ctx, tc.RecordName)
	}
	return ctx
}

// NewRequestContext creates a new context for an operation with a new trace ID
func NewRequestContext(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}
