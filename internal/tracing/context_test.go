package tracing

import (
	"context"
	"testing"
)

func TestNewTraceID(t *testing.T) {
	id1 := NewTraceID()
	id2 := NewTraceID()

	if id1 == "" {
		t.Error("NewTraceID returned empty string")
	}

	if id1 == id2 {
		t.Error("NewTraceID returned duplicate IDs")
	}
}

func TestWithTraceID(t *testing.T) {
	ctx := context.Background()
	traceID := "test-trace-id"

	ctx = WithTraceID(ctx, traceID)

	retrieved := GetTraceID(ctx)
	if retrieved != traceID {
		t.Errorf("Expected trace ID %s, got %s", traceID, retrieved)
	}
}

func TestWithRunID(t *testing.T) {
	ctx := context.Background()
	runID := "test-run-id"

	ctx = WithRunID(ctx, runID)

	retrieved := GetRunID(ctx)
	if retrieved != runID {
		t.Errorf("Expected run ID %s, got %s", runID, retrieved)
	}
}

func TestWithSessionDir(t *testing.T) {
	ctx := context.Background()
	dir := "/tmp/sess"

	ctx = WithSessionDir(ctx, dir)

	retrieved := GetSessionDir(ctx)
	if retrieved != dir {
		t.Errorf("Expected session dir %s, got %s", dir, retrieved)
	}
}

func TestWithRecordName(t *testing.T) {
	ctx := context.Background()
	record := "pre-key-1.json"

	ctx = WithRecordName(ctx, record)

	retrieved := GetRecordName(ctx)
	if retrieved != record {
		t.Errorf("Expected record %s, got %s", record, retrieved)
	}
}

func TestGetTraceIDEmpty(t *testing.T) {
	ctx := context.Background()

	traceID := GetTraceID(ctx)
	if traceID != "" {
		t.Errorf("Expected empty trace ID, got %s", traceID)
	}
}

func TestGetSessionDirEmpty(t *testing.T) {
	ctx := context.Background()

	dir := GetSessionDir(ctx)
	if dir != "" {
		t.Errorf("Expected empty session dir, got %s", dir)
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-123")
	ctx = WithRunID(ctx, "run-456")
	ctx = WithSessionDir(ctx, "/tmp/sess")
	ctx = WithRecordName(ctx, "session-p1.json")

	tc := FromContext(ctx)

	if tc.TraceID != "trace-123" {
		t.Errorf("Expected trace ID trace-123, got %s", tc.TraceID)
	}
	if tc.RunID != "run-456" {
		t.Errorf("Expected run ID run-456, got %s", tc.RunID)
	}
	if tc.SessionDir != "/tmp/sess" {
		t.Errorf("Expected session dir /tmp/sess, got %s", tc.SessionDir)
	}
	if tc.RecordName != "session-p1.json" {
		t.Errorf("Expected record session-p1.json, got %s", tc.RecordName)
	}
}

func TestNewContext(t *testing.T) {
	ctx := context.Background()

	tc := &TraceContext{
		TraceID:    "trace-123",
		RunID:      "run-456",
		SessionDir: "/tmp/sess",
		RecordName: "session-p1.json",
	}

	ctx = NewContext(ctx, tc)

	if GetTraceID(ctx) != "trace-123" {
		t.Error("Trace ID not set correctly")
	}
	if GetRunID(ctx) != "run-456" {
		t.Error("Run ID not set correctly")
	}
	if GetSessionDir(ctx) != "/tmp/sess" {
		t.Error("Session dir not set correctly")
	}
	if GetRecordName(ctx) != "session-p1.json" {
		t.Error("Record name not set correctly")
	}
}

func TestNewContextPartial(t *testing.T) {
	ctx := context.Background()

	tc := &TraceContext{
		TraceID: "trace-123",
		// Other fields empty
	}

	ctx = NewContext(ctx, tc)

	if GetTraceID(ctx) != "trace-123" {
		t.Error("Trace ID not set correctly")
	}
	if GetRunID(ctx) != "" {
		t.Error("Run ID should be empty")
	}
	if GetSessionDir(ctx) != "" {
		t.Error("Session dir should be empty")
	}
}

func TestNewRequestContext(t *testing.T) {
	ctx := context.Background()

	ctx = NewRequestContext(ctx)

	traceID := GetTraceID(ctx)
	if traceID == "" {
		t.Error("Trace ID not generated")
	}

	// Verify it's a valid UUID format
	if len(traceID) != 36 {
		t.Errorf("Expected UUID format (36 chars), got %d chars", len(traceID))
	}
}
