package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil))), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		rec := map[string]any{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Info(ctx, "inf", "a", 1)
	log.Warn(ctx, "wrn", "b", 2)
	log.Error(ctx, "err", "c", 3)

	records := decodeLines(t, buf)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	want := []struct {
		level string
		msg   string
		key   string
		val   float64
	}{
		{"INFO", "inf", "a", 1},
		{"WARN", "wrn", "b", 2},
		{"ERROR", "err", "c", 3},
	}
	for i, w := range want {
		rec := records[i]
		if rec["level"] != w.level || rec["msg"] != w.msg {
			t.Fatalf("record %d = %v, want level=%s msg=%s", i, rec, w.level, w.msg)
		}
		if rec[w.key] != w.val {
			t.Fatalf("record %d missing attribute %s=%v: %v", i, w.key, w.val, rec)
		}
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("module", "user_cache")
	child.Info(context.Background(), "hit", "key", "alice@example.com")

	records := decodeLines(t, buf)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec["module"] != "user_cache" || rec["key"] != "alice@example.com" {
		t.Fatalf("child attributes missing: %v", rec)
	}
}
