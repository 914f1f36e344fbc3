package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, JSON: true, Component: ComponentBills})

	fields := NewFields().WithBill("b1", "a@a").WithOperation(OpNormalize).WithError(errors.New("boom"))
	l.WarnContext(context.Background(), "date kept raw", fields.ToSlice()...)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentBills {
		t.Fatalf("component = %v", rec[FieldComponent])
	}
	if rec[FieldBillID] != "b1" || rec[FieldError] != "boom" || rec[FieldOperation] != OpNormalize {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Level: slog.LevelWarn})
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
	l := Discard().WithComponent(ComponentWorker)
	if FromContext(NewContext(context.Background(), l)) != l {
		t.Fatalf("expected logger from context")
	}
}
