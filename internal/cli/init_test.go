package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"billed/internal/config"
	"billed/internal/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogLevel: "warn"}, log.ComponentWorker, &buf)

	logger.Info("hidden")
	logger.Warn("shown", log.FieldBillID, "b1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=worker") || !strings.Contains(out, "bill_id=b1") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestInitSQLite(t *testing.T) {
	repo := InitSQLite(log.Discard(), filepath.Join(t.TempDir(), "billed.db"))
	defer repo.Close()
	if _, err := repo.List(context.Background(), "a@a"); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestShutdownContext_Cancel(t *testing.T) {
	ctx, cancel := ShutdownContext(log.Discard())
	cancel()
	<-ctx.Done()
}
