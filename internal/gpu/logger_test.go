package gpu

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	if slogger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger is enabled")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	slogger().Debug("atlas grown", "size", 2048)
	if !strings.Contains(buf.String(), "atlas grown") {
		t.Errorf("log output = %q, want the debug record", buf.String())
	}

	SetLogger(nil)
	if slogger() == nil || slogger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not silence the package")
	}
}
