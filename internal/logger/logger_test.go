package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		debug bool
		want  zap.AtomicLevel
	}{
		{name: "debug default", raw: "", debug: true, want: zap.NewAtomicLevelAt(zap.DebugLevel)},
		{name: "release default", raw: "", debug: false, want: zap.NewAtomicLevelAt(zap.InfoLevel)},
		{name: "explicit warn", raw: " WARN ", debug: true, want: zap.NewAtomicLevelAt(zap.WarnLevel)},
		{name: "invalid falls back", raw: "loud", debug: false, want: zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveLevel(tc.raw, tc.debug)
			if got.Level() != tc.want.Level() {
				t.Fatalf("level want %s got %s", tc.want.Level(), got.Level())
			}
		})
	}
}

func TestReleaseModeWritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	log := New("release", Options{Dir: dir, Filename: "vault.log"})
	log.Sugar().Infow("redemption_committed", "key_code", "NETFLIX-AAAA-BBBB-CCCC")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "vault.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "redemption_committed") || !strings.Contains(text, "NETFLIX-AAAA-BBBB-CCCC") {
		t.Fatalf("expected structured entry in log file, got=%s", text)
	}
}

func TestDebugModeSkipsFile(t *testing.T) {
	dir := t.TempDir()
	log := New("debug", Options{Dir: dir, Filename: "debug.log"})
	log.Info("debug-entry")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(dir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestResolveLogFilePathDefaults(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveLogFilePath(Options{Dir: dir})
	if err != nil {
		t.Fatalf("resolve log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}
}

func TestCallerPointsAtCallSite(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	previous := L
	L = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	t.Cleanup(func() { L = previous })

	Infow("package_helper")
	SW("user_id", 42).Infow("scoped_logger")
	S().Warnw("sugared_logger")
	Z().Info("plain_logger")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("want 4 entries got %d", len(entries))
	}
	for _, entry := range entries {
		if !entry.Caller.Defined || filepath.Base(entry.Caller.File) != "logger_test.go" {
			t.Fatalf("%s caller should be the test file, got %s", entry.Message, entry.Caller.String())
		}
	}
}
