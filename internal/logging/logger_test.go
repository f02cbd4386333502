package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		logFile   string
		level     string
		wantLevel zerolog.Level
	}{
		{"default level", "", "", zerolog.InfoLevel},
		{"debug level", "", "debug", zerolog.DebugLevel},
		{"info level", "", "info", zerolog.InfoLevel},
		{"warn level", "", "warn", zerolog.WarnLevel},
		{"error level", "", "error", zerolog.ErrorLevel},
		{"garbage falls back to info", "", "loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup, err := Init(tt.logFile, tt.level)
			if err != nil {
				t.Fatalf("Init() failed: %v", err)
			}
			defer cleanup()

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("expected level %v, got %v", tt.wantLevel, zerolog.GlobalLevel())
			}
		})
	}
}

func TestInitWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "dockdeck.log")

	cleanup, err := Init(logPath, "info")
	if err != nil {
		t.Fatalf("Init() with file failed: %v", err)
	}
	defer cleanup()

	Get().Info().Msg("test message")

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Errorf("log file was not created at %s", logPath)
	}
}

func TestInitCreatesNestedDirs(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "nonexistent", "logs", "dockdeck.log")

	cleanup, err := Init(logPath, "info")
	if err != nil {
		t.Fatalf("Init() failed to create nested log dir: %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Errorf("log file was not created at %s", logPath)
	}
}

func TestFor(t *testing.T) {
	cleanup, err := Init("", "info")
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer cleanup()

	l := For("web")
	l.Info().Msg("tagged")
	if Get() == nil {
		t.Error("Get() returned nil logger")
	}
}
