package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreBackend != StoreFS {
		t.Errorf("default store backend = %q, want %q", cfg.StoreBackend, StoreFS)
	}
	if cfg.WhisperModel != "whisper-1" {
		t.Errorf("default whisper model = %q", cfg.WhisperModel)
	}
	if cfg.OCRWorkers < 1 {
		t.Errorf("default OCR workers = %d", cfg.OCRWorkers)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lectio.yaml")
	data := []byte("store: s3\ns3Bucket: lectures\nocrWorkers: 3\nlogLevel: debug\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LECTIO_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreBackend != StoreS3 {
		t.Errorf("store backend = %q, want s3", cfg.StoreBackend)
	}
	if cfg.S3Bucket != "lectures" {
		t.Errorf("s3 bucket = %q", cfg.S3Bucket)
	}
	if cfg.OCRWorkers != 3 {
		t.Errorf("ocr workers = %d, want 3", cfg.OCRWorkers)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
