package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Root != "db" || cfg.LogLevel != "info" || cfg.Compression != nil {
			t.Errorf("Load() = %+v, want defaults", cfg)
		}
		opts := cfg.Options()
		if opts.Root != "db" || opts.Compression != nil {
			t.Errorf("Options() = %+v", opts)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Root != "db" {
			t.Errorf("Root = %q", cfg.Root)
		}
	})

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jsondb.yaml")
		content := `root: data/store
compression: false
in_place_writes: true
log_level: debug
history:
  enabled: true
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Root != "data/store" {
			t.Errorf("Root = %q", cfg.Root)
		}
		if cfg.Compression == nil || *cfg.Compression {
			t.Errorf("Compression = %v, want false", cfg.Compression)
		}
		if !cfg.InPlaceWrites || cfg.LogLevel != "debug" || !cfg.History.Enabled {
			t.Errorf("Load() = %+v", cfg)
		}
		if cfg.History.Author != "jsondb" {
			t.Errorf("History.Author = %q, want default kept", cfg.History.Author)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{"syntax", "root: [unterminated"},
			{"empty root", `root: ""`},
			{"bad level", "log_level: loud"},
			{"history without author", "history:\n  enabled: true\n  author: \"\"\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "jsondb.yaml")
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
				if _, err := Load(path); err == nil {
					t.Error("Load() succeeded")
				}
			})
		}
	})

	t.Run("save round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jsondb.yaml")
		off := false
		want := Default()
		want.Root = "elsewhere"
		want.Compression = &off
		if err := want.Save(path); err != nil {
			t.Fatal(err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if got.Root != want.Root || got.Compression == nil || *got.Compression {
			t.Errorf("Load() = %+v, want %+v", got, want)
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) succeeded")
	}
}
