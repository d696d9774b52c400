package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"github.com/fpang/disk-explorer/internal/thumbnail"
)

// unsetEnv clears key for the test and restores it afterwards, including
// when something other than t.Setenv writes it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if got := cfg.Server.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Server.Addr() = %q, want 127.0.0.1:8080", got)
	}
	if cfg.Server.MaxConcurrentThumbnails != 4 {
		t.Errorf("MaxConcurrentThumbnails = %d, want 4", cfg.Server.MaxConcurrentThumbnails)
	}
	if !cfg.Server.Gzip {
		t.Error("Gzip = false, want true")
	}
	if got, want := cfg.Thumbnail.Generator(), thumbnail.DefaultConfig(); got != want {
		t.Errorf("Thumbnail.Generator() = %+v, want %+v", got, want)
	}
	if cfg.Volumes.Source != "platform" {
		t.Errorf("Volumes.Source = %q, want platform", cfg.Volumes.Source)
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want none", cfg.Server.AllowedOrigins)
	}
	if len(cfg.Server.AllowedHosts) != 0 {
		t.Errorf("AllowedHosts = %v, want none", cfg.Server.AllowedHosts)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DISK_EXPLORER_SERVER_PORT", "9000")
	t.Setenv("DISK_EXPLORER_THUMBNAIL_FILTER", "mitchell")
	t.Setenv("DISK_EXPLORER_LOG_LEVEL", "debug")
	t.Setenv("DISK_EXPLORER_SERVER_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Thumbnail.Filter != "mitchell" {
		t.Errorf("Filter = %q, want mitchell", cfg.Thumbnail.Filter)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Server.AllowedOrigins, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 7000
  allowed_origins:
    - http://localhost:5173
  allowed_hosts:
    - explorer.lan
thumbnail:
  width: 160
  quality: 75
volumes:
  source: partitions
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Thumbnail.Width != 160 || cfg.Thumbnail.Quality != 75 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want default preserved", cfg.Server.Host)
	}
	if cfg.Volumes.Source != "partitions" {
		t.Errorf("Volumes.Source = %q, want partitions", cfg.Volumes.Source)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if len(cfg.Server.AllowedHosts) != 1 || cfg.Server.AllowedHosts[0] != "explorer.lan" {
		t.Errorf("AllowedHosts = %v", cfg.Server.AllowedHosts)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DISK_EXPLORER_SERVER_PORT", "7100")

	cfg, err := Load(Options{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Port = %d, want 7100", cfg.Server.Port)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadEnvFile(t *testing.T) {
	unsetEnv(t, "DISK_EXPLORER_THUMBNAIL_WIDTH")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DISK_EXPLORER_THUMBNAIL_WIDTH=128\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{EnvFile: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Thumbnail.Width != 128 {
		t.Errorf("Width = %d, want 128", cfg.Thumbnail.Width)
	}
}

func TestLoadExplicitEnvFileMissing(t *testing.T) {
	if _, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Error("expected error for missing explicit env file")
	}
}

func TestLoadFlags(t *testing.T) {
	t.Setenv("DISK_EXPLORER_SERVER_PORT", "9000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.String("host", "127.0.0.1", "")
	flags.Int("width", 100, "")
	if err := flags.Parse([]string{"--port", "9100", "--width", "50"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{Flags: flags})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want flag value 9100", cfg.Server.Port)
	}
	if cfg.Thumbnail.Width != 50 {
		t.Errorf("Width = %d, want 50", cfg.Thumbnail.Width)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want default", cfg.Server.Host)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero width", "DISK_EXPLORER_THUMBNAIL_WIDTH", "0"},
		{"quality too high", "DISK_EXPLORER_THUMBNAIL_QUALITY", "101"},
		{"unknown filter", "DISK_EXPLORER_THUMBNAIL_FILTER", "bilinear"},
		{"port out of range", "DISK_EXPLORER_SERVER_PORT", "70000"},
		{"no concurrency", "DISK_EXPLORER_SERVER_MAX_CONCURRENT_THUMBNAILS", "0"},
		{"unknown volume source", "DISK_EXPLORER_VOLUMES_SOURCE", "nfs"},
		{"unknown log level", "DISK_EXPLORER_LOG_LEVEL", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(Options{}); err == nil {
				t.Errorf("Load() with %s=%s: expected error", tt.key, tt.val)
			}
		})
	}
}
