package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serve.Addr != ":9190" {
		t.Fatalf("Serve.Addr = %q", cfg.Serve.Addr)
	}
	if cfg.Demo.Scopes != 8 || cfg.Demo.Keys != 4 {
		t.Fatalf("Demo defaults = %+v", cfg.Demo)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serve.Addr != ":9190" {
		t.Fatalf("Serve.Addr = %q", cfg.Serve.Addr)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scopewatch.yaml")
	body := `
serve:
  addr: ":8088"
demo:
  scopes: 2
  keys: 3
  hold: 1s
  load_time: 50ms
  leak_every: 5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serve.Addr != ":8088" {
		t.Fatalf("Serve.Addr = %q", cfg.Serve.Addr)
	}
	if cfg.Demo.Scopes != 2 || cfg.Demo.Keys != 3 {
		t.Fatalf("Demo = %+v", cfg.Demo)
	}
	if cfg.Demo.Hold != time.Second || cfg.Demo.LoadTime != 50*time.Millisecond {
		t.Fatalf("durations = %+v", cfg.Demo)
	}
	if cfg.Demo.LeakEvery != 5 {
		t.Fatalf("LeakEvery = %d", cfg.Demo.LeakEvery)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("demo:\n  hold: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "demo.hold") {
		t.Fatalf("expected duration parse error, got %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCOPEWATCH_ADDR", ":7070")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serve.Addr != ":7070" {
		t.Fatalf("Serve.Addr = %q", cfg.Serve.Addr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("demo:\n  scopes: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "demo.scopes") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty addr", func(c *Config) { c.Serve.Addr = "" }, false},
		{"zero keys", func(c *Config) { c.Demo.Keys = 0 }, false},
		{"negative hold", func(c *Config) { c.Demo.Hold = -time.Second }, false},
		{"negative load time", func(c *Config) { c.Demo.LoadTime = -1 }, false},
		{"negative leak every", func(c *Config) { c.Demo.LeakEvery = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
