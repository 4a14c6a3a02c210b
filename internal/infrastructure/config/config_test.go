package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"TERMINUS_ADDR", "LOG_LEVEL", "LOG_FILE", "MAX_LINE_BYTES", "SKIP_MALFORMED", "SESSION_MAX", "SESSION_TTL_MINUTES", "CHART_HEIGHT"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Addr != ":9092" || cfg.LogLevel != "info" || cfg.MaxLineBytes != 1<<20 || cfg.SkipMalformed || cfg.SessionMax != 100 || cfg.ChartHeight != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TERMINUS_ADDR", ":1234")
	t.Setenv("SKIP_MALFORMED", "true")
	t.Setenv("SESSION_MAX", "7")
	t.Setenv("MAX_LINE_BYTES", "not-a-number")
	cfg := FromEnv()
	if cfg.Addr != ":1234" || !cfg.SkipMalformed || cfg.SessionMax != 7 || cfg.MaxLineBytes != 1<<20 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("TERMINUS_ADDR", "")
	path := filepath.Join(t.TempDir(), "terminus.yaml")
	data := "addr: \":7000\"\nskip_malformed: true\nchart_height: 20\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" || !cfg.SkipMalformed || cfg.ChartHeight != 20 || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
