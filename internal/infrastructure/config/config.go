package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
	// LogFile receives logs while the terminal UI owns stdout. Empty disables
	// logging in UI mode.
	LogFile         string `yaml:"log_file"`
	CORSAllowOrigin string `yaml:"cors_allow_origin"`
	// Trace loading
	MaxLineBytes  int  `yaml:"max_line_bytes"`
	SkipMalformed bool `yaml:"skip_malformed"`
	// Remote inspection sessions
	SessionMax        int `yaml:"session_max"`
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
	// Terminal UI
	ChartHeight int `yaml:"chart_height"`
}

func FromEnv() Config {
	cfg := Config{
		Addr:            getEnv("TERMINUS_ADDR", ":9092"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
	}
	cfg.MaxLineBytes = getEnvInt("MAX_LINE_BYTES", 1<<20) // 1MB
	cfg.SkipMalformed = getEnvBool("SKIP_MALFORMED", false)
	cfg.SessionMax = getEnvInt("SESSION_MAX", 100)
	cfg.SessionTTLMinutes = getEnvInt("SESSION_TTL_MINUTES", 60)
	cfg.ChartHeight = getEnvInt("CHART_HEIGHT", 10)
	return cfg
}

// Load starts from the environment and overlays the YAML file at path, if
// any. Keys absent from the file keep their environment values.
func Load(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return def
}
