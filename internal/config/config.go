package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DBDriver string `yaml:"db_driver"` // sqlite|postgres|memory
	DBDSN    string `yaml:"db_dsn"`

	BlobBasePath string `yaml:"blob_base_path"`

	CORSOrigins []string `yaml:"cors_origins"`

	MaxInputBytes  int  `yaml:"max_input_bytes"`
	BatchWorkers   int  `yaml:"batch_workers"`
	StrictSubcount bool `yaml:"strict_subcount"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		HTTPAddr:       ":8080",
		DBDriver:       "sqlite",
		BlobBasePath:   "./data",
		CORSOrigins:    []string{"http://localhost:3000"},
		MaxInputBytes:  1 << 20,
		BatchWorkers:   0, // GOMAXPROCS
		StrictSubcount: true,
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// EXBANK_CONFIG (if set), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("EXBANK_CONFIG"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// FromEnv is Defaults overlaid with environment variables only.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.DBDriver = envOr("DB_DRIVER", c.DBDriver)
	c.DBDSN = envOr("DB_DSN", c.DBDSN)
	c.BlobBasePath = envOr("BLOB_BASE_PATH", c.BlobBasePath)
	c.CORSOrigins = csvOr("CORS_ORIGINS", c.CORSOrigins)
	c.MaxInputBytes = envInt("MAX_INPUT_BYTES", c.MaxInputBytes)
	c.BatchWorkers = envInt("BATCH_WORKERS", c.BatchWorkers)
	c.StrictSubcount = envBool("STRICT_SUBCOUNT", c.StrictSubcount)
	c.Log.Level = envOr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("LOG_FORMAT", c.Log.Format)
}

// NewLogger builds the process logger described by c.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}
func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
