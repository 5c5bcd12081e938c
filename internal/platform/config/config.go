package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL       = "http://localhost:5000"
	DefaultLogLevel         = "warn"
	DefaultMaxResponseBytes = 16 << 20

	// APIURLEnv overrides api_base_url from the config file.
	APIURLEnv = "MEDIBILL_API_URL"
)

type Config struct {
	DataDir string `yaml:"-"`
	DBPath  string `yaml:"-"`

	APIBaseURL       string        `yaml:"api_base_url"`
	LogLevel         string        `yaml:"log_level"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	MaxResponseBytes int64         `yaml:"max_response_bytes"`
}

// Load reads <dataDir>/.medibill/config.yaml. A missing file yields the defaults.
func Load(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	stateDir := filepath.Join(dataDir, ".medibill")
	cfg := Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(stateDir, "medibill.db"),
	}

	raw, err := os.ReadFile(filepath.Join(stateDir, "config.yaml"))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv(APIURLEnv)); v != "" {
		cfg.APIBaseURL = v
	}
	applyDefaults(&cfg)
	if cfg.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("request_timeout must not be negative")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}
}
