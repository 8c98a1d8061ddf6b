package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitchain/internal/constants"
)

// RateLimit bounds how many times an action may run per window.
type RateLimit struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// RateLimits groups the per-action limits.
type RateLimits struct {
	ChainCreate RateLimit `yaml:"chain_create"`
	ChainUpdate RateLimit `yaml:"chain_update"`
	DataImport  RateLimit `yaml:"data_import"`
}

// Config holds runtime tunables. Values come from defaults, then the YAML
// file, then .env / HABITCHAIN_* environment variables.
type Config struct {
	DataDir       string        `yaml:"-"`
	Backend       string        `yaml:"backend"`
	IntegrityMode string        `yaml:"integrity_mode"`
	EntryMaxAge   time.Duration `yaml:"entry_max_age"` // 0 disables expiry
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxBackups    int           `yaml:"max_backups"`
	Lock          bool          `yaml:"lock"`
	RateLimits    RateLimits    `yaml:"rate_limits"`
}

// Default returns the built-in configuration for dataDir.
func Default(dataDir string) Config {
	return Config{
		DataDir:       dataDir,
		Backend:       constants.BackendSQLite,
		IntegrityMode: constants.IntegrityChecksum,
		PollInterval:  constants.DefaultPollInterval,
		MaxBackups:    constants.MaxBackups,
		Lock:          true,
		RateLimits: RateLimits{
			ChainCreate: RateLimit{Max: constants.DefaultChainCreateMax, Window: constants.DefaultChainCreateWindow},
			ChainUpdate: RateLimit{Max: constants.DefaultChainUpdateMax, Window: constants.DefaultChainUpdateWindow},
			DataImport:  RateLimit{Max: constants.DefaultDataImportMax, Window: constants.DefaultDataImportWindow},
		},
	}
}

// DefaultPath returns the config file location inside dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, constants.DefaultConfigFile)
}

// Load builds the configuration. A missing file at path is not an error.
func Load(dataDir, path string) (Config, error) {
	cfg := Default(dataDir)

	if path == "" {
		path = DefaultPath(dataDir)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv("BACKEND"); ok {
		c.Backend = v
	}
	if v, ok := lookupEnv("INTEGRITY_MODE"); ok {
		c.IntegrityMode = v
	}
	if v, ok := lookupEnv("ENTRY_MAX_AGE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sENTRY_MAX_AGE: %w", constants.EnvPrefix, err)
		}
		c.EntryMaxAge = d
	}
	if v, ok := lookupEnv("POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sPOLL_INTERVAL: %w", constants.EnvPrefix, err)
		}
		c.PollInterval = d
	}
	if v, ok := lookupEnv("LOCK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sLOCK: %w", constants.EnvPrefix, err)
		}
		c.Lock = b
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(constants.EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Validate rejects values the rest of the application cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case constants.BackendSQLite, constants.BackendBadger, constants.BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.IntegrityMode {
	case constants.IntegrityChecksum, constants.IntegrityKeyed:
	default:
		return fmt.Errorf("unknown integrity mode %q", c.IntegrityMode)
	}
	if c.EntryMaxAge < 0 {
		return fmt.Errorf("entry_max_age cannot be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.MaxBackups < 1 {
		return fmt.Errorf("max_backups must be at least 1")
	}
	for name, rl := range map[string]RateLimit{
		"chain_create": c.RateLimits.ChainCreate,
		"chain_update": c.RateLimits.ChainUpdate,
		"data_import":  c.RateLimits.DataImport,
	} {
		if rl.Max < 1 || rl.Window <= 0 {
			return fmt.Errorf("rate_limits.%s needs max >= 1 and a positive window", name)
		}
	}
	return nil
}
