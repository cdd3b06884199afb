// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/okushigue/rzqr/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Backend   BackendConfig   `yaml:"backend"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`

	DataDir  string `yaml:"-"` // always absolute
	LogLevel string `yaml:"-"`
	Port     int    `yaml:"-"`
	DevMode  bool   `yaml:"-"`
}

// PipelineConfig holds the per-run defaults
type PipelineConfig struct {
	DecimalDigits   int     `yaml:"decimal_digits"`
	InfluenceRadius float64 `yaml:"influence_radius"`
	ZeroCount       int     `yaml:"zero_count"`
	Shots           int     `yaml:"shots"`
}

// BackendConfig selects where circuits run
type BackendConfig struct {
	Identifier string `yaml:"identifier"`
	URL        string `yaml:"url"` // empty = local simulator
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SimulatorConfig tunes the local simulator
type SimulatorConfig struct {
	Mode string `yaml:"mode"` // exact, sampled
	Seed uint64 `yaml:"seed"`
}

// SchedulerConfig holds the cron triggers
type SchedulerConfig struct {
	Spec            string `yaml:"spec"`             // pipeline runs, empty = none
	MaintenanceSpec string `yaml:"maintenance_spec"` // ledger upkeep
	RetentionDays   int    `yaml:"retention_days"`   // 0 keeps every run
}

// ArtifactsConfig holds the optional S3-compatible export target
type ArtifactsConfig struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
}

// Enabled reports whether artifact export is configured
func (a ArtifactsConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load reads configuration: .env, then the optional YAML file named by
// RZQR_CONFIG_FILE, then environment variables, then defaults.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// radius 0 is a valid setting, so its default is seeded before any overlay
	cfg := &Config{Pipeline: PipelineConfig{InfluenceRadius: domain.DefaultPrecisionConfig().InfluenceRadius}}
	if path := getEnv("RZQR_CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.ApplyDefaults()

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	data = []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables on values already loaded
func (c *Config) applyEnv() {
	c.Pipeline.DecimalDigits = getEnvAsInt("RZQR_DECIMAL_DIGITS", c.Pipeline.DecimalDigits)
	c.Pipeline.InfluenceRadius = getEnvAsFloat("RZQR_INFLUENCE_RADIUS", c.Pipeline.InfluenceRadius)
	c.Pipeline.ZeroCount = getEnvAsInt("RZQR_ZERO_COUNT", c.Pipeline.ZeroCount)
	c.Pipeline.Shots = getEnvAsInt("RZQR_SHOTS", c.Pipeline.Shots)

	c.Backend.Identifier = getEnv("RZQR_BACKEND", c.Backend.Identifier)
	c.Backend.URL = getEnv("RZQR_BACKEND_URL", c.Backend.URL)
	c.Backend.TimeoutSec = getEnvAsInt("RZQR_EXECUTION_TIMEOUT_SEC", c.Backend.TimeoutSec)

	c.Simulator.Mode = getEnv("RZQR_SAMPLING", c.Simulator.Mode)
	c.Simulator.Seed = uint64(getEnvAsInt("RZQR_SEED", int(c.Simulator.Seed)))

	c.Scheduler.Spec = getEnv("PIPELINE_SCHEDULE", c.Scheduler.Spec)
	c.Scheduler.MaintenanceSpec = getEnv("MAINTENANCE_SCHEDULE", c.Scheduler.MaintenanceSpec)
	c.Scheduler.RetentionDays = getEnvAsInt("RUN_RETENTION_DAYS", c.Scheduler.RetentionDays)

	c.Artifacts.Bucket = getEnv("RZQR_ARTIFACT_BUCKET", c.Artifacts.Bucket)
	c.Artifacts.Endpoint = getEnv("RZQR_ARTIFACT_ENDPOINT", c.Artifacts.Endpoint)
	c.Artifacts.Region = getEnv("RZQR_ARTIFACT_REGION", c.Artifacts.Region)
	c.Artifacts.AccessKeyID = getEnv("RZQR_ARTIFACT_ACCESS_KEY_ID", c.Artifacts.AccessKeyID)
	c.Artifacts.SecretAccessKey = getEnv("RZQR_ARTIFACT_SECRET_ACCESS_KEY", c.Artifacts.SecretAccessKey)
	c.Artifacts.Prefix = getEnv("RZQR_ARTIFACT_PREFIX", c.Artifacts.Prefix)

	c.DataDir = getEnv("RZQR_DATA_DIR", c.DataDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnvAsInt("GO_PORT", c.Port)
	c.DevMode = getEnvAsBool("DEV_MODE", c.DevMode)
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	def := domain.DefaultPrecisionConfig()
	if c.Pipeline.DecimalDigits == 0 {
		c.Pipeline.DecimalDigits = def.DecimalDigits
	}
	if c.Pipeline.ZeroCount == 0 {
		c.Pipeline.ZeroCount = def.ZeroCount
	}
	if c.Pipeline.Shots == 0 {
		c.Pipeline.Shots = 1024
	}
	if c.Backend.Identifier == "" {
		c.Backend.Identifier = "local_simulator"
	}
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = 7200
	}
	if c.Simulator.Mode == "" {
		c.Simulator.Mode = "sampled"
	}
	if c.Scheduler.MaintenanceSpec == "" {
		c.Scheduler.MaintenanceSpec = "0 3 * * *"
	}
	if c.Artifacts.Region == "" {
		c.Artifacts.Region = "auto"
	}
	if c.Artifacts.Prefix == "" {
		c.Artifacts.Prefix = "runs"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 8001
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := c.Precision().Validate(); err != nil {
		return err
	}
	if err := domain.CheckShots("config", c.Pipeline.Shots); err != nil {
		return err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Scheduler.RetentionDays < 0 {
		return fmt.Errorf("scheduler.retention_days must not be negative, got %d", c.Scheduler.RetentionDays)
	}
	switch c.Simulator.Mode {
	case "exact", "sampled":
	default:
		return fmt.Errorf("simulator.mode must be \"exact\" or \"sampled\", got %q", c.Simulator.Mode)
	}
	return nil
}

// Precision returns the per-run precision configuration
func (c *Config) Precision() domain.PrecisionConfig {
	p := domain.DefaultPrecisionConfig()
	p.DecimalDigits = c.Pipeline.DecimalDigits
	p.InfluenceRadius = c.Pipeline.InfluenceRadius
	p.ZeroCount = c.Pipeline.ZeroCount
	return p
}

// Retention returns how long finished runs stay in the ledger, 0 for forever
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Scheduler.RetentionDays) * 24 * time.Hour
}

// ExecutionTimeout returns the backend deadline
func (c *Config) ExecutionTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSec) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
