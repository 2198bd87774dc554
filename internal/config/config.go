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
)

const (
	insecureJWTSecret = "supersecretkey"

	defaultBackupRetention = 10
)

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	Backup         BackupConfig  `yaml:"backup"`
	Log            LogConfig     `yaml:"log"`
}

type BackupConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Dir       string `yaml:"dir"`
	Retention int    `yaml:"retention"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig builds the configuration from defaults, a .env file (if present),
// CAND_* environment variables and finally the optional YAML file at path.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:           getEnv("CAND_ADDR", ":8080"),
		JWTSecret:      getEnv("CAND_JWT_SECRET", insecureJWTSecret),
		APITimeout:     getEnvDuration("CAND_TIMEOUT", 15*time.Second),
		DatabasePath:   getEnv("CAND_DATABASE_PATH", "candidatures.db"),
		TokenDuration:  getEnvDuration("CAND_TOKEN_DURATION", 24*time.Hour),
		MigrateOnStart: getEnvBool("CAND_MIGRATE_ON_START", true),
		Backup: BackupConfig{
			Enabled:   getEnvBool("CAND_BACKUP_ENABLED", true),
			Dir:       os.Getenv("CAND_BACKUP_DIR"),
			Retention: defaultBackupRetention,
		},
		Log: LogConfig{
			Level:  getEnv("CAND_LOG_LEVEL", "info"),
			Format: getEnv("CAND_LOG_FORMAT", "text"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration and fills derived defaults.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && os.Getenv("CAND_ENV") != "development" {
		return errors.New("jwt_secret uses the insecure default; set CAND_JWT_SECRET or CAND_ENV=development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 24 * time.Hour
	}
	if c.Backup.Retention < 0 {
		return fmt.Errorf("backup.retention must be positive, got %d", c.Backup.Retention)
	}
	if c.Backup.Retention == 0 {
		c.Backup.Retention = defaultBackupRetention
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(filepath.Dir(c.DatabasePath), "backups")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return def
}
