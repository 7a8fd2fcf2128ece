package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/likearthian/recordstore"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "pgx"
	DriverSqlite   = "sqlite3"
)

type Config struct {
	Storage struct {
		// pgx | sqlite3
		Driver string `yaml:"driver"`
		// Connection string for pgx, file path for sqlite3.
		DSN      string `yaml:"dsn"`
		MaxConns int    `yaml:"max_conns"`
		MinConns int    `yaml:"min_conns"`
	} `yaml:"storage"`

	Table recordstore.TableDef `yaml:"table"`

	Log struct {
		// dev | prod
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the YAML file at path, applies defaults and then environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()

	// sane defaults
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	if c.Log.Env == "" {
		c.Log.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Table = c.Table.WithDefaults()

	return &c, nil
}

// LoadEnvFile loads variables from a dotenv file without overriding the
// ones already set. A missing file is only an error when required.
func LoadEnvFile(path string, required bool) error {
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("RECORDSTORE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("RECORDSTORE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("RECORDSTORE_TABLE"); ok {
		c.Table.Name = v
	}
	if v, ok := getEnvInt("RECORDSTORE_MAX_CONNS"); ok {
		c.Storage.MaxConns = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.Log.Env = v
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverSqlite:
	default:
		return fmt.Errorf("storage.driver: %w: %q", recordstore.ErrUnsupportedDriver, c.Storage.Driver)
	}

	if strings.TrimSpace(c.Storage.DSN) == "" {
		return errors.New("storage.dsn is required")
	}
	if c.Storage.MaxConns < 0 || c.Storage.MinConns < 0 {
		return errors.New("storage pool sizes must not be negative")
	}
	if c.Storage.MaxConns > 0 && c.Storage.MinConns > c.Storage.MaxConns {
		return errors.New("storage.min_conns must not exceed storage.max_conns")
	}

	return c.Table.Validate()
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}
