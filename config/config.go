package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	LogLevel string         `yaml:"log_level"`
	PageSize int            `yaml:"page_size"`
}

type DatabaseConfig struct {
	// Driver is either "sqlite" (embedded, file backed) or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file. ":memory:" opens a private
	// in-memory database.
	Path string `yaml:"path"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	UseSSL   bool   `yaml:"use_ssl"`
}

// Target returns a human readable identifier of the configured store. It
// never includes credentials.
func (d DatabaseConfig) Target() string {
	if d.Driver == DriverPostgres {
		return fmt.Sprintf("postgres://%s:%d/%s", d.Host, d.Port, d.DBName)
	}
	return d.Path
}

func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "./ptyxes.db",
			Host:   "localhost",
			Port:   5432,
			User:   "ptyxes",
			DBName: "ptyxes",
		},
		LogLevel: "info",
		PageSize: 10,
	}
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

// LoadFile reads a YAML config file and then applies environment
// overrides. An empty path behaves like LoadConfig. Either way the result
// is validated.
func LoadFile(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		cfg := LoadConfig()
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database path is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.Host) == "" || strings.TrimSpace(c.Database.DBName) == "" {
			return fmt.Errorf("database host and name are required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.UseSSL = getEnv("DB_SSL", boolString(cfg.Database.UseSSL)) == "true"
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
