package db

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"
)

// Config describes how to reach the database under verification. Either a
// full DSN or host/port components may be given for postgresql; sqlite takes
// a file path. The file holding this config is user-supplied and kept out of
// version control.
type Config struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	// Path is the database file for the sqlite driver.
	Path string `mapstructure:"path" yaml:"path"`
}

// FromMap decodes a configuration mapping (e.g. a viper sub-tree) into a Config.
func FromMap(m map[string]interface{}) (*Config, error) {
	var c Config
	if err := mapstructure.Decode(m, &c); err != nil {
		return nil, fmt.Errorf("db: decode config: %w", err)
	}
	return &c, nil
}

// driverName maps the configured driver to the database/sql driver to open.
func (c *Config) driverName() (string, error) {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case DriverSqlite, "":
		return "sqlite", nil
	case DriverPostgresql, "postgres", "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("db: unsupported driver: %s", c.Driver)
	}
}

// dsn returns the connection string for the configured driver. For
// postgresql an explicit DSN wins; otherwise one is built from components.
func (c *Config) dsn() (string, error) {
	name, err := c.driverName()
	if err != nil {
		return "", err
	}
	if name == "sqlite" {
		path := strings.TrimSpace(c.Path)
		if path == "" {
			path = strings.TrimSpace(c.DSN)
		}
		if path == "" {
			return "", fmt.Errorf("db: sqlite requires path")
		}
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_fk=1", path), nil
	}

	dsn := strings.TrimSpace(c.DSN)
	if dsn == "" && strings.TrimSpace(c.Host) != "" {
		port := c.Port
		if port == 0 {
			port = 5432
		}
		ssl := strings.TrimSpace(c.SSLMode)
		if ssl == "" {
			ssl = "disable"
		}
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			strings.TrimSpace(c.User), strings.TrimSpace(c.Password),
			strings.TrimSpace(c.Host), port, strings.TrimSpace(c.DBName), ssl,
		)
	}
	if dsn == "" {
		return "", fmt.Errorf("db: postgresql requires dsn or host")
	}
	return dsn, nil
}
