// Package config loads gridnav settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/gridnav/internal/pathfind"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// EnvPath names the environment variable overriding the config file path.
const EnvPath = "GRIDNAV_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/gridnav.yaml"

// Table storage backends.
const (
	BackendNone     = "none"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Gridnav holds all configuration for the gridnav binaries.
type Gridnav struct {
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	Maps        MapsConfig        `yaml:"maps"`
	Tables      TablesConfig      `yaml:"tables"`
	Database    DatabaseConfig    `yaml:"database"`
	LogLevel    string            `yaml:"log_level"`
}

// PathfindingConfig selects the search strategy.
type PathfindingConfig struct {
	Algorithm     string `yaml:"algorithm"` // astar, jps, jps+
	Heuristic     string `yaml:"heuristic"` // manhattan, octile
	MaxExpansions int    `yaml:"max_expansions"`
}

// MapsConfig locates map files.
type MapsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// TablesConfig controls JPS+ table persistence.
type TablesConfig struct {
	Backend        string `yaml:"backend"` // none, file, postgres
	Dir            string `yaml:"dir"`
	RebuildMissing bool   `yaml:"rebuild_missing"`
	Workers        int    `yaml:"workers"` // 0 = GOMAXPROCS
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultGridnav returns config with sensible defaults.
func DefaultGridnav() Gridnav {
	return Gridnav{
		Pathfinding: PathfindingConfig{
			Algorithm: "jps+",
			Heuristic: "manhattan",
		},
		Maps: MapsConfig{
			Dir: "data/maps",
		},
		Tables: TablesConfig{
			Backend:        BackendFile,
			Dir:            "data/tables",
			RebuildMissing: true,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gridnav",
			Password: "gridnav",
			DBName:   "gridnav",
			SSLMode:  "disable",
		},
		LogLevel: "info",
	}
}

// LoadGridnav loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGridnav(path string) (Gridnav, error) {
	cfg := DefaultGridnav()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the config file path from EnvPath or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Validate checks enumerated settings.
func (c Gridnav) Validate() error {
	if _, _, err := c.Pathfinding.Parse(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Pathfinding.MaxExpansions < 0 {
		return fmt.Errorf("%w: pathfinding.max_expansions must not be negative", ErrInvalid)
	}
	switch c.Tables.Backend {
	case BackendNone, BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("%w: tables.backend %q", ErrInvalid, c.Tables.Backend)
	}
	if c.Tables.Backend == BackendFile && c.Tables.Dir == "" {
		return fmt.Errorf("%w: tables.dir is required for the file backend", ErrInvalid)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Parse resolves the algorithm and heuristic names.
func (c PathfindingConfig) Parse() (pathfind.Algorithm, pathfind.Heuristic, error) {
	a, err := pathfind.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return 0, 0, fmt.Errorf("pathfinding.algorithm: %w", err)
	}
	h, err := pathfind.ParseHeuristic(c.Heuristic)
	if err != nil {
		return 0, 0, fmt.Errorf("pathfinding.heuristic: %w", err)
	}
	return a, h, nil
}

// Level returns the slog level named by LogLevel. Unknown names map to Info.
func (c Gridnav) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", s, err)
	}
	return l, nil
}
