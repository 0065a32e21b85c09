// Package config loads the YAML (or TOML) settings shared by the repository
// cloner and the dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/pkg/contains"
	"github.com/Hila-Propack/eto-manufacturing-dashboard/relevance"
)

const (
	TokenEnvVar       = "GITHUB_TOKEN"
	DatabaseURLEnvVar = "DATABASE_URL"
)

// DateRanges lists the accepted search.date_range values.
var DateRanges = []string{"week", "month", "quarter", "year"}

// Config is the root configuration document.
type Config struct {
	Search      SearchConfig    `yaml:"search" toml:"search"`
	Clone       CloneConfig     `yaml:"clone" toml:"clone"`
	Export      ExportConfig    `yaml:"export" toml:"export"`
	GitHubToken string          `yaml:"github_token" toml:"github_token"`
	Ledger      LedgerConfig    `yaml:"ledger" toml:"ledger"`
	Logging     LoggingConfig   `yaml:"logging" toml:"logging"`
	Dashboard   DashboardConfig `yaml:"dashboard" toml:"dashboard"`

	// File is the path the configuration was read from, if any.
	File string `yaml:"-" toml:"-"`
}

type SearchConfig struct {
	Query                string   `yaml:"query" toml:"query"`
	IndustryKeywords     []string `yaml:"industry_keywords" toml:"industry_keywords"`
	MinStars             int      `yaml:"min_stars" toml:"min_stars"`
	Languages            []string `yaml:"languages" toml:"languages"`
	MaxResults           int      `yaml:"max_results" toml:"max_results"`
	MinIndustryRelevance float64  `yaml:"min_industry_relevance" toml:"min_industry_relevance"`
	DateRange            string   `yaml:"date_range" toml:"date_range"`
}

type CloneConfig struct {
	Directory       string `yaml:"directory" toml:"directory"`
	MaxRepositories int    `yaml:"max_repositories" toml:"max_repositories"`
	SortBy          string `yaml:"sort_by" toml:"sort_by"`
}

type ExportConfig struct {
	JSONFile string `yaml:"json_file" toml:"json_file"`
	CSVFile  string `yaml:"csv_file" toml:"csv_file"`
}

// LedgerConfig points at the optional bolt file recording each run.
type LedgerConfig struct {
	File string `yaml:"file" toml:"file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text, json
}

type DashboardConfig struct {
	Addr        string `yaml:"addr" toml:"addr"`
	DatabaseURL string `yaml:"database_url" toml:"database_url"`
	Refresh     string `yaml:"refresh" toml:"refresh"` // cron spec
}

// Default returns the compiled-in defaults.
func Default() *Config {
	cfg := &Config{
		Search: SearchConfig{
			MaxResults: 100,
		},
		Clone: CloneConfig{
			Directory:       "cloned_repos",
			MaxRepositories: 10,
			SortBy:          "stars",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Dashboard: DashboardConfig{
			Addr:    "127.0.0.1:8050",
			Refresh: "@every 5m",
		},
	}
	return cfg
}

// Load reads the configuration file at path on top of the defaults, then
// applies environment overrides.  A missing or malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %v", path)
		}
		return nil, fmt.Errorf("reading configuration %q: %s", path, err)
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration %q: %s", path, err)
	}
	cfg.File = path

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %s", path, err)
	}
	return cfg, nil
}

// LoadOptional is like Load, except an empty path yields the defaults (plus
// environment overrides) instead of an error.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return Load(path)
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// applyEnvOverrides lets the environment take precedence over file values
// for credentials and connection strings.
func (cfg *Config) applyEnvOverrides() {
	if token := os.Getenv(TokenEnvVar); token != "" {
		cfg.GitHubToken = token
	}
	if dsn := os.Getenv(DatabaseURLEnvVar); dsn != "" {
		cfg.Dashboard.DatabaseURL = dsn
	}
}

// Token returns the resolved GitHub credential.
func (cfg *Config) Token() string {
	return cfg.GitHubToken
}

// Validate checks values which cannot be sensibly defaulted.
func (cfg *Config) Validate() error {
	if r := cfg.Search.MinIndustryRelevance; r < 0 || r > 1 {
		return fmt.Errorf("search.min_industry_relevance must be within [0.0, 1.0], got %v", r)
	}
	if cfg.Search.MinStars < 0 {
		return fmt.Errorf("search.min_stars must not be negative, got %v", cfg.Search.MinStars)
	}
	if dr := cfg.Search.DateRange; dr != "" && !contains.StringFold(DateRanges, dr) {
		return fmt.Errorf("search.date_range must be one of %v, got %q", DateRanges, dr)
	}
	return nil
}

// SortKey resolves clone.sort_by.  Unrecognized values are not an error;
// they fall back to sorting by stars with a warning.
func (cfg *Config) SortKey() relevance.SortKey {
	sb := cfg.Clone.SortBy
	key := relevance.ParseSortKey(sb)
	if sb != "" && !contains.String(relevance.SortKeyNames, strings.ToLower(strings.TrimSpace(sb))) {
		log.WithField("sort-by", sb).Warnf("Unrecognized clone.sort_by, sorting by %v", key)
	}
	return key
}

// Keywords returns the configured industry keyword set.
func (cfg *Config) Keywords() relevance.Keywords {
	return relevance.NewKeywords(cfg.Search.IndustryKeywords...)
}
