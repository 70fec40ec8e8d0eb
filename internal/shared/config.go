package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/moodset/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	// MaxFeatureBatch is the most ids the audio-features endpoint accepts per call.
	MaxFeatureBatch = 100
	// MaxInfoBatch is the most ids the several-tracks endpoint accepts per call.
	MaxInfoBatch = 50
	// MaxSearchLimit is the catalog's page size ceiling for search.
	MaxSearchLimit = 50
)

const (
	PolicyFailFast = "fail_fast"
	PolicySkip     = "skip"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig   `toml:"credentials"`
	Catalog     CatalogConfig       `toml:"catalog"`
	Pipeline    PipelineConfig      `toml:"pipeline"`
	Keywords    map[string][]string `toml:"keywords"`
	Output      OutputConfig        `toml:"output"`
	Database    DatabaseConfig      `toml:"database"`
	Server      ServerConfig        `toml:"server"`
	Logging     LoggingConfig       `toml:"logging"`

	dir string
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the client-credentials pair for the catalog.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// CatalogConfig controls how the catalog client talks to the remote API.
type CatalogConfig struct {
	BaseURL           string  `toml:"base_url"`
	TokenURL          string  `toml:"token_url"`
	Market            string  `toml:"market"`
	SearchLimit       int     `toml:"search_limit"`
	FeatureBatchSize  int     `toml:"feature_batch_size"`
	InfoBatchSize     int     `toml:"info_batch_size"`
	RateLimit         float64 `toml:"rate_limit"`
	MaxRetries        int     `toml:"max_retries"`
	RequestTimeoutSec int     `toml:"request_timeout_sec"`
}

// RequestTimeout returns the per-request deadline, or zero when unset.
func (c CatalogConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// PipelineConfig holds the collection run's concurrency knobs.
type PipelineConfig struct {
	Workers       int    `toml:"workers"`
	FetchWorkers  int    `toml:"fetch_workers"`
	Deterministic bool   `toml:"deterministic"`
	FailurePolicy string `toml:"failure_policy"`
	KeywordsFile  string `toml:"keywords_file"`
}

// OutputConfig points at the dataset file written by collect.
type OutputConfig struct {
	Path     string `toml:"path"`
	Format   string `toml:"format"`
	Manifest bool   `toml:"manifest"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr joins host and port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads a TOML file over the embedded defaults, so omitted keys keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Keywords = nil
	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}
	if !md.IsDefined("keywords") && config.Pipeline.KeywordsFile == "" {
		config.Keywords = DefaultConfig().Keywords
	}
	config.dir = filepath.Dir(path)

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks ranges that the collector relies on.
func (c *Config) Validate() error {
	cat := c.Catalog
	switch {
	case cat.SearchLimit < 1 || cat.SearchLimit > MaxSearchLimit:
		return fmt.Errorf("%w: catalog.search_limit must be within 1..%d, got %d", ErrInvalidConfig, MaxSearchLimit, cat.SearchLimit)
	case cat.FeatureBatchSize < 1 || cat.FeatureBatchSize > MaxFeatureBatch:
		return fmt.Errorf("%w: catalog.feature_batch_size must be within 1..%d, got %d", ErrInvalidConfig, MaxFeatureBatch, cat.FeatureBatchSize)
	case cat.InfoBatchSize < 1 || cat.InfoBatchSize > MaxInfoBatch:
		return fmt.Errorf("%w: catalog.info_batch_size must be within 1..%d, got %d", ErrInvalidConfig, MaxInfoBatch, cat.InfoBatchSize)
	case cat.RateLimit < 0:
		return fmt.Errorf("%w: catalog.rate_limit must not be negative", ErrInvalidConfig)
	case c.Pipeline.Workers < 1:
		return fmt.Errorf("%w: pipeline.workers must be at least 1", ErrInvalidConfig)
	case !slices.Contains([]string{PolicyFailFast, PolicySkip}, c.Pipeline.FailurePolicy):
		return fmt.Errorf("%w: pipeline.failure_policy must be %q or %q, got %q", ErrInvalidConfig, PolicyFailFast, PolicySkip, c.Pipeline.FailurePolicy)
	case !slices.Contains([]string{"csv", "json"}, c.Output.Format):
		return fmt.Errorf("%w: output.format must be csv or json, got %q", ErrInvalidConfig, c.Output.Format)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// RequireCredentials reports [ErrMissingCredentials] when either half of the client pair is empty.
func (c *Config) RequireCredentials() error {
	sp := c.Credentials.Spotify
	if sp.ClientID == "" || sp.ClientSecret == "" {
		return fmt.Errorf("%w: set credentials.spotify or CLIENT_ID/CLIENT_SECRET", ErrMissingCredentials)
	}
	return nil
}

// KeywordCatalog builds the label → phrases catalog, preferring keywords_file when set.
//
// Labels from the [keywords] table are ordered lexically; a YAML file keeps document order.
func (c *Config) KeywordCatalog() (*models.KeywordCatalog, error) {
	if file := c.Pipeline.KeywordsFile; file != "" {
		if !filepath.IsAbs(file) && c.dir != "" {
			file = filepath.Join(c.dir, file)
		}
		return LoadKeywordsFile(file)
	}

	catalog := models.NewKeywordCatalog()
	labels := make([]string, 0, len(c.Keywords))
	for label := range c.Keywords {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	for _, label := range labels {
		catalog.Add(label, c.Keywords[label]...)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return catalog, nil
}
