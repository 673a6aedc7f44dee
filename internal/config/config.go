package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration
type Config struct {
	Similarity SimilarityConfig `yaml:"similarity"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Sync       SyncConfig       `yaml:"sync"`
	Storage    StorageConfig    `yaml:"storage"`
	GitHub     GitHubConfig     `yaml:"github"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimilarityConfig contains scoring weights and ranking defaults. Weights
// are used as given and are not re-normalized.
type SimilarityConfig struct {
	TitleWeight       float64 `yaml:"title_weight"`
	DescriptionWeight float64 `yaml:"description_weight"`
	FilePathWeight    float64 `yaml:"file_path_weight"`
	LabelWeight       float64 `yaml:"label_weight"`
	MinimumThreshold  float64 `yaml:"minimum_threshold"`
	MaxResults        int     `yaml:"max_results"`
}

// AnalysisConfig contains settings for the new-ticket pipeline
type AnalysisConfig struct {
	EnableFilePathMatching bool   `yaml:"enable_file_path_matching"`
	EnableSemanticAnalysis bool   `yaml:"enable_semantic_analysis"`
	MaxHistoricalTickets   int    `yaml:"max_historical_tickets"`
	SemanticCandidates     int    `yaml:"semantic_candidates"`
	CommentTopMatches      int    `yaml:"comment_top_matches"`
	CommentMaxFiles        int    `yaml:"comment_max_files"`
	DuplicateLabel         string `yaml:"duplicate_label"`
}

// SyncConfig contains historical sync settings
type SyncConfig struct {
	Enabled       bool     `yaml:"enabled"`
	IntervalHours int      `yaml:"interval_hours"`
	Concurrency   int      `yaml:"concurrency"`
	Projects      []string `yaml:"projects"`
}

// StorageConfig contains local store settings
type StorageConfig struct {
	Path     string `yaml:"path"`
	PoolSize int    `yaml:"pool_size"`
}

// GitHubConfig contains ticket source settings
type GitHubConfig struct {
	Token             string  `yaml:"token"`
	Host              string  `yaml:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
}

// ProviderConfig contains settings for an embedding provider
type ProviderConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given. Load
// decodes the file on top of it, so keys missing from the file keep these
// values.
func Default() *Config {
	cfg := &Config{
		Similarity: SimilarityConfig{
			TitleWeight:       0.4,
			DescriptionWeight: 0.3,
			FilePathWeight:    0.25,
			LabelWeight:       0.05,
			MinimumThreshold:  0.3,
			MaxResults:        10,
		},
		Analysis: AnalysisConfig{
			EnableFilePathMatching: true,
		},
		Sync: SyncConfig{
			Enabled: true,
		},
		GitHub: GitHubConfig{
			Token: "${GITHUB_TOKEN}",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data over the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// LoadOrDefault loads the config at path, or the defaults when path is
// empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		expandConfigEnvVars(cfg)
		return cfg, nil
	}
	return Load(path)
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	// Check common locations
	paths := []string{
		".github/ticket-dedup.yaml",
		".github/ticket-dedup.yml",
		"ticket-dedup.yaml",
		"ticket-dedup.yml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "ticket-dedup", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// Interval returns the sync interval as a duration
func (c *SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// applyDefaults fills settings whose zero value is never meaningful
func applyDefaults(cfg *Config) {
	if cfg.Similarity.MaxResults == 0 {
		cfg.Similarity.MaxResults = 10
	}
	if cfg.Analysis.MaxHistoricalTickets == 0 {
		cfg.Analysis.MaxHistoricalTickets = 1000
	}
	if cfg.Analysis.SemanticCandidates == 0 {
		cfg.Analysis.SemanticCandidates = 50
	}
	if cfg.Analysis.CommentTopMatches == 0 {
		cfg.Analysis.CommentTopMatches = 5
	}
	if cfg.Analysis.CommentMaxFiles == 0 {
		cfg.Analysis.CommentMaxFiles = 3
	}
	if cfg.Sync.IntervalHours == 0 {
		cfg.Sync.IntervalHours = 24
	}
	if cfg.Sync.Concurrency == 0 {
		cfg.Sync.Concurrency = 1
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "ticket-dedup.db"
	}
	if cfg.Storage.PoolSize == 0 {
		cfg.Storage.PoolSize = 4
	}
	if cfg.GitHub.RequestsPerSecond == 0 {
		cfg.GitHub.RequestsPerSecond = 10
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "tickets"
	}
	if cfg.Embedding.Primary.Dimensions == 0 {
		cfg.Embedding.Primary.Dimensions = 768
	}
	if cfg.Embedding.Fallback.Dimensions == 0 {
		cfg.Embedding.Fallback.Dimensions = 768
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
