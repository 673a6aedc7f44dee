package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	// Validate similarity settings
	weights := []struct {
		field string
		value float64
	}{
		{"similarity.title_weight", cfg.Similarity.TitleWeight},
		{"similarity.description_weight", cfg.Similarity.DescriptionWeight},
		{"similarity.file_path_weight", cfg.Similarity.FilePathWeight},
		{"similarity.label_weight", cfg.Similarity.LabelWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			errs = append(errs, ValidationError{w.field, "must not be negative"})
		}
	}

	if cfg.Similarity.MinimumThreshold < 0 || cfg.Similarity.MinimumThreshold > 1 {
		errs = append(errs, ValidationError{"similarity.minimum_threshold", "must be between 0 and 1"})
	}
	if cfg.Similarity.MaxResults < 0 {
		errs = append(errs, ValidationError{"similarity.max_results", "must not be negative"})
	}

	// Validate analysis settings
	if cfg.Analysis.MaxHistoricalTickets < 0 {
		errs = append(errs, ValidationError{"analysis.max_historical_tickets", "must not be negative"})
	}

	// Validate sync settings
	if cfg.Sync.IntervalHours < 0 {
		errs = append(errs, ValidationError{"sync.interval_hours", "must not be negative"})
	}
	if cfg.Sync.Concurrency < 0 {
		errs = append(errs, ValidationError{"sync.concurrency", "must not be negative"})
	}
	for i, project := range cfg.Sync.Projects {
		parts := strings.Split(project, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("sync.projects[%d]", i), "must be in format 'owner/repo'"})
		}
	}

	if cfg.GitHub.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{"github.requests_per_second", "must not be negative"})
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{"logging.level", "must be one of debug, info, warn, error"})
	}

	// Qdrant and embeddings are only needed for semantic analysis
	if cfg.Analysis.EnableSemanticAnalysis {
		if cfg.Qdrant.URL == "" {
			errs = append(errs, ValidationError{"qdrant.url", "required when semantic analysis is enabled"})
		}

		if cfg.Embedding.Primary.Provider == "" {
			errs = append(errs, ValidationError{"embedding.primary.provider", "required when semantic analysis is enabled"})
		} else if !validProvider(cfg.Embedding.Primary.Provider) {
			errs = append(errs, ValidationError{"embedding.primary.provider", "must be 'gemini' or 'openai'"})
		}

		if cfg.Embedding.Primary.APIKey == "" {
			errs = append(errs, ValidationError{"embedding.primary.api_key", "required when semantic analysis is enabled"})
		}

		if p := cfg.Embedding.Fallback.Provider; p != "" && !validProvider(p) {
			errs = append(errs, ValidationError{"embedding.fallback.provider", "must be 'gemini' or 'openai'"})
		}
	}

	return errs
}

func validProvider(p string) bool {
	return p == "gemini" || p == "openai"
}
