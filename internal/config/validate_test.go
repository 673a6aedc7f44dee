package config

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(cfg *Config)
		wantFields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name: "negative weight",
			mutate: func(cfg *Config) {
				cfg.Similarity.LabelWeight = -0.1
			},
			wantFields: []string{"similarity.label_weight"},
		},
		{
			name: "threshold out of range",
			mutate: func(cfg *Config) {
				cfg.Similarity.MinimumThreshold = 1.5
			},
			wantFields: []string{"similarity.minimum_threshold"},
		},
		{
			name: "bad project key",
			mutate: func(cfg *Config) {
				cfg.Sync.Projects = []string{"org/app", "justrepo"}
			},
			wantFields: []string{"sync.projects[1]"},
		},
		{
			name: "bad log level",
			mutate: func(cfg *Config) {
				cfg.Logging.Level = "verbose"
			},
			wantFields: []string{"logging.level"},
		},
		{
			name: "semantic analysis needs qdrant and embeddings",
			mutate: func(cfg *Config) {
				cfg.Analysis.EnableSemanticAnalysis = true
			},
			wantFields: []string{"qdrant.url", "embedding.primary.provider", "embedding.primary.api_key"},
		},
		{
			name: "semantic analysis with unknown provider",
			mutate: func(cfg *Config) {
				cfg.Analysis.EnableSemanticAnalysis = true
				cfg.Qdrant.URL = "http://localhost:6334"
				cfg.Embedding.Primary.Provider = "cohere"
				cfg.Embedding.Primary.APIKey = "key"
			},
			wantFields: []string{"embedding.primary.provider"},
		},
		{
			name: "qdrant not required without semantic analysis",
			mutate: func(cfg *Config) {
				cfg.Qdrant.URL = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := Validate(cfg)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Validate() returned %d errors (%v), want %d", len(errs), errs, len(tt.wantFields))
			}
			for i, err := range errs {
				var ve ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("error %d is %T, want ValidationError", i, err)
				}
				if ve.Field != tt.wantFields[i] {
					t.Errorf("error %d field = %q, want %q", i, ve.Field, tt.wantFields[i])
				}
			}
		})
	}
}
