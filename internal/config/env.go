package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if env var not set
	})
}

// expandSecret expands a secret field and drops placeholders left
// unresolved, so an unset variable reads as "not configured".
func expandSecret(s string) string {
	s = expandEnvVars(s)
	if envVarPattern.MatchString(s) {
		return ""
	}
	return s
}

// expandConfigEnvVars expands environment variables in config string fields
func expandConfigEnvVars(cfg *Config) {
	cfg.GitHub.Token = expandSecret(cfg.GitHub.Token)
	cfg.Qdrant.URL = expandEnvVars(cfg.Qdrant.URL)
	cfg.Qdrant.APIKey = expandSecret(cfg.Qdrant.APIKey)
	cfg.Embedding.Primary.APIKey = expandSecret(cfg.Embedding.Primary.APIKey)
	cfg.Embedding.Fallback.APIKey = expandSecret(cfg.Embedding.Fallback.APIKey)
	cfg.Storage.Path = expandEnvVars(cfg.Storage.Path)
}
