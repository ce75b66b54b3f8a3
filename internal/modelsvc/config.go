// Package modelsvc provides a client for the external embedding model
// service that produces personalized song suggestions.
package modelsvc

import (
	"errors"
	"os"
)

// ErrNotConfigured is returned when MODEL_SERVICE_URL is not set. The
// service is optional; callers treat this as "run without model suggestions".
var ErrNotConfigured = errors.New("missing MODEL_SERVICE_URL environment variable")

// Config holds model service configuration.
type Config struct {
	BaseURL string
}

// LoadConfig reads model service configuration from environment variables.
// Returns ErrNotConfigured if MODEL_SERVICE_URL is not set.
func LoadConfig() (*Config, error) {
	baseURL := os.Getenv("MODEL_SERVICE_URL")
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	return &Config{BaseURL: baseURL}, nil
}
