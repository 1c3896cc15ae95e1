package config

import (
	"fmt"

	"github.com/lgbarn/fairychess-go/internal/errors"
)

// ServerConfig holds settings for the HTTP interface.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`

	// AllowedOrigins lists the CORS origins; empty allows none
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// NewServerConfig creates a ServerConfig with default values.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr: "localhost:8080",
	}
}

// Validate checks that the server configuration is valid.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("server address is empty: %w", errors.ErrInvalidConfig)
	}
	return nil
}
