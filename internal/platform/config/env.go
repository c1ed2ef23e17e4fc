// Package config loads process configuration from the environment.
//
// Simulation components are configured exclusively through environment
// variables set by the platform manager; flags exist only as local
// development overrides.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
