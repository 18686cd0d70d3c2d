package config

import (
	"os"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment.
// CI=true wins; otherwise FOODGRAM_ENV, then ENV, decide.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	env := os.Getenv(EnvPrefix + "ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}

	switch Environment(env) {
	case Production, Test, CI:
		return Environment(env)
	default:
		return Development
	}
}

// IsProduction reports whether the environment is production
func (e Environment) IsProduction() bool {
	return e == Production
}
