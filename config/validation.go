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

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	if cfg.Server.Port == "" {
		errs = append(errs, ValidationError{"server.port", "is required"})
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			errs = append(errs, ValidationError{"database", "host and name are required for postgres"})
		}
	case "sqlite":
		if cfg.Database.Path == "" {
			errs = append(errs, ValidationError{"database.path", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"database.driver", fmt.Sprintf("unsupported driver %q", cfg.Database.Driver)})
	}

	switch cfg.Storage.Backend {
	case "local":
		if cfg.Storage.LocalDir == "" {
			errs = append(errs, ValidationError{"storage.local_dir", "is required for local storage"})
		}
	case "s3":
		if cfg.Storage.Bucket == "" {
			errs = append(errs, ValidationError{"storage.bucket", "is required for s3 storage"})
		}
	default:
		errs = append(errs, ValidationError{"storage.backend", fmt.Sprintf("unsupported backend %q", cfg.Storage.Backend)})
	}

	if cfg.Auth.JWTSecret == "" {
		errs = append(errs, ValidationError{"auth.jwt_secret", "is required"})
	}
	if cfg.Auth.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"auth.token_ttl", "must be positive"})
	}

	if cfg.Pagination.PageSize < 1 || cfg.Pagination.SubscriptionPageSize < 1 {
		errs = append(errs, ValidationError{"pagination", "page sizes must be positive"})
	}
	if cfg.Pagination.MaxPageSize < cfg.Pagination.PageSize {
		errs = append(errs, ValidationError{"pagination.max_page_size", "must not be lower than page_size"})
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.RecipeCreation < 1 || cfg.RateLimit.Window <= 0) {
		errs = append(errs, ValidationError{"rate_limit", "limit and window must be positive when enabled"})
	}

	// Production must not run on development credentials.
	if cfg.Env == Production {
		if cfg.Auth.JWTSecret == DefaultJWTSecret {
			errs = append(errs, ValidationError{"auth.jwt_secret", "must be set in production"})
		}
		if cfg.Database.Driver == "postgres" && cfg.Database.Password == "" {
			errs = append(errs, ValidationError{"database.password", "is required in production"})
		}
	}

	if len(errs) > 0 {
		messages := make([]string, len(errs))
		for i, e := range errs {
			messages[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(messages, "\n"))
	}

	return nil
}
