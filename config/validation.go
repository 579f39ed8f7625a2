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

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks the configuration for the environment it was loaded in
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if !cfg.MockMode && cfg.OpenRouterAPIKey == "" {
		errs = append(errs, ValidationError{"OPENROUTER_API_KEY", "required unless MOCK_MODE is enabled"})
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET_KEY", "required in " + string(cfg.Environment)})
	}
	if cfg.JWTAlgorithm != "HS256" {
		errs = append(errs, ValidationError{"JWT_ALGORITHM", "only HS256 is supported"})
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.DBSQLitePath == "" {
			errs = append(errs, ValidationError{"DB_SQLITE_PATH", "must not be empty"})
		}
	case DriverPostgres:
		for field, value := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_NAME": cfg.DBName,
			"DB_USER": cfg.DBUser,
		} {
			if value == "" {
				errs = append(errs, ValidationError{field, "required for postgres"})
			}
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	if cfg.AccessTokenHours <= 0 {
		errs = append(errs, ValidationError{"ACCESS_TOKEN_EXPIRE_HOURS", "must be positive"})
	}
	if cfg.MaxImageSize <= 0 {
		errs = append(errs, ValidationError{"MAX_IMAGE_SIZE", "must be positive"})
	}
	if cfg.ImageResizeMax <= 0 {
		errs = append(errs, ValidationError{"IMAGE_RESIZE_MAX", "must be positive"})
	}
	if cfg.MaxRequestsPerDay <= 0 {
		errs = append(errs, ValidationError{"MAX_REQUESTS_PER_DAY", "must be positive"})
	}
	if cfg.AnalysisTimeout <= 0 || cfg.RecipeTimeout <= 0 || cfg.ConnectTimeout <= 0 {
		errs = append(errs, ValidationError{"TIMEOUTS", "must be positive"})
	}
	if len(cfg.AllowedImageTypes) == 0 {
		errs = append(errs, ValidationError{"ALLOWED_IMAGE_TYPES", "must list at least one type"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
