package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/retention"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// HasField reports whether any error concerns field.
func (e ValidationError) HasField(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// getValidator returns a validator that reports fields by their yaml names.
func getValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	// Struct tag rules
	errs = append(errs, validateTags(cfg)...)

	// Cross-field rules
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateMetadata(&cfg.Metadata)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateRetention(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateTags runs the validate struct tags.
func validateTags(cfg *Config) []FieldError {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "config", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: tagMessage(fe),
		})
	}
	return out
}

// fieldPath turns "Config.storage.backend" into "storage.backend".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "required", "required_if":
		return "field is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// validateStorage validates storage backend requirements.
func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "local":
		if cfg.Local.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.local.path",
				Message: "path is required for local storage",
			})
		}
	case "s3":
		if cfg.S3.Bucket == "" {
			errs = append(errs, FieldError{
				Field:   "storage.s3.bucket",
				Message: "bucket is required for s3 storage",
			})
		}
		if (cfg.S3.AccessKeyID == "") != (cfg.S3.SecretAccessKey == "") {
			errs = append(errs, FieldError{
				Field:   "storage.s3.access_key_id",
				Message: "access_key_id and secret_access_key must be set together",
			})
		}
		if cfg.S3.ArchiveBucket != "" && cfg.S3.ArchiveBucket == cfg.S3.Bucket {
			errs = append(errs, FieldError{
				Field:   "storage.s3.archive_bucket",
				Message: "archive bucket must differ from bucket",
			})
		}
	}

	return errs
}

// validateMetadata validates metadata backend requirements.
func validateMetadata(cfg *MetadataConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "metadata.sqlite.path",
				Message: "path is required for sqlite metadata",
			})
		}
	case "postgres":
		required := []struct{ field, value string }{
			{"metadata.postgres.host", cfg.Postgres.Host},
			{"metadata.postgres.database", cfg.Postgres.Database},
			{"metadata.postgres.user", cfg.Postgres.User},
		}
		for _, r := range required {
			if r.value == "" {
				errs = append(errs, FieldError{
					Field:   r.field,
					Message: "field is required for postgres metadata",
				})
			}
		}
	case "badger":
		if cfg.Badger.Path == "" && !cfg.Badger.InMemory {
			errs = append(errs, FieldError{
				Field:   "metadata.badger.path",
				Message: "path is required unless in_memory is set",
			})
		}
	}

	return errs
}

// validateCache validates cache backend requirements.
func validateCache(cfg *CacheConfig) []FieldError {
	if cfg.Backend != "redis" {
		return nil
	}

	u, err := url.Parse(cfg.Redis.URL)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") || u.Host == "" {
		return []FieldError{{
			Field:   "cache.redis.url",
			Message: fmt.Sprintf("must be a redis:// or rediss:// URL, got %q", cfg.Redis.URL),
		}}
	}
	return nil
}

// validateJournal validates journal backend requirements.
func validateJournal(cfg *JournalConfig) []FieldError {
	switch {
	case cfg.Backend == "file" && cfg.File.Path == "":
		return []FieldError{{Field: "journal.file.path", Message: "path is required for the file journal"}}
	case cfg.Backend == "sqlite" && cfg.SQLite.Path == "":
		return []FieldError{{Field: "journal.sqlite.path", Message: "path is required for the sqlite journal"}}
	}
	return nil
}

// validateRetention checks the schedule and that the policy loads. Unknown
// units and actions are reported here rather than at sweep time.
func validateRetention(cfg *Config) []FieldError {
	var errs []FieldError

	if cfg.Retention.Enabled {
		if err := retention.ValidateSchedule(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "retention.schedule",
				Message: err.Error(),
			})
		}
	}

	if _, err := cfg.RetentionPolicy(); err != nil {
		field := "retention.policy"
		msg := err.Error()
		var cfgErr *ingest.ConfigError
		if errors.As(err, &cfgErr) {
			msg = cfgErr.Message
			if cfg.Retention.RulesFile != "" {
				field = "retention.rules_file"
			} else if strings.HasPrefix(cfgErr.Field, "retention.rules") {
				field = "retention.policy." + strings.TrimPrefix(cfgErr.Field, "retention.")
			}
		}
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	return errs
}
