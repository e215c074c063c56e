// Package config provides configuration management for strata.
//
// This package handles loading, validating, and defaulting configuration
// from YAML files with environment variable overrides. There is no global
// instance: the caller loads a Config once and passes its sections to each
// component constructor.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("strata.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("strata.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention STRATA_SECTION_FIELD.
// For example:
//
//   - STRATA_STORAGE_BACKEND overrides storage.backend
//   - STRATA_STORAGE_S3_BUCKET overrides storage.s3.bucket
//   - STRATA_PLANNER_WORKERS overrides planner.workers
//
// A malformed value (for example STRATA_PLANNER_WORKERS=four) is a
// validation error.
//
// # Validation
//
// Validation combines validate struct tags (go-playground/validator) with
// cross-field checks. Retention rules are parsed during validation, so an
// unknown unit fails at startup:
//
//	configuration validation failed with 2 errors:
//	  - storage.s3.bucket: bucket is required for s3 storage
//	  - retention.policy.rules[0]: unknown time unit "hours"
//
// # Example Configuration
//
//	storage:
//	  backend: local
//	  local:
//	    path: /var/lib/strata/objects
//
//	metadata:
//	  backend: sqlite
//	  sqlite:
//	    path: /var/lib/strata/metadata.db
//
//	planner:
//	  workers: 8
//	  complex_stages: [gzip]
//
//	retention:
//	  schedule: "0 3 * * *"
//	  policy:
//	    rules:
//	      - {type: age, unit: days, value: 30, action: ARCHIVE}
package config
