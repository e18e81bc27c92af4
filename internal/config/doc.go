// Package config loads, normalizes, and validates discdb configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads optional .env files and honours
// environment fallbacks such as DISCDB_ID_SALT. The Config type centralizes
// every knob the CLI and the workflow manager need: storage locations, the
// blob backend, identifier codec parameters and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
