package config

import (
	"errors"
	"fmt"
	"strings"

	"discdb/internal/identifier"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBlob(); err != nil {
		return err
	}
	if err := c.validateIdentifiers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Fingerprint.DurationGranularitySeconds <= 0 {
		return errors.New("fingerprint.duration_granularity_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBlob() error {
	switch c.Blob.Backend {
	case BlobBackendFile:
		if strings.TrimSpace(c.Blob.Dir) == "" {
			return errors.New("blob.dir must be set when blob.backend is file")
		}
	case BlobBackendS3:
		if c.Blob.S3.Endpoint == "" {
			return errors.New("blob.s3.endpoint must be set when blob.backend is s3")
		}
		if c.Blob.S3.Bucket == "" {
			return errors.New("blob.s3.bucket must be set when blob.backend is s3")
		}
		if c.Blob.S3.AccessKey == "" || c.Blob.S3.SecretKey == "" {
			return errors.New("blob.s3 credentials are required. Set DISCDB_S3_ACCESS_KEY and DISCDB_S3_SECRET_KEY or edit the config file")
		}
	default:
		return fmt.Errorf("blob.backend: unsupported value %q (want file or s3)", c.Blob.Backend)
	}
	return nil
}

func (c *Config) validateIdentifiers() error {
	if c.Identifiers.Salt == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("identifiers.salt is required. Set DISCDB_ID_SALT env var or edit %s (create with 'discdb config init')", defaultPath)
	}
	if _, err := identifier.New(c.IdentifierOptions()); err != nil {
		return fmt.Errorf("identifiers: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

// IdentifierOptions returns the codec options described by the config.
func (c *Config) IdentifierOptions() identifier.Options {
	return identifier.Options{
		Salt:      c.Identifiers.Salt,
		Alphabet:  c.Identifiers.Alphabet,
		MinLength: c.Identifiers.MinLength,
	}
}
