package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"discdb/internal/identifier"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBlob(); err != nil {
		return err
	}
	c.normalizeIdentifiers()
	c.normalizeIdentity()
	if c.Fingerprint.DurationGranularitySeconds <= 0 {
		c.Fingerprint.DurationGranularitySeconds = defaultGranularitySecond
	}
	if c.Dedup.CacheSize <= 0 {
		c.Dedup.CacheSize = defaultDedupCacheSize
	}
	if c.Database.BusyTimeoutMS <= 0 {
		c.Database.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		c.Database.Path = filepath.Join(c.Paths.DataDir, defaultDatabaseName)
	}
	if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeBlob() error {
	c.Blob.Backend = strings.ToLower(strings.TrimSpace(c.Blob.Backend))
	if c.Blob.Backend == "" {
		c.Blob.Backend = BlobBackendFile
	}
	var err error
	if strings.TrimSpace(c.Blob.Dir) == "" {
		c.Blob.Dir = filepath.Join(c.Paths.DataDir, defaultBlobDirName)
	}
	if c.Blob.Dir, err = expandPath(c.Blob.Dir); err != nil {
		return fmt.Errorf("blob.dir: %w", err)
	}

	s3 := &c.Blob.S3
	s3.Endpoint = strings.TrimSpace(s3.Endpoint)
	s3.Endpoint = strings.TrimPrefix(strings.TrimPrefix(s3.Endpoint, "https://"), "http://")
	s3.Bucket = strings.TrimSpace(s3.Bucket)
	s3.Region = strings.TrimSpace(s3.Region)
	if s3.Region == "" {
		s3.Region = defaultS3Region
	}
	s3.AccessKey = strings.TrimSpace(s3.AccessKey)
	if s3.AccessKey == "" {
		if value, ok := os.LookupEnv("DISCDB_S3_ACCESS_KEY"); ok {
			s3.AccessKey = strings.TrimSpace(value)
		}
	}
	s3.SecretKey = strings.TrimSpace(s3.SecretKey)
	if s3.SecretKey == "" {
		if value, ok := os.LookupEnv("DISCDB_S3_SECRET_KEY"); ok {
			s3.SecretKey = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeIdentifiers() {
	if c.Identifiers.Salt == "" {
		if value, ok := os.LookupEnv("DISCDB_ID_SALT"); ok {
			c.Identifiers.Salt = value
		}
	}
	c.Identifiers.Alphabet = strings.TrimSpace(c.Identifiers.Alphabet)
	if c.Identifiers.Alphabet == "" {
		c.Identifiers.Alphabet = identifier.DefaultAlphabet
	}
	if c.Identifiers.MinLength < 0 {
		c.Identifiers.MinLength = 0
	}
}

func (c *Config) normalizeIdentity() {
	c.Identity.UserID = strings.TrimSpace(c.Identity.UserID)
	if c.Identity.UserID == "" {
		if value, ok := os.LookupEnv("DISCDB_USER"); ok {
			c.Identity.UserID = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
