package testsupport

import (
	"path/filepath"
	"testing"

	"discdb/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Database.Path = filepath.Join(base, "data", "discdb.db")
	cfgVal.Blob.Dir = filepath.Join(base, "data", "blobs")
	cfgVal.Identifiers.Salt = "test-salt"
	cfgVal.Identity.UserID = "tester"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithSalt overrides the identifier salt.
func WithSalt(salt string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Identifiers.Salt = salt
	}
}

// WithUser overrides the configured caller identity.
func WithUser(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Identity.UserID = id
	}
}

// WithGranularity sets the fingerprint duration step in seconds.
func WithGranularity(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fingerprint.DurationGranularitySeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
