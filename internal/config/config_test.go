package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"discdb/internal/config"
	"discdb/internal/services"
)

func TestLoadDefaultConfigUsesEnvSaltAndExpandsPaths(t *testing.T) {
	t.Setenv("DISCDB_ID_SALT", "test-salt")
	t.Setenv("DISCDB_USER", "alice")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "discdb")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Database.Path != filepath.Join(wantData, "discdb.db") {
		t.Fatalf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.Blob.Backend != config.BlobBackendFile || cfg.Blob.Dir != filepath.Join(wantData, "blobs") {
		t.Fatalf("unexpected blob config: %+v", cfg.Blob)
	}
	if cfg.Identifiers.Salt != "test-salt" {
		t.Fatalf("expected salt from env, got %q", cfg.Identifiers.Salt)
	}
	if cfg.Identity.UserID != "alice" {
		t.Fatalf("expected user from env, got %q", cfg.Identity.UserID)
	}
	if cfg.FingerprintGranularity() != time.Second {
		t.Fatalf("unexpected granularity: %s", cfg.FingerprintGranularity())
	}
	if cfg.LogFilePath() != filepath.Join(wantData, "logs", "discdb.log") {
		t.Fatalf("unexpected log file path: %q", cfg.LogFilePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Blob.Dir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist", dir)
		}
	}
}

func TestLoadRequiresSalt(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DISCDB_ID_SALT", "")
	os.Unsetenv("DISCDB_ID_SALT")
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected missing salt error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "identifiers.salt") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "discdb.toml")

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Identifiers.Salt = "file-salt"
	cfg.Identifiers.MinLength = 10
	cfg.Fingerprint.DurationGranularitySeconds = 5
	cfg.Logging.Format = "JSON"
	cfg.Logging.Level = "DEBUG"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if loaded.Identifiers.Salt != "file-salt" || loaded.Identifiers.MinLength != 10 {
		t.Fatalf("identifier settings not loaded: %+v", loaded.Identifiers)
	}
	if loaded.FingerprintGranularity() != 5*time.Second {
		t.Fatalf("unexpected granularity %s", loaded.FingerprintGranularity())
	}
	if loaded.Logging.Format != "json" || loaded.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", loaded.Logging)
	}
	if loaded.Database.Path != filepath.Join(dir, "data", "discdb.db") {
		t.Fatalf("database path should follow data dir, got %q", loaded.Database.Path)
	}
}

func TestLoadReadsDotEnvNextToConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DISCDB_ID_SALT", "")
	os.Unsetenv("DISCDB_ID_SALT")
	t.Chdir(t.TempDir())
	t.Cleanup(func() { os.Unsetenv("DISCDB_ID_SALT") })

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DISCDB_ID_SALT=dotenv-salt\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Identifiers.Salt != "dotenv-salt" {
		t.Fatalf("expected salt from .env, got %q", cfg.Identifiers.Salt)
	}
}

func TestValidateS3Backend(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DISCDB_ID_SALT", "salt")
	t.Setenv("DISCDB_S3_ACCESS_KEY", "")
	t.Setenv("DISCDB_S3_SECRET_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[blob]\nbackend = \"s3\"\n[blob.s3]\nendpoint = \"https://minio.local:9000\"\nbucket = \"discdb\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}

	t.Setenv("DISCDB_S3_ACCESS_KEY", "ak")
	t.Setenv("DISCDB_S3_SECRET_KEY", "sk")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Blob.S3.Endpoint != "minio.local:9000" {
		t.Fatalf("endpoint scheme should be stripped, got %q", cfg.Blob.S3.Endpoint)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	cfg.Identifiers.Salt = "salt"
	cfg.Blob.Dir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with salt should validate: %v", err)
	}

	bad := cfg
	bad.Blob.Backend = "ftp"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unsupported backend error")
	}

	bad = cfg
	bad.Identifiers.Alphabet = "abc"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected short alphabet error")
	}

	bad = cfg
	bad.Logging.Level = "verbose"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected logging level error")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DISCDB_ID_SALT", "salt")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || cfg.Identifiers.MinLength != 6 {
		t.Fatalf("unexpected sample config %+v", cfg.Identifiers)
	}
}
