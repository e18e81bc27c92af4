package config

import "discdb/internal/identifier"

const (
	defaultConfigPath        = "~/.config/discdb/config.toml"
	defaultDataDir           = "~/.local/share/discdb"
	defaultLogDir            = "~/.local/share/discdb/logs"
	defaultDatabaseName      = "discdb.db"
	defaultBlobDirName       = "blobs"
	defaultBusyTimeoutMS     = 5000
	defaultGranularitySecond = 1
	defaultDedupCacheSize    = 4096
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogMaxSizeMB      = 20
	defaultLogMaxBackups     = 5
	defaultLogMaxAgeDays     = 60
	defaultS3Region          = "us-east-1"
)

// Blob backends.
const (
	BlobBackendFile = "file"
	BlobBackendS3   = "s3"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Database: Database{
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Blob: Blob{
			Backend: BlobBackendFile,
			S3: S3{
				Region: defaultS3Region,
				UseSSL: true,
			},
		},
		Identifiers: Identifiers{
			Alphabet:  identifier.DefaultAlphabet,
			MinLength: identifier.DefaultMinLength,
		},
		Fingerprint: Fingerprint{
			DurationGranularitySeconds: defaultGranularitySecond,
		},
		Dedup: Dedup{
			CacheSize: defaultDedupCacheSize,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
