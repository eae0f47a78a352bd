package config

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

const (
	defaultStateDir            = "~/.local/share/timeplus"
	defaultBackend             = BackendSQLite
	defaultKeyPrefix           = "nicoplus_timeplus_"
	defaultRepeatIntervalMS    = 100
	defaultScanIntervalSeconds = 5
	defaultGlyph               = "★"
	defaultOffsetSeconds       = 1
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Storage: Storage{
			Backend:   defaultBackend,
			KeyPrefix: defaultKeyPrefix,
		},
		Repeat: Repeat{
			IntervalMS: defaultRepeatIntervalMS,
		},
		AutoAdd: AutoAdd{
			ScanIntervalSeconds: defaultScanIntervalSeconds,
			Glyph:               defaultGlyph,
			OffsetSeconds:       defaultOffsetSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
