package formapage

import (
	"time"
)

// Config consolidates the paging settings a caller uses when setting up
// GetPage calls (page size, cacheable flag, dialect). GetPage itself takes
// no Config; callers pass the values it needs as arguments. Paging core
// owns no connection pool, no transaction manager, and no cascade/reference
// machinery, so those concerns (present in the teacher's broader Config)
// are not carried here.
type Config struct {
	Query   QueryConfig   `json:"query"`
	Logging LoggingConfig `json:"logging"`
	Backend BackendConfig `json:"backend"`
}

// QueryConfig contains page-sizing and count-query defaults.
type QueryConfig struct {
	DefaultTimeout  time.Duration `json:"defaultTimeout"`
	DefaultPageSize int           `json:"defaultPageSize"`
	MaxPageSize     int           `json:"maxPageSize"`
	// DefaultCacheable is a default value for the cacheable argument a
	// caller passes to GetPage (§4.9 on-page hook); GetPage does not read it.
	DefaultCacheable bool `json:"defaultCacheable"`
}

// LoggingConfig holds query-shape logging settings. The page engine does not
// read them: GetPage logs its zap summary line at info level regardless.
type LoggingConfig struct {
	Level              string        `json:"level"`
	EnableQueryLogging bool          `json:"enableQueryLogging"`
	LogSlowQueries     bool          `json:"logSlowQueries"`
	SlowQueryThreshold time.Duration `json:"slowQueryThreshold"`
}

// BackendConfig names the dialect in use and carries string-cast overrides
// (§4.5) keyed by type name. The postgres and duckdb adapters in this module
// do not read it; their casts are fixed.
type BackendConfig struct {
	Dialect        string            `json:"dialect"`
	CastOverrides  map[string]string `json:"castOverrides,omitempty"`
	StrictCasts    bool              `json:"strictCasts"`
	SanitizeParams bool              `json:"sanitizeParams"`
}

// DefaultConfig returns the paging engine's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Query: QueryConfig{
			DefaultTimeout:   30 * time.Second,
			DefaultPageSize:  50,
			MaxPageSize:      500,
			DefaultCacheable: false,
		},
		Logging: LoggingConfig{
			Level:              "info",
			EnableQueryLogging: false,
			LogSlowQueries:     true,
			SlowQueryThreshold: 1 * time.Second,
		},
		Backend: BackendConfig{
			Dialect:        "postgres",
			StrictCasts:    true,
			SanitizeParams: true,
		},
	}
}

// Validate checks the configuration for internally consistent page-size and
// timeout bounds.
func (c *Config) Validate() error {
	if c.Query.DefaultPageSize <= 0 {
		return &ConfigError{Field: "query.defaultPageSize", Message: "must be greater than 0"}
	}
	if c.Query.MaxPageSize < c.Query.DefaultPageSize {
		return &ConfigError{Field: "query.maxPageSize", Message: "must be greater than or equal to defaultPageSize"}
	}
	if c.Query.DefaultTimeout <= 0 {
		return &ConfigError{Field: "query.defaultTimeout", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
