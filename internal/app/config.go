package app

import "time"

// Defaults mirror a run started with no arguments.
const (
	DefaultInputPath    = "urls.json"
	DefaultOutputPath   = "results.json"
	DefaultLogPath      = "logs.txt"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 30
	DefaultMaxFollow    = 10
	DefaultMaxBodyBytes = 10 << 20
)

// Config holds runtime configuration for the application.
type Config struct {
	InputPath  string
	OutputPath string
	LogPath    string

	// HTTP
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64

	// Redirect targets visited after a seed.
	MaxFollow int

	// Cache (disabled when CacheDir is empty)
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	Verbose bool
}

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		InputPath:    DefaultInputPath,
		OutputPath:   DefaultOutputPath,
		LogPath:      DefaultLogPath,
		UserAgent:    DefaultUserAgent(),
		Timeout:      DefaultTimeout,
		MaxRedirects: DefaultMaxRedirects,
		MaxFollow:    DefaultMaxFollow,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}
