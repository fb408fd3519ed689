package app

import (
	"flag"
	"fmt"
)

// Options are command-line settings that are not part of Config.
type Options struct {
	ConfigPath string
	EnvFiles   string
	Version    bool
}

// BindFlags registers every Config field on fs with defaults taken from cfg.
func BindFlags(fs *flag.FlagSet, cfg *Config, opts *Options) {
	fs.StringVar(&cfg.InputPath, "input", cfg.InputPath, "Path to JSON array of {\"website\": URL} seed objects")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Path to write the JSON results")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Append-only run log file (empty disables)")
	fs.StringVar(&cfg.UserAgent, "ua", cfg.UserAgent, "User-Agent for page requests")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout including redirects")
	fs.IntVar(&cfg.MaxRedirects, "max.redirects", cfg.MaxRedirects, "Maximum redirects the transport follows per request")
	fs.IntVar(&cfg.MaxFollow, "max.follow", cfg.MaxFollow, "Maximum redirect targets processed after a seed")
	fs.Int64Var(&cfg.MaxBodyBytes, "max.bodyBytes", cfg.MaxBodyBytes, "Maximum response body bytes read per page")
	fs.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "HTTP cache directory (empty disables caching)")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", cfg.CacheMaxAge, "Purge cache entries older than this at startup; 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", cfg.CacheClear, "Clear the cache directory before the run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", cfg.CacheStrictPerms, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	if opts != nil {
		fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Optional YAML or JSON config file")
		fs.StringVar(&opts.EnvFiles, "env", opts.EnvFiles, "Comma-separated dotenv files to load")
		fs.BoolVar(&opts.Version, "version", false, "Print version and exit")
	}
}

// OverlayExplicitFlags copies into dst the fields whose flags were set on
// the command line, so explicit flags win over file and env values.
func OverlayExplicitFlags(dst *Config, flagged Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			dst.InputPath = flagged.InputPath
		case "output":
			dst.OutputPath = flagged.OutputPath
		case "log":
			dst.LogPath = flagged.LogPath
		case "ua":
			dst.UserAgent = flagged.UserAgent
		case "timeout":
			dst.Timeout = flagged.Timeout
		case "max.redirects":
			dst.MaxRedirects = flagged.MaxRedirects
		case "max.follow":
			dst.MaxFollow = flagged.MaxFollow
		case "max.bodyBytes":
			dst.MaxBodyBytes = flagged.MaxBodyBytes
		case "cache.dir":
			dst.CacheDir = flagged.CacheDir
		case "cache.maxAge":
			dst.CacheMaxAge = flagged.CacheMaxAge
		case "cache.clear":
			dst.CacheClear = flagged.CacheClear
		case "cache.strictPerms":
			dst.CacheStrictPerms = flagged.CacheStrictPerms
		case "v":
			dst.Verbose = flagged.Verbose
		}
	})
}

// ResolveConfig layers the sources in increasing precedence: built-in
// defaults, the config file named in opts, TAGSCRAPE_* environment variables,
// then flags explicitly set on fs. The result is validated.
func ResolveConfig(fs *flag.FlagSet, flagged Config, opts Options) (Config, error) {
	cfg := DefaultConfig()
	if opts.ConfigPath != "" {
		fc, err := LoadConfigFile(opts.ConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, err
		}
	}
	ApplyEnvOverrides(&cfg)
	OverlayExplicitFlags(&cfg, flagged, fs)
	if err := ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
