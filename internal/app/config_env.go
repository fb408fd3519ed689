package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with TAGSCRAPE_* environment
// variables when they are set. Env takes precedence over a config file while
// explicit flags are re-applied on top by the caller.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.InputPath, "TAGSCRAPE_INPUT")
	setString(&cfg.OutputPath, "TAGSCRAPE_OUTPUT")
	setString(&cfg.LogPath, "TAGSCRAPE_LOG")
	setString(&cfg.UserAgent, "TAGSCRAPE_USER_AGENT")
	setString(&cfg.CacheDir, "TAGSCRAPE_CACHE_DIR")

	setInt := func(dst *int, key string) {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && n > 0 {
			*dst = n
		}
	}
	setInt(&cfg.MaxRedirects, "TAGSCRAPE_MAX_REDIRECTS")
	setInt(&cfg.MaxFollow, "TAGSCRAPE_MAX_FOLLOW")
	if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("TAGSCRAPE_MAX_BODY_BYTES")), 10, 64); err == nil && n > 0 {
		cfg.MaxBodyBytes = n
	}

	setDuration := func(dst *time.Duration, key string) {
		if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
			*dst = d
		}
	}
	setDuration(&cfg.Timeout, "TAGSCRAPE_TIMEOUT")
	setDuration(&cfg.CacheMaxAge, "TAGSCRAPE_CACHE_MAX_AGE")

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.CacheClear, "TAGSCRAPE_CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "TAGSCRAPE_CACHE_STRICT_PERMS")
	setBool(&cfg.Verbose, "TAGSCRAPE_VERBOSE")
}
