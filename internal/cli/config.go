package cli

import (
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/derange"
	"github.com/matzehuels/derange/pkg/errors"
	"github.com/matzehuels/derange/pkg/observability"
)

// defaultMaxN keeps tables under ~8 MiB unless the user opts into more.
const defaultMaxN = 16

// Config is the effective CLI configuration.
//
// Values come from, in increasing priority: defaults, the TOML config file,
// command-line flags.
//
//	# ~/.config/derange/config.toml
//	max_n     = 18
//	cache_dir = "/var/cache/derange"
//	cache_ttl = "720h"
//	cache_namespace = "ci"
//	no_cache  = false
//	verbose   = false
type Config struct {
	MaxN     int      `toml:"max_n"`
	CacheDir string   `toml:"cache_dir"`
	CacheTTL Duration `toml:"cache_ttl"`
	NoCache  bool     `toml:"no_cache"`
	Verbose  bool     `toml:"verbose"`

	// CacheNamespace isolates tables from other users of the same cache
	// directory. Empty means the shared default keys.
	CacheNamespace string `toml:"cache_namespace"`
}

// Duration is a time.Duration that decodes from strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	return Config{
		MaxN:     defaultMaxN,
		CacheDir: dir,
	}
}

// LoadConfig reads the TOML file at path on top of DefaultConfig. A missing
// file is only an error when required is true. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if required {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "config file %s not found", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (cfg Config) Validate() error {
	if cfg.MaxN < 2 || cfg.MaxN > derange.MaxN {
		return errors.New(errors.ErrCodeInvalidConfig, "max_n must be in [2, %d], got %d", derange.MaxN, cfg.MaxN)
	}
	if cfg.CacheTTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_ttl must not be negative")
	}
	if strings.ContainsFunc(cfg.CacheNamespace, unicode.IsSpace) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_namespace must not contain whitespace")
	}
	if !cfg.NoCache {
		if err := errors.ValidateDir(cfg.CacheDir); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Flags
// =============================================================================

// configFlags holds raw persistent flag values until setup merges them.
type configFlags struct {
	path     string
	maxN     int
	cacheDir string
	cacheTTL time.Duration
	noCache  bool
	ns       string
}

// bindConfigFlags registers the persistent configuration flags on root.
func (c *CLI) bindConfigFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVar(&c.flags.path, "config", "", "config file (default $XDG_CONFIG_HOME/derange/config.toml)")
	f.IntVar(&c.flags.maxN, "max-n", defaultMaxN, "largest item count to build tables for")
	f.StringVar(&c.flags.cacheDir, "cache-dir", "", "count table cache directory")
	f.DurationVar(&c.flags.cacheTTL, "cache-ttl", 0, "expire cached tables after this long (0 = never)")
	f.BoolVar(&c.flags.noCache, "no-cache", false, "keep count tables in memory only")
	f.StringVar(&c.flags.ns, "cache-namespace", "", "keep cached tables apart from other namespaces")
}

// setup loads the config file, applies flag overrides, registers logging
// hooks and creates the registry. It runs before every subcommand.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	path, required := c.flags.path, true
	if path == "" {
		required = false
		if p, err := configPath(); err == nil {
			path = p
		}
	}

	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("max-n") {
		cfg.MaxN = c.flags.maxN
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = c.flags.cacheDir
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL = Duration{c.flags.cacheTTL}
	}
	if flags.Changed("no-cache") {
		cfg.NoCache = c.flags.noCache
	}
	if flags.Changed("cache-namespace") {
		cfg.CacheNamespace = c.flags.ns
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}

	c.cfg = cfg
	observability.SetTableHooks(logHooks{logger: c.Logger})
	observability.SetCacheHooks(logHooks{logger: c.Logger})
	c.registry = c.newRegistry()
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	c.Logger.Debug("configuration loaded", "path", path, "max_n", cfg.MaxN, "cache_dir", cfg.CacheDir, "cache_namespace", cfg.CacheNamespace, "no_cache", cfg.NoCache)
	return nil
}
