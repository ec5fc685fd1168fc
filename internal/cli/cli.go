package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/buildinfo"
	"github.com/matzehuels/derange/pkg/cache"
	"github.com/matzehuels/derange/pkg/derange"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "derange"

	// spinnerMinN is the smallest n whose table build shows a spinner.
	spinnerMinN = 16
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Status lines and data share it.
	Out io.Writer

	// Err receives transient output such as spinner frames.
	Err io.Writer

	cfg      Config
	flags    configFlags
	registry *derange.Registry
}

// New creates a new CLI instance with a default logger writing to logw.
func New(logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		Out:    os.Stdout,
		Err:    logw,
		cfg:    DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the effective configuration after flags and file are merged.
func (c *CLI) Config() Config {
	return c.cfg
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "derange ranks and unranks derangements",
		Long: `derange maps integers to derangements (permutations without fixed points)
in lexicographic order and back, using a memoized count table per item count.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.bindConfigFlags(root)

	root.AddCommand(c.nthCommand())
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.countCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Registry Factory
// =============================================================================

// newRegistry creates the table registry for the effective configuration.
func (c *CLI) newRegistry() *derange.Registry {
	opts := []derange.Option{
		derange.WithMaxN(c.cfg.MaxN),
		derange.WithLogger(c.Logger),
	}
	if !c.cfg.NoCache {
		fc, err := cache.NewFileCache(c.cfg.CacheDir)
		if err != nil {
			c.Logger.Warn("cache disabled", "dir", c.cfg.CacheDir, "err", err)
		} else {
			opts = append(opts, derange.WithCache(fc, c.keyer(), c.cfg.CacheTTL.Duration))
		}
	}
	return derange.NewRegistry(opts...)
}

// keyer returns the cache keyer, scoped when a namespace is configured.
func (c *CLI) keyer() cache.Keyer {
	k := cache.NewDefaultKeyer()
	if c.cfg.CacheNamespace != "" {
		k = cache.NewScopedKeyer(k, c.cfg.CacheNamespace+":")
	}
	return k
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/derange/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file (~/.config/derange/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
