package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nestlayout/internal/config"
	"github.com/matzehuels/nestlayout/pkg/buildinfo"
	"github.com/matzehuels/nestlayout/pkg/cache"
	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/engine/graphviz"
	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "nestlayout"

	// engineName identifies the layout engine in cache keys.
	engineName = "graphviz"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// usage is printed when there is nothing to lay out.
var usage = fmt.Sprintf("usage: %s <path-to-file.json>", appName)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdin, Stdout and Stderr are the process streams. Stdout carries JSON
	// only; status lines and logs go to Stderr.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Engine lays out containers. Nil selects Graphviz.
	Engine engine.Engine

	// Now seeds generated ids. Nil selects time.Now.
	Now func() time.Time

	configPath string
	verbose    bool
	noCache    bool
	cfg        *config.Config
}

// New creates a CLI writing logs to stderr at the given level.
func New(stdin io.Reader, stdout, stderr io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(stderr, level),
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself performs the layout.
func (c *CLI) RootCommand() *cobra.Command {
	var output string

	root := &cobra.Command{
		Use:   appName + " [path-to-file.json]",
		Short: "Nestlayout positions the nodes of nested JSON scene graphs",
		Long: `Nestlayout reads a nested JSON scene graph, lays out every container with a
hierarchical layout engine, innermost first, and prints the same tree with a
registry.position on every non-edge child.

The scene is read from the file given as argument, or from stdin.`,
		Version:           buildinfo.Version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args, output)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "read configuration from this TOML file")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the layout cache")
	root.Flags().StringVarP(&output, "output", "o", "", "write the result to a file instead of stdout")

	root.AddCommand(c.describeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and attaches the logger to the context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	c.cfg = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// loadedConfig returns the loaded configuration, or the defaults before setup ran.
func (c *CLI) loadedConfig() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for the configured engine and cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg := c.loadedConfig()
	store, err := c.newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}

	eng := c.Engine
	if eng == nil {
		eng = graphviz.New()
	}
	runner := pipeline.NewRunner(eng, store, keyer, loggerFromContext(ctx))
	runner.TTL = cfg.Cache.TTL.Duration
	runner.KeyOpts = cache.LayoutKeyOpts{Engine: engineName, Version: buildinfo.Version}
	return runner, nil
}

// cacheDir returns the file cache directory.
func (c *CLI) cacheDir() string {
	if dir := c.loadedConfig().Cache.Dir; dir != "" {
		return dir
	}
	return config.DefaultCacheDir()
}

func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case cache.BackendFile:
		return cache.NewFileCache(cfg.Dir)
	case cache.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case cache.BackendMongo:
		return cache.NewMongoCache(ctx, cache.MongoOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	}
	return cache.NewNullCache(), nil
}

func (c *CLI) pipelineOptions(ctx context.Context) pipeline.Options {
	opts := pipeline.Options{Logger: loggerFromContext(ctx)}
	if c.Now != nil {
		opts.IDStart = c.Now()
	}
	return opts
}

// =============================================================================
// Input
// =============================================================================

// readInput returns the document named by args, or all of stdin.
// Empty stdin is a usage error.
func (c *CLI) readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", args[0], err)
		}
		return data, nil
	}
	if c.Stdin == nil {
		return nil, errors.New(errors.ErrCodeUsage, "%s", usage)
	}
	data, err := io.ReadAll(c.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeUsage, "%s", usage)
	}
	return data, nil
}

// FormatError renders err for stderr. Usage errors print the bare usage line.
func FormatError(err error) string {
	if errors.Is(err, errors.ErrCodeUsage) {
		return errors.UserMessage(err)
	}
	return err.Error()
}
