package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/termlink/internal/cliconfig"
	"github.com/bft-labs/termlink/pkg/termlink"
)

const helpDescription = `
Drive a simulated point-to-point link between a client and a server endpoint.

Highlights:
  - Delimiter-framed messages with independent read and write delimiters.
  - Reads wait up to a timeout for a complete frame, and can retry with backoff.
  - A listening server answers every frame with canned or echoed replies.
  - Configure via file, env (TERMLINK_*), or flags; the config file is watched.
`

var longHelp = "termlink " + termlink.Version + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  termlink run --client-read-delim '\r\n' --server-mode listen
  termlink demo --count 5 --interval 500ms
  termlink scenario ./scenarios/basic.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// cli holds the configuration shared by every subcommand.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	changed map[string]bool
	// base is flags and environment without the file; the config watcher
	// re-applies the file on top of it.
	base cliconfig.Config
	log  zerolog.Logger
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig(), log: cliconfig.Logger()}

	root := &cobra.Command{
		Use:           "termlink",
		Short:         "Simulate a delimiter-framed serial link between two endpoints",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s (library %s) %s/%s", getVersion(), termlink.Version, runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.termlink/config.toml)")

	flags.StringVar(&c.cfg.ClientReadDelim, "client-read-delim", c.cfg.ClientReadDelim, `client read delimiter, with escapes such as \r\n`)
	flags.StringVar(&c.cfg.ClientWriteDelim, "client-write-delim", c.cfg.ClientWriteDelim, "client write delimiter")
	flags.DurationVar(&c.cfg.ClientTimeout, "client-timeout", c.cfg.ClientTimeout, "client read timeout (0 reads once without waiting)")

	flags.StringVar(&c.cfg.ServerReadDelim, "server-read-delim", c.cfg.ServerReadDelim, "server read delimiter")
	flags.StringVar(&c.cfg.ServerWriteDelim, "server-write-delim", c.cfg.ServerWriteDelim, "server write delimiter")
	flags.DurationVar(&c.cfg.ServerTimeout, "server-timeout", c.cfg.ServerTimeout, "server read timeout")
	flags.StringVar(&c.cfg.ServerMode, "server-mode", c.cfg.ServerMode, "server mode: manual or listen")
	flags.StringVar(&c.cfg.Responder, "responder", c.cfg.Responder, "listening server replies: ack, echo or none")

	flags.IntVar(&c.cfg.Capacity, "capacity", c.cfg.Capacity, "buffer capacity in characters (0 is unbounded)")
	flags.IntVar(&c.cfg.PreviewWidth, "preview-width", c.cfg.PreviewWidth, "width of buffer previews")
	flags.BoolVar(&c.cfg.AutoRetry, "auto-retry", c.cfg.AutoRetry, "retry client reads that time out")
	flags.DurationVar(&c.cfg.RetryInitial, "retry-initial", c.cfg.RetryInitial, "first auto-retry delay")
	flags.DurationVar(&c.cfg.RetryMax, "retry-max", c.cfg.RetryMax, "maximum auto-retry delay")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(newRunCommand(c), newDemoCommand(c), newScenarioCommand(c))

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("termlink")
		os.Exit(1)
	}
}

// load merges the config file, environment and flags, in increasing order
// of precedence, and builds the logger.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	c.cfgPath = cfgFile

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	preFile := c.cfg

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	// Apply environment variables (TERMLINK_*)
	// These override file config but are overridden by flags (checked via changed map)
	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	// Reloads apply the file over flags and environment without touching
	// the settings either of them fixed.
	c.base = preFile
	if err := cliconfig.ApplyEnvConfig(&c.base, changed); err != nil {
		return err
	}
	c.changed = cliconfig.EnvOverrides()
	for name := range changed {
		c.changed[name] = true
	}

	logger, err := cliconfig.NewLogger(os.Stderr, c.cfg.LogLevel)
	if err != nil {
		return err
	}
	c.log = logger
	c.log.Debug().Interface("config", c.cfg).Str("file", cfgFile).Msg("configuration")
	return nil
}
