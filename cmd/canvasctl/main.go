// Package main implements canvasctl, a command-line front end for the canvas
// engine: run layouts and viewport fits over a node snapshot file, or serve
// the same computations over HTTP.
package main

import (
	"fmt"
	"os"

	"ideamap-canvas/internal/config"
	"ideamap-canvas/internal/infrastructure/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time
var version = "dev"

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configDir  string
	configFile string
	env        string
	logLevel   string
	output     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "canvasctl",
		Short: "Run canvas layouts and viewport fits over node snapshots",
		Long: `canvasctl drives the ideamap canvas engine without a UI.

A snapshot is a YAML or JSON file holding the nodes of a map:

  nodes:
    - id: a
      x: 0
      y: 0
      connections: [b]
    - id: b
      x: 300
      y: 0
  container:
    width: 800
    height: 600`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "directory holding base/<env>/local config files")
	flags.StringVarP(&opts.configFile, "config", "c", "", "single config file (overrides --config-dir)")
	flags.StringVar(&opts.env, "env", "", "environment name (default $ENVIRONMENT or development)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVarP(&opts.output, "output", "o", "yaml", "output format (yaml or json)")

	root.AddCommand(newLayoutCmd(opts))
	root.AddCommand(newFitCmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}

// loadConfig resolves configuration from the flags: a single file, a config
// directory, or defaults plus environment variables.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.configFile != "":
		cfg, err = config.LoadFile(o.configFile)
	case o.configDir != "":
		cfg, err = o.loader().Load()
	default:
		cfg = config.Default()
		if o.env != "" {
			cfg.Environment = config.Environment(o.env)
		}
		if err = config.ApplyEnvironment(cfg); err == nil {
			err = cfg.Validate()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) loader() *config.Loader {
	env := config.EnvironmentFromEnv()
	if o.env != "" {
		env = config.Environment(o.env)
	}
	return config.NewLoader(o.configDir, env)
}

func (o *rootOptions) logger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
