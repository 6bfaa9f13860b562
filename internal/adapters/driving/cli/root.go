// Package cli implements the docsage command line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/adapters/driven/config/file"
	"github.com/docsage/docsage/internal/core/services"
	"github.com/docsage/docsage/internal/logger"
)

// Bootstrap builds the application context once flags are parsed. main
// injects it so this package never constructs adapters itself.
type Bootstrap func(configPath, dataDir string) (*services.App, file.Config, error)

var (
	version   = "dev"
	bootstrap Bootstrap

	app *services.App
	cfg file.Config

	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Ask questions about your PDF library",
	Long: `docsage ingests PDF documents into a local vector index and
answers questions about them using a language model, citing the
documents the answers came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.docsage/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the data directory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI. boot is called lazily by commands that need the
// application context, so commands like version work without one.
func Execute(v string, boot Bootstrap) error {
	version = v
	bootstrap = boot
	defer func() {
		if app != nil {
			app.Close()
		}
	}()
	return rootCmd.Execute()
}

// requireApp builds the application context on first use.
func requireApp() (*services.App, error) {
	if app != nil {
		return app, nil
	}
	if bootstrap == nil {
		return nil, errors.New("application not initialised")
	}
	a, c, err := bootstrap(flagConfig, flagDataDir)
	if err != nil {
		return nil, err
	}
	app = a
	cfg = c
	return app, nil
}
