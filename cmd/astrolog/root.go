package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"astrolog/internal/app"
	"astrolog/internal/config"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	dataDir    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "astrolog",
		Short:         "Astrophotography session log",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config.json (default: user config dir)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Override storage.data_dir")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on the console")

	root.AddCommand(
		newServeCmd(opts),
		newViewCmd(opts),
		newLogCmd(opts),
		newSaveCmd(opts),
		newBackupCmd(opts),
	)
	return root
}

// loadConfig reads the config file named by the flags and applies the
// overrides.
func (o *options) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.Storage.DataDir = config.ExpandHome(o.dataDir)
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.ToConsole = true
	}
	return cfg, nil
}

// openApp loads the configuration and opens the data directory. The caller
// must Close the returned App.
func (o *options) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	a := app.New()
	if err := a.Open(ctx, cfg); err != nil {
		return nil, fmt.Errorf("astrolog: %w", err)
	}
	return a, nil
}
