// Package cli defines the Cobra commands of wakectl, the maintenance tool for
// the wake session store.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"example.com/riserite/internal/app"
	"example.com/riserite/internal/config"
)

type rootOptions struct {
	configPath string
	backend    string
	// build is swapped in tests.
	build func(ctx context.Context, cfg config.Config) (*app.Components, error)
}

// NewRootCommand assembles wakectl and its subcommands.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{build: app.Build})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "wakectl",
		Short: "Inspect and exercise the RiseRite wake session store",
		Long: `wakectl checks that the configured session store is reachable and laid out
as the API expects, and can record sessions or compute streaks directly.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (defaults to $CONFIG_FILE)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "store backend override: dynamodb, postgres or memory")

	root.AddCommand(newVerifyCommand(opts))
	root.AddCommand(newCreateTableCommand(opts))
	root.AddCommand(newRecordCommand(opts))
	root.AddCommand(newStreakCommand(opts))
	root.AddCommand(newHistoryCommand(opts))
	return root
}

// Execute runs wakectl. Called from main.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	config.LoadDotEnv()
	path := o.configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.LoadFile(path)
	if err != nil && o.backend == "" {
		return config.Config{}, err
	}
	if o.backend != "" {
		if err != nil {
			cfg = config.Defaults()
		}
		cfg.StoreBackend = strings.ToLower(o.backend)
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func (o *rootOptions) open(ctx context.Context) (*app.Components, config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	components, err := o.build(ctx, cfg)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	return components, cfg, nil
}
