package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arcanaland/altered-scribe/internal/catalog"
	"github.com/arcanaland/altered-scribe/internal/config"
	"github.com/arcanaland/altered-scribe/internal/logging"
)

var (
	cfg     *config.Config
	logger  *slog.Logger
	console *logging.Console

	configPath string

	// flagKeys maps a command to the config keys its flags override.
	flagKeys = map[*cobra.Command]map[string]string{}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "altered-scribe",
	Short: "Export the Altered card catalog to JSON and CSV",
	Long: `altered-scribe pulls card data for the Altered trading card game from the
public API in several languages, merges it into one multilingual data set and
exports it as JSON and CSV. It can also download card images and assets.

Run the stages in order: fetch, then csv and download.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		console = logging.NewConsole(os.Stdout)

		var err error
		cfg, err = config.Load(configPath, boundFlags(cmd))
		if err != nil {
			return err
		}
		logger = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/altered-scribe/config.toml)")
	RootCmd.PersistentFlags().String("results", "", "folder holding the exported data set")
	RootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	RootCmd.PersistentFlags().String("log-format", "", "log format: text or json")

	bindFlags(RootCmd, map[string]string{
		"paths.results": "results",
		"log.level":     "log-level",
		"log.format":    "log-format",
	})
}

// bindFlags records which config key each named flag of cmd overrides.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	flagKeys[cmd] = keys
}

// boundFlags collects the flag overrides for cmd and its parents.
func boundFlags(cmd *cobra.Command) map[string]*pflag.Flag {
	flags := map[string]*pflag.Flag{}
	for c := cmd; c != nil; c = c.Parent() {
		for key, name := range flagKeys[c] {
			if _, ok := flags[key]; ok {
				continue
			}
			if f := cmd.Flags().Lookup(name); f != nil {
				flags[key] = f
			}
		}
	}
	return flags
}

// missingInput turns a missing prerequisite into a hint and a clean exit.
func missingInput(err error) error {
	var missing *catalog.MissingFileError
	if errors.As(err, &missing) {
		console.Warn("File %s not found. Have you run 'altered-scribe fetch'?", missing.Path)
		return nil
	}
	return err
}

// Execute runs the command tree; cancelling ctx aborts network work.
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}
