package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/altered-scribe/internal/config"
	"github.com/arcanaland/altered-scribe/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	// The file may not exist yet, so it is not loaded here.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		console = logging.NewConsole(os.Stdout)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Init writes the built-in defaults as TOML to the --config path, or to
$XDG_CONFIG_HOME/altered-scribe/config.toml. Every setting can also be given
as an ALTERED_SCRIBE_<SECTION>_<KEY> environment variable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		path := configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}
		if err := config.WriteDefault(path, overwrite); err != nil {
			return err
		}
		console.Success("Wrote %s", path)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("overwrite", false, "replace an existing file")
}
