package cmd

import (
	"github.com/spf13/cobra"

	"github.com/arcanaland/altered-scribe/internal/catalog"
	"github.com/arcanaland/altered-scribe/internal/download"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download card images and assets",
	Long: `Download saves the image of every card in cards.json for each configured
language to <images>/<lang>/, and optionally every asset to <assets>/<type>/.
Files already on disk are skipped unless --force is given.

Examples:
  altered-scribe download
  altered-scribe download --collector-numbers --languages en,fr
  altered-scribe download --assets --rate 5`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	RootCmd.AddCommand(downloadCmd)

	f := downloadCmd.Flags()
	f.StringSlice("languages", nil, "image languages to download")
	f.Bool("images", true, "download card images")
	f.Bool("assets", false, "download card assets")
	f.Bool("collector-numbers", false, "name images after their collector number")
	f.Bool("force", false, "download files that already exist")
	f.Float64("rate", 0, "maximum requests per second, 0 for no limit")

	bindFlags(downloadCmd, map[string]string{
		"download.languages":           "languages",
		"download.images":              "images",
		"download.assets":              "assets",
		"download.collector_numbers":   "collector-numbers",
		"download.force":               "force",
		"download.requests_per_second": "rate",
	})
}

func runDownload(cmd *cobra.Command, args []string) error {
	dc := cfg.Download
	if !dc.Images && !dc.Assets {
		console.Info("Nothing to do.")
		return nil
	}

	cards, err := catalog.LoadCards(cfg.Paths.Results)
	if err != nil {
		return missingInput(err)
	}

	d := download.New(logger, nil, download.Options{
		Languages:         languages(dc.Languages),
		ImagesDir:         cfg.Paths.Images,
		AssetsDir:         cfg.Paths.Assets,
		Images:            dc.Images,
		Assets:            dc.Assets,
		CollectorNumbers:  dc.CollectorNumbers,
		Force:             dc.Force,
		RequestsPerSecond: dc.RequestsPerSecond,
	})

	console.Stage("Downloading files for %d cards", len(cards))
	stats, err := d.Run(cmd.Context(), cards)
	if err != nil {
		return err
	}
	console.Success("%d downloaded, %d already present", stats.Downloaded, stats.Skipped)
	if stats.Failed > 0 {
		console.Warn("%d downloads failed, run again to retry them", stats.Failed)
	}
	return nil
}
