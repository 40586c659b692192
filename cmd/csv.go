package cmd

import (
	"github.com/spf13/cobra"

	"github.com/arcanaland/altered-scribe/internal/card"
	"github.com/arcanaland/altered-scribe/internal/catalog"
	"github.com/arcanaland/altered-scribe/internal/csvexport"
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export the merged data set as CSV",
	Long: `CSV flattens the data set written by fetch into cards_<main>.csv in the
results folder, one row per card sorted by collector number.

Subtypes get one column each, laid out so that a card never needs two
subtypes in the same column; --group-subtypes joins them into one column.

Examples:
  altered-scribe csv
  altered-scribe csv --main fr --names fr,en --abilities fr`,
	Args: cobra.NoArgs,
	RunE: runCSV,
}

func init() {
	RootCmd.AddCommand(csvCmd)

	f := csvCmd.Flags()
	f.String("main", "", "language of the collector number, taxonomy names and image")
	f.StringSlice("names", nil, "languages with a name column")
	f.StringSlice("abilities", nil, "languages with ability columns")
	f.Bool("group-subtypes", false, "put all subtypes in a single column")
	f.Bool("web-assets", false, "add the first WEB asset urls")

	bindFlags(csvCmd, map[string]string{
		"csv.main_language":     "main",
		"csv.name_languages":    "names",
		"csv.ability_languages": "abilities",
		"csv.group_subtypes":    "group-subtypes",
		"csv.web_assets":        "web-assets",
	})
}

func runCSV(cmd *cobra.Command, args []string) error {
	ds, err := catalog.Load(cfg.Paths.Results)
	if err != nil {
		return missingInput(err)
	}

	exporter := csvexport.New(logger, csvexport.Options{
		MainLanguage:     card.Language(cfg.CSV.MainLanguage),
		NameLanguages:    languages(cfg.CSV.NameLanguages),
		AbilityLanguages: languages(cfg.CSV.AbilityLanguages),
		GroupSubtypes:    cfg.CSV.GroupSubtypes,
		IncludeWebAssets: cfg.CSV.WebAssets,
	})
	path, err := exporter.WriteFile(cfg.Paths.Results, ds)
	if err != nil {
		return err
	}
	console.Success("Wrote %d cards to %s", len(ds.Cards), path)
	return nil
}

func languages(codes []string) []card.Language {
	langs := make([]card.Language, 0, len(codes))
	for _, c := range codes {
		langs = append(langs, card.Language(c))
	}
	return langs
}
