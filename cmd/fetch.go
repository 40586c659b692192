package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/altered-scribe/internal/api"
	"github.com/arcanaland/altered-scribe/internal/card"
	"github.com/arcanaland/altered-scribe/internal/catalog"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the card catalog and build the merged data set",
	Long: `Fetch pulls every faction of the catalog in each configured language,
filters and normalizes the cards, merges the languages together and writes
cards.json plus the taxonomy files to the results folder.

Promos, uniques, KS and foil cards are left out unless asked for. Uniques are
only returned by the API for a collection, so --uniques needs --token.

Examples:
  altered-scribe fetch
  altered-scribe fetch --languages en,fr --strict
  altered-scribe fetch --uniques --token "$TOKEN"`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	RootCmd.AddCommand(fetchCmd)

	f := fetchCmd.Flags()
	f.StringSlice("languages", nil, "languages to fetch (default en,fr,es,it,de)")
	f.String("token", "", "bearer token scoping requests to a collection")
	f.Bool("promos", false, "include promo cards")
	f.Bool("uniques", false, "include unique cards")
	f.Bool("ks", false, "include KS cards")
	f.Bool("foil", false, "include foil cards")
	f.Bool("force-unique-ks", false, "keep unique KS cards even without --ks")
	f.Bool("strict", false, "drop cards missing from any language")
	f.Bool("dump-temp", false, "write per-language intermediate files to the temp folder")

	bindFlags(fetchCmd, map[string]string{
		"fetch.languages":       "languages",
		"fetch.token":           "token",
		"fetch.include_promos":  "promos",
		"fetch.include_uniques": "uniques",
		"fetch.include_ks":      "ks",
		"fetch.include_foil":    "foil",
		"fetch.force_unique_ks": "force-unique-ks",
		"fetch.strict":          "strict",
		"fetch.dump_temp":       "dump-temp",
	})
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fc := cfg.Fetch

	delay, err := fc.Delay()
	if err != nil {
		return err
	}
	rarities := []string{card.RarityCommon, card.RarityRare}
	if fc.IncludeUniques {
		if fc.Token == "" {
			console.Warn("Unique cards are only listed for a collection; set a token to fetch them.")
		}
		rarities = append(rarities, card.RarityUnique)
	}

	client := api.NewClient(logger,
		api.WithBaseURL(fc.BaseURL),
		api.WithItemsPerPage(fc.ItemsPerPage),
		api.WithRetry(fc.RetryAttempts, delay),
		api.WithRarities(rarities),
	)
	filter := card.Filter{
		IncludePromos:         fc.IncludePromos,
		IncludeUniques:        fc.IncludeUniques,
		IncludeSpecialEdition: fc.IncludeSpecialEdition,
		IncludeFoil:           fc.IncludeFoil,
		ForceUniqueKS:         fc.ForceUniqueKS,
	}

	perLang := make(map[card.Language]*card.LangData, len(fc.Languages))
	for _, l := range fc.Languages {
		lang := card.Language(l)
		console.Stage("Fetching %s cards", lang)

		raws, err := client.FetchLanguage(ctx, lang, fc.Token)
		if errors.Is(err, api.ErrTokenExpired) {
			return fmt.Errorf("the token was rejected, it has probably expired: %w", err)
		}
		if err != nil {
			return fmt.Errorf("fetching %s: %w", lang, err)
		}

		data, err := card.Normalize(logger, raws, filter)
		if err != nil {
			return err
		}
		console.Info("  %d cards received, %d kept", len(raws), len(data.Cards))

		if fc.DumpTemp {
			if err := dumpLanguage(lang, raws, data); err != nil {
				return err
			}
		}
		perLang[lang] = data
	}

	console.Stage("Merging %d languages", len(perLang))
	ds, report := card.BuildDataset(logger, perLang, fc.Strict)
	for _, w := range report.Warnings() {
		console.Warn(w)
	}

	if err := catalog.Save(cfg.Paths.Results, ds); err != nil {
		return err
	}
	console.Success("Saved %d cards to %s", len(ds.Cards), cfg.Paths.Results)
	return nil
}

func dumpLanguage(lang card.Language, raws []card.RawCard, data *card.LangData) error {
	dumps := []struct {
		kind string
		v    any
	}{
		{"raw", raws},
		{"cards", data.Cards},
		{"types", data.Types},
		{"subtypes", data.Subtypes},
		{"factions", data.Factions},
		{"rarities", data.Rarities},
	}
	for _, d := range dumps {
		if err := catalog.DumpTemp(cfg.Paths.Temp, d.kind, lang, d.v); err != nil {
			return err
		}
	}
	return nil
}
