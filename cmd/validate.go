package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/altered-scribe/internal/catalog"
	"github.com/arcanaland/altered-scribe/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the exported data set for consistency",
	Long: `Validate loads the data set written by fetch and checks that every card
points to known types, subtypes, factions and rarities, and that each card has
a name and an image in every fetched language.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := catalog.Load(cfg.Paths.Results)
		if err != nil {
			return missingInput(err)
		}

		v := validator.NewValidator(ds, languages(cfg.Fetch.Languages))
		results := v.Validate()

		fmt.Println("Validation Results:")
		fmt.Println("-------------------")

		if len(results.Errors) == 0 {
			console.Success("✅ %d cards in '%s' are consistent.", len(ds.Cards), cfg.Paths.Results)
		} else {
			console.Fail("❌ '%s' has %d validation errors:", cfg.Paths.Results, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Printf("%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Printf("%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
