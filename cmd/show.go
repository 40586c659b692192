package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/altered-scribe/internal/card"
	"github.com/arcanaland/altered-scribe/internal/catalog"
	"github.com/arcanaland/altered-scribe/internal/download"
	"github.com/arcanaland/altered-scribe/internal/preview"
)

var showCmd = &cobra.Command{
	Use:   "show [card_id]",
	Short: "Display a card with ANSI art",
	Long: `Show prints a card from the exported data set in one language. When its
image has been downloaded, the image is drawn next to the card text.

Examples:
  altered-scribe show ALT_CORE_B_AX_04_C
  altered-scribe show --lang fr ALT_CORE_B_AX_04_C`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := card.CardID(args[0])
		lang, _ := cmd.Flags().GetString("lang")
		artWidth, _ := cmd.Flags().GetInt("width")

		ds, err := catalog.Load(cfg.Paths.Results)
		if err != nil {
			return missingInput(err)
		}
		c, ok := ds.Cards[id]
		if !ok {
			return fmt.Errorf("card not found: %s", id)
		}

		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || width <= 0 {
			width = 80
		}

		art := ""
		if artWidth > 0 {
			art = cardArt(c, card.Language(lang), artWidth)
		}
		preview.Render(os.Stdout, ds, c, card.Language(lang), art, width)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("lang", "l", "en", "language to display")
	showCmd.Flags().Int("width", 32, "width of the image in columns, 0 to hide it")
}

// cardArt renders the downloaded image of c, looking under both naming
// schemes. It returns "" when no image is available.
func cardArt(c *card.Card, lang card.Language, width int) string {
	for _, byNumber := range []bool{false, true} {
		d := download.New(logger, nil, download.Options{
			ImagesDir:        cfg.Paths.Images,
			CollectorNumbers: byNumber,
		})
		path := d.ImagePath(c, lang)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		img, err := preview.LoadImage(path)
		if err != nil {
			logger.Warn("cannot read card image", "path", path, "error", err)
			return ""
		}
		return preview.ImageToANSI(img, width, 0)
	}
	logger.Debug("no downloaded image", "card", string(c.ID), "language", string(lang))
	return ""
}
