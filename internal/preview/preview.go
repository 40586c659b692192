// Package preview renders a merged card for the terminal, optionally next to
// an ANSI rendering of its image.
package preview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	colorize "github.com/fatih/color"

	"github.com/arcanaland/altered-scribe/internal/card"
)

// stat labels in display order
var statLabels = []struct {
	label   string
	element string
}{
	{"Hand cost", "MAIN_COST"},
	{"Reserve cost", "RECALL_COST"},
	{"Forest", "FOREST_POWER"},
	{"Mountain", "MOUNTAIN_POWER"},
	{"Water", "OCEAN_POWER"},
	{"Landmarks", "PERMANENT"},
	{"Reserve", "RESERVE"},
}

// InfoLines describes c in lang, resolving taxonomy ids through ds and
// wrapping ability text to width.
func InfoLines(ds *card.Dataset, c *card.Card, lang card.Language, width int) []string {
	label := func(s string) string { return colorize.CyanString("%-14s", s) }
	value := func(s string) string { return colorize.HiWhiteString("%s", s) }
	name := func(tax card.Taxonomy, id string) string {
		if n, ok := tax.Name(id, lang); ok {
			return n
		}
		return id
	}

	title := c.Name[lang]
	if title == "" {
		title = string(c.ID)
	}

	lines := []string{
		label("Card:") + value(title),
		label("ID:") + value(string(c.ID)),
	}
	if number := c.CollectorNumberFormatted[lang]; number != "" {
		lines = append(lines, label("Number:")+value(number))
	}
	lines = append(lines,
		label("Faction:")+value(name(ds.Factions, c.MainFaction)),
		label("Rarity:")+value(name(ds.Rarities, c.Rarity)),
		label("Type:")+value(name(ds.Types, c.Type)),
	)
	if len(c.Subtypes) > 0 {
		subtypes := make([]string, 0, len(c.Subtypes))
		for _, st := range c.Subtypes {
			subtypes = append(subtypes, name(ds.Subtypes, st))
		}
		lines = append(lines, label("Subtypes:")+value(strings.Join(subtypes, ", ")))
	}

	for _, s := range statLabels {
		if v, ok := c.Elements.Stat(s.element); ok {
			lines = append(lines, label(s.label+":")+value(strconv.Itoa(v)))
		}
	}

	for _, effect := range []struct{ title, key string }{
		{"Abilities:", "MAIN_EFFECT"},
		{"Support:", "ECHO_EFFECT"},
	} {
		text := c.Elements.Effect(effect.key, lang)
		if text == "" {
			continue
		}
		lines = append(lines, "", colorize.CyanString(effect.title))
		lines = append(lines, WrapText(text, width)...)
	}
	return lines
}

// Render prints art on the left and info on the right, padding the shorter
// column. termWidth bounds the wrapped text.
func Render(w io.Writer, ds *card.Dataset, c *card.Card, lang card.Language, art string, termWidth int) {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if art == "" {
		artLines = nil
	}
	artWidth := 0
	for _, line := range artLines {
		artWidth = max(artWidth, visibleWidth(line))
	}

	spacing := 4
	infoStart := 0
	if artWidth > 0 {
		infoStart = artWidth + spacing
	}
	infoWidth := max(termWidth-infoStart-2, 20)

	infoLines := InfoLines(ds, c, lang, infoWidth)

	fmt.Fprintln(w)
	for i := 0; i < max(len(artLines), len(infoLines)); i++ {
		fmt.Fprint(w, "  ")
		if i < len(artLines) {
			fmt.Fprint(w, artLines[i])
			fmt.Fprint(w, strings.Repeat(" ", infoStart-visibleWidth(artLines[i])))
		} else {
			fmt.Fprint(w, strings.Repeat(" ", infoStart))
		}
		if i < len(infoLines) {
			fmt.Fprint(w, infoLines[i])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}
