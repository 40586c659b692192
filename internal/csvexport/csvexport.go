// Package csvexport flattens a merged data set into a spreadsheet-friendly CSV.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/arcanaland/altered-scribe/internal/card"
)

// Options control the CSV layout.
type Options struct {
	MainLanguage     card.Language
	NameLanguages    []card.Language
	AbilityLanguages []card.Language
	GroupSubtypes    bool
	IncludeWebAssets bool
	WebAssetColumns  int
}

// stat columns in output order, with the element each one reads.
var statColumns = []struct {
	column  string
	element string
}{
	{"handCost", "MAIN_COST"},
	{"reserveCost", "RECALL_COST"},
	{"forestPower", "FOREST_POWER"},
	{"mountainPower", "MOUNTAIN_POWER"},
	{"waterPower", "OCEAN_POWER"},
	{"landmarksSize", "PERMANENT"},
	{"reserveSize", "RESERVE"},
}

const (
	mainEffect = "MAIN_EFFECT"
	echoEffect = "ECHO_EFFECT"
	webBucket  = "WEB"
)

// FileName returns the CSV file name for a main language.
func FileName(main card.Language) string {
	return fmt.Sprintf("cards_%s.csv", main)
}

// SortKey turns a formatted collector number into its ordering key: the
// rarity letter R is replaced by D so rares sort after commons.
func SortKey(collectorNumber string) string {
	cn, ok := card.ParseCollectorNumber(collectorNumber)
	if !ok {
		return collectorNumber
	}
	if cn.Rarity == "R" {
		cn.Rarity = "D"
	}
	return cn.String()
}

// Exporter writes data sets as CSV.
type Exporter struct {
	log  *slog.Logger
	opts Options
}

// New creates an Exporter.
func New(logger *slog.Logger, opts Options) *Exporter {
	if opts.WebAssetColumns == 0 {
		opts.WebAssetColumns = 3
	}
	return &Exporter{log: logger.With("component", "csv"), opts: opts}
}

// WriteFile exports ds to dir/cards_<main>.csv and returns the path.
func (e *Exporter) WriteFile(dir string, ds *card.Dataset) (string, error) {
	path := filepath.Join(dir, FileName(e.opts.MainLanguage))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csvexport: create %s: %w", path, err)
	}
	defer f.Close()

	if err := e.Write(f, ds); err != nil {
		return "", err
	}
	return path, f.Close()
}

// Header returns the column names for the given subtype column count.
func (e *Exporter) Header(subtypeColumns int) []string {
	header := []string{"collectorNumber"}
	for _, lang := range e.opts.NameLanguages {
		header = append(header, "name_"+string(lang))
	}
	header = append(header, "faction", "rarity", "type")
	if e.opts.GroupSubtypes {
		header = append(header, "subtypes")
	} else {
		for i := 0; i < subtypeColumns; i++ {
			header = append(header, "subtype_"+strconv.Itoa(i+1))
		}
	}
	for _, sc := range statColumns {
		header = append(header, sc.column)
	}
	for _, lang := range e.opts.AbilityLanguages {
		header = append(header, "abilities_"+string(lang), "supportAbility_"+string(lang))
	}
	header = append(header, "id", "imagePath")
	if e.opts.IncludeWebAssets {
		for i := 0; i < e.opts.WebAssetColumns; i++ {
			header = append(header, "webAsset"+strconv.Itoa(i))
		}
	}
	return header
}

// Write writes ds as CSV to w, one row per card, sorted by collector number.
func (e *Exporter) Write(w io.Writer, ds *card.Dataset) error {
	cards := make([]*card.Card, 0, len(ds.Cards))
	for _, id := range ds.SortedIDs() {
		cards = append(cards, ds.Cards[id])
	}

	var cols map[string]int
	if !e.opts.GroupSubtypes {
		cols = SubtypeColumns(cards)
	}
	header := e.Header(columnCount(cols))

	rows := make([]map[string]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, e.row(ds, c, cols))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := SortKey(rows[i]["collectorNumber"]), SortKey(rows[j]["collectorNumber"])
		if ki != kj {
			return ki < kj
		}
		return rows[i]["id"] < rows[j]["id"]
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csvexport: write header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csvexport: write row %s: %w", row["id"], err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvexport: flush: %w", err)
	}
	return nil
}

func (e *Exporter) row(ds *card.Dataset, c *card.Card, cols map[string]int) map[string]string {
	main := e.opts.MainLanguage
	row := map[string]string{
		"collectorNumber": c.CollectorNumberFormatted[main],
		"id":              string(c.ID),
		"type":            e.name(ds.Types, "type", c.Type, c.ID),
		"faction":         e.name(ds.Factions, "faction", c.MainFaction, c.ID),
		"rarity":          e.name(ds.Rarities, "rarity", c.Rarity, c.ID),
		"imagePath":       c.ImagePath[main],
	}

	if e.opts.GroupSubtypes {
		names := make([]string, 0, len(c.Subtypes))
		for _, st := range c.Subtypes {
			names = append(names, e.name(ds.Subtypes, "subtype", st, c.ID))
		}
		sort.Strings(names)
		row["subtypes"] = strings.Join(names, ", ")
	} else {
		for _, st := range c.Subtypes {
			row["subtype_"+strconv.Itoa(cols[st]+1)] = e.name(ds.Subtypes, "subtype", st, c.ID)
		}
	}

	for _, sc := range statColumns {
		if v, ok := c.Elements.Stat(sc.element); ok {
			row[sc.column] = strconv.Itoa(v)
		}
	}

	for _, lang := range e.opts.AbilityLanguages {
		if _, ok := c.Elements.Effects[mainEffect]; ok {
			row["abilities_"+string(lang)] = c.Elements.Effect(mainEffect, lang)
		}
		if _, ok := c.Elements.Effects[echoEffect]; ok {
			row["supportAbility_"+string(lang)] = c.Elements.Effect(echoEffect, lang)
		}
	}

	for _, lang := range e.opts.NameLanguages {
		row["name_"+string(lang)] = c.Name[lang]
	}

	if e.opts.IncludeWebAssets {
		web := c.Assets[webBucket]
		for i := 0; i < e.opts.WebAssetColumns && i < len(web); i++ {
			row["webAsset"+strconv.Itoa(i)] = web[i]
		}
	}
	return row
}

// name resolves a taxonomy id in the main language, falling back to the id.
func (e *Exporter) name(tax card.Taxonomy, kind, id string, cardID card.CardID) string {
	if n, ok := tax.Name(id, e.opts.MainLanguage); ok {
		return n
	}
	e.log.Warn("no translation for taxonomy id",
		slog.String("kind", kind),
		slog.String("id", id),
		slog.String("language", string(e.opts.MainLanguage)),
		slog.String("card", string(cardID)),
	)
	return id
}
