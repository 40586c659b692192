package card

import "sort"

// Language is a catalog language code such as "en" or "fr".
type Language string

// CardID is the stable catalog reference of a card (e.g. ALT_CORE_B_AX_04_C).
type CardID string

// Translations maps a language to a localized string.
type Translations map[Language]string

// Languages returns the languages present in t, sorted.
func (t Translations) Languages() []Language {
	langs := make([]Language, 0, len(t))
	for lang := range t {
		langs = append(langs, lang)
	}
	sortLanguages(langs)
	return langs
}

// Taxonomy maps a type, subtype, faction or rarity id to its display names.
type Taxonomy map[string]Translations

// Name returns the display name of id in lang, and whether it was found.
func (t Taxonomy) Name(id string, lang Language) (string, bool) {
	names, ok := t[id]
	if !ok {
		return "", false
	}
	name, ok := names[lang]
	return name, ok
}

// Card represents a card merged across every fetched language
type Card struct {
	ID                       CardID              `json:"id"`
	Name                     Translations        `json:"name"`
	Type                     string              `json:"type"`
	Subtypes                 []string            `json:"subtypes"`
	ImagePath                Translations        `json:"imagePath"`
	Assets                   map[string][]string `json:"assets"`
	MainFaction              string              `json:"mainFaction"`
	Elements                 Elements            `json:"elements"`
	Rarity                   string              `json:"rarity"`
	CollectorNumberFormatted Translations        `json:"collectorNumberFormatted"`
	CollectorNumberPrinted   string              `json:"collectorNumberPrinted"`
}

// IsSpecialEdition reports whether the card belongs to the KS print run.
func (c *Card) IsSpecialEdition() bool {
	return isSpecialEdition(string(c.ID))
}

// Dataset is the full merged export: cards plus the four taxonomies.
type Dataset struct {
	Cards    map[CardID]*Card
	Types    Taxonomy
	Subtypes Taxonomy
	Factions Taxonomy
	Rarities Taxonomy
}

// SortedIDs returns the card ids of d in lexical order.
func (d *Dataset) SortedIDs() []CardID {
	ids := make([]CardID, 0, len(d.Cards))
	for id := range d.Cards {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortLanguages(langs []Language) {
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
}
