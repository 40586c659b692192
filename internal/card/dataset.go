package card

import "log/slog"

// BuildDataset merges every language's normalized data into one Dataset.
func BuildDataset(logger *slog.Logger, perLang map[Language]*LangData, strict bool) (*Dataset, *Report) {
	cards := make(map[Language][]LangCard, len(perLang))
	types := make(map[Language]map[string]string, len(perLang))
	subtypes := make(map[Language]map[string]string, len(perLang))
	factions := make(map[Language]map[string]string, len(perLang))
	rarities := make(map[Language]map[string]string, len(perLang))

	for lang, data := range perLang {
		cards[lang] = data.Cards
		types[lang] = data.Types
		subtypes[lang] = data.Subtypes
		factions[lang] = data.Factions
		rarities[lang] = data.Rarities
	}

	merged, report := NewMerger(logger, strict).Merge(cards)

	return &Dataset{
		Cards:    merged,
		Types:    MergeTaxonomies(types),
		Subtypes: MergeTaxonomies(subtypes),
		Factions: MergeTaxonomies(factions),
		Rarities: MergeTaxonomies(rarities),
	}, report
}
