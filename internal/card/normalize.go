package card

import (
	"fmt"
	"log/slog"
)

// Filter selects which card categories survive normalization.
type Filter struct {
	IncludePromos         bool
	IncludeUniques        bool
	IncludeSpecialEdition bool
	IncludeFoil           bool
	// ForceUniqueKS keeps unique KS cards even when KS cards are excluded.
	ForceUniqueKS bool
}

// LangCard is the flat record of one card in one language.
type LangCard struct {
	ID                       CardID            `json:"id"`
	Name                     string            `json:"name"`
	Type                     string            `json:"type"`
	Subtypes                 []string          `json:"subtypes"`
	ImagePath                string            `json:"imagePath"`
	Assets                   AssetMap          `json:"assets"`
	MainFaction              string            `json:"mainFaction"`
	Elements                 map[string]string `json:"elements"`
	Rarity                   string            `json:"rarity"`
	CollectorNumberFormatted string            `json:"collectorNumberFormatted"`
}

// LangData is the normalized output for a single language.
type LangData struct {
	Cards    []LangCard
	Types    map[string]string
	Subtypes map[string]string
	Factions map[string]string
	Rarities map[string]string
}

// Keep reports whether raw passes the filter, and if not, why.
func (f Filter) Keep(raw RawCard) (bool, string) {
	if raw.IsPromo() && !f.IncludePromos {
		return false, "promo"
	}
	if raw.IsFoil() && !f.IncludeFoil {
		return false, "foil"
	}
	if raw.IsUnique() && !f.IncludeUniques {
		return false, "unique"
	}
	if raw.IsSpecialEdition() && !f.IncludeSpecialEdition {
		if !(raw.IsUnique() && f.ForceUniqueKS) {
			return false, "special edition"
		}
	}
	return true, ""
}

// Normalize filters raw cards and reshapes them into flat records, collecting
// the taxonomy tables seen in this language along the way.
func Normalize(logger *slog.Logger, raws []RawCard, filter Filter) (*LangData, error) {
	data := &LangData{
		Cards:    make([]LangCard, 0, len(raws)),
		Types:    make(map[string]string),
		Subtypes: make(map[string]string),
		Factions: make(map[string]string),
		Rarities: make(map[string]string),
	}

	for _, raw := range raws {
		if raw.Reference == "" {
			return nil, fmt.Errorf("card: normalize: card %q has no reference", raw.Name)
		}
		if keep, reason := filter.Keep(raw); !keep {
			logger.Debug("skipping card", slog.String("card", raw.Reference), slog.String("reason", reason))
			continue
		}

		subtypes := make([]string, 0, len(raw.CardSubTypes))
		for _, st := range raw.CardSubTypes {
			subtypes = append(subtypes, st.Reference)
			data.Subtypes[st.Reference] = st.Name
		}

		elements := raw.Elements
		if elements == nil {
			elements = map[string]string{}
		}
		assets := raw.Assets
		if assets == nil {
			assets = AssetMap{}
		}

		data.Cards = append(data.Cards, LangCard{
			ID:                       CardID(raw.Reference),
			Name:                     raw.Name,
			Type:                     raw.CardType.Reference,
			Subtypes:                 subtypes,
			ImagePath:                raw.ImagePath,
			Assets:                   assets,
			MainFaction:              raw.MainFaction.Reference,
			Elements:                 elements,
			Rarity:                   raw.Rarity.Reference,
			CollectorNumberFormatted: raw.CollectorNumberFormatted,
		})
		data.Types[raw.CardType.Reference] = raw.CardType.Name
		data.Factions[raw.MainFaction.Reference] = raw.MainFaction.Name
		data.Rarities[raw.Rarity.Reference] = raw.Rarity.Name
	}

	return data, nil
}
