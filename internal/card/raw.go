package card

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Ref is an id/display-name pair as sent by the catalog API.
type Ref struct {
	Reference string `json:"reference"`
	Name      string `json:"name"`
}

// AssetMap maps an asset type (e.g. "WEB") to its URLs.
type AssetMap map[string][]string

// UnmarshalJSON accepts the empty JSON array the API sends for cards
// without assets.
func (a *AssetMap) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null")) {
		*a = AssetMap{}
		return nil
	}
	var m map[string][]string
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*a = m
	return nil
}

// RawCard is one card as returned by the catalog API for a single language.
type RawCard struct {
	Reference                string            `json:"reference"`
	Name                     string            `json:"name"`
	CardType                 Ref               `json:"cardType"`
	CardSubTypes             []Ref             `json:"cardSubTypes"`
	MainFaction              Ref               `json:"mainFaction"`
	Rarity                   Ref               `json:"rarity"`
	CollectorNumberFormatted string            `json:"collectorNumberFormatted"`
	Elements                 map[string]string `json:"elements"`
	ImagePath                string            `json:"imagePath"`
	Assets                   AssetMap          `json:"assets"`
}

// Reference layout: ALT_<SET>_<KIND>_<FACTION>_<NUMBER>_<RARITY>[_...]
func referenceSegment(reference string, i int) string {
	parts := strings.Split(reference, "_")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

// IsPromo reports whether the reference is a promotional print.
func (r RawCard) IsPromo() bool {
	return referenceSegment(r.Reference, 2) == "P"
}

// IsSpecialEdition reports whether the reference is a KS print.
func (r RawCard) IsSpecialEdition() bool {
	return isSpecialEdition(r.Reference)
}

// IsFoil reports whether the reference is a foil variant.
func (r RawCard) IsFoil() bool {
	return strings.HasSuffix(r.Reference, "_FOIL")
}

// IsUnique reports whether the card has the unique rarity.
func (r RawCard) IsUnique() bool {
	return r.Rarity.Reference == RarityUnique
}

func isSpecialEdition(reference string) bool {
	return strings.HasSuffix(referenceSegment(reference, 1), "KS")
}

// Rarity references used by the catalog.
const (
	RarityCommon = "COMMON"
	RarityRare   = "RARE"
	RarityUnique = "UNIQUE"
)
