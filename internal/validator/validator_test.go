package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/altered-scribe/internal/card"
)

func validDataset() *card.Dataset {
	return &card.Dataset{
		Cards: map[card.CardID]*card.Card{
			"ALT_CORE_B_AX_04_C": {
				ID:                       "ALT_CORE_B_AX_04_C",
				Name:                     card.Translations{"en": "Sierra", "fr": "Sierra"},
				Type:                     "CHARACTER",
				Subtypes:                 []string{"ENGINEER"},
				ImagePath:                card.Translations{"en": "https://img/en.jpg", "fr": "https://img/fr.jpg"},
				MainFaction:              "AX",
				Rarity:                   "COMMON",
				CollectorNumberFormatted: card.Translations{"en": "BTG-004-C-EN", "fr": "BTG-004-C-FR"},
				CollectorNumberPrinted:   "BTG-004",
			},
		},
		Types:    card.Taxonomy{"CHARACTER": {"en": "Character"}},
		Subtypes: card.Taxonomy{"ENGINEER": {"en": "Engineer"}},
		Factions: card.Taxonomy{"AX": {"en": "Axiom"}},
		Rarities: card.Taxonomy{"COMMON": {"en": "Common"}},
	}
}

func TestValidate_Clean(t *testing.T) {
	results := NewValidator(validDataset(), []card.Language{"en", "fr"}).Validate()
	assert.Empty(t, results.Errors)
	assert.Empty(t, results.Warnings)
}

func TestValidate_UnknownTaxonomyIDs(t *testing.T) {
	ds := validDataset()
	c := ds.Cards["ALT_CORE_B_AX_04_C"]
	c.Type = "SPELL"
	c.Subtypes = append(c.Subtypes, "MAGE")
	delete(ds.Factions, "AX")

	results := NewValidator(ds, nil).Validate()
	require.Len(t, results.Errors, 3)
	assert.Contains(t, results.Errors[0], `unknown type "SPELL"`)
	assert.Contains(t, results.Errors[1], `unknown faction "AX"`)
	assert.Contains(t, results.Errors[2], `unknown subtype "MAGE"`)
}

func TestValidate_KeyMismatch(t *testing.T) {
	ds := validDataset()
	ds.Cards["OTHER"] = ds.Cards["ALT_CORE_B_AX_04_C"]

	results := NewValidator(ds, nil).Validate()
	require.Len(t, results.Errors, 1)
	assert.Contains(t, results.Errors[0], "OTHER")
}

func TestValidate_Warnings(t *testing.T) {
	ds := validDataset()
	c := ds.Cards["ALT_CORE_B_AX_04_C"]
	c.CollectorNumberFormatted["fr"] = "BTG004"

	results := NewValidator(ds, []card.Language{"en", "de"}).Validate()
	assert.Empty(t, results.Errors)
	assert.Equal(t, []string{
		"ALT_CORE_B_AX_04_C: no name in de",
		"ALT_CORE_B_AX_04_C: no image in de",
		`ALT_CORE_B_AX_04_C: collector number "BTG004" (fr) has no rarity segment`,
	}, results.Warnings)
}
