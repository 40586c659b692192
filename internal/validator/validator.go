package validator

import (
	"fmt"

	"github.com/arcanaland/altered-scribe/internal/card"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Validator checks a merged data set for internal consistency.
type Validator struct {
	Dataset   *card.Dataset
	Languages []card.Language
	Results   ValidationResults
}

func NewValidator(ds *card.Dataset, languages []card.Language) *Validator {
	return &Validator{
		Dataset:   ds,
		Languages: languages,
		Results:   ValidationResults{},
	}
}

// Validate runs every check in card id order.
func (v *Validator) Validate() ValidationResults {
	for _, id := range v.Dataset.SortedIDs() {
		c := v.Dataset.Cards[id]
		if c == nil {
			v.errorf("%s: empty card entry", id)
			continue
		}
		v.validateIdentity(id, c)
		v.validateTaxonomies(c)
		v.validateTranslations(c)
		v.validateCollectorNumbers(c)
	}
	return v.Results
}

func (v *Validator) errorf(format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

func (v *Validator) validateIdentity(key card.CardID, c *card.Card) {
	if c.ID != key {
		v.errorf("%s: card is stored under a different id (%s)", key, c.ID)
	}
}

// validateTaxonomies checks that every id a card points to is defined
func (v *Validator) validateTaxonomies(c *card.Card) {
	ds := v.Dataset
	if _, ok := ds.Types[c.Type]; !ok {
		v.errorf("%s: unknown type %q", c.ID, c.Type)
	}
	if _, ok := ds.Factions[c.MainFaction]; !ok {
		v.errorf("%s: unknown faction %q", c.ID, c.MainFaction)
	}
	if _, ok := ds.Rarities[c.Rarity]; !ok {
		v.errorf("%s: unknown rarity %q", c.ID, c.Rarity)
	}
	for _, st := range c.Subtypes {
		if _, ok := ds.Subtypes[st]; !ok {
			v.errorf("%s: unknown subtype %q", c.ID, st)
		}
	}
}

func (v *Validator) validateTranslations(c *card.Card) {
	for _, lang := range v.Languages {
		if c.Name[lang] == "" {
			v.warnf("%s: no name in %s", c.ID, lang)
		}
		if c.ImagePath[lang] == "" {
			v.warnf("%s: no image in %s", c.ID, lang)
		}
	}
}

func (v *Validator) validateCollectorNumbers(c *card.Card) {
	for _, lang := range c.CollectorNumberFormatted.Languages() {
		number := c.CollectorNumberFormatted[lang]
		if _, ok := card.ParseCollectorNumber(number); !ok {
			v.warnf("%s: collector number %q (%s) has no rarity segment", c.ID, number, lang)
		}
	}
}
