package card

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
)

// Mismatch records a language-invariant field whose value differs between
// languages. The first-seen value is kept.
type Mismatch struct {
	Card     CardID
	Field    string
	Language Language
	Kept     string
	Got      string
}

// Missing records a card absent from one of the merged languages.
type Missing struct {
	Card     CardID
	Language Language
}

// Report collects the inconsistencies found while merging.
type Report struct {
	Mismatches []Mismatch
	Missing    []Missing
	// Dropped lists cards removed because they were not present in every
	// language under the strict policy.
	Dropped []CardID
}

// Warnings renders the report as human-readable lines.
func (r *Report) Warnings() []string {
	var out []string
	for _, m := range r.Missing {
		out = append(out, fmt.Sprintf("card %s not found in %s", m.Card, m.Language))
	}
	for _, id := range r.Dropped {
		out = append(out, fmt.Sprintf("card %s dropped: not present in every language", id))
	}
	for _, m := range r.Mismatches {
		out = append(out, fmt.Sprintf("property %s is different for card %s (%s): %s != %s",
			m.Field, m.Card, m.Language, m.Kept, m.Got))
	}
	return out
}

// Merger combines per-language card sets into multilingual cards.
type Merger struct {
	log *slog.Logger
	// Strict drops cards missing from any language instead of keeping gaps.
	Strict bool

	report *Report
}

// NewMerger creates a Merger.
func NewMerger(logger *slog.Logger, strict bool) *Merger {
	return &Merger{
		log:    logger.With("component", "merge"),
		Strict: strict,
	}
}

// Merge builds one Card per distinct id across all languages. Languages are
// visited in sorted order so the result is independent of fetch order.
func (m *Merger) Merge(perLang map[Language][]LangCard) (map[CardID]*Card, *Report) {
	m.report = &Report{}

	languages := slices.Sorted(maps.Keys(perLang))

	byLang := make(map[Language]map[CardID]*LangCard, len(perLang))
	allIDs := make(map[CardID]struct{})
	for _, lang := range languages {
		index := make(map[CardID]*LangCard, len(perLang[lang]))
		for i := range perLang[lang] {
			lc := &perLang[lang][i]
			index[lc.ID] = lc
			allIDs[lc.ID] = struct{}{}
		}
		byLang[lang] = index
	}

	ids := slices.Sorted(maps.Keys(allIDs))

	merged := make(map[CardID]*Card, len(ids))
	for _, id := range ids {
		complete := true
		for _, lang := range languages {
			if _, ok := byLang[lang][id]; !ok {
				complete = false
				m.log.Warn("card not found in language", slog.String("card", string(id)), slog.String("language", string(lang)))
				m.report.Missing = append(m.report.Missing, Missing{Card: id, Language: lang})
			}
		}
		if !complete && m.Strict {
			m.report.Dropped = append(m.report.Dropped, id)
			continue
		}

		c := newCard(id)
		first := true
		for _, lang := range languages {
			lc, ok := byLang[lang][id]
			if !ok {
				continue
			}
			m.mergeLanguage(c, lang, lc, first)
			first = false
		}
		merged[id] = c
	}

	return merged, m.report
}

func newCard(id CardID) *Card {
	c := &Card{
		ID:                       id,
		Name:                     Translations{},
		ImagePath:                Translations{},
		CollectorNumberFormatted: Translations{},
	}
	c.Elements.init()
	return c
}

func (m *Merger) mergeLanguage(c *Card, lang Language, lc *LangCard, first bool) {
	printed := PrintedCollectorNumber(lc.CollectorNumberFormatted)

	if first {
		c.Type = lc.Type
		c.Subtypes = slices.Clone(lc.Subtypes)
		c.Assets = cloneAssets(lc.Assets)
		c.MainFaction = lc.MainFaction
		c.Rarity = lc.Rarity
		c.CollectorNumberPrinted = printed
	} else {
		m.ensure(c.ID, lang, "type", c.Type, lc.Type)
		m.ensure(c.ID, lang, "subtypes", strings.Join(c.Subtypes, ","), strings.Join(lc.Subtypes, ","))
		m.ensure(c.ID, lang, "assets", assetsString(c.Assets), assetsString(lc.Assets))
		m.ensure(c.ID, lang, "mainFaction", c.MainFaction, lc.MainFaction)
		m.ensure(c.ID, lang, "rarity", c.Rarity, lc.Rarity)
		m.ensure(c.ID, lang, "collectorNumberPrinted", c.CollectorNumberPrinted, printed)
	}

	c.Name[lang] = lc.Name
	c.ImagePath[lang] = lc.ImagePath
	c.CollectorNumberFormatted[lang] = lc.CollectorNumberFormatted

	for _, key := range slices.Sorted(maps.Keys(lc.Elements)) {
		value := lc.Elements[key]
		switch {
		case IsEffectElement(key):
			if c.Elements.Effects[key] == nil {
				c.Elements.Effects[key] = Translations{}
			}
			c.Elements.Effects[key][lang] = value
		case IsNumericElement(key):
			n, err := ParseStat(value)
			if err != nil {
				m.log.Warn("invalid numeric element", slog.String("card", string(c.ID)),
					slog.String("element", key), slog.String("error", err.Error()))
				m.report.Mismatches = append(m.report.Mismatches, Mismatch{
					Card: c.ID, Field: "elements." + key, Language: lang, Kept: "", Got: value,
				})
			}
			if prev, ok := c.Elements.Stats[key]; ok {
				m.ensure(c.ID, lang, "elements."+key, statString(prev), statString(n))
				continue
			}
			c.Elements.Stats[key] = n
		default:
			if prev, ok := c.Elements.Other[key]; ok {
				m.ensure(c.ID, lang, "elements."+key, prev, value)
				continue
			}
			c.Elements.Other[key] = value
		}
	}
}

// ensure logs and records a mismatch when got differs from kept.
func (m *Merger) ensure(id CardID, lang Language, field, kept, got string) {
	if kept == got {
		return
	}
	m.log.Warn("property differs between languages",
		slog.String("card", string(id)),
		slog.String("field", field),
		slog.String("language", string(lang)),
		slog.String("kept", kept),
		slog.String("got", got),
	)
	m.report.Mismatches = append(m.report.Mismatches, Mismatch{
		Card: id, Field: field, Language: lang, Kept: kept, Got: got,
	})
}

func statString(v *int) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(*v)
}

func cloneAssets(a AssetMap) map[string][]string {
	out := make(map[string][]string, len(a))
	for k, v := range a {
		out[k] = slices.Clone(v)
	}
	return out
}

func assetsString(a map[string][]string) string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s;", k, strings.Join(a[k], ","))
	}
	return b.String()
}

// MergeTaxonomies combines per-language id → name tables into one taxonomy.
func MergeTaxonomies(perLang map[Language]map[string]string) Taxonomy {
	merged := make(Taxonomy)
	for lang, table := range perLang {
		for id, name := range table {
			if merged[id] == nil {
				merged[id] = Translations{}
			}
			merged[id][lang] = name
		}
	}
	return merged
}
