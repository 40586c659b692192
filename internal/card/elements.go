package card

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Elements holds the gameplay elements of a merged card.
//
// On disk the three maps are flattened into a single JSON object keyed by the
// element name, matching what the catalog API sends:
//
//	{"MAIN_COST": 3, "RESERVE": null, "MAIN_EFFECT": {"en": "...", "fr": "..."}}
type Elements struct {
	// Stats are numeric elements; nil means the card has no value.
	Stats map[string]*int
	// Effects are ability texts per language.
	Effects map[string]Translations
	// Other holds any remaining language-invariant element verbatim.
	Other map[string]string
}

// IsEffectElement reports whether key names a textual ability element.
func IsEffectElement(key string) bool {
	return strings.Contains(key, "EFFECT")
}

// IsNumericElement reports whether key names a cost, power or size element.
func IsNumericElement(key string) bool {
	return strings.Contains(key, "COST") || strings.Contains(key, "POWER") ||
		key == "PERMANENT" || key == "RESERVE"
}

// ParseStat converts a raw element value to an integer. The empty string is
// an absent value, not zero.
func ParseStat(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric element %q: %w", raw, err)
	}
	return &n, nil
}

// Stat returns the value of a numeric element and whether it is set.
func (e Elements) Stat(key string) (int, bool) {
	v, ok := e.Stats[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Effect returns the text of an effect element in lang.
func (e Elements) Effect(key string, lang Language) string {
	return e.Effects[key][lang]
}

// Len returns the number of elements.
func (e Elements) Len() int {
	return len(e.Stats) + len(e.Effects) + len(e.Other)
}

func (e *Elements) init() {
	if e.Stats == nil {
		e.Stats = make(map[string]*int)
	}
	if e.Effects == nil {
		e.Effects = make(map[string]Translations)
	}
	if e.Other == nil {
		e.Other = make(map[string]string)
	}
}

// MarshalJSON flattens the element maps into one object. Ability text is
// written without HTML escaping.
func (e Elements) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, e.Len())
	for k, v := range e.Stats {
		flat[k] = v
	}
	for k, v := range e.Effects {
		flat[k] = v
	}
	for k, v := range e.Other {
		flat[k] = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(flat); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON splits a flat element object back into typed maps and
// rejects values whose shape does not match the element kind.
func (e *Elements) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	*e = Elements{}
	e.init()
	for key, raw := range flat {
		switch {
		case IsEffectElement(key):
			var t Translations
			if err := json.Unmarshal(raw, &t); err != nil {
				return fmt.Errorf("element %s: expected translations: %w", key, err)
			}
			e.Effects[key] = t
		case IsNumericElement(key):
			if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				e.Stats[key] = nil
				continue
			}
			var n int
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("element %s: expected integer or null: %w", key, err)
			}
			e.Stats[key] = &n
		default:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("element %s: expected string: %w", key, err)
			}
			e.Other[key] = s
		}
	}
	return nil
}
