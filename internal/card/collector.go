package card

import "strings"

// CollectorNumber is a formatted collector number split into its segments,
// e.g. "BTG-004-C-EN" has prefix "BTG-004", rarity "C" and suffix "EN".
type CollectorNumber struct {
	Prefix string
	Rarity string
	Suffix string
}

// ParseCollectorNumber splits a formatted collector number. ok is false when
// the number has no single-letter rarity segment in third position.
func ParseCollectorNumber(formatted string) (cn CollectorNumber, ok bool) {
	parts := strings.Split(formatted, "-")
	if len(parts) < 3 || !isRarityLetter(parts[2]) {
		return CollectorNumber{Prefix: formatted}, false
	}
	return CollectorNumber{
		Prefix: parts[0] + "-" + parts[1],
		Rarity: parts[2],
		Suffix: strings.Join(parts[3:], "-"),
	}, true
}

func isRarityLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

// String rebuilds the formatted number.
func (cn CollectorNumber) String() string {
	if cn.Rarity == "" {
		return cn.Prefix
	}
	s := cn.Prefix + "-" + cn.Rarity
	if cn.Suffix != "" {
		s += "-" + cn.Suffix
	}
	return s
}

// PrintedCollectorNumber strips the rarity-letter segment and everything after
// it, leaving the language-independent part printed on the card.
func PrintedCollectorNumber(formatted string) string {
	cn, _ := ParseCollectorNumber(formatted)
	return cn.Prefix
}
