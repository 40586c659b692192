package csvexport

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/altered-scribe/internal/card"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int { return &n }

func testCard(id card.CardID, number string, subtypes ...string) *card.Card {
	return &card.Card{
		ID:          id,
		Name:        card.Translations{"en": "Name " + string(id), "fr": "Nom " + string(id)},
		Type:        "CHARACTER",
		Subtypes:    subtypes,
		ImagePath:   card.Translations{"en": "https://img/en/" + string(id) + ".jpg"},
		Assets:      map[string][]string{"WEB": {"https://w/0.jpg", "https://w/1.jpg"}},
		MainFaction: "AX",
		Elements: card.Elements{
			Stats: map[string]*int{"MAIN_COST": intPtr(2), "RECALL_COST": intPtr(1), "PERMANENT": nil},
			Effects: map[string]card.Translations{
				"MAIN_EFFECT": {"en": "Main " + string(id), "fr": "Principal " + string(id)},
			},
			Other: map[string]string{},
		},
		Rarity:                   "COMMON",
		CollectorNumberFormatted: card.Translations{"en": number},
	}
}

func testDataset(cards ...*card.Card) *card.Dataset {
	ds := &card.Dataset{
		Cards:    map[card.CardID]*card.Card{},
		Types:    card.Taxonomy{"CHARACTER": {"en": "Character"}},
		Factions: card.Taxonomy{"AX": {"en": "Axiom"}},
		Rarities: card.Taxonomy{"COMMON": {"en": "Common"}},
		Subtypes: card.Taxonomy{
			"ADVENTURER": {"en": "Adventurer"},
			"ENGINEER":   {"en": "Engineer"},
			"SOLDIER":    {"en": "Soldier"},
			"MAGE":       {"en": "Mage"},
		},
	}
	for _, c := range cards {
		ds.Cards[c.ID] = c
	}
	return ds
}

func readCSV(t *testing.T, data []byte) []map[string]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	header := records[0]
	var rows []map[string]string
	for _, rec := range records[1:] {
		row := map[string]string{}
		for i, col := range header {
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func TestSortKey(t *testing.T) {
	assert.Equal(t, "COM-001-D", SortKey("COM-001-R"))
	assert.Equal(t, "COM-002-C", SortKey("COM-002-C"))
	assert.Equal(t, "BTG-004-D-EN", SortKey("BTG-004-R-EN"))
	assert.Equal(t, "weird", SortKey("weird"))
	assert.Less(t, SortKey("COM-001-R"), SortKey("COM-002-C"))
	assert.Less(t, SortKey("BTG-004-C-EN"), SortKey("BTG-004-R-EN"))
}

func TestSubtypeColumns_NoSharedColumnOnACard(t *testing.T) {
	cards := []*card.Card{
		testCard("A", "X-001-C", "ADVENTURER", "ENGINEER"),
		testCard("B", "X-002-C", "ADVENTURER", "SOLDIER"),
		testCard("C", "X-003-C", "ENGINEER", "SOLDIER", "MAGE"),
		testCard("D", "X-004-C", "ADVENTURER"),
		testCard("E", "X-005-C"),
	}

	cols := SubtypeColumns(cards)

	require.Len(t, cols, 4)
	assert.Equal(t, 0, cols["ADVENTURER"], "most frequent subtype takes the first column")
	for _, c := range cards {
		used := map[int]string{}
		for _, st := range c.Subtypes {
			if other, ok := used[cols[st]]; ok {
				t.Errorf("card %s: %s and %s share column %d", c.ID, st, other, cols[st])
			}
			used[cols[st]] = st
		}
	}
}

func TestSubtypeColumns_IndependentSubtypesShareColumn(t *testing.T) {
	cols := SubtypeColumns([]*card.Card{
		testCard("A", "X-001-C", "ADVENTURER"),
		testCard("B", "X-002-C", "MAGE"),
	})
	assert.Equal(t, map[string]int{"ADVENTURER": 0, "MAGE": 0}, cols)
	assert.Equal(t, 1, columnCount(cols))
	assert.Equal(t, 0, columnCount(nil))
}

func TestWrite_ColumnarLayout(t *testing.T) {
	ds := testDataset(
		testCard("ALT_B", "COM-002-C", "ADVENTURER", "ENGINEER"),
		testCard("ALT_A", "COM-001-R", "ADVENTURER"),
	)
	e := New(newTestLogger(), Options{
		MainLanguage:     "en",
		NameLanguages:    []card.Language{"en", "fr"},
		AbilityLanguages: []card.Language{"en"},
	})

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, ds))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"collectorNumber", "name_en", "name_fr", "faction", "rarity", "type",
		"subtype_1", "subtype_2",
		"handCost", "reserveCost", "forestPower", "mountainPower", "waterPower", "landmarksSize", "reserveSize",
		"abilities_en", "supportAbility_en", "id", "imagePath",
	}, records[0])

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, "COM-001-R", rows[0]["collectorNumber"], "R is remapped to D before comparing")
	assert.Equal(t, "COM-002-C", rows[1]["collectorNumber"])

	first := rows[0]
	assert.Equal(t, "Name ALT_A", first["name_en"])
	assert.Equal(t, "Nom ALT_A", first["name_fr"])
	assert.Equal(t, "Axiom", first["faction"])
	assert.Equal(t, "Common", first["rarity"])
	assert.Equal(t, "Character", first["type"])
	assert.Equal(t, "Adventurer", first["subtype_1"])
	assert.Equal(t, "2", first["handCost"])
	assert.Equal(t, "1", first["reserveCost"])
	assert.Equal(t, "", first["landmarksSize"], "absent stats stay empty")
	assert.Equal(t, "Main ALT_A", first["abilities_en"])
	assert.Equal(t, "", first["supportAbility_en"])
	assert.Equal(t, "https://img/en/ALT_A.jpg", first["imagePath"])

	assert.Equal(t, "Engineer", rows[1]["subtype_2"])
}

func TestWrite_GroupedSubtypesAndWebAssets(t *testing.T) {
	ds := testDataset(testCard("ALT_A", "COM-001-C", "SOLDIER", "ENGINEER", "UNKNOWN"))
	e := New(newTestLogger(), Options{
		MainLanguage:     "en",
		GroupSubtypes:    true,
		IncludeWebAssets: true,
	})

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, ds))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 1)

	assert.Equal(t, "Engineer, Soldier, UNKNOWN", rows[0]["subtypes"])
	assert.Equal(t, "https://w/0.jpg", rows[0]["webAsset0"])
	assert.Equal(t, "https://w/1.jpg", rows[0]["webAsset1"])
	assert.Contains(t, rows[0], "webAsset2")
	assert.Equal(t, "", rows[0]["webAsset2"])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	e := New(newTestLogger(), Options{MainLanguage: "fr"})

	path, err := e.WriteFile(dir, testDataset(testCard("ALT_A", "COM-001-C")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cards_fr.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows := readCSV(t, data)
	require.Len(t, rows, 1)
	// No French taxonomy names: the raw id is used.
	assert.Equal(t, "AX", rows[0]["faction"])
}

func TestWrite_ManyCardsSorted(t *testing.T) {
	numbers := []string{"BTG-010-C-EN", "BTG-002-R-EN", "BTG-002-C-EN", "BTG-001-R-EN"}
	var cards []*card.Card
	for i, n := range numbers {
		cards = append(cards, testCard(card.CardID("ALT_" + string(rune('A'+i))), n))
	}
	var buf bytes.Buffer
	require.NoError(t, New(newTestLogger(), Options{MainLanguage: "en"}).Write(&buf, testDataset(cards...)))

	var got []string
	for _, row := range readCSV(t, buf.Bytes()) {
		got = append(got, row["collectorNumber"])
	}
	want := []string{"BTG-001-R-EN", "BTG-002-C-EN", "BTG-002-R-EN", "BTG-010-C-EN"}
	assert.Equal(t, want, got)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return SortKey(got[i]) < SortKey(got[j]) }))
}
