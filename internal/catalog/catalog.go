// Package catalog persists the merged card data set as JSON files.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arcanaland/altered-scribe/internal/card"
)

// File names of the persisted data set.
const (
	CardsFile    = "cards.json"
	TypesFile    = "types.json"
	SubtypesFile = "subtypes.json"
	FactionsFile = "factions.json"
	RaritiesFile = "rarities.json"
)

// ErrMissingInput marks a stage whose input files have not been produced yet.
var ErrMissingInput = errors.New("missing input file")

// MissingFileError names the input file that could not be found.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("file %s not found", e.Path)
}

// Unwrap lets callers match ErrMissingInput.
func (e *MissingFileError) Unwrap() error { return ErrMissingInput }

// Save writes the data set to dir, creating it if needed.
func Save(dir string, ds *card.Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("catalog: create %s: %w", dir, err)
	}

	files := []struct {
		name string
		v    any
	}{
		{CardsFile, ds.Cards},
		{TypesFile, ds.Types},
		{SubtypesFile, ds.Subtypes},
		{FactionsFile, ds.Factions},
		{RaritiesFile, ds.Rarities},
	}
	for _, f := range files {
		if err := WriteJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a data set previously written by Save.
func Load(dir string) (*card.Dataset, error) {
	ds := &card.Dataset{}

	// Check every file first so the user hears about the first missing one
	// before anything is decoded.
	for _, name := range []string{CardsFile, FactionsFile, TypesFile, SubtypesFile, RaritiesFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &MissingFileError{Path: path}
		}
	}

	targets := []struct {
		name string
		v    any
	}{
		{CardsFile, &ds.Cards},
		{TypesFile, &ds.Types},
		{SubtypesFile, &ds.Subtypes},
		{FactionsFile, &ds.Factions},
		{RaritiesFile, &ds.Rarities},
	}
	for _, t := range targets {
		if err := ReadJSON(filepath.Join(dir, t.name), t.v); err != nil {
			return nil, err
		}
	}
	if err := checkCards(filepath.Join(dir, CardsFile), ds.Cards); err != nil {
		return nil, err
	}
	return ds, nil
}

// LoadCards reads only cards.json from dir.
func LoadCards(dir string) (map[card.CardID]*card.Card, error) {
	path := filepath.Join(dir, CardsFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &MissingFileError{Path: path}
	}
	var cards map[card.CardID]*card.Card
	if err := ReadJSON(path, &cards); err != nil {
		return nil, err
	}
	if err := checkCards(path, cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// checkCards rejects null card entries.
func checkCards(path string, cards map[card.CardID]*card.Card) error {
	for id, c := range cards {
		if c == nil {
			return fmt.Errorf("catalog: decode %s: card %s is null", path, id)
		}
	}
	return nil
}

// WriteJSON writes v to path with two-space indentation. Non-ASCII text is
// written as-is.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("catalog: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("catalog: write %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return nil
}

// DumpTemp writes an intermediate per-language artifact (raw pages,
// normalized cards, taxonomy tables) for debugging.
func DumpTemp(dir, kind string, lang card.Language, v any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("catalog: create %s: %w", dir, err)
	}
	return WriteJSON(filepath.Join(dir, fmt.Sprintf("%s_%s.json", kind, lang)), v)
}
