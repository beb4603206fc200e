package policy

import (
	"fmt"
	"unicode"

	"golang.org/x/text/language"
)

// scriptNames maps ISO 15924 codes to the tables of the unicode package.
var scriptNames = map[string][]string{
	"Arab": {"Arabic"},
	"Armn": {"Armenian"},
	"Beng": {"Bengali"},
	"Cyrl": {"Cyrillic"},
	"Deva": {"Devanagari"},
	"Ethi": {"Ethiopic"},
	"Geor": {"Georgian"},
	"Grek": {"Greek"},
	"Gujr": {"Gujarati"},
	"Guru": {"Gurmukhi"},
	"Hang": {"Hangul"},
	"Hani": {"Han"},
	"Hans": {"Han"},
	"Hant": {"Han"},
	"Hebr": {"Hebrew"},
	"Jpan": {"Hiragana", "Katakana", "Han"},
	"Khmr": {"Khmer"},
	"Knda": {"Kannada"},
	"Kore": {"Hangul", "Han"},
	"Laoo": {"Lao"},
	"Mlym": {"Malayalam"},
	"Mymr": {"Myanmar"},
	"Sinh": {"Sinhala"},
	"Taml": {"Tamil"},
	"Telu": {"Telugu"},
	"Thai": {"Thai"},
}

// scriptTables returns the unicode tables of the script lang is written in.
// It returns nil for Latin and for scripts it cannot tell apart.
func scriptTables(lang string) ([]*unicode.RangeTable, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("policy: invalid target language %q: %w", lang, err)
	}

	script, confidence := tag.Script()
	if confidence == language.No {
		return nil, nil
	}

	var tables []*unicode.RangeTable
	for _, name := range scriptNames[script.String()] {
		if t, ok := unicode.Scripts[name]; ok {
			tables = append(tables, t)
		}
	}
	return tables, nil
}
