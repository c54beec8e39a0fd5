package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// RulesetFile is the default filename for a scoring ruleset
const RulesetFile = "reqmap.rules.toml"

// Ruleset overrides the scoring weights and extends the stop-word list.
// It is optional; DefaultRuleset matches the built-in scoring table.
type Ruleset struct {
	// Weights for the four lexical match rules
	Weights ScoreWeights `toml:"weights"`

	// ExtraStopWords are appended to the built-in English stop-word list
	ExtraStopWords []string `toml:"extra_stop_words,omitempty"`

	// ProximityLines is the clustering gap: matched lines closer than this
	// merge into one window
	ProximityLines int `toml:"proximity_lines"`
}

// ScoreWeights holds the points awarded per match rule
type ScoreWeights struct {
	Exact     float64 `toml:"exact"`
	Substring float64 `toml:"substring"`
	WordPart  float64 `toml:"word_part"`
	// FullText is awarded per occurrence in raw file text
	FullText float64 `toml:"full_text"`
}

// DefaultRuleset returns the built-in scoring table
func DefaultRuleset() Ruleset {
	return Ruleset{
		Weights: ScoreWeights{
			Exact:     10.0,
			Substring: 5.0,
			WordPart:  3.0,
			FullText:  0.5,
		},
		ProximityLines: 3,
	}
}

// LoadRuleset parses a TOML ruleset file. Zero-valued weights fall back
// to the defaults so a ruleset may override a single weight.
func LoadRuleset(path string) (Ruleset, error) {
	rs := DefaultRuleset()

	data, err := os.ReadFile(path)
	if err != nil {
		return rs, fmt.Errorf("failed to read ruleset: %w", err)
	}

	var file Ruleset
	if err := toml.Unmarshal(data, &file); err != nil {
		return rs, fmt.Errorf("failed to parse ruleset: %w", err)
	}

	if file.Weights.Exact > 0 {
		rs.Weights.Exact = file.Weights.Exact
	}
	if file.Weights.Substring > 0 {
		rs.Weights.Substring = file.Weights.Substring
	}
	if file.Weights.WordPart > 0 {
		rs.Weights.WordPart = file.Weights.WordPart
	}
	if file.Weights.FullText > 0 {
		rs.Weights.FullText = file.Weights.FullText
	}
	if file.ProximityLines > 0 {
		rs.ProximityLines = file.ProximityLines
	}
	rs.ExtraStopWords = append(rs.ExtraStopWords, file.ExtraStopWords...)

	return rs, nil
}
