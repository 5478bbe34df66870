// Package nutrition resolves best-effort nutrition facts for a food name.
package nutrition

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
)

// Synonyms maps known misspellings of dish names onto one canonical
// spelling. It is domain data, not logic: deployments load their own table
// at startup and new synonyms never require a code change.
type Synonyms map[string]string

// DefaultSynonyms returns the built-in folding table shipped with the app.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		// common misspellings of Thai basil stir-fry
		"ผัดกระเพรา":  "ผัดกะเพรา",
		"ผัดกะเพราะ":  "ผัดกะเพรา",
		"ผัดกระเพราะ": "ผัดกะเพรา",
	}
}

// LoadSynonyms reads a synonym table from a JSON file of
// {"misspelling": "canonical"} pairs. An empty path yields the built-in
// table.
func LoadSynonyms(path string) (Synonyms, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var syn Synonyms
	if err := json.Unmarshal(data, &syn); err != nil {
		return nil, err
	}
	return syn, nil
}

// Fold replaces every known misspelling in name with its canonical form.
// Replacement order is deterministic (sorted keys).
func (s Synonyms) Fold(name string) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name = strings.ReplaceAll(name, k, s[k])
	}
	return name
}

// Normalize derives the normalized representation of a food name: trimmed,
// lower-cased, internal whitespace stripped, synonyms folded.
func (s Synonyms) Normalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.Join(strings.Fields(name), "")
	return s.Fold(name)
}
