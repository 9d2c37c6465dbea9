// Package stats turns per-repository language byte counts into chart ready percentages.
package stats

import (
	"sort"
	"strings"

	"github.com/Scalingo/sclng-language-stats/model"
)

// Totals accumulates language byte counts across repositories
// languages are kept in order of first appearance
type Totals struct {
	foldCase  bool
	order     []string
	spellings map[string]map[string]int64
	bytes     map[string]int64
}

// NewTotals returns an empty accumulator
// with foldCase, keys differing only by case (or surrounding spaces) are merged
// and displayed with the spelling holding the most bytes, ties going to the smallest name
func NewTotals(foldCase bool) *Totals {
	return &Totals{
		foldCase:  foldCase,
		spellings: make(map[string]map[string]int64),
		bytes:     make(map[string]int64),
	}
}

// Fold sums all maps into one Totals
func Fold(foldCase bool, maps ...model.LanguageByteMap) *Totals {
	totals := NewTotals(foldCase)
	for _, languages := range maps {
		totals.Add(languages)
	}

	return totals
}

func (t *Totals) key(language string) string {
	if !t.foldCase {
		return language
	}

	return strings.ToLower(strings.TrimSpace(language))
}

// Add folds the languages of one repository
// map iteration order does not matter for the sums, but it does for the first appearance order
// so keys of a single map are visited sorted by name
func (t *Totals) Add(languages model.LanguageByteMap) {
	for _, language := range sortedKeys(languages) {
		bytes := languages[language]
		if bytes < 0 {
			bytes = 0
		}

		display := language
		if t.foldCase {
			display = strings.TrimSpace(language)
		}

		k := t.key(language)
		if _, seen := t.spellings[k]; !seen {
			t.spellings[k] = make(map[string]int64)
			t.order = append(t.order, k)
		}

		t.spellings[k][display] += int64(bytes)
		t.bytes[k] += int64(bytes)
	}
}

// name returns the display name of a key, it only depends on the sums so any fold order gives the same name
func (t *Totals) name(k string) string {
	var (
		best      string
		bestBytes int64 = -1
	)

	for spelling, bytes := range t.spellings[k] {
		if bytes > bestBytes || (bytes == bestBytes && spelling < best) {
			best = spelling
			bestBytes = bytes
		}
	}

	return best
}

// Len is the number of distinct languages
func (t *Totals) Len() int {
	return len(t.order)
}

// Total is the sum of all bytes
func (t *Totals) Total() int64 {
	var total int64
	for _, bytes := range t.bytes {
		total += bytes
	}

	return total
}

// Entries returns the totals in first appearance order
func (t *Totals) Entries() []model.LanguageTotal {
	entries := make([]model.LanguageTotal, 0, len(t.order))
	for _, k := range t.order {
		entries = append(entries, model.LanguageTotal{
			Name:  t.name(k),
			Bytes: t.bytes[k],
		})
	}

	return entries
}

// Map returns the totals indexed by display name
func (t *Totals) Map() map[string]int64 {
	return model.TotalsMap(t.Entries())
}

func sortedKeys(languages model.LanguageByteMap) []string {
	keys := make([]string, 0, len(languages))
	for language := range languages {
		keys = append(keys, language)
	}

	sort.Strings(keys)
	return keys
}
