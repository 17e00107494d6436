// Package posting aggregates the lines each word occurs on within one file
// and encodes those line sets for storage.
package posting

import (
	"slices"
	"strconv"
	"strings"
)

// Aggregator collects word→line sets for a single file. The zero value is
// ready to use.
type Aggregator struct {
	lines map[string][]int
}

// Add records that every token occurs on line.
func (a *Aggregator) Add(line int, tokens []string) {
	if a.lines == nil {
		a.lines = make(map[string][]int)
	}
	for _, tok := range tokens {
		a.lines[tok] = append(a.lines[tok], line)
	}
}

// Len reports the number of distinct words seen.
func (a *Aggregator) Len() int {
	return len(a.lines)
}

// Postings returns each word with its sorted, de-duplicated line numbers.
func (a *Aggregator) Postings() map[string][]int {
	out := make(map[string][]int, len(a.lines))
	for word, lines := range a.lines {
		sorted := slices.Clone(lines)
		slices.Sort(sorted)
		out[word] = slices.Compact(sorted)
	}
	return out
}

// Words returns the distinct words in lexical order.
func (a *Aggregator) Words() []string {
	words := make([]string, 0, len(a.lines))
	for w := range a.lines {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

// FormatLines joins line numbers with commas.
func FormatLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, n := range lines {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ParseLines splits a stored line list. Empty and non-numeric parts are skipped.
func ParseLines(s string) []int {
	var lines []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		lines = append(lines, n)
	}
	return lines
}
