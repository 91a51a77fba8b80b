package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize lowercases `text` and collapses its whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ContainsAny reports whether the normalized `text` contains any of the (already lowercase) `needles`.
func ContainsAny(text string, needles []string) bool {
	text = Normalize(text)
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// Option is anything that can be picked by either its value or its label.
type Option interface {
	OptionValue() string
	OptionLabel() string
}

// DefaultResolveThreshold is the minimum Jaro-Winkler similarity for a fuzzy match.
const DefaultResolveThreshold = 0.85

// ResolveOption picks the option matching `query`. exact value matches win,
// then case-insensitive label matches, then the label with the highest
// Jaro-Winkler similarity at or above `threshold`.
func ResolveOption[T Option](query string, options []T, threshold float64) (T, bool) {
	var zero T
	query = strings.TrimSpace(query)
	if query == "" {
		return zero, false
	}

	for _, o := range options {
		if o.OptionValue() == query {
			return o, true
		}
	}

	normalized := Normalize(query)
	for _, o := range options {
		if Normalize(o.OptionLabel()) == normalized {
			return o, true
		}
	}

	best := -1
	bestScore := 0.0
	for i, o := range options {
		score := matchr.JaroWinkler(normalized, Normalize(o.OptionLabel()), false)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < threshold {
		return zero, false
	}
	return options[best], true
}
