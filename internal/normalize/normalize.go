// Package normalize turns free-form market text into canonical team names
// and token sets that the matching engine can compare across venues.
package normalize

import (
	"regexp"
	"strings"
	"sync"
)

const cacheSize = 4096

var (
	nonAlnumRE   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Normalizer canonicalizes names with a bounded memo cache. The zero value is
// not usable; construct with New. Safe for concurrent use.
type Normalizer struct {
	mu    sync.Mutex
	cache *lruCache
}

// New returns a Normalizer with the default cache capacity.
func New() *Normalizer {
	return &Normalizer{cache: newLRU(cacheSize)}
}

// Canonicalize lowercases a name, strips punctuation, collapses whitespace,
// and resolves team aliases: an exact alias hit maps directly, otherwise
// every alias found as a substring is replaced by its canonical form.
// Idempotent: canonical names pass through unchanged.
func (n *Normalizer) Canonicalize(name string) string {
	if name == "" {
		return ""
	}

	n.mu.Lock()
	if v, ok := n.cache.get(name); ok {
		n.mu.Unlock()
		return v
	}
	n.mu.Unlock()

	out := canonicalize(name)

	n.mu.Lock()
	n.cache.put(name, out)
	n.mu.Unlock()
	return out
}

func canonicalize(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = nonAlnumRE.ReplaceAllString(s, "")
	s = whitespaceRE.ReplaceAllString(s, " ")

	if full, ok := aliasExact[s]; ok {
		return full
	}
	for _, p := range teamAliases {
		// Skip when the canonical form is already in the string, both to
		// avoid re-expanding a name that is already canonical and to keep
		// the function idempotent across repeated calls.
		if strings.Contains(s, p.alias) && !strings.Contains(s, p.canonical) {
			s = strings.ReplaceAll(s, p.alias, p.canonical)
		}
	}
	return strings.TrimSpace(s)
}

// ExtractTeams scans text for known team references and returns the matching
// canonical names, deduplicated, in alias-table order. The order is stable
// for a given input so downstream indexes stay deterministic.
func (n *Normalizer) ExtractTeams(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	seen := make(map[string]bool)
	for _, p := range teamAliases {
		if strings.Contains(lower, p.alias) && !seen[p.canonical] {
			seen[p.canonical] = true
			found = append(found, p.canonical)
		}
	}
	return found
}

// TokenSet canonicalizes the text and splits it into a word set for Jaccard
// comparison.
func (n *Normalizer) TokenSet(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(n.Canonicalize(text)) {
		tokens[w] = true
	}
	return tokens
}

// Similarity is the Jaccard similarity of the two names' canonical token
// sets. Returns 0 when either side is empty.
func (n *Normalizer) Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return SimilarityFromTokens(n.TokenSet(a), n.TokenSet(b))
}

// SimilarityFromTokens is the Jaccard similarity of two precomputed token
// sets: |intersection| / |union|.
func SimilarityFromTokens(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
