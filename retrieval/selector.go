package retrieval

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

var (
	quotedPhrase = regexp.MustCompile(`"[^"]+"`)
	// Control identifiers like AC-02, ITGC-14 or CC6.1
	controlIDPattern = regexp.MustCompile(`\b([A-Z]{2,5}-\d+|[A-Z]{2}\d\.\d)\b`)
	comparisonWords  = []string{"compare", "comparison", "versus", " vs ", " vs. ", "difference between", "differ"}
)

// Selector picks a retrieval strategy from surface features of the query.
type Selector struct {
	expander    *Expander
	shortTokens int
	longTokens  int
}

func NewSelector(expander *Expander, shortTokens, longTokens int) *Selector {
	if shortTokens <= 0 {
		shortTokens = 6
	}
	if longTokens <= shortTokens {
		longTokens = shortTokens + 8
	}
	return &Selector{expander: expander, shortTokens: shortTokens, longTokens: longTokens}
}

// Select chooses a strategy for the query. Rules are checked in order and
// the first match wins; plain semantic search is the fallback.
func (s *Selector) Select(query string, hasFilter bool) Strategy {
	lower := strings.ToLower(query)
	tokens := countTokens(query)

	if s.isComparison(query, lower) {
		return StrategyMultiHop
	}
	if s.expander != nil && s.expander.Matches(query) {
		return StrategyExpansion
	}
	if (quotedPhrase.MatchString(query) || controlIDPattern.MatchString(query)) && tokens >= 4 {
		return StrategyHybrid
	}
	if hasFilter && tokens <= s.shortTokens {
		return StrategyMetadata
	}
	if tokens > s.shortTokens && tokens <= s.longTokens {
		return StrategyEnsemble
	}
	return StrategySemantic
}

func (s *Selector) isComparison(query, lower string) bool {
	padded := " " + lower + " "
	for _, word := range comparisonWords {
		needle := word
		if !strings.HasPrefix(needle, " ") {
			needle = " " + needle
		}
		if !strings.HasSuffix(needle, " ") {
			needle = needle + " "
		}
		if strings.Contains(padded, needle) {
			return true
		}
	}
	// Two or more distinct named entities also suggest a comparison
	doc, err := prose.NewDocument(query)
	if err != nil {
		return false
	}
	entities := map[string]bool{}
	for _, ent := range doc.Entities() {
		entities[strings.ToLower(ent.Text)] = true
	}
	return len(entities) >= 2
}

// countTokens counts word tokens, falling back to whitespace splitting when
// the tokenizer cannot process the text.
func countTokens(query string) int {
	doc, err := prose.NewDocument(query, prose.WithExtraction(false), prose.WithTagging(false))
	if err != nil {
		return len(strings.Fields(query))
	}
	n := 0
	for _, tok := range doc.Tokens() {
		if strings.TrimSpace(tok.Text) != "" {
			n++
		}
	}
	if n == 0 {
		return len(strings.Fields(query))
	}
	return n
}
