package retrieval

import (
	"regexp"
	"sort"
	"strings"
)

// auditExpansions maps trigger phrases found in queries to related audit and
// compliance terminology. Variants built from these terms recover documents
// that use different vocabulary for the same concept.
var auditExpansions = map[string][]string{
	"sox":                   {"SOX 404", "Sarbanes-Oxley", "internal controls", "financial reporting"},
	"access review":         {"user access", "permissions", "authorization", "access controls"},
	"material weakness":     {"significant deficiency", "control deficiency", "remediation"},
	"compliance":            {"regulatory", "audit", "governance"},
	"risk":                  {"risk assessment", "risk management", "risk mitigation"},
	"financial":             {"accounting", "reconciliation", "month-end close"},
	"segregation of duties": {"separation of duties", "conflicting roles", "dual control"},
	"privileged access":     {"admin access", "elevated permissions", "superuser"},
	"deficiency":            {"control gap", "finding", "exception"},
	"reconciliation":        {"account reconciliation", "balance verification", "variance analysis"},
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// containsPhrase reports whether phrase occurs in text on word boundaries.
func containsPhrase(text, phrase string) bool {
	padded := " " + nonWord.ReplaceAllString(strings.ToLower(text), " ") + " "
	needle := " " + nonWord.ReplaceAllString(strings.ToLower(phrase), " ") + " "
	return strings.Contains(padded, needle)
}

// Expander rewrites a query into a bounded set of variants using the audit
// expansion table.
type Expander struct {
	maxVariants int
	triggers    []string
}

func NewExpander(maxVariants int) *Expander {
	if maxVariants <= 0 {
		maxVariants = 5
	}
	// Sorted triggers keep variant order deterministic across runs
	triggers := make([]string, 0, len(auditExpansions))
	for trigger := range auditExpansions {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)
	return &Expander{maxVariants: maxVariants, triggers: triggers}
}

// Matches reports whether any expansion trigger occurs in the query.
func (x *Expander) Matches(query string) bool {
	for _, trigger := range x.triggers {
		if containsPhrase(query, trigger) {
			return true
		}
	}
	return false
}

// Expand returns the original query first, followed by variants built from
// matched expansion terms. The result never exceeds the configured maximum
// and always contains at least the original query.
func (x *Expander) Expand(query string) []string {
	variants := []string{query}
	if strings.TrimSpace(query) == "" {
		return variants
	}

	seen := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}
	var matchedTerms []string

	for _, trigger := range x.triggers {
		if !containsPhrase(query, trigger) {
			continue
		}
		for _, term := range auditExpansions[trigger] {
			matchedTerms = append(matchedTerms, term)
			if len(variants) >= x.maxVariants {
				continue
			}
			variant := query + " " + term
			key := strings.ToLower(variant)
			if seen[key] {
				continue
			}
			seen[key] = true
			variants = append(variants, variant)
		}
	}

	// One combined variant holding every matched term, if room remains
	if len(matchedTerms) > 1 && len(variants) < x.maxVariants {
		combined := query + " " + strings.Join(matchedTerms, " ")
		key := strings.ToLower(combined)
		if !seen[key] {
			variants = append(variants, combined)
		}
	}

	return variants
}
