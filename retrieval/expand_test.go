package retrieval

import (
	"reflect"
	"strings"
	"testing"
)

func TestExpandKeepsOriginalFirst(t *testing.T) {
	x := NewExpander(5)

	tests := []struct {
		name        string
		query       string
		minVariants int
	}{
		{
			name:        "material_weakness_trigger",
			query:       "What material weakness was reported",
			minVariants: 2,
		},
		{
			name:        "sox_trigger",
			query:       "summarize the SOX testing results",
			minVariants: 2,
		},
		{
			name:        "no_trigger",
			query:       "who approved the vendor payments",
			minVariants: 1,
		},
		{
			name:        "empty_query",
			query:       "",
			minVariants: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants := x.Expand(tt.query)
			if len(variants) < tt.minVariants {
				t.Fatalf("Expand(%q) returned %d variants, want at least %d", tt.query, len(variants), tt.minVariants)
			}
			if len(variants) > 5 {
				t.Fatalf("Expand(%q) returned %d variants, want at most 5", tt.query, len(variants))
			}
			if variants[0] != tt.query {
				t.Errorf("first variant = %q, want original query %q", variants[0], tt.query)
			}
			for _, v := range variants[1:] {
				if !strings.HasPrefix(v, tt.query) {
					t.Errorf("variant %q does not extend the original query", v)
				}
			}
		})
	}
}

func TestExpandDeterministic(t *testing.T) {
	x := NewExpander(5)
	query := "material weakness in sox compliance"

	first := x.Expand(query)
	second := x.Expand(query)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expand is not deterministic: %v vs %v", first, second)
	}
}

func TestExpanderMatches(t *testing.T) {
	x := NewExpander(5)

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"sox_uppercase", "Explain the SOX findings", true},
		{"phrase_trigger", "results of the access review", true},
		{"substring_not_word", "the soxhlet extraction method", false},
		{"no_trigger", "who signed the purchase order", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := x.Matches(tt.query); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
