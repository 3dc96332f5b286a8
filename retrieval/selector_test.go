package retrieval

import "testing"

func TestSelectorSelect(t *testing.T) {
	selector := NewSelector(NewExpander(5), 6, 14)

	tests := []struct {
		name      string
		query     string
		hasFilter bool
		want      Strategy
	}{
		{
			name:  "comparison_keyword",
			query: "Compare Acme and Globex access reviews",
			want:  StrategyMultiHop,
		},
		{
			name:  "difference_between",
			query: "difference between the quarterly results",
			want:  StrategyMultiHop,
		},
		{
			name:  "expansion_trigger",
			query: "What material weakness was reported",
			want:  StrategyExpansion,
		},
		{
			name:  "control_id_exact_token",
			query: "status of control AC-102 remediation items",
			want:  StrategyHybrid,
		},
		{
			name:  "quoted_phrase",
			query: `find documents mentioning "terminated users" today`,
			want:  StrategyHybrid,
		},
		{
			name:      "short_query_with_filter",
			query:     "terminated user listing",
			hasFilter: true,
			want:      StrategyMetadata,
		},
		{
			name:  "medium_query_ensemble",
			query: "what did the quarterly testing conclude about vendor payment approvals",
			want:  StrategyEnsemble,
		},
		{
			name:  "short_query_semantic",
			query: "vendor payments",
			want:  StrategySemantic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selector.Select(tt.query, tt.hasFilter); got != tt.want {
				t.Errorf("Select(%q, filter=%v) = %q, want %q", tt.query, tt.hasFilter, got, tt.want)
			}
		})
	}
}
