package retrieval

import (
	"math"
	"testing"
)

func hit(id string, score float64) Hit {
	return Hit{Chunk: Chunk{ID: id, Text: id}, Score: score}
}

func TestNormalizeScores(t *testing.T) {
	tests := []struct {
		name string
		in   []Hit
		want []float64
	}{
		{
			name: "spread_scores",
			in:   []Hit{hit("a", 10), hit("b", 5), hit("c", 0)},
			want: []float64{1, 0.5, 0},
		},
		{
			name: "equal_positive_scores",
			in:   []Hit{hit("a", 3), hit("b", 3)},
			want: []float64{1, 1},
		},
		{
			name: "equal_zero_scores",
			in:   []Hit{hit("a", 0), hit("b", 0)},
			want: []float64{0, 0},
		},
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeScores(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d hits, want %d", len(got), len(tt.want))
			}
			for i, h := range got {
				if math.Abs(h.Score-tt.want[i]) > 1e-9 {
					t.Errorf("hit %d score = %v, want %v", i, h.Score, tt.want[i])
				}
			}
		})
	}
}

func TestFuseWeightedSum(t *testing.T) {
	listA := []Hit{hit("shared", 10), hit("only-a", 5)}
	listB := []Hit{hit("shared", 2), hit("only-b", 1)}

	results := Fuse([][]Hit{listA, listB}, []float64{0.7, 0.3}, 10, StrategyHybrid)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Chunk.ID != "shared" {
		t.Errorf("top result = %q, want chunk present in both lists", results[0].Chunk.ID)
	}
	// shared: 0.7*1.0 + 0.3*1.0 = 1.0
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Errorf("top score = %v, want 1.0", results[0].Score)
	}
	for _, sc := range results {
		if sc.Strategy != StrategyHybrid {
			t.Errorf("result %q strategy = %q, want %q", sc.Chunk.ID, sc.Strategy, StrategyHybrid)
		}
	}
}

func TestFuseSkipsZeroWeightLists(t *testing.T) {
	listA := []Hit{hit("a", 1)}
	listB := []Hit{hit("b", 100)}

	results := Fuse([][]Hit{listA, listB}, []float64{1, 0}, 10, StrategyEnsemble)
	if len(results) != 1 || results[0].Chunk.ID != "a" {
		t.Fatalf("zero-weight list contributed results: %v", results)
	}
}

func TestUnionKeepsBestScore(t *testing.T) {
	listA := []ScoredChunk{
		{Chunk: Chunk{ID: "x"}, Score: 0.4, Strategy: StrategyMultiHop},
	}
	listB := []ScoredChunk{
		{Chunk: Chunk{ID: "x"}, Score: 0.9, Strategy: StrategyMultiHop},
		{Chunk: Chunk{ID: "y"}, Score: 0.5, Strategy: StrategyMultiHop},
	}

	results := Union([][]ScoredChunk{listA, listB}, 10)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Chunk.ID != "x" || results[0].Score != 0.9 {
		t.Errorf("top result = %+v, want x with score 0.9", results[0])
	}
}

func TestSortRankedTieBreak(t *testing.T) {
	results := sortRanked([]ScoredChunk{
		{Chunk: Chunk{ID: "b"}, Score: 0.5},
		{Chunk: Chunk{ID: "a"}, Score: 0.5},
		{Chunk: Chunk{ID: "c"}, Score: 0.9},
	}, 0)

	wantOrder := []string{"c", "a", "b"}
	for i, want := range wantOrder {
		if results[i].Chunk.ID != want {
			t.Errorf("position %d = %q, want %q", i, results[i].Chunk.ID, want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched_length", []float32{1}, []float32{1, 0}, 0},
		{"zero_vector", []float32{0, 0}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
