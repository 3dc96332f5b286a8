package retrieval

import (
	"math"
	"sort"
)

// normalizeScores rescales hits to [0, 1] with min-max normalization so
// scores from different backends become comparable. When every score is
// equal, positive scores map to 1 and the rest to 0.
func normalizeScores(hits []Hit) []Hit {
	if len(hits) == 0 {
		return nil
	}
	minScore, maxScore := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < minScore {
			minScore = h.Score
		}
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}

	out := make([]Hit, len(hits))
	span := maxScore - minScore
	for i, h := range hits {
		score := h.Score
		if span > 0 {
			score = (h.Score - minScore) / span
		} else if h.Score > 0 {
			score = 1
		} else {
			score = 0
		}
		out[i] = Hit{Chunk: h.Chunk, Score: score}
	}
	return out
}

// Fuse merges ranked lists by weighted sum of normalized scores. A chunk
// absent from a list contributes zero for that list. weights must be the
// same length as lists; zero-weight lists are skipped.
func Fuse(lists [][]Hit, weights []float64, limit int, strategy Strategy) []ScoredChunk {
	combined := make(map[string]*ScoredChunk)
	for i, list := range lists {
		var w float64
		if i < len(weights) {
			w = weights[i]
		}
		if w <= 0 {
			continue
		}
		for _, h := range normalizeScores(list) {
			entry, ok := combined[h.Chunk.ID]
			if !ok {
				entry = &ScoredChunk{Chunk: h.Chunk, Strategy: strategy}
				combined[h.Chunk.ID] = entry
			}
			entry.Score += w * h.Score
		}
	}

	results := make([]ScoredChunk, 0, len(combined))
	for _, entry := range combined {
		results = append(results, *entry)
	}
	return sortRanked(results, limit)
}

// Union merges ranked lists keeping each chunk once with its best score.
// Earlier lists win ties so callers can express precedence by ordering.
func Union(lists [][]ScoredChunk, limit int) []ScoredChunk {
	best := make(map[string]ScoredChunk)
	var order []string
	for _, list := range lists {
		for _, sc := range list {
			prev, seen := best[sc.Chunk.ID]
			if !seen {
				best[sc.Chunk.ID] = sc
				order = append(order, sc.Chunk.ID)
				continue
			}
			if sc.Score > prev.Score {
				best[sc.Chunk.ID] = sc
			}
		}
	}

	results := make([]ScoredChunk, 0, len(order))
	for _, id := range order {
		results = append(results, best[id])
	}
	return sortRanked(results, limit)
}

// sortRanked orders by score descending with chunk ID as the tie-break so
// equal-scored results have a stable order, then truncates to limit.
func sortRanked(results []ScoredChunk, limit int) []ScoredChunk {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// returning 0 for mismatched or zero-magnitude inputs.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
