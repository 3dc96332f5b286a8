package index

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"audit-agent/retrieval"
)

const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

type docEntry struct {
	chunk     retrieval.Chunk
	termFreqs map[string]int
	length    int
}

// BM25Index is an in-memory inverted index scored with Okapi BM25. It is
// safe for concurrent use.
type BM25Index struct {
	mu       sync.RWMutex
	k1       float64
	b        float64
	docs     map[string]*docEntry
	df       map[string]int
	totalLen int
}

func NewBM25Index() *BM25Index {
	return &BM25Index{
		k1:   defaultK1,
		b:    defaultB,
		docs: make(map[string]*docEntry),
		df:   make(map[string]int),
	}
}

// Add indexes a chunk, replacing any previous entry with the same ID.
func (idx *BM25Index) Add(chunk retrieval.Chunk) {
	terms := tokenize(chunk.Text)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if old, ok := idx.docs[chunk.ID]; ok {
		for term := range old.termFreqs {
			idx.df[term]--
			if idx.df[term] <= 0 {
				delete(idx.df, term)
			}
		}
		idx.totalLen -= old.length
	}

	entry := &docEntry{
		chunk:     chunk,
		termFreqs: make(map[string]int),
		length:    len(terms),
	}
	for _, term := range terms {
		entry.termFreqs[term]++
	}
	for term := range entry.termFreqs {
		idx.df[term]++
	}
	idx.totalLen += entry.length
	idx.docs[chunk.ID] = entry
}

// Remove drops a chunk from the index. Removing an unknown ID is a no-op.
func (idx *BM25Index) Remove(chunkID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, ok := idx.docs[chunkID]
	if !ok {
		return
	}
	for term := range entry.termFreqs {
		idx.df[term]--
		if idx.df[term] <= 0 {
			delete(idx.df, term)
		}
	}
	idx.totalLen -= entry.length
	delete(idx.docs, chunkID)
}

// Search scores every indexed chunk against the query terms and returns the
// top limit hits. An empty query yields no hits.
func (idx *BM25Index) Search(ctx context.Context, query string, limit int) ([]retrieval.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.docs)
	if n == 0 {
		return nil, nil
	}
	avgLen := float64(idx.totalLen) / float64(n)

	scores := make(map[string]float64)
	for _, term := range terms {
		df := idx.df[term]
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
		for id, entry := range idx.docs {
			tf := float64(entry.termFreqs[term])
			if tf == 0 {
				continue
			}
			norm := idx.k1 * (1 - idx.b + idx.b*float64(entry.length)/avgLen)
			scores[id] += idf * tf * (idx.k1 + 1) / (tf + norm)
		}
	}

	hits := make([]retrieval.Hit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, retrieval.Hit{Chunk: idx.docs[id].chunk, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// DocCount returns the number of indexed chunks.
func (idx *BM25Index) DocCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// TermCount returns the number of distinct terms in the index.
func (idx *BM25Index) TermCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.df)
}

// tokenize lowercases and splits on any non-alphanumeric rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
