package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

func (e *Engine) queryMultiHop(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool) {
	first, ok := e.querySemantic(ctx, query, filter, limit)
	if len(first) < e.cfg.MinHopResults || e.cfg.MaxHops < 2 {
		return relabel(first, StrategyMultiHop), ok
	}

	followUp := followUpQuery(query, first)
	if followUp == "" {
		return relabel(first, StrategyMultiHop), ok
	}
	e.logger.Debug("Running follow-up hop", zap.String("query", followUp))

	// Earlier hops keep their scores; later hops only contribute chunks
	// not already seen
	merged := append([]ScoredChunk(nil), first...)
	seen := make(map[string]bool, len(first))
	for _, sc := range first {
		seen[sc.Chunk.ID] = true
	}
	for hop := 2; hop <= e.cfg.MaxHops; hop++ {
		next, hopOK := e.querySemantic(ctx, followUp, filter, limit)
		ok = ok && hopOK
		if len(next) == 0 {
			break
		}
		for _, sc := range next {
			if seen[sc.Chunk.ID] {
				continue
			}
			seen[sc.Chunk.ID] = true
			merged = append(merged, sc)
		}
		if hop == e.cfg.MaxHops {
			break
		}
		followUp = followUpQuery(followUp, next)
		if followUp == "" {
			break
		}
	}

	return relabel(sortRanked(merged, limit), StrategyMultiHop), ok
}

// followUpQuery builds a second-hop query from cues found in the first-hop
// results but absent from the original query: metadata values naming other
// companies or document types, plus longer content words. Returns empty when
// the results add nothing new.
func followUpQuery(query string, results []ScoredChunk) string {
	queryWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		queryWords[strings.Trim(w, ".,;:!?\"'()")] = true
	}

	var cues []string
	seen := map[string]bool{}
	addCue := func(cue string) {
		cue = strings.TrimSpace(cue)
		key := strings.ToLower(cue)
		if cue == "" || seen[key] || queryWords[key] {
			return
		}
		seen[key] = true
		cues = append(cues, cue)
	}

	top := results
	if len(top) > 3 {
		top = top[:3]
	}
	for _, sc := range top {
		addCue(sc.Chunk.Metadata["company"])
		addCue(sc.Chunk.Metadata["document_type"])
		if len(cues) >= 3 {
			break
		}
		for _, word := range strings.Fields(sc.Chunk.Text) {
			word = strings.Trim(word, ".,;:!?\"'()")
			if len(word) > 5 {
				addCue(word)
			}
			if len(cues) >= 3 {
				break
			}
		}
		if len(cues) >= 3 {
			break
		}
	}

	if len(cues) == 0 {
		return ""
	}
	return query + " " + strings.Join(cues, " ")
}

func relabel(results []ScoredChunk, strategy Strategy) []ScoredChunk {
	for i := range results {
		results[i].Strategy = strategy
	}
	return results
}
