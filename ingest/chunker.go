package ingest

import "strings"

// chunkSentences packs sentences into chunks of at most maxChars, carrying
// the last overlap sentences into the next chunk so context is not cut at
// chunk boundaries. A single oversized sentence becomes its own chunk.
func chunkSentences(sentences []string, maxChars, overlap int) []string {
	if maxChars <= 0 {
		maxChars = 1200
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))
		if overlap > 0 && overlap < len(current) {
			current = append([]string(nil), current[len(current)-overlap:]...)
		} else if overlap > 0 {
			current = append([]string(nil), current...)
		} else {
			current = nil
		}
		currentLen = 0
		for _, s := range current {
			currentLen += len(s) + 1
		}
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if currentLen > 0 && currentLen+len(sentence) > maxChars {
			flush()
			// Drop the carried overlap when it alone blows the budget
			if currentLen+len(sentence) > maxChars {
				current = nil
				currentLen = 0
			}
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
