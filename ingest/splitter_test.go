package ingest

import (
	"strings"
	"testing"
)

func TestRegexSentenceSplitter(t *testing.T) {
	splitter := NewRegexSentenceSplitter()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two_sentences",
			text: "The review is complete. Two findings were raised.",
			want: []string{"The review is complete.", "Two findings were raised."},
		},
		{
			name: "no_terminal_punctuation",
			text: "a single fragment without punctuation",
			want: []string{"a single fragment without punctuation"},
		},
		{
			name: "empty",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitter.Split(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestProseSentenceSplitter(t *testing.T) {
	splitter := NewProseSentenceSplitter()

	got := splitter.Split("The review is complete. Two findings were raised.")
	if len(got) != 2 {
		t.Fatalf("got %d sentences %v, want 2", len(got), got)
	}
	if got := splitter.Split(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestChunkSentencesRespectsBudget(t *testing.T) {
	sentences := []string{
		"First sentence about access controls.",
		"Second sentence about terminated users.",
		"Third sentence about remediation plans.",
		"Fourth sentence about quarterly testing.",
	}

	chunks := chunkSentences(sentences, 90, 1)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for a 90 char budget, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 90+len(sentences[0]) {
			t.Errorf("chunk %d length %d grossly exceeds budget", i, len(chunk))
		}
	}

	// Every sentence must land in some chunk
	joined := strings.Join(chunks, " ")
	for _, sentence := range sentences {
		if !strings.Contains(joined, sentence) {
			t.Errorf("sentence %q missing from chunks", sentence)
		}
	}
}

func TestChunkSentencesOverlap(t *testing.T) {
	sentences := []string{
		"Alpha finding one.",
		"Bravo finding two.",
		"Charlie finding three.",
	}

	chunks := chunkSentences(sentences, 45, 1)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	// The last sentence of each chunk should reappear at the start of the
	// next one
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		lastSentence := prev[strings.LastIndex(prev[:len(prev)-1], ".")+1:]
		lastSentence = strings.TrimSpace(strings.TrimSuffix(lastSentence, "."))
		if lastSentence != "" && !strings.Contains(chunks[i], lastSentence) {
			t.Errorf("chunk %d does not carry overlap %q from previous chunk", i, lastSentence)
		}
	}
}

func TestChunkSentencesOversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 100)
	chunks := chunkSentences([]string{"Short one.", strings.TrimSpace(long)}, 50, 0)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
}
