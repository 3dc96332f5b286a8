package ingest

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

type SentenceSplitter interface {
	Split(text string) []string
}

// ProseSentenceSplitter segments text with a trained sentence tokenizer,
// falling back to punctuation splitting when segmentation fails.
type ProseSentenceSplitter struct {
	fallback RegexSentenceSplitter
}

func NewProseSentenceSplitter() ProseSentenceSplitter {
	return ProseSentenceSplitter{}
}

func (s ProseSentenceSplitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	doc, err := prose.NewDocument(trimmed, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return s.fallback.Split(trimmed)
	}

	var sentences []string
	for _, sent := range doc.Sentences() {
		sentence := strings.TrimSpace(sent.Text)
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	if len(sentences) == 0 {
		return s.fallback.Split(trimmed)
	}
	return sentences
}

type RegexSentenceSplitter struct{}

func NewRegexSentenceSplitter() RegexSentenceSplitter {
	return RegexSentenceSplitter{}
}

func (RegexSentenceSplitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	var sentences []string
	var builder strings.Builder

	isBoundary := func(r rune) bool {
		switch r {
		case '.', '!', '?':
			return true
		default:
			return false
		}
	}

	flush := func() {
		if builder.Len() == 0 {
			return
		}
		sentence := strings.TrimSpace(builder.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		builder.Reset()
	}

	for idx, r := range runes {
		builder.WriteRune(r)
		if !isBoundary(r) {
			continue
		}
		// Look ahead to determine if this is end of sentence
		next := idx + 1
		for next < len(runes) && (runes[next] == ' ' || runes[next] == '\n' || runes[next] == '\t') {
			next++
		}
		if next >= len(runes) || isBoundary(runes[next]) {
			continue
		}
		flush()
	}

	flush()

	if len(sentences) == 0 {
		return []string{trimmed}
	}
	return sentences
}
