package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"blograg/internal/domain"
)

// SentenceChunker splits text into sentence-based chunks with overlap.
// Unlike RecursiveChunker its windows are counted in sentences, not runes.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?s)[^.!?]+(?:[.!?]+|$)`),
	}
}

func (c *SentenceChunker) Split(doc domain.Document) []domain.Chunk {
	text := IndexedText(doc)
	locs := c.splitter.FindAllStringIndex(text, -1)

	type sentence struct{ start, end int }
	var sentences []sentence
	for _, loc := range locs {
		if strings.TrimSpace(text[loc[0]:loc[1]]) == "" {
			continue
		}
		sentences = append(sentences, sentence{loc[0], loc[1]})
	}
	if len(sentences) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	i := 0
	for i < len(sentences) {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		from, to := sentences[i].start, sentences[end-1].end
		raw := text[from:to]
		from += len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
		if chunk := strings.TrimSpace(raw); chunk != "" {
			runeStart := utf8.RuneCountInString(text[:from])
			chunks = append(chunks, newChunk(doc, len(chunks), chunk, runeStart, runeStart+utf8.RuneCountInString(chunk)))
		}
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks
}
