package chunker

import (
	"fmt"
	"strings"

	"blograg/internal/domain"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// separators are tried in order when snapping a window's end; the first
// level with a break inside the window wins.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune(" "),
}

// RecursiveChunker splits a document's indexed text into windows of at most
// size runes. Consecutive windows overlap by exactly overlap runes: each
// window after the first starts overlap runes before the previous one ended.
// Window ends snap back to the nearest paragraph, line, sentence or word
// break, and fall back to a hard cut when the window has none.
type RecursiveChunker struct {
	size    int
	overlap int
}

// NewRecursiveChunker validates the window geometry. overlap must be
// smaller than size so every window makes progress.
func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &RecursiveChunker{size: size, overlap: overlap}, nil
}

func (c *RecursiveChunker) Size() int    { return c.size }
func (c *RecursiveChunker) Overlap() int { return c.overlap }

// Split chunks the document. Deterministic for a given size, overlap and
// document; never returns an empty or all-whitespace chunk. Blank windows
// are skipped and the next window still starts overlap runes before the
// skipped one ended.
func (c *RecursiveChunker) Split(doc domain.Document) []domain.Chunk {
	text := []rune(IndexedText(doc))
	if len(text) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	start := 0
	for {
		end := len(text)
		if end-start > c.size {
			end = c.snapEnd(text, start, start+c.size)
		}
		if window := string(text[start:end]); strings.TrimSpace(window) != "" {
			chunks = append(chunks, newChunk(doc, len(chunks), window, start, end))
		}
		if end == len(text) {
			return chunks
		}
		start = end - c.overlap
	}
}

// snapEnd moves a window end back to the last break inside the window. The
// end never drops to start+overlap or below so the next window advances.
func (c *RecursiveChunker) snapEnd(text []rune, start, end int) int {
	minEnd := start + c.overlap + 1
	for _, sep := range separators {
		if p := lastBreak(text, minEnd, end, sep); p > 0 {
			return p
		}
	}
	return end
}

// lastBreak returns the largest p in [lo, hi] such that sep ends at p, or -1.
func lastBreak(text []rune, lo, hi int, sep []rune) int {
	for p := hi; p >= lo; p-- {
		if p < len(sep) {
			return -1
		}
		if hasSuffixAt(text, p, sep) {
			return p
		}
	}
	return -1
}

func hasSuffixAt(text []rune, p int, sep []rune) bool {
	off := p - len(sep)
	for i, r := range sep {
		if text[off+i] != r {
			return false
		}
	}
	return true
}
