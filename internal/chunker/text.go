package chunker

import (
	"fmt"

	"blograg/internal/domain"
)

// IndexedText is the text that gets chunked and embedded for a document:
// the body wrapped with its title and author so every chunk carries that
// context into the embedding.
func IndexedText(doc domain.Document) string {
	return fmt.Sprintf("Title: %s\n\nContent: %s\n\nAuthor: %s", doc.Title, doc.Body, doc.Author)
}

func newChunk(doc domain.Document, index int, text string, start, end int) domain.Chunk {
	return domain.Chunk{
		Text:       text,
		DocumentID: doc.ID,
		Title:      doc.Title,
		Author:     doc.Author,
		Category:   doc.Category,
		Index:      index,
		Start:      start,
		End:        end,
	}
}
