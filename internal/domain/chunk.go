package domain

// Chunk is a bounded window of a document's indexed text plus the metadata
// needed to trace it back to its source without another store lookup.
type Chunk struct {
	Text       string
	DocumentID DocumentID
	Title      string
	Author     string
	Category   string
	// Index is the chunk's position within its document.
	Index int
	// Start and End are rune offsets of Text within the document's indexed text.
	Start int
	End   int
}

// SearchResult is a matching chunk and its cosine distance to the query.
// Smaller is closer.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}
