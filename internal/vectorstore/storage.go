package vectorstore

import "blograg/internal/domain"

// Index is a read-only similarity index over embedded chunks.
// Implementations must be safe for concurrent Search calls.
type Index interface {
	Len() int
	Dimension() int
	// Search returns at most k results ordered by ascending distance.
	Search(query []float32, k int) ([]domain.SearchResult, error)
}
