package domain

import "context"

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Split(doc Document) []Chunk
}

// Embedder converts free text into a fixed-length vector.
// The same text must always produce the same vector for a given model, and
// chunk text and query text must go through the same Embedder so that
// vectors are comparable.
type Embedder interface {
	Name() string
	// Dimension may report 0 until the first successful call for remote
	// models whose size is only known from a response.
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input, in input order. A failure on
	// any input fails the whole batch.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator is the generative language model boundary: text in, text out.
type Generator interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// DocumentSource is the read side of the document store used by the core.
type DocumentSource interface {
	// ListDocuments returns every document in insertion order.
	ListDocuments(ctx context.Context) ([]Document, error)
	FindDocument(ctx context.Context, id DocumentID) (Document, error)
}

// DocumentStore persists blog documents and user records.
type DocumentStore interface {
	DocumentSource
	InsertDocument(ctx context.Context, doc Document) (DocumentID, error)
	InsertDocuments(ctx context.Context, docs []Document) ([]DocumentID, error)
	IncrementViews(ctx context.Context, id DocumentID) error
	DeleteAllDocuments(ctx context.Context) error

	InsertUser(ctx context.Context, user User) (UserID, error)
	InsertUsers(ctx context.Context, users []User) ([]UserID, error)
	DeleteAllUsers(ctx context.Context) error

	Close(ctx context.Context) error
}
