// Package store holds the record policy shared by the document store
// implementations in its subpackages.
package store

import (
	"fmt"
	"strings"
	"time"

	"blograg/internal/domain"
)

// PrepareDocument applies the store-boundary policy to a new document:
// normalized text, default category, required fields, zero views and a
// creation time. Views given by the caller are kept so seed data can carry
// counters.
func PrepareDocument(doc domain.Document, now time.Time) (domain.Document, error) {
	doc = doc.Normalize()
	if err := doc.Validate(); err != nil {
		return domain.Document{}, err
	}
	if doc.Views < 0 {
		doc.Views = 0
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now.UTC()
	}
	return doc, nil
}

// PrepareUser validates a new user and fills its defaults.
func PrepareUser(u domain.User, now time.Time) (domain.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if err := u.Validate(); err != nil {
		return domain.User{}, err
	}
	if u.FavoriteBlogs == nil {
		u.FavoriteBlogs = []domain.DocumentID{}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now.UTC()
	}
	return u, nil
}

// NotFound builds the error for a missing document.
func NotFound(id domain.DocumentID) error {
	return fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
}
