package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultCategory is assigned to documents created without a category.
const DefaultCategory = "general"

// DocumentID identifies a document in the store. Its format is owned by the
// store implementation (uuid, ObjectID hex, ...).
type DocumentID string

func (id DocumentID) String() string { return string(id) }

// UserID identifies a user record in the store.
type UserID string

func (id UserID) String() string { return string(id) }

// Document is a single blog post.
type Document struct {
	ID        DocumentID `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"content"`
	Author    string     `json:"author"`
	Category  string     `json:"category"`
	Views     int64      `json:"views"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewDocument builds a normalized document ready to be inserted.
func NewDocument(title, body, author, category string) Document {
	d := Document{Title: title, Body: body, Author: author, Category: category}
	return d.Normalize()
}

// Normalize applies the store-boundary policy: NFC text, trimmed title,
// author and category, and the default category when none is set.
func (d Document) Normalize() Document {
	d.Title = strings.TrimSpace(norm.NFC.String(d.Title))
	d.Body = norm.NFC.String(d.Body)
	d.Author = strings.TrimSpace(norm.NFC.String(d.Author))
	d.Category = strings.TrimSpace(norm.NFC.String(d.Category))
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	return d
}

// Validate reports missing required fields as ErrInvalidInput.
func (d Document) Validate() error {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Body) == "" {
		missing = append(missing, "content")
	}
	if d.Author == "" {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// User is a reader account record. Only the fields the original service kept.
type User struct {
	ID            UserID       `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	FavoriteBlogs []DocumentID `json:"favorite_blogs"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Validate reports missing required fields as ErrInvalidInput.
func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidInput)
	}
	return nil
}
