package domain

import (
	"errors"
	"testing"
)

func TestNewDocumentDefaultsCategory(t *testing.T) {
	d := NewDocument("  Title ", "body", " me ", "")
	if d.Category != DefaultCategory {
		t.Errorf("category = %q, want %q", d.Category, DefaultCategory)
	}
	if d.Title != "Title" || d.Author != "me" {
		t.Errorf("fields not trimmed: %+v", d)
	}
}

func TestNormalizeComposesDiacritics(t *testing.T) {
	// "Phở" spelled as o + combining horn + combining hook above.
	decomposed := "Pho\u031b\u0309"
	d := NewDocument(decomposed, decomposed, "a", "food")
	if d.Title != "Ph\u1edf" {
		t.Errorf("title = %q, want composed form", d.Title)
	}
	if len([]rune(d.Body)) != 3 {
		t.Errorf("body has %d runes, want 3", len([]rune(d.Body)))
	}
}

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr bool
	}{
		{"complete", NewDocument("t", "b", "a", ""), false},
		{"missing title", NewDocument("", "b", "a", ""), true},
		{"blank body", NewDocument("t", "  \n", "a", ""), true},
		{"missing author", NewDocument("t", "b", "", ""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v is not ErrInvalidInput", err)
			}
		})
	}
}
