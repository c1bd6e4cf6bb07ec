package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"blograg/internal/domain"
	"blograg/internal/store"
)

// Store keeps documents and users in process memory. Contents are lost on
// exit.
type Store struct {
	mu    sync.RWMutex
	docs  []domain.Document
	users []domain.User
	now   func() time.Time
}

func New() *Store { return &Store{now: time.Now} }

func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.docs), nil
}

func (s *Store) FindDocument(ctx context.Context, id domain.DocumentID) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.docs[i], nil
	}
	return domain.Document{}, store.NotFound(id)
}

func (s *Store) InsertDocument(ctx context.Context, doc domain.Document) (domain.DocumentID, error) {
	ids, err := s.InsertDocuments(ctx, []domain.Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// InsertDocuments inserts all docs or none.
func (s *Store) InsertDocuments(ctx context.Context, docs []domain.Document) ([]domain.DocumentID, error) {
	prepared := make([]domain.Document, len(docs))
	ids := make([]domain.DocumentID, len(docs))
	now := s.now()
	for i, doc := range docs {
		p, err := store.PrepareDocument(doc, now)
		if err != nil {
			return nil, err
		}
		p.ID = domain.DocumentID(uuid.NewString())
		prepared[i], ids[i] = p, p.ID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, prepared...)
	return ids, nil
}

func (s *Store) IncrementViews(ctx context.Context, id domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return store.NotFound(id)
	}
	s.docs[i].Views++
	return nil
}

func (s *Store) DeleteAllDocuments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	return nil
}

func (s *Store) InsertUser(ctx context.Context, u domain.User) (domain.UserID, error) {
	ids, err := s.InsertUsers(ctx, []domain.User{u})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (s *Store) InsertUsers(ctx context.Context, users []domain.User) ([]domain.UserID, error) {
	prepared := make([]domain.User, len(users))
	ids := make([]domain.UserID, len(users))
	now := s.now()
	for i, u := range users {
		p, err := store.PrepareUser(u, now)
		if err != nil {
			return nil, err
		}
		p.ID = domain.UserID(uuid.NewString())
		prepared[i], ids[i] = p, p.ID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, prepared...)
	return ids, nil
}

func (s *Store) DeleteAllUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
	return nil
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) indexOf(id domain.DocumentID) int {
	return slices.IndexFunc(s.docs, func(d domain.Document) bool { return d.ID == id })
}
