package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"blograg/internal/domain"
	"blograg/internal/store"
)

// Store keeps documents and users in a single JSON file. Every operation
// reads the file under a lock, so several processes (the server and the
// CLI) can share it.
type Store struct {
	path        string
	lock        *flock.Flock
	lockTimeout time.Duration
	mu          sync.Mutex
	now         func() time.Time
}

type dataset struct {
	Documents []domain.Document `json:"documents"`
	Users     []domain.User     `json:"users"`
}

// Open prepares a store at path. The file is created on the first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &Store{
		path:        path,
		lock:        flock.New(path + ".lock"),
		lockTimeout: 10 * time.Second,
		now:         time.Now,
	}, nil
}

func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.view(ctx, func(d *dataset) error {
		docs = d.Documents
		return nil
	})
	return docs, err
}

func (s *Store) FindDocument(ctx context.Context, id domain.DocumentID) (domain.Document, error) {
	var doc domain.Document
	err := s.view(ctx, func(d *dataset) error {
		i := indexOf(d.Documents, id)
		if i < 0 {
			return store.NotFound(id)
		}
		doc = d.Documents[i]
		return nil
	})
	return doc, err
}

func (s *Store) InsertDocument(ctx context.Context, doc domain.Document) (domain.DocumentID, error) {
	ids, err := s.InsertDocuments(ctx, []domain.Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

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
	err := s.update(ctx, func(d *dataset) error {
		d.Documents = append(d.Documents, prepared...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) IncrementViews(ctx context.Context, id domain.DocumentID) error {
	return s.update(ctx, func(d *dataset) error {
		i := indexOf(d.Documents, id)
		if i < 0 {
			return store.NotFound(id)
		}
		d.Documents[i].Views++
		return nil
	})
}

func (s *Store) DeleteAllDocuments(ctx context.Context) error {
	return s.update(ctx, func(d *dataset) error {
		d.Documents = nil
		return nil
	})
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
	err := s.update(ctx, func(d *dataset) error {
		d.Users = append(d.Users, prepared...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) DeleteAllUsers(ctx context.Context) error {
	return s.update(ctx, func(d *dataset) error {
		d.Users = nil
		return nil
	})
}

func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) view(ctx context.Context, fn func(*dataset) error) error {
	return s.withLock(ctx, false, func() error {
		d, err := s.load()
		if err != nil {
			return err
		}
		return fn(d)
	})
}

// update runs fn on the current contents and writes the result back only
// if fn succeeds.
func (s *Store) update(ctx context.Context, fn func(*dataset) error) error {
	return s.withLock(ctx, true, func() error {
		d, err := s.load()
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		return s.save(d)
	})
}

func (s *Store) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = s.lock.TryLockContext(ctx, 50*time.Millisecond)
	} else {
		locked, err = s.lock.TryRLockContext(ctx, 50*time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("file store: lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("file store: lock %s is held by another process", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

func (s *Store) load() (*dataset, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	var d dataset
	if len(data) == 0 {
		return &d, nil
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("file store: decode %s: %w", s.path, err)
	}
	return &d, nil
}

// save replaces the file atomically through a temp file and rename.
func (s *Store) save(d *dataset) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file store: replace %s: %w", s.path, err)
	}
	return nil
}

func indexOf(docs []domain.Document, id domain.DocumentID) int {
	return slices.IndexFunc(docs, func(d domain.Document) bool { return d.ID == id })
}
