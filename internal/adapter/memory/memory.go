// Package memory provides an in-process LetterStore used in DEV_MODE and
// in handler tests. It mirrors the Drive semantics the handlers rely on:
// find-or-create by name under a parent, oldest folder wins on duplicates,
// direct-children listing.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aki/letterdrive/backend/internal/adapter"
	"github.com/aki/letterdrive/backend/internal/model"
)

type folderNode struct {
	id       string
	name     string
	parentID string
	created  time.Time
}

type letterNode struct {
	id       string
	name     string
	folderID string
	content  []byte
	modified time.Time
}

// Store implements adapter.LetterStore with in-memory maps.
type Store struct {
	mu      sync.Mutex
	seq     int
	folders map[string]*folderNode
	letters map[string]*letterNode
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		folders: make(map[string]*folderNode),
		letters: make(map[string]*letterNode),
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// findFolder returns the oldest folder with the given name under parentID.
func (s *Store) findFolder(name, parentID string) *folderNode {
	var oldest *folderNode
	for _, f := range s.folders {
		if f.name != name || f.parentID != parentID {
			continue
		}
		if oldest == nil || f.created.Before(oldest.created) {
			oldest = f
		}
	}
	return oldest
}

// EnsureLettersFolder finds or creates the top-level "Letters" folder.
func (s *Store) EnsureLettersFolder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.findFolder("Letters", "root"); f != nil {
		return f.id, nil
	}

	f := &folderNode{
		id:       s.nextID("folder"),
		name:     "Letters",
		parentID: "root",
		created:  time.Now(),
	}
	s.folders[f.id] = f
	return f.id, nil
}

// EnsureMonthlyFolder finds or creates the folder named key under parentID.
func (s *Store) EnsureMonthlyFolder(ctx context.Context, parentID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.findFolder(key, parentID); f != nil {
		return f.id, nil
	}

	f := &folderNode{
		id:       s.nextID("folder"),
		name:     key,
		parentID: parentID,
		created:  time.Now(),
	}
	s.folders[f.id] = f
	return f.id, nil
}

// CreateLetter creates a new letter in the specified folder.
func (s *Store) CreateLetter(ctx context.Context, name string, content []byte, folderID string) (*adapter.LetterMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.folders[folderID]; !ok {
		return nil, fmt.Errorf("%w: folder %s", adapter.ErrNotFound, folderID)
	}

	l := &letterNode{
		id:       s.nextID("letter"),
		name:     name,
		folderID: folderID,
		content:  append([]byte(nil), content...),
		modified: time.Now(),
	}
	s.letters[l.id] = l

	return &adapter.LetterMetadata{
		ID:           l.id,
		Name:         l.name,
		ModifiedTime: l.modified,
		Parents:      []string{folderID},
	}, nil
}

// ListLetters lists letters that are direct children of folderID.
// Letters saved in monthly subfolders do not appear when folderID is the
// top-level Letters folder, matching the Drive implementation.
func (s *Store) ListLetters(ctx context.Context, folderID string) ([]adapter.LetterMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	letters := []adapter.LetterMetadata{}
	for _, l := range s.letters {
		if l.folderID != folderID {
			continue
		}
		letters = append(letters, adapter.LetterMetadata{
			ID:           l.id,
			Name:         l.name,
			ModifiedTime: l.modified,
		})
	}
	return letters, nil
}

// DeleteLetter deletes a letter by its ID.
func (s *Store) DeleteLetter(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.letters[fileID]; !ok {
		return fmt.Errorf("%w: letter %s", adapter.ErrNotFound, fileID)
	}
	delete(s.letters, fileID)
	return nil
}

// FolderCount reports how many folders with the given name exist. Test hook.
func (s *Store) FolderCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, f := range s.folders {
		if f.name == name {
			n++
		}
	}
	return n
}

// LetterContent returns the stored content of a letter. Test hook.
func (s *Store) LetterContent(fileID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.letters[fileID]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), l.content...), true
}

// Provider implements adapter.Provider with one Store per principal.
type Provider struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewProvider creates a new in-memory provider.
func NewProvider() *Provider {
	return &Provider{stores: make(map[string]*Store)}
}

// GetStore returns the principal's store, creating it on first use.
func (p *Provider) GetStore(ctx context.Context, principal *model.Principal) (adapter.LetterStore, error) {
	return p.StoreFor(principal.Email), nil
}

// StoreFor returns the store for an email, creating it on first use.
func (p *Provider) StoreFor(email string) *Store {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stores[email]
	if !ok {
		s = NewStore()
		p.stores[email] = s
	}
	return s
}
