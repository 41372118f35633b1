// Package localstore is the guest-side half of the cart/favorites dual
// store: one small JSON document per guest session, with the same contract
// as browser local storage. Reads never fail — a missing or malformed
// document is an empty one.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Get returns the raw JSON stored under key for the session, or nil when
// absent or unreadable.
func (s *Store) Get(sessionID, key string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(sessionID)[key]
}

// Set stores v (marshaled to JSON) under key for the session.
func (s *Store) Set(sessionID, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.read(sessionID)
	doc[key] = b
	return s.write(sessionID, doc)
}

// Remove deletes key from the session document.
func (s *Store) Remove(sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.read(sessionID)
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.write(sessionID, doc)
}

func (s *Store) read(sessionID string) map[string]json.RawMessage {
	doc := map[string]json.RawMessage{}
	b, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return doc
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return map[string]json.RawMessage{}
	}
	return doc
}

func (s *Store) write(sessionID string, doc map[string]json.RawMessage) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(sessionID), b, 0o644)
}

// path confines session documents to the store directory even if a hostile
// session id slips past handler validation.
func (s *Store) path(sessionID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, sessionID)
	if name == "" {
		name = "_"
	}
	return filepath.Join(s.dir, name+".json")
}
