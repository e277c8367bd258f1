package haiku

import (
	"fmt"
	"os"
	"sync"
)

// Store is an append-only file of accepted haiku. One record is the
// content-id line, the haiku text, and a blank-line separator. A single
// owned file handle serialized by a mutex keeps concurrent appends from
// interleaving; each record goes down in one Write call.
type Store struct {
	path string

	mu sync.Mutex
	f  *os.File
}

// NewStore opens (creating if needed) the append-only store at path.
func NewStore(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening haiku store %s: %w", path, err)
	}
	return &Store{path: path, f: f}, nil
}

// Append writes one haiku record. Safe for concurrent use; no ordering
// across callers is promised.
func (s *Store) Append(cidStr string, text string) error {
	rec := cidStr + "\n" + text + "\n\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.f.WriteString(rec); err != nil {
		return fmt.Errorf("appending haiku record: %w", err)
	}
	return nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
