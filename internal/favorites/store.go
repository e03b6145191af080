// Package favorites holds the user's pinned stations. Entries are unique by
// (name, country) and survive catalog reloads.
package favorites

import (
	"errors"
	"sync"

	"github.com/babycommando/afroradio/internal/station"
)

var ErrAlreadyFavorite = errors.New("station is already a favorite")

type Store struct {
	mu      sync.Mutex
	entries []station.FavoriteEntry
}

func New(initial ...station.FavoriteEntry) *Store {
	s := &Store{}
	s.Replace(initial)
	return s
}

// Add appends entry unless an entry with the same name and country exists.
func (s *Store) Add(entry station.FavoriteEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Key() == entry.Key() {
			return ErrAlreadyFavorite
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

// Remove drops every entry named name, whatever its country, and returns how
// many were removed.
func (s *Store) Remove(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.Name == name {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// zero the tail so dropped entries are not retained
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = station.FavoriteEntry{}
	}
	s.entries = kept
	return removed
}

func (s *Store) IsFavorite(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Get returns the first entry named name.
func (s *Store) Get(name string) (station.FavoriteEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return station.FavoriteEntry{}, false
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// List returns the entries in insertion order.
func (s *Store) List() []station.FavoriteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]station.FavoriteEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Replace swaps the whole set, dropping duplicate keys after the first.
func (s *Store) Replace(entries []station.FavoriteEntry) {
	seen := make(map[station.Key]struct{}, len(entries))
	out := make([]station.FavoriteEntry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Key()]; dup {
			continue
		}
		seen[e.Key()] = struct{}{}
		out = append(out, e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
