// Package settings provides a process-wide cached view of the settings
// table. The cache is populated once on first read and every write goes
// through it, so reads after a write in the same process observe the new
// value.
package settings

import (
	"database/sql"
	"sync"

	"github.com/leanbb/leanbb/internal/database"
)

type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache map[string]string
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key, or def when the key is unknown.
func (s *Store) Get(key, def string) string {
	s.mu.RLock()
	if s.cache != nil {
		value, ok := s.cache[key]
		s.mu.RUnlock()
		if !ok {
			return def
		}
		return value
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		if err := s.load(); err != nil {
			return def
		}
	}

	value, ok := s.cache[key]
	if !ok {
		return def
	}
	return value
}

// Set upserts a single key and updates the cache.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.PutSetting(s.db, key, value); err != nil {
		return err
	}
	if s.cache == nil {
		if err := s.load(); err != nil {
			return err
		}
	}
	s.cache[key] = value
	return nil
}

// SetAll upserts every given key in one transaction. The cache is only
// updated once the transaction commits.
func (s *Store) SetAll(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.PutSettings(s.db, values); err != nil {
		return err
	}
	if s.cache == nil {
		if err := s.load(); err != nil {
			return err
		}
	}
	for key, value := range values {
		s.cache[key] = value
	}
	return nil
}

// load must be called with the write lock held.
func (s *Store) load() error {
	values, err := database.GetSettings(s.db)
	if err != nil {
		return err
	}
	s.cache = values
	return nil
}
