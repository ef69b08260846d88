package subst

import (
	"sync"
)

// Store memoizes structured fetches for the span of a single Interpolate
// call, so a template that references the same entry through several field
// selectors pays for one fetch. Entries are keyed by (command, path),
// created lazily and discarded when the call returns.
type Store struct {
	sync.RWMutex

	data map[storeKey]Result
}

type storeKey struct {
	command string
	path    string
}

// Result is what the Store holds per key: the fetched entry, or the error
// the fetch failed with when failure caching is enabled.
type Result struct {
	Entry *Entry
	Err   error
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		data: make(map[storeKey]Result),
	}
}

// Save stores the result of fetching (command, path).
func (s *Store) Save(command, path string, res Result) {
	s.Lock()
	defer s.Unlock()

	s.data[storeKey{command, path}] = res
}

// Recall returns the cached result for (command, path). A cached fetch
// failure comes back as a Result with a non-nil Err.
func (s *Store) Recall(command, path string) (Result, bool) {
	s.RLock()
	defer s.RUnlock()

	res, ok := s.data[storeKey{command, path}]
	return res, ok
}

// Reset clears all stored results.
func (s *Store) Reset() {
	s.Lock()
	defer s.Unlock()

	for k := range s.data {
		delete(s.data, k)
	}
}
