// Package likes keeps the persisted set of favorite entry ids.
package likes

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/storage"
)

// Key is the storage key of the liked id set
const Key = "likes_v1"

// Store is a persisted set of liked ids
type Store struct {
	store storage.Store

	mu    sync.RWMutex
	liked map[string]bool
}

// New loads the liked set from store. Unreadable state starts empty.
func New(store storage.Store) *Store {
	return &Store{store: store, liked: load(store)}
}

// IsLiked reports whether id is in the set
func (s *Store) IsLiked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked[id]
}

// Toggle flips the membership of id and returns the new state
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	liked := !s.liked[id]
	if liked {
		s.liked[id] = true
	} else {
		delete(s.liked, id)
	}
	s.save()
	return liked
}

// IDs returns the liked ids in sorted order
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.liked))
	for id := range s.liked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func load(store storage.Store) map[string]bool {
	liked := make(map[string]bool)

	raw, ok, err := store.Get(Key)
	if err != nil || !ok || raw == "" {
		return liked
	}

	var decoded map[string]bool
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		logger.Debug("Ignoring corrupt likes", logger.Fields{"error": err.Error()})
		return liked
	}
	for id, v := range decoded {
		if v {
			liked[id] = true
		}
	}
	return liked
}

// save must be called with s.mu held
func (s *Store) save() {
	data, err := json.Marshal(s.liked)
	if err != nil {
		return
	}
	if err := s.store.Set(Key, string(data)); err != nil {
		logger.Debug("Likes write failed", logger.Fields{"error": err.Error()})
	}
}
