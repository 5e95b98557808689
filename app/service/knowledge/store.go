package knowledge

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrNotLoaded = errors.New("knowledge base is not loaded")

// Snapshot pairs a knowledge base with its flattened context. Both are
// replaced together, so a reader never sees a context from another version.
type Snapshot struct {
	KB      *KnowledgeBase
	Version uint64
	Context string
}

type Store struct {
	swapMu  sync.Mutex
	current atomic.Pointer[Snapshot]
	version uint64
}

func NewStore(kb *KnowledgeBase) *Store {
	s := &Store{}
	if kb != nil {
		s.Swap(kb)
	}
	return s
}

// Swap publishes kb under the next version and returns the new snapshot.
func (s *Store) Swap(kb *KnowledgeBase) *Snapshot {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	s.version++
	snapshot := &Snapshot{
		KB:      kb,
		Version: s.version,
		Context: Flatten(kb),
	}
	s.current.Store(snapshot)
	return snapshot
}

func (s *Store) Snapshot() (*Snapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, ErrNotLoaded
	}
	return snapshot, nil
}
