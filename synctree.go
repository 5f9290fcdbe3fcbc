package bptree

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/elastic/go-freelru"
)

// SyncTree guards a Tree with a single reader/writer lock so it can be
// shared between goroutines. Inserts and removes are exclusive; lookups,
// snapshots and traversals share the lock.
//
// An optional LRU lookup cache remembers recent LookUp answers, including
// misses. Writes update the cache while holding the write lock, so a cached
// answer always matches the tree.
type SyncTree struct {
	mu    sync.RWMutex
	tree  *Tree
	cache *freelru.SyncedLRU[uint64, bool]

	// Stats
	hits   atomic.Uint64
	misses atomic.Uint64
}

type syncOptions struct {
	cacheSize uint32
}

// SyncOption configures a SyncTree.
type SyncOption func(*syncOptions)

// WithLookupCache enables an LRU cache of size entries in front of LookUp.
// A size of 0 disables the cache.
func WithLookupCache(size uint32) SyncOption {
	return func(opts *syncOptions) {
		opts.cacheSize = size
	}
}

// NewSync wraps tree. The caller must not use tree directly afterwards.
func NewSync(tree *Tree, opts ...SyncOption) (*SyncTree, error) {
	var options syncOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &SyncTree{tree: tree}
	if options.cacheSize > 0 {
		cache, err := freelru.NewSynced[uint64, bool](options.cacheSize, hashKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCache, err)
		}
		s.cache = cache
	}
	return s, nil
}

// Insert adds key; see Tree.Insert.
func (s *SyncTree) Insert(key uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := s.tree.Insert(key)
	if s.cache != nil {
		s.cache.Add(key, true)
	}
	return inserted
}

// Remove deletes key; see Tree.Remove.
func (s *SyncTree) Remove(key uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.tree.Remove(key)
	if s.cache != nil {
		s.cache.Add(key, false)
	}
	return removed
}

// LookUp returns the record for key; see Tree.LookUp.
func (s *SyncTree) LookUp(key uint64) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache != nil {
		if present, ok := s.cache.Get(key); ok {
			s.hits.Add(1)
			if !present {
				return Record{}
			}
			return Record{Key: key, Valid: true}
		}
		s.misses.Add(1)
	}

	rec := s.tree.LookUp(key)
	if s.cache != nil {
		s.cache.Add(key, rec.Valid)
	}
	return rec
}

// Snapshot captures the tree structure; see Tree.Snapshot.
func (s *SyncTree) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Snapshot()
}

// Verify checks the tree invariants; see Tree.Verify.
func (s *SyncTree) Verify() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Verify()
}

// Ascend walks the leaf chain under the read lock. fn must not call back
// into s with a write.
func (s *SyncTree) Ascend(fn func(key uint64) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.tree.Ascend(fn)
}

// Len returns the number of stored keys
func (s *SyncTree) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// Height returns the tree height
func (s *SyncTree) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Height()
}

// Digest returns the key-sequence fingerprint; see Tree.Digest.
func (s *SyncTree) Digest() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Digest()
}

type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// CacheStats returns lookup cache statistics
func (s *SyncTree) CacheStats() CacheStats {
	stats := CacheStats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
	if s.cache != nil {
		stats.Entries = s.cache.Len()
	}
	return stats
}
