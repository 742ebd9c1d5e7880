// Package store tracks which recognized tracks have already been reported,
// using a Bloom filter screen in front of an LRU-bounded set.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"trackwatch/internal/track"
)

// SeenStore is a thread-safe set of track identity keys with bounded memory:
// the Bloom filter answers the common "never seen" case without touching the
// map, and the LRU bounds the set by evicting the oldest keys.
type SeenStore struct {
	keys                   map[string]struct{}
	bloom                  *bloom.BloomFilter
	lru                    *lru.Cache[string, struct{}]
	mutex                  sync.RWMutex
	maxTracks              int
	bloomFalsePositiveRate float64
}

// NewSeenStore creates a store bounded to maxTracks keys with the given Bloom
// false positive rate.
func NewSeenStore(maxTracks int, bloomFalsePositiveRate float64) *SeenStore {
	if maxTracks <= 0 {
		panic("maxTracks must be positive")
	}

	lruCache, _ := lru.New[string, struct{}](maxTracks)
	bloomFilter := bloom.NewWithEstimates(uint(maxTracks), bloomFalsePositiveRate)

	return &SeenStore{
		keys:                   make(map[string]struct{}),
		bloom:                  bloomFilter,
		lru:                    lruCache,
		maxTracks:              maxTracks,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}
}

// KeyFor derives the identity key for a snapshot: the source-scoped unique ID
// when present, otherwise artist and track joined with a NUL byte. Returns
// ("", false) when the snapshot carries no usable identity.
func KeyFor(s *track.State) (string, bool) {
	if s.UniqueID != nil {
		return *s.UniqueID, true
	}
	if s.Artist != nil && s.Track != nil {
		return *s.Artist + "\x00" + *s.Track, true
	}
	return "", false
}

// Has checks whether a key is in the store.
func (ss *SeenStore) Has(key string) bool {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.bloom.TestString(key) {
		return false
	}

	_, exists := ss.keys[key]
	return exists
}

// Add inserts a key, evicting the oldest entries past capacity.
func (ss *SeenStore) Add(key string) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if _, exists := ss.keys[key]; exists {
		return
	}

	ss.keys[key] = struct{}{}
	ss.bloom.AddString(key)
	ss.lru.Add(key, struct{}{})

	if len(ss.keys) > ss.maxTracks {
		ss.evictOldest()
	}
}

// Remove deletes a key. The Bloom filter cannot forget, so a removed key may
// still pay the map lookup on later Has calls; that only costs time.
func (ss *SeenStore) Remove(key string) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if _, exists := ss.keys[key]; !exists {
		return
	}

	delete(ss.keys, key)
	ss.lru.Remove(key)
}

// Load clears the store and fills it with the given keys, oldest first.
func (ss *SeenStore) Load(keys []string) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	ss.clear()

	for _, key := range keys {
		if key == "" {
			continue
		}
		ss.keys[key] = struct{}{}
		ss.bloom.AddString(key)
		ss.lru.Add(key, struct{}{})
	}

	for len(ss.keys) > ss.maxTracks {
		ss.evictOldest()
	}
}

// Size returns the number of keys currently stored.
func (ss *SeenStore) Size() int {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	return len(ss.keys)
}

// Clear removes every key and resets the Bloom filter.
func (ss *SeenStore) Clear() {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()
	ss.clear()
}

func (ss *SeenStore) clear() {
	ss.keys = make(map[string]struct{})
	ss.bloom = bloom.NewWithEstimates(uint(ss.maxTracks), ss.bloomFalsePositiveRate)
	ss.lru.Purge()
}

func (ss *SeenStore) evictOldest() {
	oldestKey, _, ok := ss.lru.GetOldest()
	if !ok {
		return
	}

	delete(ss.keys, oldestKey)
	ss.lru.Remove(oldestKey)
}
