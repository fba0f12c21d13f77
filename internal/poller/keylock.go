package poller

import (
	"hash/fnv"
	"sync"
)

// KeyLock is a small striped lock: it maps an arbitrary string key to
// one of a fixed number of mutexes by hash, giving single-writer-per-
// key discipline over the pollers' in-memory ring/last-metric maps
// without one mutex per key. No pack dependency offers a striped lock
// primitive; this is stdlib sync-only, justified in DESIGN.md.
type KeyLock struct {
	stripes []sync.Mutex
}

// NewKeyLock builds a KeyLock with the given number of stripes.
// Stripes below 1 is clamped to 1.
func NewKeyLock(stripes int) *KeyLock {
	if stripes < 1 {
		stripes = 1
	}
	return &KeyLock{stripes: make([]sync.Mutex, stripes)}
}

func (k *KeyLock) stripeFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &k.stripes[h.Sum32()%uint32(len(k.stripes))]
}

// Lock acquires the stripe guarding key.
func (k *KeyLock) Lock(key string) {
	k.stripeFor(key).Lock()
}

// Unlock releases the stripe guarding key.
func (k *KeyLock) Unlock(key string) {
	k.stripeFor(key).Unlock()
}

// With runs fn while holding the stripe guarding key.
func (k *KeyLock) With(key string, fn func()) {
	m := k.stripeFor(key)
	m.Lock()
	defer m.Unlock()
	fn()
}
