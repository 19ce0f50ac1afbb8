package reservation

import "sync"

// keyedMutex hands out one mutex per restaurant so that
// read-decide-write sequences against the same counter are
// serialized while different restaurants never contend.  Locks are
// created lazily and kept for the life of the process; the number of
// restaurants is small and bounded, so entries are never evicted.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint64]*sync.Mutex)}
}

// get returns the mutex for a key, allocating it on first use.
func (k *keyedMutex) get(key uint64) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
