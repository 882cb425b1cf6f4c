package featengine

import "sync"

// keyedMutex serializes work per string key. The sweep and listener can both
// target the same (ticker, timeframe) pair; the upsert is idempotent so
// concurrent runs are safe, but this guard avoids paying for the duplicate
// full-history compute.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function. Per-key
// mutexes are retained; the key space is bounded by tickers × timeframes.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
