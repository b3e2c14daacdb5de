package id

import "sync"

// OrdinalPool hands out the small integers used for default terminal
// naming ("Terminal 3"). Unlike ULIDs, ordinals are reusable: releasing
// one makes it the next candidate if it is the lowest free number.
type OrdinalPool struct {
	mu   sync.Mutex
	used map[int]struct{}
}

// NewOrdinalPool creates an empty pool
func NewOrdinalPool() *OrdinalPool {
	return &OrdinalPool{
		used: make(map[int]struct{}),
	}
}

// Acquire returns the smallest positive integer not currently in use
// and marks it used
func (p *OrdinalPool) Acquire() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 1
	for {
		if _, taken := p.used[n]; !taken {
			p.used[n] = struct{}{}
			return n
		}
		n++
	}
}

// Release returns n to the pool. Releasing an unknown ordinal is a no-op.
func (p *OrdinalPool) Release(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.used, n)
}

// Reserve marks n as used without allocating it. It reports whether the
// reservation succeeded (false when n is invalid or already taken).
// Hydration reserves every persisted ordinal before any new allocation
// so restored terminals keep their numbers.
func (p *OrdinalPool) Reserve(n int) bool {
	if n < 1 {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, taken := p.used[n]; taken {
		return false
	}
	p.used[n] = struct{}{}
	return true
}

// InUse reports whether n is currently allocated
func (p *OrdinalPool) InUse(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, taken := p.used[n]
	return taken
}
