package wheel

import "sync"

// fixedRNG always returns the same value, reduced into range.
type fixedRNG int

func (f fixedRNG) Intn(n int) int {
	return int(f) % n
}

// sequenceRNG returns values in order, cycling, each reduced into range.
type sequenceRNG struct {
	values []int
	calls  int
}

func (s *sequenceRNG) Intn(n int) int {
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v % n
}

// countingRNG is a fixedRNG that counts its draws under a lock.
type countingRNG struct {
	mu    sync.Mutex
	value int
	calls int
}

func (c *countingRNG) Intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.value % n
}
