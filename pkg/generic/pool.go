package generic

import "sync"

// Pool is a typed sync.Pool. Values are passed through reset, when set,
// before they go back into the pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// NewBytesPool pools scratch byte slices with the given initial capacity.
// Slices that grew beyond maxCap are dropped instead of being retained.
func NewBytesPool(initialCap, maxCap int) *Pool[*[]byte] {
	return NewPool(
		func() *[]byte {
			b := make([]byte, 0, initialCap)
			return &b
		},
		func(b *[]byte) *[]byte {
			if cap(*b) > maxCap {
				fresh := make([]byte, 0, initialCap)
				return &fresh
			}
			*b = (*b)[:0]
			return b
		},
	)
}
