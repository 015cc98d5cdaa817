package bytecode

import "sync"

// lazySlice is a fixed-length, index-addressable collection whose elements
// are computed on first access. Each slot is computed at most once; a
// failed computation is memoized like a successful one.
type lazySlice[T any] struct {
	region  string
	what    string
	slots   []lazySlot[T]
	compute func(int) (T, error)
}

type lazySlot[T any] struct {
	once  sync.Once
	value T
	err   error
}

func newLazySlice[T any](region, what string, n int, compute func(int) (T, error)) *lazySlice[T] {
	return &lazySlice[T]{
		region:  region,
		what:    what,
		slots:   make([]lazySlot[T], n),
		compute: compute,
	}
}

func (l *lazySlice[T]) Len() int {
	return len(l.slots)
}

func (l *lazySlice[T]) Get(i int) (T, error) {
	if i < 0 || i >= len(l.slots) {
		var zero T
		return zero, outOfRange(l.region, l.what, i, len(l.slots))
	}
	s := &l.slots[i]
	s.once.Do(func() {
		s.value, s.err = l.compute(i)
	})
	return s.value, s.err
}
