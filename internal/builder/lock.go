package builder

import "sync/atomic"

// BuildLock serializes builds over one database. Acquisition never
// blocks: a build attempted while another is running fails fast instead
// of queueing behind it.
type BuildLock struct {
	state atomic.Int32 // 0 = free, 1 = held
}

// TryAcquire takes the lock if it is free and reports whether it did.
func (l *BuildLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock. Only the holder may call this.
func (l *BuildLock) Release() {
	l.state.Store(0)
}
