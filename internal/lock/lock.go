// Package lock serializes work on a single bookmark across requests and,
// when Redis is configured, across processes.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the context ends before the lock is taken.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive leases on string keys.
// The returned release func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// BookmarkKey is the lock key guarding one bookmark.
func BookmarkKey(id string) string {
	return "marks:lock:bookmark:" + id
}
