package services

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyLocks serializes work on the same (user, provider) key. Distinct keys
// share a mutex only when they hash to the same stripe.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *keyLocks) lock(userID, provider string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(provider))

	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
