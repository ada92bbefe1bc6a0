package util

import (
	"math/rand"
	"sync"
)

// LockedSource is a rand.Source guarded by a mutex so one *rand.Rand can be shared by every
// simulated user.
type LockedSource struct {
	lk  sync.Mutex
	src rand.Source
}

func (r *LockedSource) Int63() int64 {
	r.lk.Lock()
	defer r.lk.Unlock()
	return r.src.Int63()
}

func (r *LockedSource) Seed(seed int64) {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.src.Seed(seed)
}

// NewThreadsafeRand returns a *rand.Rand that is safe to share across goroutines.
func NewThreadsafeRand(seed int64) *rand.Rand {
	return rand.New(&LockedSource{src: rand.NewSource(seed)})
}
