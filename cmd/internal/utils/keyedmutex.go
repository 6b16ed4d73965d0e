package utils

import "sync"

// KeyedMutex hands out one mutex per string key. The booking service locks on
// a "(roomID, bookingDate)" key so that the overlap check and the insert for
// one room-day are a single critical section, while unrelated room-days
// proceed concurrently.
//
// Mutexes are never evicted; the key space (rooms x days actually booked) is
// small enough that this does not matter.
type KeyedMutex struct {
	mus sync.Map // key → *sync.Mutex
}

func (k *KeyedMutex) Lock(key string) {
	mu, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

func (k *KeyedMutex) Unlock(key string) {
	mu, ok := k.mus.Load(key)
	if !ok {
		panic("keyedmutex: unlock of unknown key " + key)
	}
	mu.(*sync.Mutex).Unlock()
}
