package runtime

import (
	"hash/fnv"
	"sync"
)

// KeyMutex stripes locks over a fixed number of mutexes. Two keys may share a
// mutex, the same key always maps to the same one.
type KeyMutex struct {
	mutexes []sync.Mutex
}

func NewKeyMutex(size uint16) *KeyMutex {
	return &KeyMutex{mutexes: make([]sync.Mutex, max(size, 1))}
}

func (k *KeyMutex) Get(key string) sync.Locker {
	return &k.mutexes[hash(key)%uint32(len(k.mutexes))]
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
