package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyMutex_SameKeySameLock(t *testing.T) {
	req := require.New(t)
	locks := NewKeyMutex(8)

	req.Same(locks.Get("room-1"), locks.Get("room-1"))
}

func TestKeyMutex_SerialisesSameKey(t *testing.T) {
	req := require.New(t)
	locks := NewKeyMutex(4)
	counter := 0

	// Given many goroutines increment a counter under the same key
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := locks.Get("room-1")
			lock.Lock()
			defer lock.Unlock()
			counter++
		}()
	}
	wg.Wait()

	// Then no increment is lost
	req.Equal(100, counter)
}

func TestKeyMutex_ZeroSize(t *testing.T) {
	req := require.New(t)
	locks := NewKeyMutex(0)

	req.NotNil(locks.Get("room-1"))
}
