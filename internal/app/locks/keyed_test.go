package locks_test

import (
	"sync"
	"testing"

	"homestay/internal/app/locks"
)

func TestLockSerializesSameKey(t *testing.T) {
	km := locks.NewKeyedMutex()
	const workers = 32
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := km.Lock("listing-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestLockDifferentKeysDoNotBlock(t *testing.T) {
	km := locks.NewKeyedMutex()
	unlockA := km.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestUnlockAllowsReacquire(t *testing.T) {
	km := locks.NewKeyedMutex()
	unlock := km.Lock("a")
	unlock()
	unlock2 := km.Lock("a")
	unlock2()
}
