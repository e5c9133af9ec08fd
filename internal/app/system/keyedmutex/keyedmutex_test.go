package keyedmutex

import (
	"sync"
	"testing"
)

func TestLockUnlock_SameKeySerializes(t *testing.T) {
	m := New()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("room-1|2024-03-04")
			counter++
			m.Unlock("room-1|2024-03-04")
		}()
	}
	wg.Wait()

	if counter != goroutines {
		t.Errorf("counter = %d, want %d", counter, goroutines)
	}
}

func TestLock_DifferentKeysDoNotBlock(t *testing.T) {
	m := New()

	m.Lock("a")
	done := make(chan struct{})
	go func() {
		m.Lock("b")
		m.Unlock("b")
		close(done)
	}()
	<-done // would deadlock if "b" waited on "a"
	m.Unlock("a")
}

func TestUnlock_DropsIdleEntries(t *testing.T) {
	m := New()

	m.Lock("x")
	m.Unlock("x")

	m.mu.Lock()
	n := len(m.locks)
	m.mu.Unlock()
	if n != 0 {
		t.Errorf("expected idle entries to be dropped, have %d", n)
	}
}

func TestUnlock_UnheldKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unlock of unheld key")
		}
	}()
	New().Unlock("never-locked")
}
