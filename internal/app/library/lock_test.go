package library

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNameLocks_SerializesSameName(t *testing.T) {
	l := newNameLocks()

	unlock := l.lock("a")
	acquired := make(chan struct{})
	go func() {
		release := l.lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestNameLocks_DifferentNamesDoNotBlock(t *testing.T) {
	l := newNameLocks()

	unlockA := l.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		release := l.lock("b")
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different name was blocked")
	}
}

func TestNameLocks_EntriesReleased(t *testing.T) {
	l := newNameLocks()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.lock("shared")
			counter++
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.size())
}
