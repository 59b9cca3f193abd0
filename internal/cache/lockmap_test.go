package cache

import "testing"

func TestLockMapSerializesSameKey(t *testing.T) {
	lm := NewLockMap()
	unlock := lm.Lock("board-a")
	done := make(chan struct{})
	go func() {
		unlock2 := lm.Lock("board-a")
		unlock2()
		close(done)
	}()
	select {
	case <-done:
		t.Fatalf("expected second Lock on the same key to block until the first unlocks")
	default:
	}
	unlock()
	<-done
}

func TestLockMapDifferentKeysDoNotBlock(t *testing.T) {
	lm := NewLockMap()
	unlockA := lm.Lock("board-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := lm.Lock("board-b")
		unlockB()
		close(done)
	}()
	<-done
}
