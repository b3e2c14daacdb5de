package id

import "testing"

func TestOrdinalAcquireLowest(t *testing.T) {
	pool := NewOrdinalPool()

	for want := 1; want <= 3; want++ {
		if got := pool.Acquire(); got != want {
			t.Fatalf("Acquire() = %d, want %d", got, want)
		}
	}
}

func TestOrdinalReuseAfterRelease(t *testing.T) {
	pool := NewOrdinalPool()

	pool.Acquire() // 1
	pool.Acquire() // 2
	pool.Acquire() // 3

	pool.Release(2)

	if got := pool.Acquire(); got != 2 {
		t.Errorf("Acquire() after Release(2) = %d, want 2", got)
	}
	if got := pool.Acquire(); got != 4 {
		t.Errorf("next Acquire() = %d, want 4", got)
	}
}

func TestOrdinalReserve(t *testing.T) {
	pool := NewOrdinalPool()

	if !pool.Reserve(2) {
		t.Fatal("Reserve(2) on empty pool should succeed")
	}
	if pool.Reserve(2) {
		t.Error("Reserve(2) twice should fail")
	}
	if pool.Reserve(0) {
		t.Error("Reserve(0) should fail")
	}

	// 2 is taken, so allocation skips it
	if got := pool.Acquire(); got != 1 {
		t.Errorf("Acquire() = %d, want 1", got)
	}
	if got := pool.Acquire(); got != 3 {
		t.Errorf("Acquire() = %d, want 3", got)
	}
}

func TestOrdinalReleaseUnknown(t *testing.T) {
	pool := NewOrdinalPool()

	pool.Release(7) // no-op

	if got := pool.Acquire(); got != 1 {
		t.Errorf("Acquire() = %d, want 1", got)
	}
	if pool.InUse(7) {
		t.Error("7 should not be in use")
	}
}
