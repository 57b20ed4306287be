package pool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"buzzdb/pkg/pool"
)

func TestFirstTouchGoesToFIFO(t *testing.T) {
	p := pool.NewPolicy()

	p.Touch(1)
	id, ok := p.Evict(func(uint32) bool { return true })
	require.True(t, ok)
	require.Equal(t, uint32(1), id, "a single touch must land in FIFO and be the first evicted")
}

func TestSecondTouchSurvivesUntilFIFODrains(t *testing.T) {
	p := pool.NewPolicy()

	p.Touch(0) // 0..9 populate FIFO
	for i := uint32(1); i < 10; i++ {
		p.Touch(i)
	}
	p.Touch(0) // promote 0 to LRU

	for i := uint32(10); i < 100; i++ {
		p.Touch(i) // all first touches, land in FIFO
	}

	// Page 0 now sits in Am; every other touched page is in A1. Eviction
	// must never return 0 until every FIFO entry is gone.
	for i := 1; i < 100; i++ {
		id, ok := p.Evict(func(uint32) bool { return true })
		require.True(t, ok)
		require.NotEqual(t, uint32(0), id, "page 0 must survive as long as FIFO entries remain")
	}

	id, ok := p.Evict(func(uint32) bool { return true })
	require.True(t, ok)
	require.Equal(t, uint32(0), id, "once FIFO is empty, LRU's only entry must be evicted")
}

func TestEvictSkipsPinnedPrefix(t *testing.T) {
	p := pool.NewPolicy()
	p.Touch(1)
	p.Touch(2)
	p.Touch(3)

	pinned := map[uint32]bool{1: true, 2: true}
	id, ok := p.Evict(func(candidate uint32) bool { return !pinned[candidate] })
	require.True(t, ok)
	require.Equal(t, uint32(3), id)
}

func TestEvictAllPinnedFails(t *testing.T) {
	p := pool.NewPolicy()
	p.Touch(1)

	_, ok := p.Evict(func(uint32) bool { return false })
	require.False(t, ok)
}

func TestForgetRemovesFromEitherQueue(t *testing.T) {
	p := pool.NewPolicy()
	p.Touch(1)
	p.Touch(1) // promote to Am
	p.Forget(1)

	_, ok := p.Evict(func(uint32) bool { return true })
	require.False(t, ok)
}
