package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"buzzdb/pkg/config"
	"buzzdb/pkg/storage"
)

func testConfig() config.Config {
	return config.Config{PageSize: 4096, MaxSlots: 512}
}

func TestInsertGetRoundTrip(t *testing.T) {
	p := storage.NewEmptyPage(testConfig(), 0)

	idx, err := p.Insert([]byte("hello world"))
	require.NoError(t, err)

	got, ok := p.Get(idx)
	require.True(t, ok)
	require.Equal(t, "hello world", string(got))
}

func TestDeleteThenReuseBySize(t *testing.T) {
	cfg := testConfig()
	p := storage.NewEmptyPage(cfg, 0)

	idx, err := p.Insert([]byte("0123456789"))
	require.NoError(t, err)
	p.Delete(idx)

	_, ok := p.Get(idx)
	require.False(t, ok, "deleted slot must not be readable")

	idx2, err := p.Insert([]byte("short"))
	require.NoError(t, err)
	require.Equal(t, idx, idx2, "a same-or-shorter record should reuse the freed slot's offset")
}

func TestDeleteIsNoOpOutOfRange(t *testing.T) {
	p := storage.NewEmptyPage(testConfig(), 0)
	require.NotPanics(t, func() { p.Delete(-1) })
	require.NotPanics(t, func() { p.Delete(99999) })
}

func TestFreshAllocationUsesMaxOffsetPlusLength(t *testing.T) {
	cfg := testConfig()
	p := storage.NewEmptyPage(cfg, 0)

	firstIdx, err := p.Insert([]byte("aaaaaaaaaa")) // 10 bytes
	require.NoError(t, err)
	secondIdx, err := p.Insert([]byte("bb")) // 2 bytes
	require.NoError(t, err)

	// Delete the first slot (its region is now free but only 10 bytes,
	// too small for a fresh 20-byte record) and insert a record larger
	// than either existing region. The corrected placement rule must
	// compute the new offset from the true high-water mark across all
	// slots, not from whichever directory entry happens to precede the
	// chosen fresh slot.
	p.Delete(firstIdx)
	thirdIdx, err := p.Insert([]byte("cccccccccccccccccccc")) // 20 bytes
	require.NoError(t, err)

	got, ok := p.Get(thirdIdx)
	require.True(t, ok)
	require.Equal(t, "cccccccccccccccccccc", string(got))

	gotSecond, ok := p.Get(secondIdx)
	require.True(t, ok)
	require.Equal(t, "bb", string(gotSecond))
}

func TestInsertFullPageReturnsErrFull(t *testing.T) {
	cfg := config.Config{PageSize: 100, MaxSlots: 4}
	p := storage.NewEmptyPage(cfg, 0)

	// directory occupies 4*5=20 bytes, leaving 80 bytes of record space.
	_, err := p.Insert(make([]byte, 70))
	require.NoError(t, err)

	_, err = p.Insert(make([]byte, 70))
	require.Error(t, err)
	require.IsType(t, storage.ErrFull{}, err)
}

func TestPageRoundTripThroughBytes(t *testing.T) {
	cfg := testConfig()
	p := storage.NewEmptyPage(cfg, 3)
	_, err := p.Insert([]byte("DURABLE"))
	require.NoError(t, err)

	reloaded := storage.LoadPage(cfg, 3, p.Bytes())
	idx, ok := reloaded.NextOccupied(0)
	require.True(t, ok)
	got, ok := reloaded.Get(idx)
	require.True(t, ok)
	require.Equal(t, "DURABLE", string(got))
}
