package buzzdb_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"buzzdb"
	"buzzdb/pkg/config"
	"buzzdb/pkg/field"
	"buzzdb/pkg/operator"
	"buzzdb/pkg/record"
)

// TestPersistenceAcrossReopen covers scenario S1: insert 100 tagged
// records, shut down, reopen without truncation, and scan them back.
func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")

	db, err := buzzdb.Open(path, true, nil)
	require.NoError(t, err)
	for i := int32(0); i < 100; i++ {
		r := record.New(field.NewInt32(i), field.NewInt32(i*i), field.NewText("DURABLE"))
		ins := operator.NewInsert(db.Pool(), r)
		require.NoError(t, ins.Open())
		ok, err := ins.Next()
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, ins.Close())
	}
	require.NoError(t, db.Close())

	reopened, err := buzzdb.Open(path, false, nil)
	require.NoError(t, err)
	defer reopened.Close()

	scan := operator.NewScanForRelation(reopened.Pool(), "DURABLE")
	require.NoError(t, scan.Open())
	seen := map[int32]int32{}
	count := 0
	for {
		ok, err := scan.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		row := scan.Output()
		i := int32(row.Fields[0].(field.Int32Field))
		sq := int32(row.Fields[1].(field.Int32Field))
		seen[i] = sq
		count++
	}
	require.NoError(t, scan.Close())

	require.Equal(t, 100, count)
	for i := int32(0); i < 100; i++ {
		require.Equal(t, i*i, seen[i])
	}
}

// TestConcurrentReadersSeeFullSnapshot covers scenario S6: four reader
// threads each perform ten full scans of 1,000 preloaded "X"-tagged rows;
// every scan must count exactly 1,000 rows.
func TestConcurrentReadersSeeFullSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	cfg := config.Config{PageSize: 4096, MaxSlots: 512, PoolCapacity: 20, DatabasePath: path}

	db, err := buzzdb.OpenWithConfig(cfg, true, nil)
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 1000; i++ {
		r := record.New(field.NewInt32(int32(i)), field.NewText("X"))
		ins := operator.NewInsert(db.Pool(), r)
		require.NoError(t, ins.Open())
		ok, err := ins.Next()
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, ins.Close())
	}

	const readers = 4
	const scansEach = 10
	var wg sync.WaitGroup
	errs := make(chan error, readers*scansEach)
	wg.Add(readers)
	for r := 0; r < readers; r++ {
		go func() {
			defer wg.Done()
			for s := 0; s < scansEach; s++ {
				scan := operator.NewScanForRelation(db.Pool(), "X")
				if err := scan.Open(); err != nil {
					errs <- err
					return
				}
				count := 0
				for {
					ok, err := scan.Next()
					if err != nil {
						errs <- err
						return
					}
					if !ok {
						break
					}
					count++
				}
				if err := scan.Close(); err != nil {
					errs <- err
					return
				}
				if count != 1000 {
					errs <- fmt.Errorf("scan counted %d rows, want 1000", count)
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
