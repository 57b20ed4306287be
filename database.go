// Package buzzdb wires the storage, buffer pool, and operator layers into
// a single database handle: open a file, build operator trees over its
// BufferPool, and shut down cleanly.
package buzzdb

import (
	"buzzdb/pkg/config"
	"buzzdb/pkg/pool"
	"buzzdb/pkg/storage"
)

// Database owns one backing file's DiskManager and BufferPool.
type Database struct {
	cfg  config.Config
	disk *storage.DiskManager
	pool *pool.BufferPool
}

// Open opens (creating if absent) the database file at path. truncate
// resets an existing file to empty before use. logf receives terse,
// prefixed diagnostic lines from the disk manager and buffer pool; pass
// nil to discard them.
func Open(path string, truncate bool, logf func(string, ...any)) (*Database, error) {
	cfg := config.Default(path)
	disk, err := storage.Open(path, truncate, cfg.PageSize, logf)
	if err != nil {
		return nil, err
	}
	bp := pool.New(disk, cfg, logf)
	return &Database{cfg: cfg, disk: disk, pool: bp}, nil
}

// OpenWithConfig is like Open but lets the caller override pool capacity
// and page size, for tests that need a small pool to exercise eviction.
func OpenWithConfig(cfg config.Config, truncate bool, logf func(string, ...any)) (*Database, error) {
	disk, err := storage.Open(cfg.DatabasePath, truncate, cfg.PageSize, logf)
	if err != nil {
		return nil, err
	}
	bp := pool.New(disk, cfg, logf)
	return &Database{cfg: cfg, disk: disk, pool: bp}, nil
}

// Pool returns the database's buffer pool, the entry point operator
// constructors take.
func (db *Database) Pool() *pool.BufferPool { return db.pool }

// Config returns the sizing configuration this database was opened with.
func (db *Database) Config() config.Config { return db.cfg }

// Close flushes every dirty frame and releases the backing file.
func (db *Database) Close() error {
	if err := db.pool.FlushAll(); err != nil {
		return err
	}
	return db.disk.Close()
}
