// Package storage implements the slotted-page record store: DiskManager
// owns the single backing file and SlottedPage owns one page's in-memory
// layout and insert/delete algorithm.
package storage

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	dberror "buzzdb/pkg/error"
)

// PageID is a dense, nonnegative page identifier.
type PageID = uint32

// DiskManager owns one file handle and serializes all I/O against it.
// Operations mutually exclude each other via mu, matching the spec's
// "the manager serializes I/O internally" requirement.
type DiskManager struct {
	mu        sync.Mutex
	file      *os.File
	pageSize  int
	pageCount uint32
	locked    bool
	logf      func(format string, args ...any)
}

// Open creates the file if absent, truncating it first if requested. It
// computes the initial page count from the file size and, if the file is
// empty, appends one zero-filled page so page 0 always exists.
//
// On platforms where advisory locking is available, Open takes a
// non-blocking exclusive flock on the file so a second process opening the
// same database concurrently fails fast rather than silently interleaving
// writes; this is best-effort and never promoted to a hard requirement,
// since durability and crash recovery remain out of scope.
func Open(path string, truncate bool, pageSize int, logf func(string, ...any)) (*DiskManager, error) {
	flags := os.O_RDWR | os.O_CREATE
	if truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, dberror.IoError("open", err)
	}

	locked := false
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err == nil {
		locked = true
	} else if err == unix.EWOULDBLOCK {
		f.Close()
		return nil, dberror.IoError("open", fmt.Errorf("%s is locked by another process: %w", path, err))
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberror.IoError("open", err)
	}

	if logf == nil {
		logf = func(string, ...any) {}
	}

	dm := &DiskManager{
		file:      f,
		pageSize:  pageSize,
		pageCount: uint32(info.Size() / int64(pageSize)),
		locked:    locked,
		logf:      logf,
	}

	if dm.pageCount == 0 {
		if err := dm.extendToLocked(0); err != nil {
			f.Close()
			return nil, err
		}
	}

	dm.logf("[DiskManager] OPEN path=%s size=%s pages=%d locked=%v",
		path, humanize.Bytes(uint64(info.Size())), dm.pageCount, locked)
	return dm, nil
}

// ReadPage seeks to id*PageSize and reads exactly PageSize bytes.
func (dm *DiskManager) ReadPage(id PageID) ([]byte, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if id >= dm.pageCount {
		return nil, dberror.OutOfRange("read_page", id, dm.pageCount)
	}

	buf := make([]byte, dm.pageSize)
	n, err := dm.file.ReadAt(buf, int64(id)*int64(dm.pageSize))
	if err != nil && err != io.EOF {
		return nil, dberror.IoError("read_page", err)
	}
	if n != dm.pageSize {
		return nil, dberror.IoError("read_page", fmt.Errorf("short read: got %d of %d bytes", n, dm.pageSize))
	}
	return buf, nil
}

// WritePage seeks to id*PageSize and writes exactly PageSize bytes. It does
// not fsync: durability to physical media is an acknowledged non-goal, so
// the write only needs to reach the OS's own page cache.
func (dm *DiskManager) WritePage(id PageID, bytes []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(bytes) != dm.pageSize {
		return dberror.IoError("write_page", fmt.Errorf("expected %d bytes, got %d", dm.pageSize, len(bytes)))
	}
	if id >= dm.pageCount {
		return dberror.OutOfRange("write_page", id, dm.pageCount)
	}
	if _, err := dm.file.WriteAt(bytes, int64(id)*int64(dm.pageSize)); err != nil {
		return dberror.IoError("write_page", err)
	}
	return nil
}

// ExtendTo ensures the file holds at least id+1 pages, appending
// zero-filled pages as needed.
func (dm *DiskManager) ExtendTo(id PageID) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.extendToLocked(id)
}

func (dm *DiskManager) extendToLocked(id PageID) error {
	if id < dm.pageCount {
		return nil
	}
	newCount := id + 1
	zero := make([]byte, dm.pageSize)
	for p := dm.pageCount; p < newCount; p++ {
		if _, err := dm.file.WriteAt(zero, int64(p)*int64(dm.pageSize)); err != nil {
			return dberror.IoError("extend_to", err)
		}
	}
	dm.logf("[DiskManager] EXTEND to=%d total_size=%s", newCount, humanize.Bytes(uint64(newCount)*uint64(dm.pageSize)))
	dm.pageCount = newCount
	return nil
}

// PageCount returns the number of pages currently in the file.
func (dm *DiskManager) PageCount() uint32 {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.pageCount
}

// PageSize returns the configured page size in bytes.
func (dm *DiskManager) PageSize() int {
	return dm.pageSize
}

// Close releases the file handle and any advisory lock held on it.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.locked {
		unix.Flock(int(dm.file.Fd()), unix.LOCK_UN)
	}
	return dm.file.Close()
}
