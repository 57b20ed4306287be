package pool

import (
	"runtime"
	"sync"

	"github.com/google/uuid"

	"buzzdb/pkg/config"
	dberror "buzzdb/pkg/error"
	"buzzdb/pkg/storage"
)

type mode int

const (
	modeUnfixed mode = iota
	modeExclusive
	modeShared
)

type pageState struct {
	mode   mode
	shared int // valid only when mode == modeShared
}

type frame struct {
	pageID storage.PageID
	page   *storage.SlottedPage
	dirty  bool
	latch  sync.RWMutex
}

// FrameHandle grants access to a pinned page's in-memory bytes until
// passed back to BufferPool.Unfix. Using a handle that was not obtained
// from a paired Fix is a usage error.
type FrameHandle struct {
	pool      *BufferPool
	pageID    storage.PageID
	frm       *frame
	exclusive bool
	released  bool
}

// Page returns the handle's pinned page.
func (h *FrameHandle) Page() *storage.SlottedPage { return h.frm.page }

// PageID returns the id of the pinned page.
func (h *FrameHandle) PageID() storage.PageID { return h.pageID }

// BufferPool is a bounded in-memory cache of SlottedPages. A single
// metadata lock guards the page table, free list, and per-page state; each
// resident frame additionally has its own reader/writer latch, held across
// the pin rather than just across the metadata update.
type BufferPool struct {
	mu       sync.Mutex
	cfg      config.Config
	disk     *storage.DiskManager
	policy   *Policy
	capacity int

	frames     []*frame
	freeSlots  []int
	pageToSlot map[storage.PageID]int
	state      map[storage.PageID]*pageState

	id   string
	logf func(string, ...any)
}

// New returns a BufferPool of the given capacity backed by disk.
func New(disk *storage.DiskManager, cfg config.Config, logf func(string, ...any)) *BufferPool {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	free := make([]int, cfg.PoolCapacity)
	for i := range free {
		free[i] = i
	}
	return &BufferPool{
		cfg:        cfg,
		disk:       disk,
		policy:     NewPolicy(),
		capacity:   cfg.PoolCapacity,
		frames:     make([]*frame, cfg.PoolCapacity),
		freeSlots:  free,
		pageToSlot: make(map[storage.PageID]int),
		state:      make(map[storage.PageID]*pageState),
		id:         uuid.NewString()[:8],
		logf:       logf,
	}
}

// Fix returns a handle granting shared or exclusive access to page_id's
// in-memory bytes. It fails with AllPinned if the pool has no free slot
// and no unpinned resident page to evict.
func (bp *BufferPool) Fix(pageID storage.PageID, exclusive bool) (*FrameHandle, error) {
	for {
		bp.mu.Lock()

		if slotIdx, resident := bp.pageToSlot[pageID]; resident {
			st := bp.state[pageID]
			switch {
			case exclusive && st.mode != modeUnfixed:
				bp.mu.Unlock()
				runtime.Gosched()
				continue
			case !exclusive && st.mode == modeExclusive:
				bp.mu.Unlock()
				runtime.Gosched()
				continue
			}

			if exclusive {
				st.mode = modeExclusive
			} else {
				st.mode = modeShared
				st.shared++
			}
			bp.policy.Touch(pageID)
			frm := bp.frames[slotIdx]
			bp.mu.Unlock()

			if exclusive {
				frm.latch.Lock()
			} else {
				frm.latch.RLock()
			}
			bp.logf("[BufferPool %s] FIX page=%d exclusive=%v (hit)", bp.id, pageID, exclusive)
			return &FrameHandle{pool: bp, pageID: pageID, frm: frm, exclusive: exclusive}, nil
		}

		handle, err := bp.fixMiss(pageID, exclusive)
		if err != nil {
			return nil, err
		}
		return handle, nil
	}
}

// fixMiss handles Fix for a page that is not currently resident. Called
// with bp.mu held; always returns with bp.mu released.
func (bp *BufferPool) fixMiss(pageID storage.PageID, exclusive bool) (*FrameHandle, error) {
	if pageID >= bp.disk.PageCount() {
		if err := bp.disk.ExtendTo(pageID); err != nil {
			bp.mu.Unlock()
			return nil, err
		}
	}

	slotIdx, ok := bp.popFreeSlot()
	if !ok {
		victim, ok := bp.policy.Evict(func(id storage.PageID) bool {
			return bp.state[id].mode == modeUnfixed
		})
		if !ok {
			bp.mu.Unlock()
			return nil, dberror.AllPinned("fix")
		}
		vSlot := bp.pageToSlot[victim]
		vFrame := bp.frames[vSlot]
		if vFrame.dirty {
			if err := bp.disk.WritePage(victim, vFrame.page.Bytes()); err != nil {
				bp.freeSlots = append(bp.freeSlots, vSlot)
				bp.mu.Unlock()
				return nil, err
			}
		}
		delete(bp.pageToSlot, victim)
		delete(bp.state, victim)
		bp.frames[vSlot] = nil
		slotIdx = vSlot
	}

	data, err := bp.disk.ReadPage(pageID)
	if err != nil {
		bp.freeSlots = append(bp.freeSlots, slotIdx)
		bp.mu.Unlock()
		return nil, err
	}

	frm := &frame{pageID: pageID, page: storage.LoadPage(bp.cfg, pageID, data)}
	bp.frames[slotIdx] = frm
	bp.pageToSlot[pageID] = slotIdx
	if exclusive {
		bp.state[pageID] = &pageState{mode: modeExclusive}
	} else {
		bp.state[pageID] = &pageState{mode: modeShared, shared: 1}
	}
	bp.policy.Touch(pageID)
	bp.mu.Unlock()

	if exclusive {
		frm.latch.Lock()
	} else {
		frm.latch.RLock()
	}
	bp.logf("[BufferPool %s] FIX page=%d exclusive=%v (miss)", bp.id, pageID, exclusive)
	return &FrameHandle{pool: bp, pageID: pageID, frm: frm, exclusive: exclusive}, nil
}

func (bp *BufferPool) popFreeSlot() (int, bool) {
	if len(bp.freeSlots) == 0 {
		return 0, false
	}
	n := len(bp.freeSlots) - 1
	idx := bp.freeSlots[n]
	bp.freeSlots = bp.freeSlots[:n]
	return idx, true
}

// Unfix releases handle. If dirty is true the frame is marked dirty.
// Calling Unfix on a handle not obtained from a paired Fix, or twice on
// the same handle, is a usage error and panics.
func (bp *BufferPool) Unfix(handle *FrameHandle, dirty bool) {
	if handle == nil || handle.released {
		panic(dberror.UsageError("unfix", "handle already released or nil"))
	}

	bp.mu.Lock()
	st, ok := bp.state[handle.pageID]
	if !ok {
		bp.mu.Unlock()
		panic(dberror.UsageError("unfix", "page not resident"))
	}
	switch st.mode {
	case modeExclusive:
		st.mode = modeUnfixed
	case modeShared:
		st.shared--
		if st.shared <= 0 {
			st.mode = modeUnfixed
			st.shared = 0
		}
	default:
		bp.mu.Unlock()
		panic(dberror.UsageError("unfix", "page was not fixed"))
	}
	if dirty {
		handle.frm.dirty = true
	}
	handle.released = true
	bp.mu.Unlock()

	if handle.exclusive {
		handle.frm.latch.Unlock()
	} else {
		handle.frm.latch.RUnlock()
	}
}

// FlushAll writes every dirty resident frame through the DiskManager and
// clears its dirty flag.
func (bp *BufferPool) FlushAll() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for _, frm := range bp.frames {
		if frm != nil && frm.dirty {
			if err := bp.disk.WritePage(frm.pageID, frm.page.Bytes()); err != nil {
				return err
			}
			frm.dirty = false
		}
	}
	return nil
}

// Extend passes through to the DiskManager.
func (bp *BufferPool) Extend(id storage.PageID) error { return bp.disk.ExtendTo(id) }

// PageCount passes through to the DiskManager.
func (bp *BufferPool) PageCount() uint32 { return bp.disk.PageCount() }
