// Package pool implements the 2Q replacement policy and the BufferPool that
// uses it to bound resident pages to a fixed frame count under concurrent
// shared/exclusive latching.
package pool

import (
	"container/list"

	"buzzdb/pkg/storage"
)

// Policy is the 2Q replacement policy: an A1 FIFO queue of first-seen
// pages and an Am LRU queue of re-referenced pages. A page id appears in
// at most one of the two queues at a time.
//
// Policy is not internally synchronized; every call is expected to happen
// while the caller holds its own metadata lock (BufferPool's, in this
// module).
type Policy struct {
	a1    *list.List // FIFO, head = oldest
	am    *list.List // LRU, tail = most recently touched
	a1pos map[storage.PageID]*list.Element
	ampos map[storage.PageID]*list.Element
}

// NewPolicy returns an empty 2Q policy.
func NewPolicy() *Policy {
	return &Policy{
		a1:    list.New(),
		am:    list.New(),
		a1pos: make(map[storage.PageID]*list.Element),
		ampos: make(map[storage.PageID]*list.Element),
	}
}

// Touch records a reference to id. A first touch appends id to the tail of
// A1. A page already in A1 is promoted: removed from A1 and appended to
// the tail of Am. A page already in Am moves to the tail of Am.
func (p *Policy) Touch(id storage.PageID) {
	if el, ok := p.a1pos[id]; ok {
		p.a1.Remove(el)
		delete(p.a1pos, id)
		p.ampos[id] = p.am.PushBack(id)
		return
	}
	if el, ok := p.ampos[id]; ok {
		p.am.MoveToBack(el)
		return
	}
	p.a1pos[id] = p.a1.PushBack(id)
}

// Evict scans A1 head-to-tail then Am head-to-tail for the first id
// satisfying predicate, removes and returns it. ok is false if no
// candidate was found in either queue (the pool reports this as AllPinned).
func (p *Policy) Evict(predicate func(storage.PageID) bool) (id storage.PageID, ok bool) {
	for el := p.a1.Front(); el != nil; el = el.Next() {
		candidate := el.Value.(storage.PageID)
		if predicate(candidate) {
			p.a1.Remove(el)
			delete(p.a1pos, candidate)
			return candidate, true
		}
	}
	for el := p.am.Front(); el != nil; el = el.Next() {
		candidate := el.Value.(storage.PageID)
		if predicate(candidate) {
			p.am.Remove(el)
			delete(p.ampos, candidate)
			return candidate, true
		}
	}
	return 0, false
}

// Forget unconditionally removes id from whichever queue holds it, used
// when a page is evicted via another path.
func (p *Policy) Forget(id storage.PageID) {
	if el, ok := p.a1pos[id]; ok {
		p.a1.Remove(el)
		delete(p.a1pos, id)
	}
	if el, ok := p.ampos[id]; ok {
		p.am.Remove(el)
		delete(p.ampos, id)
	}
}
