package storage

import (
	"encoding/binary"

	"buzzdb/pkg/config"
)

// Invalid is the sentinel meaning "this slot has never held a record".
const Invalid = uint16(config.Invalid)

// slot is one entry of a page's directory. is_empty==false implies
// offset>=directory_size, offset+length<=PageSize, and length!=Invalid;
// these invariants are only ever established by SlottedPage's own methods,
// so slot itself stays unexported.
type slot struct {
	isEmpty bool
	offset  uint16
	length  uint16
}

// SlottedPage is a fixed-size buffer laid out as a slot directory followed
// by variable-length record bytes growing from the end of the directory
// toward the end of the page.
type SlottedPage struct {
	cfg  config.Config
	id   PageID
	data []byte
}

// NewEmptyPage returns a page with id id whose directory is all unused
// (Invalid) slots and whose record region is zeroed.
func NewEmptyPage(cfg config.Config, id PageID) *SlottedPage {
	p := &SlottedPage{cfg: cfg, id: id, data: make([]byte, cfg.PageSize)}
	for i := 0; i < cfg.MaxSlots; i++ {
		p.writeSlot(i, slot{isEmpty: true, offset: Invalid, length: Invalid})
	}
	return p
}

// LoadPage wraps raw page bytes read from disk. The caller guarantees data
// is exactly cfg.PageSize bytes and was produced by a prior Bytes() call
// (or is a freshly zero-filled page, which LoadPage treats as all-empty).
func LoadPage(cfg config.Config, id PageID, data []byte) *SlottedPage {
	return &SlottedPage{cfg: cfg, id: id, data: data}
}

// ID returns the page's identifier.
func (p *SlottedPage) ID() PageID { return p.id }

// Bytes returns the page's raw buffer, suitable for DiskManager.WritePage.
func (p *SlottedPage) Bytes() []byte { return p.data }

func (p *SlottedPage) slotOffset(i int) int { return i * config.SlotSize }

func (p *SlottedPage) readSlot(i int) slot {
	off := p.slotOffset(i)
	b := p.data[off]
	s := slot{
		isEmpty: b != 0,
		offset:  binary.LittleEndian.Uint16(p.data[off+1:]),
		length:  binary.LittleEndian.Uint16(p.data[off+3:]),
	}
	// An all-zero entry cannot describe a live record (its offset would lie
	// inside the directory); it is what a zero-filled page holds, and reads
	// as a slot that has never been used.
	if !s.isEmpty && s.offset == 0 && s.length == 0 {
		return slot{isEmpty: true, offset: Invalid, length: Invalid}
	}
	return s
}

func (p *SlottedPage) writeSlot(i int, s slot) {
	off := p.slotOffset(i)
	if s.isEmpty {
		p.data[off] = 1
	} else {
		p.data[off] = 0
	}
	binary.LittleEndian.PutUint16(p.data[off+1:], s.offset)
	binary.LittleEndian.PutUint16(p.data[off+3:], s.length)
}

// ErrFull is returned by Insert when no slot and no space can hold the record.
type ErrFull struct{}

func (ErrFull) Error() string { return "page is full" }

// Insert places record bytes onto the page and returns the slot index that
// now holds it, following the corrected placement algorithm: reuse an
// empty slot whose preserved length is large enough before ever allocating
// fresh space, and when allocating fresh space, compute the new offset as
// the maximum offset+length over every slot that has ever been used
// (rather than trusting that the immediately preceding directory entry
// reflects the page's actual high-water mark, which an interleaving of
// deletes and inserts can violate).
func (p *SlottedPage) Insert(record []byte) (int, error) {
	l := uint16(len(record))
	dirSize := p.cfg.DirectorySize()

	// Step 1: reuse path.
	for i := 0; i < p.cfg.MaxSlots; i++ {
		s := p.readSlot(i)
		if s.isEmpty && s.offset != Invalid && s.length >= l {
			p.writeRecord(i, s.offset, l, record)
			return i, nil
		}
	}

	// Step 2: fresh path, using the corrected max offset+length rule.
	freeIdx := -1
	highWater := uint16(dirSize)
	for i := 0; i < p.cfg.MaxSlots; i++ {
		s := p.readSlot(i)
		if s.isEmpty && s.offset == Invalid && freeIdx == -1 {
			freeIdx = i
		}
		if s.offset != Invalid {
			end := s.offset + s.length
			if end > highWater {
				highWater = end
			}
		}
	}
	if freeIdx == -1 {
		return 0, ErrFull{}
	}
	offset := highWater
	if int(offset)+len(record) > p.cfg.PageSize {
		return 0, ErrFull{}
	}
	p.writeRecord(freeIdx, offset, l, record)
	return freeIdx, nil
}

func (p *SlottedPage) writeRecord(slotIdx int, offset, length uint16, record []byte) {
	copy(p.data[offset:int(offset)+len(record)], record)
	existing := p.readSlot(slotIdx)
	newLength := length
	if existing.length != Invalid && existing.length > length {
		newLength = existing.length
	}
	p.writeSlot(slotIdx, slot{isEmpty: false, offset: offset, length: newLength})
}

// Delete marks slotIdx empty, preserving offset/length so the byte range
// can be reused by a subsequent record of size <= the old length.
// Out-of-range or already-empty deletes are no-ops.
func (p *SlottedPage) Delete(slotIdx int) {
	if slotIdx < 0 || slotIdx >= p.cfg.MaxSlots {
		return
	}
	s := p.readSlot(slotIdx)
	if s.isEmpty {
		return
	}
	s.isEmpty = true
	p.writeSlot(slotIdx, s)
}

// Get returns the record bytes stored at slotIdx, or ok=false if the slot
// is out of range, empty, or has never been used.
func (p *SlottedPage) Get(slotIdx int) (rec []byte, ok bool) {
	if slotIdx < 0 || slotIdx >= p.cfg.MaxSlots {
		return nil, false
	}
	s := p.readSlot(slotIdx)
	if s.isEmpty || s.offset == Invalid {
		return nil, false
	}
	return p.data[s.offset : int(s.offset)+int(s.length)], true
}

// NumSlots returns the directory capacity, i.e. config.MaxSlots.
func (p *SlottedPage) NumSlots() int { return p.cfg.MaxSlots }

// NextOccupied returns the smallest occupied slot index >= from, or
// ok=false if none exists.
func (p *SlottedPage) NextOccupied(from int) (idx int, ok bool) {
	for i := from; i < p.cfg.MaxSlots; i++ {
		s := p.readSlot(i)
		if !s.isEmpty {
			return i, true
		}
	}
	return 0, false
}
