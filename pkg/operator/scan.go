package operator

import (
	"buzzdb/pkg/pool"
	"buzzdb/pkg/record"
	"buzzdb/pkg/storage"
)

// Scan is a leaf operator pulling records directly out of the BufferPool,
// page by page, slot by slot. An optional relation tag restricts output to
// records whose last field equals the tag, and is stripped from the
// records it yields — the only mechanism this module has for storing more
// than one relation in a single file.
type Scan struct {
	Base
	pool *pool.BufferPool

	hasTag bool
	tag    string

	pageCount uint32
	curPage   storage.PageID
	curSlot   int
	handle    *pool.FrameHandle
}

// NewScan returns a Scan over every record in pool.
func NewScan(p *pool.BufferPool) *Scan {
	return &Scan{pool: p}
}

// NewScanForRelation returns a Scan restricted to records tagged tag, with
// the tag field stripped from its output.
func NewScanForRelation(p *pool.BufferPool, tag string) *Scan {
	return &Scan{pool: p, hasTag: true, tag: tag}
}

func (s *Scan) Open() error {
	s.pageCount = s.pool.PageCount()
	s.curPage = 0
	s.curSlot = 0
	s.MarkOpened()
	return nil
}

func (s *Scan) Next() (bool, error) {
	for {
		if s.handle == nil {
			if s.curPage >= s.pageCount {
				return false, nil
			}
			h, err := s.pool.Fix(s.curPage, false)
			if err != nil {
				return false, err
			}
			s.handle = h
			s.curSlot = 0
		}

		idx, ok := s.handle.Page().NextOccupied(s.curSlot)
		if !ok {
			s.pool.Unfix(s.handle, false)
			s.handle = nil
			s.curPage++
			continue
		}
		s.curSlot = idx + 1

		data, _ := s.handle.Page().Get(idx)
		rec, err := record.Parse(data)
		if err != nil {
			return false, err
		}

		if s.hasTag {
			if rec.RelationTag() != s.tag {
				continue
			}
			rec = rec.WithoutRelationTag()
		}
		s.SetOutput(rec)
		return true, nil
	}
}

func (s *Scan) Close() error {
	if s.handle != nil {
		s.pool.Unfix(s.handle, false)
		s.handle = nil
	}
	s.Reset()
	return nil
}
