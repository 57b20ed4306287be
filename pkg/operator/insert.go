package operator

import (
	dberror "buzzdb/pkg/error"
	"buzzdb/pkg/pool"
	"buzzdb/pkg/record"
)

const maxExtendRetries = 3

// Insert is a non-composable sink holding a single pending record. Next
// performs at most one insert and reports whether the pending record was
// consumed.
type Insert struct {
	Base
	pool    *pool.BufferPool
	pending *record.Record
}

// NewInsert returns an Insert that will place rec on its first Next call.
func NewInsert(p *pool.BufferPool, rec record.Record) *Insert {
	return &Insert{pool: p, pending: &rec}
}

func (in *Insert) Open() error {
	in.MarkOpened()
	return nil
}

func (in *Insert) Next() (bool, error) {
	if in.pending == nil {
		return false, nil
	}
	data, err := in.pending.Bytes()
	if err != nil {
		return false, err
	}

	pageCount := in.pool.PageCount()
	for pid := uint32(0); pid < pageCount; pid++ {
		h, err := in.pool.Fix(pid, true)
		if err != nil {
			return false, err
		}
		if _, insErr := h.Page().Insert(data); insErr == nil {
			in.pool.Unfix(h, true)
			in.pending = nil
			return true, nil
		}
		in.pool.Unfix(h, false)
	}

	// No existing page had room. Extend by one page and try there,
	// retrying a bounded number of times in case a concurrent inserter
	// races this one onto the same fresh page first (open question on
	// the insert-extend race: retry bounded rather than loop forever).
	for attempt := 0; attempt < maxExtendRetries; attempt++ {
		newID := in.pool.PageCount()
		if err := in.pool.Extend(newID); err != nil {
			return false, err
		}
		h, err := in.pool.Fix(newID, true)
		if err != nil {
			return false, err
		}
		if _, insErr := h.Page().Insert(data); insErr == nil {
			in.pool.Unfix(h, true)
			in.pending = nil
			return true, nil
		}
		in.pool.Unfix(h, false)
	}

	return false, dberror.RecordTooLarge(len(data))
}

func (in *Insert) Close() error {
	in.Reset()
	return nil
}
