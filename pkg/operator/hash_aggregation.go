package operator

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	dberror "buzzdb/pkg/error"
	"buzzdb/pkg/field"
	"buzzdb/pkg/record"
)

// AggFunc is one of the aggregate functions HashAggregation supports.
type AggFunc int

const (
	SUM AggFunc = iota
	COUNT
	MIN
	MAX
)

// AggSpec names one aggregate column of a HashAggregation's output.
type AggSpec struct {
	Func     AggFunc
	ArgIndex int
}

type aggAcc struct {
	count int64
	value field.Field // meaningful for SUM, MIN, MAX; unset for COUNT
	set   bool
}

type groupRow struct {
	groupFields []field.Field
	accs        []aggAcc
}

// HashAggregation implements GROUP BY with SUM/COUNT/MIN/MAX. It is built
// eagerly in Open (one pass over the input) and streamed out of Next in
// group-insertion order.
type HashAggregation struct {
	Base
	child   Operator
	groupBy []int
	aggs    []AggSpec

	index  map[uint64]*groupRow
	groups []*groupRow
	pos    int
}

// NewHashAggregation returns a HashAggregation over child grouping by
// groupBy column indices (may be empty) and computing aggs.
func NewHashAggregation(child Operator, groupBy []int, aggs []AggSpec) *HashAggregation {
	return &HashAggregation{child: child, groupBy: groupBy, aggs: aggs, index: make(map[uint64]*groupRow)}
}

func (h *HashAggregation) Open() error {
	if err := h.child.Open(); err != nil {
		return err
	}
	for {
		ok, err := h.child.Next()
		if err != nil {
			h.child.Close()
			return err
		}
		if !ok {
			break
		}
		row := h.child.Output()
		key, groupVals, err := h.groupKey(row)
		if err != nil {
			h.child.Close()
			return err
		}
		if g, exists := h.index[key]; exists {
			h.update(g, row)
		} else {
			g := h.newGroup(groupVals, row)
			h.index[key] = g
			h.groups = append(h.groups, g)
		}
	}
	if err := h.child.Close(); err != nil {
		return err
	}
	h.MarkOpened()
	return nil
}

// groupKey fingerprints row's group-by columns by folding each column's
// structural Field.Hash() into one key, rather than concatenating the
// fields' text renderings: fixed-width 8-byte hash chunks need no
// delimiter between them, closing the documented bug where the source
// concatenates group-by values with no separator at all and lets
// "ab"+"c" collide with "a"+"bc".
func (h *HashAggregation) groupKey(row record.Record) (uint64, []field.Field, error) {
	vals := make([]field.Field, len(h.groupBy))
	buf := make([]byte, 0, len(h.groupBy)*8)
	var chunk [8]byte
	for i, g := range h.groupBy {
		f, err := row.Field(g)
		if err != nil {
			return 0, nil, dberror.UsageError("HashAggregation.open", err.Error())
		}
		vals[i] = f
		binary.LittleEndian.PutUint64(chunk[:], f.Hash())
		buf = append(buf, chunk[:]...)
	}
	return xxhash.Sum64(buf), vals, nil
}

func (h *HashAggregation) newGroup(groupVals []field.Field, row record.Record) *groupRow {
	g := &groupRow{groupFields: groupVals, accs: make([]aggAcc, len(h.aggs))}
	for i, spec := range h.aggs {
		if spec.Func == COUNT {
			g.accs[i] = aggAcc{count: 1}
			continue
		}
		arg, err := row.Field(spec.ArgIndex)
		if err != nil {
			continue
		}
		g.accs[i] = aggAcc{count: 1, value: arg, set: true}
	}
	return g
}

func (h *HashAggregation) update(g *groupRow, row record.Record) {
	for i, spec := range h.aggs {
		acc := &g.accs[i]
		acc.count++
		if spec.Func == COUNT {
			continue
		}
		arg, err := row.Field(spec.ArgIndex)
		if err != nil {
			continue
		}
		if !acc.set {
			acc.value = arg
			acc.set = true
			continue
		}
		switch spec.Func {
		case SUM:
			if sum, err := field.Add(acc.value, arg); err == nil {
				acc.value = sum
			}
			// Summing text, or mismatched kinds, is ignored per the
			// documented SUM type policy; the accumulator is left as-is.
		case MIN:
			if less, err := arg.Compare(field.LT, acc.value); err == nil && less {
				acc.value = arg
			}
		case MAX:
			if greater, err := arg.Compare(field.GT, acc.value); err == nil && greater {
				acc.value = arg
			}
		}
	}
}

func (h *HashAggregation) Next() (bool, error) {
	if h.pos >= len(h.groups) {
		return false, nil
	}
	g := h.groups[h.pos]
	h.pos++

	fields := make([]field.Field, 0, len(g.groupFields)+len(h.aggs))
	fields = append(fields, g.groupFields...)
	for i, spec := range h.aggs {
		acc := g.accs[i]
		if spec.Func == COUNT {
			fields = append(fields, field.NewInt32(int32(acc.count)))
			continue
		}
		if !acc.set {
			fields = append(fields, field.NewInt32(0))
			continue
		}
		fields = append(fields, acc.value)
	}
	h.SetOutput(record.New(fields...))
	return true, nil
}

func (h *HashAggregation) Close() error {
	h.Reset()
	return nil
}
