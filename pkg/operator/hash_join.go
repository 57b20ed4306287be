package operator

import "buzzdb/pkg/record"

// HashJoin is an inner equi-join over a single column from each side.
// Open runs both phases eagerly: build a hash table from every left row
// keyed by the structural fingerprint (xxhash over the field's kind and
// raw bytes, not its text rendering) of its join column, then probe with
// every right row and materialize matches into an output buffer. This
// means the join is not truly streaming, and supports only single-column
// equality with inner-join semantics — both documented limitations.
type HashJoin struct {
	Base
	left, right       Operator
	leftIdx, rightIdx int

	output []record.Record
	pos    int
}

// NewHashJoin returns a HashJoin matching left.Output()[leftIdx] against
// right.Output()[rightIdx].
func NewHashJoin(left, right Operator, leftIdx, rightIdx int) *HashJoin {
	return &HashJoin{left: left, right: right, leftIdx: leftIdx, rightIdx: rightIdx}
}

func (j *HashJoin) Open() error {
	if err := j.left.Open(); err != nil {
		return err
	}
	buckets := make(map[uint64][]record.Record)
	for {
		ok, err := j.left.Next()
		if err != nil {
			j.left.Close()
			return err
		}
		if !ok {
			break
		}
		row := j.left.Output().Clone()
		f, err := row.Field(j.leftIdx)
		if err != nil {
			j.left.Close()
			return err
		}
		key := f.Hash()
		buckets[key] = append(buckets[key], row)
	}
	if err := j.left.Close(); err != nil {
		return err
	}

	if err := j.right.Open(); err != nil {
		return err
	}
	for {
		ok, err := j.right.Next()
		if err != nil {
			j.right.Close()
			return err
		}
		if !ok {
			break
		}
		row := j.right.Output().Clone()
		f, err := row.Field(j.rightIdx)
		if err != nil {
			j.right.Close()
			return err
		}
		if matches, ok := buckets[f.Hash()]; ok {
			for _, m := range matches {
				j.output = append(j.output, record.Concat(m, row))
			}
		}
	}
	if err := j.right.Close(); err != nil {
		return err
	}

	j.MarkOpened()
	return nil
}

func (j *HashJoin) Next() (bool, error) {
	if j.pos >= len(j.output) {
		return false, nil
	}
	j.SetOutput(j.output[j.pos])
	j.pos++
	return true, nil
}

func (j *HashJoin) Close() error {
	j.output = nil
	j.pos = 0
	j.Reset()
	return nil
}
