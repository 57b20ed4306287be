package field

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Int32Field is a signed 32-bit integer value.
type Int32Field int32

func NewInt32(v int32) Int32Field { return Int32Field(v) }

func (f Int32Field) Kind() Kind { return Int32Kind }

func (f Int32Field) String() string { return strconv.FormatInt(int64(f), 10) }

func (f Int32Field) Serialize(w io.Writer) error { return serialize(w, Int32Kind, f.String()) }

func (f Int32Field) Equals(other Field) bool {
	o, ok := other.(Int32Field)
	return ok && f == o
}

func (f Int32Field) Compare(op Op, other Field) (bool, error) {
	o, ok := other.(Int32Field)
	if !ok {
		return false, typeMismatch("Int32Field.Compare", f, other)
	}
	return applyOp(op, int64(f), int64(o)), nil
}

func (f Int32Field) Hash() uint64 {
	var buf [5]byte
	buf[0] = Int32Kind.tag()
	binary.LittleEndian.PutUint32(buf[1:], uint32(int32(f)))
	return xxhash.Sum64(buf[:])
}
