package field

import (
	"encoding/binary"
	"io"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Float32Field is a 32-bit floating point value.
type Float32Field float32

func NewFloat32(v float32) Float32Field { return Float32Field(v) }

func (f Float32Field) Kind() Kind { return Float32Kind }

func (f Float32Field) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }

func (f Float32Field) Serialize(w io.Writer) error { return serialize(w, Float32Kind, f.String()) }

func (f Float32Field) Equals(other Field) bool {
	o, ok := other.(Float32Field)
	return ok && f == o
}

func (f Float32Field) Compare(op Op, other Field) (bool, error) {
	o, ok := other.(Float32Field)
	if !ok {
		return false, typeMismatch("Float32Field.Compare", f, other)
	}
	return applyOpFloat(op, float64(f), float64(o)), nil
}

func (f Float32Field) Hash() uint64 {
	var buf [5]byte
	buf[0] = Float32Kind.tag()
	binary.LittleEndian.PutUint32(buf[1:], math.Float32bits(float32(f)))
	return xxhash.Sum64(buf[:])
}
