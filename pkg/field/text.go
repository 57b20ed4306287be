package field

import (
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// TextField is a UTF-8 string value. The on-disk text format has no
// escaping; Parse reads the value back by its length prefix, so spaces
// inside the value survive a round trip.
type TextField string

func NewText(v string) TextField { return TextField(v) }

func (f TextField) Kind() Kind { return TextKind }

func (f TextField) String() string { return string(f) }

func (f TextField) Serialize(w io.Writer) error { return serialize(w, TextKind, string(f)) }

func (f TextField) Equals(other Field) bool {
	o, ok := other.(TextField)
	return ok && f == o
}

// Compare is lexicographic on bytes, per the documented text ordering.
func (f TextField) Compare(op Op, other Field) (bool, error) {
	o, ok := other.(TextField)
	if !ok {
		return false, typeMismatch("TextField.Compare", f, other)
	}
	return applyOp(op, int64(strings.Compare(string(f), string(o))), 0), nil
}

func (f TextField) Hash() uint64 {
	buf := make([]byte, 0, len(f)+1)
	buf = append(buf, TextKind.tag())
	buf = append(buf, f...)
	return xxhash.Sum64(buf)
}
