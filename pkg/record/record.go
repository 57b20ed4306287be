// Package record implements buzzdb's Record: an ordered, schemaless
// sequence of fields. Records carry no type descriptor — unlike the
// teacher corpus's schema-checked tuples, any Scan may interleave records
// of differing shapes, and it is Filter/Project's job (not the Record's)
// to reject an out-of-range column index.
package record

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"buzzdb/pkg/field"
)

// Record is an ordered sequence of one or more Fields.
type Record struct {
	Fields []field.Field
}

// New builds a Record from the given fields in order.
func New(fields ...field.Field) Record {
	return Record{Fields: fields}
}

// ID identifies a record's on-disk position: the page it lives on and its
// slot index within that page's directory.
type ID struct {
	PageID uint32
	Slot   int
}

// Serialize writes the record's wire encoding: "<field_count> " followed by
// each field's own "<tag> <len> <value> " encoding, in order.
func (r Record) Serialize(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d ", len(r.Fields)); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if err := f.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the record's serialized wire form.
func (r Record) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse reads one record from its wire encoding.
func Parse(data []byte) (Record, error) {
	r := bufio.NewReader(bytes.NewReader(data))
	countTok, err := readToken(r)
	if err != nil {
		return Record{}, fmt.Errorf("record: reading field count: %w", err)
	}
	count, err := strconv.Atoi(countTok)
	if err != nil || count < 0 {
		return Record{}, fmt.Errorf("record: invalid field count %q", countTok)
	}

	fields := make([]field.Field, 0, count)
	for i := 0; i < count; i++ {
		f, err := field.Parse(r)
		if err != nil {
			return Record{}, fmt.Errorf("record: field %d: %w", i, err)
		}
		fields = append(fields, f)
	}
	return Record{Fields: fields}, nil
}

func readToken(r *bufio.Reader) (string, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b != ' ' {
			tok := []byte{b}
			for {
				c, err := r.ReadByte()
				if err != nil {
					return "", err
				}
				if c == ' ' {
					return string(tok), nil
				}
				tok = append(tok, c)
			}
		}
	}
}

// RelationTag returns the last field's text rendering, the convention used
// to simulate a catalog: every record is tagged with its owning relation
// name as its final field.
func (r Record) RelationTag() string {
	if len(r.Fields) == 0 {
		return ""
	}
	return r.Fields[len(r.Fields)-1].String()
}

// WithoutRelationTag returns a copy of the record with its last field
// (the relation tag) dropped. Used by Scan when a relation filter is set.
func (r Record) WithoutRelationTag() Record {
	if len(r.Fields) == 0 {
		return r
	}
	out := make([]field.Field, len(r.Fields)-1)
	copy(out, r.Fields[:len(r.Fields)-1])
	return Record{Fields: out}
}

// Field returns the field at index i, or an error if out of range.
func (r Record) Field(i int) (field.Field, error) {
	if i < 0 || i >= len(r.Fields) {
		return nil, fmt.Errorf("record: column index %d out of range (%d fields)", i, len(r.Fields))
	}
	return r.Fields[i], nil
}

// Clone returns a shallow copy of the record's field slice. Fields
// themselves are immutable so a shallow copy is sufficient.
func (r Record) Clone() Record {
	out := make([]field.Field, len(r.Fields))
	copy(out, r.Fields)
	return Record{Fields: out}
}

// Concat returns a new record whose fields are a's followed by b's, used by
// HashJoin to build its output rows.
func Concat(a, b Record) Record {
	out := make([]field.Field, 0, len(a.Fields)+len(b.Fields))
	out = append(out, a.Fields...)
	out = append(out, b.Fields...)
	return Record{Fields: out}
}
