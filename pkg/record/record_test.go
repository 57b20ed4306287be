package record_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"buzzdb/pkg/field"
	"buzzdb/pkg/record"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	r := record.New(
		field.NewInt32(24002),
		field.NewText("Xenokrates"),
		field.NewInt32(24),
	)

	data, err := r.Bytes()
	require.NoError(t, err)

	got, err := record.Parse(data)
	require.NoError(t, err)
	require.Len(t, got.Fields, 3)
	for i := range r.Fields {
		require.True(t, r.Fields[i].Equals(got.Fields[i]))
	}
}

func TestRelationTagRoundTrip(t *testing.T) {
	r := record.New(field.NewInt32(1), field.NewText("A"), field.NewText("STUDENTS"))
	require.Equal(t, "STUDENTS", r.RelationTag())

	stripped := r.WithoutRelationTag()
	require.Len(t, stripped.Fields, 2)
	require.True(t, stripped.Fields[0].Equals(field.NewInt32(1)))
	require.True(t, stripped.Fields[1].Equals(field.NewText("A")))
}

func TestConcat(t *testing.T) {
	left := record.New(field.NewInt32(1), field.NewText("A"))
	right := record.New(field.NewInt32(1), field.NewInt32(100))

	joined := record.Concat(left, right)
	require.Len(t, joined.Fields, 4)
}

func TestFieldOutOfRange(t *testing.T) {
	r := record.New(field.NewInt32(1))
	_, err := r.Field(5)
	require.Error(t, err)
}
