package field

// Add returns a + b for two numeric fields of the same kind. Summing text,
// or fields of different kinds, is a documented no-op for HashAggregation's
// SUM: Add reports it via an error and leaves the caller to keep its
// existing accumulator unchanged.
func Add(a, b Field) (Field, error) {
	if a.Kind() != b.Kind() {
		return nil, typeMismatch("field.Add", a, b)
	}
	switch av := a.(type) {
	case Int32Field:
		bv := b.(Int32Field)
		return av + bv, nil
	case Float32Field:
		bv := b.(Float32Field)
		return av + bv, nil
	default:
		return nil, typeMismatch("field.Add", a, b)
	}
}
