package field

import (
	"fmt"

	dberror "buzzdb/pkg/error"
)

func applyOp(op Op, a, b int64) bool {
	switch op {
	case EQ:
		return a == b
	case NE:
		return a != b
	case LT:
		return a < b
	case LE:
		return a <= b
	case GT:
		return a > b
	case GE:
		return a >= b
	default:
		return false
	}
}

func applyOpFloat(op Op, a, b float64) bool {
	switch op {
	case EQ:
		return a == b
	case NE:
		return a != b
	case LT:
		return a < b
	case LE:
		return a <= b
	case GT:
		return a > b
	case GE:
		return a >= b
	default:
		return false
	}
}

func typeMismatch(operation string, a, b Field) error {
	return dberror.TypeMismatch(operation, fmt.Sprintf("%s vs %s", a.Kind(), b.Kind()))
}
