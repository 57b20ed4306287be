package operator

import "buzzdb/pkg/predicate"

// Filter wraps a single input and a predicate tree, pulling from the
// input until a row satisfies the predicate or the input is exhausted.
type Filter struct {
	Base
	child Operator
	pred  *predicate.Tree
}

// NewFilter returns a Filter over child accepting rows matching pred.
func NewFilter(child Operator, pred *predicate.Tree) *Filter {
	return &Filter{child: child, pred: pred}
}

func (f *Filter) Open() error {
	if err := f.child.Open(); err != nil {
		return err
	}
	f.MarkOpened()
	return nil
}

func (f *Filter) Next() (bool, error) {
	for {
		ok, err := f.child.Next()
		if err != nil || !ok {
			return false, err
		}
		row := f.child.Output()
		if f.pred.Eval(row) {
			f.SetOutput(row)
			return true, nil
		}
	}
}

func (f *Filter) Close() error {
	err := f.child.Close()
	f.Reset()
	return err
}
