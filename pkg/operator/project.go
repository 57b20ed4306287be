package operator

import (
	dberror "buzzdb/pkg/error"
	"buzzdb/pkg/field"
	"buzzdb/pkg/record"
)

// Project wraps a single input and a list of zero-based column indices,
// materializing a new row containing only the selected fields. An
// out-of-range index is a usage error, reported once (via panic) and then
// fatal to the query, matching the rest of this module's contract-violation
// policy.
type Project struct {
	Base
	child   Operator
	columns []int
}

// NewProject returns a Project over child selecting columns, in order.
func NewProject(child Operator, columns []int) *Project {
	return &Project{child: child, columns: columns}
}

func (p *Project) Open() error {
	if err := p.child.Open(); err != nil {
		return err
	}
	p.MarkOpened()
	return nil
}

func (p *Project) Next() (bool, error) {
	ok, err := p.child.Next()
	if err != nil || !ok {
		return false, err
	}
	row := p.child.Output()
	fields := make([]field.Field, len(p.columns))
	for i, c := range p.columns {
		f, err := row.Field(c)
		if err != nil {
			panic(dberror.UsageError("Project.next", err.Error()))
		}
		fields[i] = f
	}
	p.SetOutput(record.New(fields...))
	return true, nil
}

func (p *Project) Close() error {
	err := p.child.Close()
	p.Reset()
	return err
}
