package operator

import (
	"fmt"
	"io"
	"strings"
)

// Print is a terminal sink: it pulls every row from its input and writes
// it to w as comma-separated field text, one row per line. It does not
// escape commas inside text fields (documented limitation) and exposes no
// meaningful Output.
type Print struct {
	Base
	child Operator
	w     io.Writer
}

// NewPrint returns a Print sink writing child's rows to w.
func NewPrint(child Operator, w io.Writer) *Print {
	return &Print{child: child, w: w}
}

func (p *Print) Open() error {
	if err := p.child.Open(); err != nil {
		return err
	}
	p.MarkOpened()
	return nil
}

func (p *Print) Next() (bool, error) {
	ok, err := p.child.Next()
	if err != nil || !ok {
		return false, err
	}
	row := p.child.Output()
	parts := make([]string, len(row.Fields))
	for i, f := range row.Fields {
		parts[i] = f.String()
	}
	_, werr := fmt.Fprintln(p.w, strings.Join(parts, ","))
	return true, werr
}

func (p *Print) Close() error {
	err := p.child.Close()
	p.Reset()
	return err
}
