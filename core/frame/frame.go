// Package frame is the in-memory table every trapi component reads and
// writes: an ordered set of named Series sharing one row index.
//
// Frames are immutable. Every operation returns a new Frame, which is what
// lets a feature block Transform the same input many times without copying it
// defensively.
package frame

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Frame is an ordered collection of equally long columns.
type Frame struct {
	cols  []*Series
	names map[string]int
	index []int
	nrow  int
}

// New builds a Frame from columns. All columns must have the same length and
// distinct names; the row index is taken from the first column.
func New(cols ...*Series) (*Frame, error) {
	f := &Frame{names: make(map[string]int, len(cols))}
	if len(cols) == 0 {
		return f, nil
	}
	f.nrow = cols[0].Len()
	f.index = cols[0].Index()
	for _, c := range cols {
		if c.Len() != f.nrow {
			return nil, errors.NewDimensionError("frame.New("+c.Name()+")", f.nrow, c.Len(), 0)
		}
		if _, dup := f.names[c.Name()]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", c.Name())
		}
		aligned, err := c.WithIndex(f.index)
		if err != nil {
			return nil, err
		}
		f.names[c.Name()] = len(f.cols)
		f.cols = append(f.cols, aligned)
	}
	return f, nil
}

// MustNew is New that panics on error, for tests and literals.
func MustNew(cols ...*Series) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// Nrow returns the number of rows.
func (f *Frame) Nrow() int { return f.nrow }

// Ncol returns the number of columns.
func (f *Frame) Ncol() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

// Index returns a copy of the row labels.
func (f *Frame) Index() []int { return append([]int(nil), f.index...) }

// Columns returns the columns in order.
func (f *Frame) Columns() []*Series { return append([]*Series(nil), f.cols...) }

// HasColumn reports whether name is a column of f.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.names[name]
	return ok
}

// Col returns the named column.
func (f *Frame) Col(name string) (*Series, error) {
	i, ok := f.names[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrColumnNotFound, "%q", name)
	}
	return f.cols[i], nil
}

// Select returns a Frame with only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Series, len(names))
	for i, name := range names {
		c, err := f.Col(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	if len(cols) == 0 {
		return &Frame{names: map[string]int{}, nrow: f.nrow, index: f.Index()}, nil
	}
	return New(cols...)
}

// Take returns the rows at the given positions. Labels are preserved.
func (f *Frame) Take(rows []int) *Frame {
	out := &Frame{names: make(map[string]int, len(f.cols)), nrow: len(rows), index: make([]int, len(rows))}
	for j, i := range rows {
		out.index[j] = f.index[i]
	}
	for k, c := range f.cols {
		out.names[c.Name()] = k
		out.cols = append(out.cols, c.Take(rows))
	}
	return out
}

// WithColumn returns f with s appended, or replacing the column of the same name.
func (f *Frame) WithColumn(s *Series) (*Frame, error) {
	if f.Ncol() > 0 && s.Len() != f.nrow {
		return nil, errors.NewDimensionError("Frame.WithColumn("+s.Name()+")", f.nrow, s.Len(), 0)
	}
	cols := f.Columns()
	if i, ok := f.names[s.Name()]; ok {
		cols[i] = s
	} else {
		cols = append(cols, s)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if f.Ncol() > 0 {
		return out.withIndex(f.index)
	}
	return out, nil
}

// Drop returns f without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Frame{names: make(map[string]int), nrow: f.nrow, index: f.Index()}
	for _, c := range f.cols {
		if drop[c.Name()] {
			continue
		}
		out.names[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out
}

// AddPrefix returns f with every column name prefixed.
func (f *Frame) AddPrefix(prefix string) *Frame {
	out := &Frame{names: make(map[string]int, len(f.cols)), nrow: f.nrow, index: f.Index()}
	for i, c := range f.cols {
		renamed := c.Rename(prefix + c.Name())
		out.names[renamed.Name()] = i
		out.cols = append(out.cols, renamed)
	}
	return out
}

// WithIndex returns f with new row labels.
func (f *Frame) WithIndex(index []int) (*Frame, error) {
	if len(index) != f.nrow {
		return nil, errors.NewDimensionError("Frame.WithIndex", f.nrow, len(index), 0)
	}
	return f.withIndex(index)
}

func (f *Frame) withIndex(index []int) (*Frame, error) {
	out := &Frame{names: make(map[string]int, len(f.cols)), nrow: f.nrow, index: append([]int(nil), index...)}
	for i, c := range f.cols {
		aligned, err := c.WithIndex(index)
		if err != nil {
			return nil, err
		}
		out.names[c.Name()] = i
		out.cols = append(out.cols, aligned)
	}
	return out, nil
}

// HConcat places frames side by side. Row counts must match and column names
// must not collide; the row index of the first non-empty frame is kept.
func HConcat(frames ...*Frame) (*Frame, error) {
	var cols []*Series
	var index []int
	nrow := -1
	for _, f := range frames {
		if f == nil {
			continue
		}
		if nrow < 0 {
			nrow = f.nrow
			index = f.Index()
		} else if f.nrow != nrow {
			return nil, errors.NewDimensionError("frame.HConcat", nrow, f.nrow, 0)
		}
		cols = append(cols, f.cols...)
	}
	if len(cols) == 0 {
		if nrow < 0 {
			nrow = 0
		}
		return &Frame{names: map[string]int{}, nrow: nrow, index: index}, nil
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	return out.withIndex(index)
}

// ToDense converts the named columns (all columns when none are given) into
// an n×k matrix. Categorical columns are rejected.
func (f *Frame) ToDense(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		names = f.Names()
	}
	if f.nrow == 0 || len(names) == 0 {
		return nil, errors.NewModelError("Frame.ToDense", "empty data", errors.ErrEmptyData)
	}
	out := mat.NewDense(f.nrow, len(names), nil)
	for j, name := range names {
		c, err := f.Col(name)
		if err != nil {
			return nil, err
		}
		if c.Kind() != Float {
			return nil, errors.NewValueError("Frame.ToDense", fmt.Sprintf("column %q is categorical", name))
		}
		for i := 0; i < f.nrow; i++ {
			out.Set(i, j, c.floats[i])
		}
	}
	return out, nil
}

// MemoryUsage returns the bytes occupied by all columns at their dtypes.
func (f *Frame) MemoryUsage() int {
	total := 0
	for _, c := range f.cols {
		total += c.MemoryUsage()
	}
	return total
}

// Equal reports whether both frames hold the same columns in the same order.
func (f *Frame) Equal(o *Frame) bool {
	if f.nrow != o.nrow || len(f.cols) != len(o.cols) {
		return false
	}
	for i := range f.cols {
		if !f.cols[i].Equal(o.cols[i]) {
			return false
		}
	}
	return true
}

// String renders at most the first 10 rows.
func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(f.Names(), "\t"))
	b.WriteByte('\n')
	n := f.nrow
	if n > 10 {
		n = 10
	}
	for i := 0; i < n; i++ {
		for j, c := range f.cols {
			if j > 0 {
				b.WriteByte('\t')
			}
			if v, ok := c.Key(i); ok {
				b.WriteString(v)
			} else {
				b.WriteString("NaN")
			}
		}
		b.WriteByte('\n')
	}
	if f.nrow > n {
		fmt.Fprintf(&b, "... (%d rows)\n", f.nrow)
	}
	return b.String()
}

// VConcat stacks frames vertically. Every frame must have the columns of the
// first one; a column that is categorical in any frame becomes categorical in
// the result. The row index is reset to 0..n-1.
func VConcat(frames ...*Frame) (*Frame, error) {
	var base *Frame
	for _, f := range frames {
		if f != nil {
			base = f
			break
		}
	}
	if base == nil {
		return &Frame{names: map[string]int{}}, nil
	}

	cols := make([]*Series, 0, base.Ncol())
	for _, name := range base.Names() {
		parts := make([]*Series, 0, len(frames))
		kind := Float
		for _, f := range frames {
			if f == nil {
				continue
			}
			c, err := f.Col(name)
			if err != nil {
				return nil, err
			}
			if c.Kind() == String {
				kind = String
			}
			parts = append(parts, c)
		}
		cols = append(cols, stack(name, kind, parts))
	}
	return New(cols...)
}

func stack(name string, kind Kind, parts []*Series) *Series {
	if kind == Float {
		var values []float64
		dtype := parts[0].dtype
		for _, p := range parts {
			values = append(values, p.floats...)
			if p.dtype != dtype {
				dtype = Float64
			}
		}
		s := NewFloat(name, values)
		s.dtype = dtype
		return s
	}
	var values []string
	var valid []bool
	for _, p := range parts {
		v, ok := p.Strings()
		values = append(values, v...)
		valid = append(valid, ok...)
	}
	return &Series{name: name, kind: String, dtype: Object, strs: values, valid: valid, index: defaultIndex(len(values))}
}
