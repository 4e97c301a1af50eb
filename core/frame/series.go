package frame

import (
	"math"
	"strconv"
	"strings"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Kind distinguishes numeric from categorical series.
type Kind int

const (
	// Float series hold float64 values; NaN marks a missing value.
	Float Kind = iota
	// String series hold categorical values with an explicit validity mask.
	String
)

func (k Kind) String() string {
	if k == String {
		return "string"
	}
	return "float"
}

// Series is a named, homogeneous, immutable column with a row index.
type Series struct {
	name   string
	kind   Kind
	dtype  DType
	floats []float64
	strs   []string
	valid  []bool // String only; nil means every value is present
	index  []int
}

// NewFloat creates a float64 series. NaN entries are missing.
func NewFloat(name string, values []float64) *Series {
	return &Series{
		name:   name,
		kind:   Float,
		dtype:  Float64,
		floats: append([]float64(nil), values...),
		index:  defaultIndex(len(values)),
	}
}

// NewInt creates an int64 series.
func NewInt(name string, values []int64) *Series {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	return &Series{
		name:   name,
		kind:   Float,
		dtype:  Int64,
		floats: floats,
		index:  defaultIndex(len(values)),
	}
}

// NewString creates a categorical series with every value present.
func NewString(name string, values []string) *Series {
	return &Series{
		name:  name,
		kind:  String,
		dtype: Object,
		strs:  append([]string(nil), values...),
		index: defaultIndex(len(values)),
	}
}

// NewStringWithMissing creates a categorical series where valid[i] == false
// marks row i as missing.
func NewStringWithMissing(name string, values []string, valid []bool) (*Series, error) {
	if len(values) != len(valid) {
		return nil, errors.NewDimensionError("frame.NewStringWithMissing", len(values), len(valid), 0)
	}
	s := NewString(name, values)
	s.valid = append([]bool(nil), valid...)
	return s, nil
}

func defaultIndex(n int) []int {
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	return index
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Len returns the number of rows.
func (s *Series) Len() int {
	if s.kind == String {
		return len(s.strs)
	}
	return len(s.floats)
}

// Kind returns Float or String.
func (s *Series) Kind() Kind { return s.kind }

// DType returns the storage dtype.
func (s *Series) DType() DType { return s.dtype }

// Index returns a copy of the row labels.
func (s *Series) Index() []int { return append([]int(nil), s.index...) }

// IsNA reports whether row i is missing.
func (s *Series) IsNA(i int) bool {
	if s.kind == String {
		return s.valid != nil && !s.valid[i]
	}
	return math.IsNaN(s.floats[i])
}

// Float returns row i as a number. String series parse the value and report
// NaN when it is missing or not numeric.
func (s *Series) Float(i int) float64 {
	if s.kind == Float {
		return s.floats[i]
	}
	if s.IsNA(i) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s.strs[i], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Floats returns a copy of the values as float64.
func (s *Series) Floats() []float64 {
	if s.kind == Float {
		return append([]float64(nil), s.floats...)
	}
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Float(i)
	}
	return out
}

// Key returns row i as a categorical key. Numbers are formatted in their
// shortest representation so 1 and 1.0 share a key. String values are
// returned as is, so "2.0" in a String series does not equal 2 in a Float
// series; see NumericKey. ok is false for missing values.
func (s *Series) Key(i int) (key string, ok bool) {
	if s.IsNA(i) {
		return "", false
	}
	if s.kind == String {
		return s.strs[i], true
	}
	return strconv.FormatFloat(s.floats[i], 'g', -1, 64), true
}

// NumericKey is Key, except that a String value parsing as a number is
// formatted the way a Float series would format it ("2.0" becomes "2").
func (s *Series) NumericKey(i int) (key string, ok bool) {
	key, ok = s.Key(i)
	if !ok || s.kind != String {
		return key, ok
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(key), 64); err == nil {
		return strconv.FormatFloat(v, 'g', -1, 64), true
	}
	return key, true
}

// Strings returns every row as a key and a validity mask.
func (s *Series) Strings() (values []string, valid []bool) {
	values = make([]string, s.Len())
	valid = make([]bool, s.Len())
	for i := range values {
		values[i], valid[i] = s.Key(i)
	}
	return values, valid
}

// Rename returns the same data under a new name.
func (s *Series) Rename(name string) *Series {
	out := *s
	out.name = name
	return &out
}

// Take returns the rows at the given positions, keeping their labels.
func (s *Series) Take(rows []int) *Series {
	out := &Series{name: s.name, kind: s.kind, dtype: s.dtype, index: make([]int, len(rows))}
	if s.kind == String {
		out.strs = make([]string, len(rows))
		if s.valid != nil {
			out.valid = make([]bool, len(rows))
		}
	} else {
		out.floats = make([]float64, len(rows))
	}
	for j, i := range rows {
		out.index[j] = s.index[i]
		if s.kind == String {
			out.strs[j] = s.strs[i]
			if s.valid != nil {
				out.valid[j] = s.valid[i]
			}
		} else {
			out.floats[j] = s.floats[i]
		}
	}
	return out
}

// WithIndex returns the same data with new row labels.
func (s *Series) WithIndex(index []int) (*Series, error) {
	if len(index) != s.Len() {
		return nil, errors.NewDimensionError("Series.WithIndex", s.Len(), len(index), 0)
	}
	out := *s
	out.index = append([]int(nil), index...)
	return &out, nil
}

// Reindex returns the rows whose labels equal index, in that order.
// Every label must exist in s, and the labels of s must be unique.
func (s *Series) Reindex(index []int) (*Series, error) {
	pos := make(map[int]int, len(s.index))
	for i, label := range s.index {
		if _, dup := pos[label]; dup {
			return nil, errors.NewValueError("Series.Reindex", "duplicate label "+strconv.Itoa(label)+" in "+strconv.Quote(s.name))
		}
		pos[label] = i
	}
	rows := make([]int, len(index))
	for j, label := range index {
		i, ok := pos[label]
		if !ok {
			return nil, errors.NewValueError("Series.Reindex", "label "+strconv.Itoa(label)+" not found in "+strconv.Quote(s.name))
		}
		rows[j] = i
	}
	return s.Take(rows), nil
}

// AsType returns a copy rounded to dtype. Casting a String series to a
// numeric dtype parses its values.
func (s *Series) AsType(dtype DType) *Series {
	if dtype == Object {
		if s.kind == String {
			return s
		}
		values, valid := s.Strings()
		out := &Series{name: s.name, kind: String, dtype: Object, strs: values, valid: valid, index: s.Index()}
		return out
	}
	src := s.Floats()
	for i, v := range src {
		src[i] = dtype.cast(v)
	}
	return &Series{name: s.name, kind: Float, dtype: dtype, floats: src, index: s.Index()}
}

// MemoryUsage returns the bytes the column occupies at its dtype.
func (s *Series) MemoryUsage() int {
	return s.Len() * s.dtype.Size()
}

// MinMax returns the smallest and largest non-missing values, ok is false
// when every value is missing or s is categorical.
func (s *Series) MinMax() (min, max float64, ok bool) {
	if s.kind != Float {
		return 0, 0, false
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range s.floats {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// Equal reports whether both series have the same name, kind, labels and
// values, treating missing values as equal.
func (s *Series) Equal(o *Series) bool {
	if s.name != o.name || s.kind != o.kind || s.Len() != o.Len() {
		return false
	}
	for i := range s.index {
		if s.index[i] != o.index[i] {
			return false
		}
		if s.IsNA(i) || o.IsNA(i) {
			if s.IsNA(i) != o.IsNA(i) {
				return false
			}
			continue
		}
		if s.kind == String {
			if s.strs[i] != o.strs[i] {
				return false
			}
		} else if s.floats[i] != o.floats[i] {
			return false
		}
	}
	return true
}
