package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

const keySep = "\x1f"

// Table is a fitted mapping from group key to a vector of statistics.
// It is immutable once built.
type Table struct {
	by       []string
	keyKinds []frame.Kind
	columns  []string
	keys     [][]string
	rows     map[string]int
	values   [][]float64
}

// Compute groups target by the columns of keys and evaluates stats per group.
// keys and target are matched by position. Rows with a missing key part are
// dropped, missing target values are skipped. Groups are ordered by key.
func Compute(keys *frame.Frame, target *frame.Series, stats []Stat) (*Table, error) {
	if keys.Ncol() == 0 {
		return nil, errors.NewValidationError("by", "at least one key column is required", keys.Names())
	}
	if len(stats) == 0 {
		return nil, errors.NewValidationError("aggs", "at least one statistic is required", stats)
	}
	if target.Len() != keys.Nrow() {
		return nil, errors.NewDimensionError("aggregate.Compute", keys.Nrow(), target.Len(), 0)
	}

	cols := keys.Columns()
	t := &Table{
		by:       keys.Names(),
		keyKinds: make([]frame.Kind, len(cols)),
		columns:  statNames(stats),
		rows:     make(map[string]int),
	}
	for j, c := range cols {
		t.keyKinds[j] = c.Kind()
	}

	groups := make(map[string][]float64)
	parts := make(map[string][]string)
	for i := 0; i < keys.Nrow(); i++ {
		key, p, ok := rowKey(cols, i)
		if !ok {
			continue
		}
		if _, seen := parts[key]; !seen {
			parts[key] = p
			groups[key] = nil
		}
		if v := target.Float(i); !math.IsNaN(v) {
			groups[key] = append(groups[key], v)
		}
	}

	ordered := make([]string, 0, len(parts))
	for key := range parts {
		ordered = append(ordered, key)
	}
	sort.Slice(ordered, func(a, b int) bool { return lessKey(parts[ordered[a]], parts[ordered[b]], t.keyKinds) })

	t.keys = make([][]string, len(ordered))
	t.values = make([][]float64, len(ordered))
	for g, key := range ordered {
		t.rows[key] = g
		t.keys[g] = parts[key]
		vec := make([]float64, len(stats))
		for k, s := range stats {
			vec[k] = s.compute(groups[key])
		}
		t.values[g] = vec
	}
	return t, nil
}

func rowKey(cols []*frame.Series, i int) (string, []string, bool) {
	p := make([]string, len(cols))
	for j, c := range cols {
		k, ok := c.Key(i)
		if !ok {
			return "", nil, false
		}
		p[j] = k
	}
	return strings.Join(p, keySep), p, true
}

func joinKey(cols []*frame.Series, numeric []bool, i int) (string, bool) {
	p := make([]string, len(cols))
	for j, c := range cols {
		var k string
		var ok bool
		if numeric[j] {
			k, ok = c.NumericKey(i)
		} else {
			k, ok = c.Key(i)
		}
		if !ok {
			return "", false
		}
		p[j] = k
	}
	return strings.Join(p, keySep), true
}

// lessKey orders numeric key parts numerically and the rest lexically.
func lessKey(a, b []string, kinds []frame.Kind) bool {
	for j := range a {
		if a[j] == b[j] {
			continue
		}
		if kinds[j] == frame.Float {
			x, y := parseKey(a[j]), parseKey(b[j])
			if x != y {
				return x < y
			}
		}
		return a[j] < b[j]
	}
	return false
}

// WithDerived appends max-min and max/min when both max and min are present,
// and mean/std when both mean and std are present. Ratios go through
// errors.StabilizedDivide; a missing std counts as 0.
func (t *Table) WithDerived() *Table {
	maxAt, minAt := t.column(string(Max)), t.column(string(Min))
	meanAt, stdAt := t.column(string(Mean)), t.column(string(Std))

	out := &Table{by: t.by, keyKinds: t.keyKinds, keys: t.keys, rows: t.rows}
	out.columns = append([]string(nil), t.columns...)
	if maxAt >= 0 && minAt >= 0 {
		out.columns = append(out.columns, MaxMinusMin, MaxOverMin)
	}
	if meanAt >= 0 && stdAt >= 0 {
		out.columns = append(out.columns, MeanOverStd)
	}

	out.values = make([][]float64, len(t.values))
	for g, vec := range t.values {
		row := append(make([]float64, 0, len(out.columns)), vec...)
		if maxAt >= 0 && minAt >= 0 {
			row = append(row, vec[maxAt]-vec[minAt], errors.StabilizedDivide(vec[maxAt], vec[minAt]))
		}
		if meanAt >= 0 && stdAt >= 0 {
			std := vec[stdAt]
			if math.IsNaN(std) {
				std = 0
			}
			row = append(row, errors.StabilizedDivide(vec[meanAt], std))
		}
		out.values[g] = row
	}
	return out
}

func (t *Table) column(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// By returns the key column names.
func (t *Table) By() []string { return append([]string(nil), t.by...) }

// Columns returns the statistic column names in output order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// NGroups returns the number of distinct keys.
func (t *Table) NGroups() int { return len(t.keys) }

// Lookup returns the statistics of one group.
func (t *Table) Lookup(key ...string) ([]float64, bool) {
	g, ok := t.rows[strings.Join(key, keySep)]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), t.values[g]...), true
}

// Rename replaces the statistic column names.
func (t *Table) Rename(names []string) (*Table, error) {
	if len(names) != len(t.columns) {
		return nil, errors.NewValidationError("renamed_columns",
			"length must equal the number of statistics ("+itoa(len(t.columns))+")", len(names))
	}
	out := *t
	out.columns = append([]string(nil), names...)
	return &out, nil
}

// Join left-joins the table onto the key columns of input. The result has
// one column per statistic, input's row count and index. Rows whose key is
// missing or unknown get NaN. When fill is non-nil every NaN in the result,
// including statistics undefined for a group, is replaced by *fill.
func (t *Table) Join(input *frame.Frame, fill *float64) (*frame.Frame, error) {
	keyFrame, err := input.Select(t.by...)
	if err != nil {
		return nil, err
	}
	cols := keyFrame.Columns()
	n := input.Nrow()

	out := make([][]float64, len(t.columns))
	for c := range out {
		out[c] = make([]float64, n)
	}
	// 数値キーで学習した表には "2.0" のような文字列キーも数値として照合する
	numeric := make([]bool, len(cols))
	for j, c := range cols {
		numeric[j] = t.keyKinds[j] == frame.Float && c.Kind() == frame.String
	}
	for i := 0; i < n; i++ {
		var vec []float64
		if key, ok := joinKey(cols, numeric, i); ok {
			if g, found := t.rows[key]; found {
				vec = t.values[g]
			}
		}
		for c := range out {
			v := math.NaN()
			if vec != nil {
				v = vec[c]
			}
			if math.IsNaN(v) && fill != nil {
				v = *fill
			}
			out[c][i] = v
		}
	}

	series := make([]*frame.Series, len(t.columns))
	for c, name := range t.columns {
		s, err := frame.NewFloat(name, out[c]).WithIndex(input.Index())
		if err != nil {
			return nil, err
		}
		series[c] = s
	}
	return frame.New(series...)
}

// Frame renders one row per group in key order. With includeKeys the key
// columns come first; numeric keys are emitted as numbers.
func (t *Table) Frame(includeKeys bool) (*frame.Frame, error) {
	var series []*frame.Series
	if includeKeys {
		for j, name := range t.by {
			if t.keyKinds[j] == frame.Float {
				vals := make([]float64, len(t.keys))
				for g, k := range t.keys {
					vals[g] = parseKey(k[j])
				}
				series = append(series, frame.NewFloat(name, vals))
				continue
			}
			vals := make([]string, len(t.keys))
			for g, k := range t.keys {
				vals[g] = k[j]
			}
			series = append(series, frame.NewString(name, vals))
		}
	}
	for c, name := range t.columns {
		vals := make([]float64, len(t.values))
		for g, vec := range t.values {
			vals[g] = vec[c]
		}
		series = append(series, frame.NewFloat(name, vals))
	}
	return frame.New(series...)
}
