// Package dataset loads and saves frames: CSV (optionally gzip, zstd or lz4
// compressed), Excel workbooks and a compact binary cache.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/performance"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

// DefaultNAValues are the cells read as missing.
var DefaultNAValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

type loadOptions struct {
	reduceMemory bool
	logger       log.Logger
	comma        rune
	sheet        string
	naValues     map[string]bool
}

// LoadOption configures the loaders.
type LoadOption func(*loadOptions)

// WithReduceMemory downcasts numeric columns after loading (default: true).
func WithReduceMemory(reduce bool) LoadOption {
	return func(o *loadOptions) {
		o.reduceMemory = reduce
	}
}

// WithLogger sets the logger (default log.GetLogger()).
func WithLogger(l log.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// WithComma sets the CSV field delimiter (default ',').
func WithComma(r rune) LoadOption {
	return func(o *loadOptions) {
		o.comma = r
	}
}

// WithSheet selects the worksheet read by LoadExcel (default: the first).
func WithSheet(name string) LoadOption {
	return func(o *loadOptions) {
		o.sheet = name
	}
}

// WithNAValues replaces DefaultNAValues.
func WithNAValues(values ...string) LoadOption {
	return func(o *loadOptions) {
		o.naValues = toSet(values)
	}
}

func newLoadOptions(opts []LoadOption) *loadOptions {
	o := &loadOptions{reduceMemory: true, comma: ',', naValues: toSet(DefaultNAValues)}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.GetLogger()
	}
	return o
}

func toSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

// LoadCSV reads a CSV file with a header row. Files ending in .gz, .zst or
// .lz4 are decompressed on the fly. Column types are inferred: integers,
// then floats, otherwise strings.
func LoadCSV(path string, opts ...LoadOption) (*frame.Frame, error) {
	o := newLoadOptions(opts)
	r, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	df, err := readCSV(r, o)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return finish(df, path, o)
}

// ReadCSV reads CSV data with a header row from r.
func ReadCSV(r io.Reader, opts ...LoadOption) (*frame.Frame, error) {
	o := newLoadOptions(opts)
	df, err := readCSV(r, o)
	if err != nil {
		return nil, err
	}
	return finish(df, "", o)
}

func readCSV(r io.Reader, o *loadOptions) (*frame.Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = o.comma
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing CSV")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "missing header", errors.ErrEmptyData)
	}
	return fromRecords(records[0], records[1:], o)
}

// LoadExcel reads one worksheet whose first row is the header.
func LoadExcel(path string, opts ...LoadOption) (*frame.Frame, error) {
	o := newLoadOptions(opts)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	sheet := o.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewModelError("dataset.LoadExcel", "workbook has no sheets", errors.ErrEmptyData)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q of %s", sheet, path)
	}
	if len(rows) == 0 {
		return nil, errors.NewModelError("dataset.LoadExcel", "missing header", errors.ErrEmptyData)
	}
	df, err := fromRecords(rows[0], rows[1:], o)
	if err != nil {
		return nil, errors.Wrapf(err, "sheet %q of %s", sheet, path)
	}
	return finish(df, path, o)
}

func finish(df *frame.Frame, path string, o *loadOptions) (*frame.Frame, error) {
	o.logger.Info("Loaded data",
		log.PathKey, path,
		log.SamplesKey, df.Nrow(),
		log.FeaturesKey, df.Ncol(),
	)
	if !o.reduceMemory {
		return df, nil
	}
	reduced, _, err := performance.ReduceMemUsage(df, performance.WithLogger(o.logger))
	return reduced, err
}

// fromRecords builds typed columns from raw cells. Excel rows may be shorter
// than the header; missing trailing cells are NA.
func fromRecords(header []string, rows [][]string, o *loadOptions) (*frame.Frame, error) {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		name = strings.TrimSpace(name)
		if seen[name] {
			return nil, errors.NewValidationError("header", "duplicate column name", name)
		}
		seen[name] = true
	}

	cols := make([]*frame.Series, len(header))
	cells := make([]string, len(rows))
	for j, name := range header {
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			} else {
				cells[i] = ""
			}
		}
		cols[j] = inferColumn(strings.TrimSpace(name), cells, o.naValues)
	}
	if len(cols) == 0 {
		return nil, errors.NewModelError("dataset", "no columns", errors.ErrEmptyData)
	}
	return frame.New(cols...)
}

func inferColumn(name string, cells []string, na map[string]bool) *frame.Series {
	isInt, isFloat, hasNA := true, true, false
	floats := make([]float64, len(cells))
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if na[c] {
			hasNA = true
			floats[i] = math.NaN()
			continue
		}
		if isInt {
			if v, err := strconv.ParseInt(c, 10, 64); err == nil {
				floats[i] = float64(v)
				continue
			}
			isInt = false
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			isFloat = false
			break
		}
		floats[i] = v
	}

	switch {
	case isInt && !hasNA:
		ints := make([]int64, len(floats))
		for i, v := range floats {
			ints[i] = int64(v)
		}
		return frame.NewInt(name, ints)
	case isFloat:
		return frame.NewFloat(name, floats)
	}

	values := make([]string, len(cells))
	valid := make([]bool, len(cells))
	for i, c := range cells {
		values[i] = c
		valid[i] = !na[strings.TrimSpace(c)]
	}
	s, _ := frame.NewStringWithMissing(name, values, valid)
	return s
}

func itoa(n int) string { return strconv.Itoa(n) }
