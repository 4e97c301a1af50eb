package dataset

import (
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

const cacheVersion = 1

// cachedFrame is the on-disk form of a Frame. Integer keys keep the
// encoding small and independent of Go field names.
type cachedFrame struct {
	Version int            `cbor:"1,keyasint"`
	Index   []int          `cbor:"2,keyasint"`
	Columns []cachedColumn `cbor:"3,keyasint"`
}

type cachedColumn struct {
	Name    string    `cbor:"1,keyasint"`
	DType   string    `cbor:"2,keyasint"`
	Floats  []float64 `cbor:"3,keyasint,omitempty"`
	Strings []string  `cbor:"4,keyasint,omitempty"`
	Valid   []bool    `cbor:"5,keyasint,omitempty"`
}

var cacheEncMode cbor.EncMode

func init() {
	var err error
	// deterministic: the same frame always produces the same bytes
	cacheEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dataset: CBOR encoder initialization failed: " + err.Error())
	}
}

// SaveFrame writes df as zstd-compressed CBOR, keeping dtypes, missing
// values and the row index. It loads much faster than CSV.
func SaveFrame(df *frame.Frame, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return errors.Wrap(err, "zstd writer")
	}
	if err := cacheEncMode.NewEncoder(zw).Encode(toCached(df)); err != nil {
		zw.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err := zw.Close(); err != nil {
		return errors.Wrapf(err, "flushing %s", path)
	}
	log.GetLogger().Debug("Cached frame", log.PathKey, path, log.SamplesKey, df.Nrow())
	return nil
}

// LoadFrame reads a frame written by SaveFrame.
func LoadFrame(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "zstd reader")
	}
	defer zr.Close()

	var cached cachedFrame
	if err := cbor.NewDecoder(zr).Decode(&cached); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if cached.Version != cacheVersion {
		return nil, errors.NewValueError("dataset.LoadFrame", "unsupported cache version "+itoa(cached.Version))
	}
	return fromCached(cached)
}

func toCached(df *frame.Frame) cachedFrame {
	out := cachedFrame{Version: cacheVersion, Index: df.Index()}
	for _, c := range df.Columns() {
		cc := cachedColumn{Name: c.Name(), DType: c.DType().String()}
		if c.Kind() == frame.String {
			cc.Strings, cc.Valid = c.Strings()
		} else {
			cc.Floats = c.Floats()
		}
		out.Columns = append(out.Columns, cc)
	}
	return out
}

func fromCached(cached cachedFrame) (*frame.Frame, error) {
	cols := make([]*frame.Series, len(cached.Columns))
	for i, cc := range cached.Columns {
		dtype, ok := frame.ParseDType(cc.DType)
		if !ok {
			return nil, errors.NewValueError("dataset.LoadFrame", "unknown dtype "+cc.DType)
		}
		if dtype == frame.Object {
			valid := cc.Valid
			if len(valid) != len(cc.Strings) {
				valid = make([]bool, len(cc.Strings))
				for k := range valid {
					valid[k] = true
				}
			}
			s, err := frame.NewStringWithMissing(cc.Name, cc.Strings, valid)
			if err != nil {
				return nil, err
			}
			cols[i] = s
			continue
		}
		cols[i] = frame.NewFloat(cc.Name, cc.Floats).AsType(dtype)
	}
	if len(cols) == 0 {
		return frame.New()
	}
	df, err := frame.New(cols...)
	if err != nil {
		return nil, err
	}
	return df.WithIndex(cached.Index)
}
