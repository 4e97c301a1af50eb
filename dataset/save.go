package dataset

import (
	"encoding/csv"
	"io"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

// SaveCSV writes df with a header row. The extension selects compression as
// in LoadCSV. Missing values are written as empty cells; the row index is
// not written.
func SaveCSV(df *frame.Frame, path string) (err error) {
	w, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()

	if err := WriteCSV(df, w); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	log.GetLogger().Info("Saved data",
		log.PathKey, path,
		log.SamplesKey, df.Nrow(),
		log.FeaturesKey, df.Ncol(),
	)
	return nil
}

// WriteCSV writes df as CSV to w.
func WriteCSV(df *frame.Frame, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(df.Names()); err != nil {
		return err
	}
	cols := df.Columns()
	record := make([]string, len(cols))
	for i := 0; i < df.Nrow(); i++ {
		for j, c := range cols {
			v, ok := c.Key(i)
			if !ok {
				v = ""
			}
			record[j] = v
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
