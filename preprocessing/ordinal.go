package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/KenkenGoda/trapi/core/model"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// OrdinalEncoder は複数の列をそれぞれ独立にラベルエンコードする
// 結果は n_samples × n_columns の行列で返す
type OrdinalEncoder struct {
	model.BaseEstimator

	encoders []*LabelEncoder
}

// NewOrdinalEncoder は新しいOrdinalEncoderを作成する
func NewOrdinalEncoder() *OrdinalEncoder {
	return &OrdinalEncoder{}
}

// Fit は列ごとのカテゴリを学習する
//
// パラメータ:
//   - columns: columns[j] がj列目の値。全ての列は同じ長さでなければならない
func (o *OrdinalEncoder) Fit(columns [][]string) error {
	nSamples, err := checkColumns("OrdinalEncoder.Fit", columns)
	if err != nil {
		return err
	}
	encoders := make([]*LabelEncoder, len(columns))
	for j, col := range columns {
		enc := NewLabelEncoder()
		if err := enc.Fit(col); err != nil {
			return err
		}
		encoders[j] = enc
	}
	o.encoders = encoders
	o.SetFitted(nSamples)
	return nil
}

// Transform は学習済みのカテゴリで各列を変換する
func (o *OrdinalEncoder) Transform(columns [][]string) (*mat.Dense, error) {
	if err := o.RequireFitted("OrdinalEncoder", "Transform"); err != nil {
		return nil, err
	}
	nSamples, err := checkColumns("OrdinalEncoder.Transform", columns)
	if err != nil {
		return nil, err
	}
	if len(columns) != len(o.encoders) {
		return nil, errors.NewDimensionError("OrdinalEncoder.Transform", len(o.encoders), len(columns), 1)
	}

	out := mat.NewDense(nSamples, len(columns), nil)
	for j, col := range columns {
		codes, err := o.encoders[j].Transform(col)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", j)
		}
		for i, c := range codes {
			out.Set(i, j, float64(c))
		}
	}
	return out, nil
}

// FitTransform は学習と変換を同時に行う
func (o *OrdinalEncoder) FitTransform(columns [][]string) (*mat.Dense, error) {
	if err := o.Fit(columns); err != nil {
		return nil, err
	}
	return o.Transform(columns)
}

// Categories は列ごとの学習済みカテゴリを返す
func (o *OrdinalEncoder) Categories() [][]string {
	out := make([][]string, len(o.encoders))
	for j, enc := range o.encoders {
		out[j] = enc.Classes()
	}
	return out
}

// OrdinalEncode は新しいOrdinalEncoderで学習・変換し、エンコーダも返す
func OrdinalEncode(columns [][]string) (*mat.Dense, *OrdinalEncoder, error) {
	enc := NewOrdinalEncoder()
	out, err := enc.FitTransform(columns)
	if err != nil {
		return nil, nil, err
	}
	return out, enc, nil
}

func checkColumns(op string, columns [][]string) (int, error) {
	if len(columns) == 0 || len(columns[0]) == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	n := len(columns[0])
	for j, col := range columns {
		if len(col) != n {
			return 0, errors.NewDimensionError(fmt.Sprintf("%s(column %d)", op, j), n, len(col), 0)
		}
	}
	return n, nil
}
