// Package preprocessing provides the categorical encoders used on their own
// and inside feature blocks: label, ordinal, count and hash encoding.
package preprocessing

import (
	"fmt"
	"sort"

	"github.com/KenkenGoda/trapi/core/model"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// LabelEncoder はscikit-learn互換のラベルエンコーダ
// カテゴリをソート順に0からn_classes-1までの整数へ変換する
type LabelEncoder struct {
	model.BaseEstimator

	classes []string
	codes   map[string]int
}

// NewLabelEncoder は新しいLabelEncoderを作成する
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit はカテゴリの一覧を学習する
//
// パラメータ:
//   - values: カテゴリ値の列
//
// 戻り値:
//   - error: 空のデータが渡された場合
func (e *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	codes := make(map[string]int)
	for _, v := range values {
		codes[v] = 0
	}
	classes := make([]string, 0, len(codes))
	for v := range codes {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	for i, v := range classes {
		codes[v] = i
	}

	e.classes = classes
	e.codes = codes
	e.SetFitted(len(values))
	return nil
}

// Transform は学習済みのカテゴリを整数コードに変換する
// 学習時に存在しなかったカテゴリはUnknownCategoryErrorになる
//
// パラメータ:
//   - values: 変換するカテゴリ値
//
// 戻り値:
//   - []int: 整数コード
//   - error: 未学習または未知のカテゴリの場合
func (e *LabelEncoder) Transform(values []string) ([]int, error) {
	if err := e.RequireFitted("LabelEncoder", "Transform"); err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, v := range values {
		code, ok := e.codes[v]
		if !ok {
			return nil, errors.NewUnknownCategoryError("LabelEncoder.Transform", "", v)
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform は学習と変換を同時に行う
func (e *LabelEncoder) FitTransform(values []string) ([]int, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// InverseTransform は整数コードを元のカテゴリに戻す
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if err := e.RequireFitted("LabelEncoder", "InverseTransform"); err != nil {
		return nil, err
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.classes) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", fmt.Sprintf("code %d out of range [0, %d)", c, len(e.classes)))
		}
		out[i] = e.classes[c]
	}
	return out, nil
}

// Classes は学習したカテゴリをコード順に返す
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// String はエンコーダの文字列表現を返す
func (e *LabelEncoder) String() string {
	if !e.IsFitted() {
		return "LabelEncoder()"
	}
	return fmt.Sprintf("LabelEncoder(n_classes=%d)", len(e.classes))
}

// LabelEncode は新しいLabelEncoderでvaluesを学習・変換し、
// 再利用できるようにエンコーダも返す
//
// 使用例:
//
//	codes, enc, err := preprocessing.LabelEncode([]string{"b", "a", "b"})
//	// codes == []int{1, 0, 1}
//	testCodes, err := enc.Transform(testValues)
func LabelEncode(values []string) ([]int, *LabelEncoder, error) {
	enc := NewLabelEncoder()
	codes, err := enc.FitTransform(values)
	if err != nil {
		return nil, nil, err
	}
	return codes, enc, nil
}
