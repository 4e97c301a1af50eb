// Package metrics は交差検証の各foldを評価する回帰指標を提供する
package metrics

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Func は正解値と予測値からスコアを計算する関数
type Func func(yTrue, yPred []float64) (float64, error)

var registry = map[string]Func{
	"mse":  MSE,
	"rmse": RMSE,
	"mae":  MAE,
	"r2":   R2Score,
	"mape": MAPE,
}

// ByName は名前から指標関数を返す（"mse", "rmse", "mae", "r2", "mape"）
func ByName(name string) (Func, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.NewValidationError("metric", "unknown metric, available: "+available(), name)
	}
	return f, nil
}

func available() string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// 入力検証
func check(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := check("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := check("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := check("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}
	yMean := stat.Mean(yTrue, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := range yTrue {
		tss += (yTrue[i] - yMean) * (yTrue[i] - yMean)
		rss += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
	}
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する
// yTrueが0のサンプルは除外する
func MAPE(yTrue, yPred []float64) (float64, error) {
	if err := check("MAPE", yTrue, yPred); err != nil {
		return 0, err
	}
	ratios := make([]float64, 0, len(yTrue))
	for i, v := range yTrue {
		if v != 0 {
			ratios = append(ratios, math.Abs(v-yPred[i])/math.Abs(v))
		}
	}
	if len(ratios) == 0 {
		return 0, errors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return floats.Sum(ratios) / float64(len(ratios)) * 100, nil
}
