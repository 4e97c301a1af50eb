// Package linear は交差検証のベースラインとして使うリッジ回帰を提供します。
// Trainer は train.Trainer を、Regression は train.Booster を実装します。
package linear

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/core/model"
	"github.com/KenkenGoda/trapi/core/parallel"
	"github.com/KenkenGoda/trapi/metrics"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
	"github.com/KenkenGoda/trapi/train"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// Regression は学習済みのリッジ回帰モデル
type Regression struct {
	model.BaseEstimator
	names     []string
	weights   []float64 // 元のスケールでの係数
	intercept float64
	means     []float64 // 欠損値の補完と標準化に使う列平均
	scales    []float64 // 列の標準偏差（定数列は0）
	alpha     float64
}

// Fit は x を標準化した上で (ZᵀZ + αI)w = Zᵀ(y-ȳ) を解く。
// 数値列のみ受け付け、NaN は列平均で補完する。
func Fit(x *frame.Frame, y *frame.Series, alpha float64) (*Regression, error) {
	if alpha < 0 {
		return nil, errors.NewValidationError("alpha", "must be non-negative", alpha)
	}
	r, c := x.Nrow(), x.Ncol()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("linear.Fit", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != r {
		return nil, errors.NewDimensionError("linear.Fit", r, y.Len(), 0)
	}

	yv := y.Floats()
	var yMean float64
	for _, v := range yv {
		if math.IsNaN(v) {
			return nil, errors.NewValueError("linear.Fit", "target contains NaN")
		}
		yMean += v
	}
	yMean /= float64(r)

	names := x.Names()
	raw, err := x.ToDense(names...)
	if err != nil {
		return nil, err
	}

	reg := &Regression{
		names:  names,
		means:  make([]float64, c),
		scales: make([]float64, c),
		alpha:  alpha,
	}
	for j := 0; j < c; j++ {
		reg.means[j], reg.scales[j] = columnMoments(mat.Col(nil, j, raw))
	}

	// 標準化した計画行列 Z
	z := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				z.Set(i, j, reg.standardize(j, raw.At(i, j)))
			}
		}
	})
	yc := mat.NewVecDense(r, nil)
	for i, v := range yv {
		yc.SetVec(i, v-yMean)
	}

	var gram mat.Dense
	gram.Mul(z.T(), z)
	for j := 0; j < c; j++ {
		if reg.scales[j] == 0 {
			// 定数列の係数は0に固定
			gram.Set(j, j, 1)
			continue
		}
		gram.Set(j, j, gram.At(j, j)+alpha)
	}
	var zty mat.VecDense
	zty.MulVec(z.T(), yc)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &zty); err != nil {
		return nil, errors.NewModelError("linear.Fit", "singular matrix", err)
	}

	// 元のスケールに戻す
	reg.weights = make([]float64, c)
	reg.intercept = yMean
	for j := 0; j < c; j++ {
		if reg.scales[j] == 0 {
			continue
		}
		reg.weights[j] = w.AtVec(j) / reg.scales[j]
		reg.intercept -= reg.weights[j] * reg.means[j]
	}
	reg.SetFitted(r)
	return reg, nil
}

// columnMoments は NaN を除いた平均と標本標準偏差を返す
func columnMoments(col []float64) (mean, scale float64) {
	var n int
	for _, v := range col {
		if !math.IsNaN(v) {
			mean += v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean /= float64(n)
	if n < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range col {
		if !math.IsNaN(v) {
			ss += (v - mean) * (v - mean)
		}
	}
	return mean, math.Sqrt(ss / float64(n-1))
}

func (r *Regression) standardize(j int, v float64) float64 {
	if math.IsNaN(v) || r.scales[j] == 0 {
		return 0
	}
	return (v - r.means[j]) / r.scales[j]
}

// Predict は学習時の列名で x から列を選んで予測する。列の順序は問わない。
func (r *Regression) Predict(x *frame.Frame) ([]float64, error) {
	if err := r.RequireFitted("Regression", "Predict"); err != nil {
		return nil, err
	}
	dense, err := x.ToDense(r.names...)
	if err != nil {
		return nil, err
	}
	n := x.Nrow()
	out := make([]float64, n)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := r.intercept
			for j, w := range r.weights {
				v := dense.At(i, j)
				if math.IsNaN(v) {
					v = r.means[j]
				}
				pred += w * v
			}
			out[i] = pred
		}
	})
	return out, nil
}

// FeatureName は学習に使った列名を返す
func (r *Regression) FeatureName() []string {
	return append([]string(nil), r.names...)
}

// FeatureImportance returns, for split, 1 for every feature that varied in
// training and 0 for constant ones; for gain, the absolute standardized
// coefficient.
func (r *Regression) FeatureImportance(kind train.ImportanceType) ([]float64, error) {
	if err := r.RequireFitted("Regression", "FeatureImportance"); err != nil {
		return nil, err
	}
	out := make([]float64, len(r.names))
	for j := range out {
		switch kind {
		case train.ImportanceSplit:
			if r.scales[j] > 0 {
				out[j] = 1
			}
		case train.ImportanceGain:
			out[j] = math.Abs(r.weights[j] * r.scales[j])
		default:
			return nil, errors.NewValidationError("importance_type", "must be split or gain", string(kind))
		}
	}
	return out, nil
}

// Coefficients は元のスケールでの係数を返す
func (r *Regression) Coefficients() []float64 {
	return append([]float64(nil), r.weights...)
}

// Intercept は切片を返す
func (r *Regression) Intercept() float64 { return r.intercept }

// Alpha は学習に使った正則化の強さを返す
func (r *Regression) Alpha() float64 { return r.alpha }

func (r *Regression) String() string {
	if !r.IsFitted() {
		return "Regression()"
	}
	return fmt.Sprintf("Regression(alpha=%g, n_features=%d)", r.alpha, len(r.names))
}

// Trainer は train.Trainer の実装
type Trainer struct {
	alpha  float64
	grid   []float64
	logger log.Logger
}

// NewTrainer は新しい Trainer を作成する
func NewTrainer(opts ...Option) *Trainer {
	t := &Trainer{alpha: DefaultAlpha, grid: DefaultAlphaGrid}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.GetLogger()
	}
	t.logger = t.logger.With(log.ComponentKey, "linear.Trainer")
	return t
}

// Train fits one model on train. params["alpha"] overrides the trainer's
// penalty. With tune set, every alpha of the grid is fitted and the one with
// the lowest RMSE on valid is kept.
func (t *Trainer) Train(ctx context.Context, params train.Params, trainSet, valid train.Dataset, tune bool) (train.Booster, error) {
	alpha, err := alphaParam(params, t.alpha)
	if err != nil {
		return nil, err
	}
	if !tune {
		reg, err := Fit(trainSet.X, trainSet.Y, alpha)
		if err != nil {
			return nil, err
		}
		return reg, nil
	}
	if len(t.grid) == 0 {
		return nil, errors.NewValidationError("alpha_grid", "must not be empty when tuning", t.grid)
	}
	if valid.X == nil || valid.X.Nrow() == 0 {
		return nil, errors.NewModelError("linear.Trainer.Train", "tuning needs a validation set", errors.ErrEmptyData)
	}

	var best *Regression
	bestScore := math.Inf(1)
	for _, a := range t.grid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reg, err := Fit(trainSet.X, trainSet.Y, a)
		if err != nil {
			return nil, errors.Wrapf(err, "alpha=%g", a)
		}
		pred, err := reg.Predict(valid.X)
		if err != nil {
			return nil, err
		}
		score, err := metrics.RMSE(valid.Y.Floats(), pred)
		if err != nil {
			return nil, err
		}
		t.logger.Debug("Tuning", "alpha", a, log.MetricKey, "rmse", log.ScoreKey, score)
		if score < bestScore {
			best, bestScore = reg, score
		}
	}
	if best == nil {
		return nil, errors.NewValueError("linear.Trainer.Train", "no alpha produced a finite validation score")
	}
	t.logger.Info("Tuned", "alpha", best.alpha, log.MetricKey, "rmse", log.ScoreKey, bestScore)
	return best, nil
}

func alphaParam(params train.Params, fallback float64) (float64, error) {
	v, ok := params["alpha"]
	if !ok {
		return fallback, nil
	}
	switch a := v.(type) {
	case float64:
		return a, nil
	case int:
		return float64(a), nil
	default:
		return 0, errors.NewValidationError("alpha", "must be a number", v)
	}
}
