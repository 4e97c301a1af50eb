package train

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/metrics"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

// Column names of the frames returned by CrossValidate.
const (
	ColTrue    = "true"
	ColPred    = "pred"
	ColFeature = "feature"
	ColSplit   = "split"
	ColGain    = "gain"
	ColFold    = "fold"
)

// CVResult is the outcome of CrossValidate.
type CVResult struct {
	RunID    string
	Boosters []Booster
	// Eval holds out-of-fold targets and predictions in fold order.
	Eval *frame.Frame
	// Importance has one row per feature and fold.
	Importance *frame.Frame
	Metric     string
	Scores     []float64
}

// MeanScore returns the mean fold score.
func (r *CVResult) MeanScore() float64 { return stat.Mean(r.Scores, nil) }

// StdScore returns the sample standard deviation of the fold scores.
func (r *CVResult) StdScore() float64 {
	if len(r.Scores) < 2 {
		return 0
	}
	return stat.StdDev(r.Scores, nil)
}

type cvOptions struct {
	groups *frame.Series
	tune   bool
	metric string
	logger log.Logger
}

// CVOption configures CrossValidate.
type CVOption func(*cvOptions)

// WithGroups passes group labels to the splitter.
func WithGroups(groups *frame.Series) CVOption {
	return func(o *cvOptions) {
		o.groups = groups
	}
}

// WithTune asks the trainer to tune hyperparameters in every fold.
func WithTune(tune bool) CVOption {
	return func(o *cvOptions) {
		o.tune = tune
	}
}

// WithMetric sets the fold metric by name (default "rmse", see metrics.ByName).
func WithMetric(name string) CVOption {
	return func(o *cvOptions) {
		o.metric = name
	}
}

// WithLogger sets the logger (default log.GetLogger()).
func WithLogger(l log.Logger) CVOption {
	return func(o *cvOptions) {
		o.logger = l
	}
}

// CrossValidate trains one model per fold of cv and collects the boosters,
// the out-of-fold predictions and the per-fold feature importance. Folds run
// sequentially; ctx is checked before each one.
func CrossValidate(ctx context.Context, cv Splitter, X *frame.Frame, y *frame.Series,
	trainer Trainer, params Params, opts ...CVOption) (*CVResult, error) {
	o := &cvOptions{metric: "rmse"}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.GetLogger()
	}
	score, err := metrics.ByName(o.metric)
	if err != nil {
		return nil, err
	}
	if y.Len() != X.Nrow() {
		return nil, errors.NewDimensionError("CrossValidate", X.Nrow(), y.Len(), 0)
	}

	folds, err := cv.Split(X, y, o.groups)
	if err != nil {
		return nil, err
	}

	result := &CVResult{RunID: uuid.NewString(), Metric: o.metric}
	logger := o.logger.With(log.RunIDKey, result.RunID, log.ComponentKey, "train.CrossValidate")

	var yTrue, yPred []float64
	var features []string
	var foldNo, splits, gains []float64
	start := time.Now()
	for i, f := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := i + 1
		logger.Info(fmt.Sprintf("Fold: %d/%d", n, cv.NSplits()),
			log.FoldKey, n,
			log.NSplitsKey, cv.NSplits(),
			log.TrainSizeKey, len(f.Train),
			log.ValidSizeKey, len(f.Valid),
		)

		xTrain, xValid := X.Take(f.Train), X.Take(f.Valid)
		yTrain, yValid := y.Take(f.Train), y.Take(f.Valid)
		booster, err := TrainWithValidation(ctx, trainer, xTrain, yTrain, xValid, yValid, params, o.tune)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", n)
		}
		result.Boosters = append(result.Boosters, booster)

		pred, err := booster.Predict(xValid)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d: predict", n)
		}
		truth := yValid.Floats()
		s, err := score(truth, pred)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d: scoring", n)
		}
		result.Scores = append(result.Scores, s)
		yTrue = append(yTrue, truth...)
		yPred = append(yPred, pred...)

		names := booster.FeatureName()
		split, err := booster.FeatureImportance(ImportanceSplit)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d: importance", n)
		}
		gain, err := booster.FeatureImportance(ImportanceGain)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d: importance", n)
		}
		if len(split) != len(names) || len(gain) != len(names) {
			return nil, errors.NewDimensionError(fmt.Sprintf("fold %d: importance", n), len(names), len(split), 1)
		}
		features = append(features, names...)
		splits = append(splits, split...)
		gains = append(gains, gain...)
		for range names {
			foldNo = append(foldNo, float64(n))
		}

		logger.Info("Fold done", log.FoldKey, n, log.MetricKey, o.metric, log.ScoreKey, s)
	}

	if result.Eval, err = frame.New(frame.NewFloat(ColTrue, yTrue), frame.NewFloat(ColPred, yPred)); err != nil {
		return nil, err
	}
	foldCol := frame.NewFloat(ColFold, foldNo).AsType(frame.Int64)
	if result.Importance, err = frame.New(
		frame.NewString(ColFeature, features),
		frame.NewFloat(ColSplit, splits),
		frame.NewFloat(ColGain, gains),
		foldCol,
	); err != nil {
		return nil, err
	}

	logger.Info("Cross-validation finished",
		log.NSplitsKey, len(folds),
		log.MetricKey, o.metric,
		log.ScoreKey, result.MeanScore(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}
