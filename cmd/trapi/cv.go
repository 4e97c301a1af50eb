package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/dataset"
	"github.com/KenkenGoda/trapi/linear"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/plot"
	"github.com/KenkenGoda/trapi/train"
)

type cvFlags struct {
	train          string
	test           string
	target         string
	out            string
	split          string
	group          string
	folds          int
	shuffle        bool
	seed           uint64
	alpha          float64
	tune           bool
	metric         string
	importanceType string
	nPlot          int
}

func runCV(ctx context.Context, env *Env, args []string, stdout io.Writer) error {
	var f cvFlags
	fs := pflag.NewFlagSet("trapi cv", pflag.ContinueOnError)
	fs.StringVar(&f.train, "train", "", "feature table holding the target column")
	fs.StringVar(&f.test, "test", "", "optional test feature table to predict")
	fs.StringVar(&f.target, "target", "", "target column")
	fs.StringVar(&f.out, "out", "cv", "output directory")
	fs.StringVar(&f.split, "split", "kfold", "splitter: kfold, stratified or group")
	fs.StringVar(&f.group, "group", "", "group column for --split group (dropped from the features)")
	fs.IntVar(&f.folds, "folds", 5, "number of folds")
	fs.BoolVar(&f.shuffle, "shuffle", false, "shuffle rows before kfold and stratified splits")
	fs.Uint64Var(&f.seed, "seed", env.Seed, "shuffle seed")
	fs.Float64Var(&f.alpha, "alpha", linear.DefaultAlpha, "ridge penalty")
	fs.BoolVar(&f.tune, "tune", false, "pick alpha per fold on the validation rows")
	fs.StringVar(&f.metric, "metric", "rmse", "fold metric: mae, mape, mse, r2 or rmse")
	fs.StringVar(&f.importanceType, "importance-type", string(train.ImportanceGain), "importance plotted: split or gain")
	fs.IntVar(&f.nPlot, "n-plot", 20, "features shown in the importance plot")
	if err := parseFlags(fs, args, stdout); err != nil {
		return err
	}
	if err := requireFlag("train", f.train); err != nil {
		return err
	}
	if err := requireFlag("target", f.target); err != nil {
		return err
	}

	df, err := loadTable(f.train, dataset.WithReduceMemory(false))
	if err != nil {
		return err
	}
	y, err := df.Col(f.target)
	if err != nil {
		return errors.Wrap(err, "target")
	}
	X := df.Drop(f.target)

	var cvOpts []train.CVOption
	if f.group != "" {
		groups, err := df.Col(f.group)
		if err != nil {
			return errors.Wrap(err, "group")
		}
		X = X.Drop(f.group)
		cvOpts = append(cvOpts, train.WithGroups(groups))
	}
	splitter, err := newSplitter(f)
	if err != nil {
		return err
	}
	cvOpts = append(cvOpts, train.WithTune(f.tune), train.WithMetric(f.metric))

	trainer := linear.NewTrainer(linear.WithAlpha(f.alpha))
	res, err := train.CrossValidate(ctx, splitter, X, y, trainer, nil, cvOpts...)
	if err != nil {
		return err
	}

	if err := saveTable(res.Eval, filepath.Join(f.out, "oof.csv")); err != nil {
		return err
	}
	if err := saveTable(res.Importance, filepath.Join(f.out, "importance.csv")); err != nil {
		return err
	}
	imp, err := plot.FeatureImportance(res.Importance, f.importanceType, f.nPlot)
	if err != nil {
		return err
	}
	if err := plot.Save(imp, filepath.Join(f.out, "importance.png"), 10, 10); err != nil {
		return err
	}

	if f.test != "" {
		if err := predictTest(res, f); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "run %s: %s %.6f +/- %.6f\n", res.RunID, res.Metric, res.MeanScore(), res.StdScore())
	return nil
}

func newSplitter(f cvFlags) (train.Splitter, error) {
	var opts []train.SplitOption
	if f.shuffle {
		opts = append(opts, train.WithShuffle(f.seed))
	}
	switch f.split {
	case "kfold":
		return train.NewKFold(f.folds, opts...)
	case "stratified":
		return train.NewStratifiedKFold(f.folds, opts...)
	case "group":
		if f.group == "" {
			return nil, errors.NewValidationError("group", "is required for --split group", f.group)
		}
		return train.NewGroupKFold(f.folds)
	default:
		return nil, errors.NewValidationError("split", "must be kfold, stratified or group", f.split)
	}
}

// predictTest averages the fold models over the test table and plots the
// test predictions against the out-of-fold ones.
func predictTest(res *train.CVResult, f cvFlags) error {
	test, err := loadTable(f.test, dataset.WithReduceMemory(false))
	if err != nil {
		return err
	}
	test = test.Drop(f.target, f.group)

	mean := make([]float64, test.Nrow())
	for i, b := range res.Boosters {
		pred, err := b.Predict(test)
		if err != nil {
			return errors.Wrapf(err, "fold %d: predicting test", i+1)
		}
		for j, v := range pred {
			mean[j] += v / float64(len(res.Boosters))
		}
	}
	if err := saveTable(frame.MustNew(frame.NewFloat(train.ColPred, mean)), filepath.Join(f.out, "test_pred.csv")); err != nil {
		return err
	}

	oof, err := res.Eval.Col(train.ColPred)
	if err != nil {
		return err
	}
	dist, err := plot.PredictionDistribution(oof.Floats(), mean, 50)
	if err != nil {
		return err
	}
	return plot.Save(dist, filepath.Join(f.out, "pred_dist.png"), 7, 5)
}

func mkdirFor(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return nil
}
