package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/dataset"
	"github.com/KenkenGoda/trapi/feature"
	"github.com/KenkenGoda/trapi/performance"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

type featuresFlags struct {
	train        string
	test         string
	config       string
	target       string
	out          string
	format       string
	reduceMemory bool
	concurrency  int
}

func runFeatures(ctx context.Context, env *Env, args []string, stdout io.Writer) error {
	var f featuresFlags
	fs := pflag.NewFlagSet("trapi features", pflag.ContinueOnError)
	fs.StringVar(&f.train, "train", "", "training table (.csv, .csv.gz, .csv.zst, .csv.lz4 or .xlsx)")
	fs.StringVar(&f.test, "test", "", "test table, same formats as --train")
	fs.StringVar(&f.config, "config", "", "YAML pipeline file")
	fs.StringVar(&f.target, "target", "", "target column of the training table")
	fs.StringVar(&f.out, "out", "features", "output directory")
	fs.StringVar(&f.format, "format", "csv", "output format: csv, csv.gz, csv.zst or cbor")
	fs.BoolVar(&f.reduceMemory, "reduce-memory", env.ReduceMemory, "downcast numeric columns of inputs and outputs")
	fs.IntVar(&f.concurrency, "concurrency", env.Concurrency, "blocks processed at once (0 keeps the pipeline file's value)")
	if err := parseFlags(fs, args, stdout); err != nil {
		return err
	}
	for _, req := range []struct{ name, value string }{
		{"train", f.train}, {"test", f.test}, {"config", f.config}, {"target", f.target},
	} {
		if err := requireFlag(req.name, req.value); err != nil {
			return err
		}
	}
	ext, err := outputExtension(f.format)
	if err != nil {
		return err
	}

	logger := log.GetLogger().With(log.ComponentKey, "cmd.features")
	start := time.Now()

	cfg, err := feature.LoadPipelineConfig(f.config)
	if err != nil {
		return err
	}
	loadOpts := []dataset.LoadOption{dataset.WithReduceMemory(f.reduceMemory)}
	train, err := loadTable(f.train, loadOpts...)
	if err != nil {
		return err
	}
	test, err := loadTable(f.test, loadOpts...)
	if err != nil {
		return err
	}
	y, err := train.Col(f.target)
	if err != nil {
		return errors.Wrap(err, "target")
	}

	// count and aggregation blocks with use_reference see train and test together
	reference, err := frame.VConcat(train.Drop(f.target), test)
	if err != nil {
		return errors.Wrap(err, "building reference frame")
	}
	pipeline, err := feature.BuildPipeline(cfg, reference, feature.WithConcurrency(f.concurrency))
	if err != nil {
		return err
	}
	xTrain, xTest, err := pipeline.FitTransform(ctx, train, test, y)
	if err != nil {
		return err
	}
	if xTrain, err = xTrain.WithColumn(y); err != nil {
		return err
	}
	if f.reduceMemory {
		if xTrain, _, err = performance.ReduceMemUsage(xTrain, performance.WithVerbose(false)); err != nil {
			return err
		}
		if xTest, _, err = performance.ReduceMemUsage(xTest, performance.WithVerbose(false)); err != nil {
			return err
		}
	}

	trainPath := filepath.Join(f.out, "train."+ext)
	testPath := filepath.Join(f.out, "test."+ext)
	if err := saveTable(xTrain, trainPath); err != nil {
		return err
	}
	if err := saveTable(xTest, testPath); err != nil {
		return err
	}

	logger.Info("Features written",
		log.PathKey, f.out,
		log.FeaturesKey, xTest.Ncol(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	fmt.Fprintf(stdout, "%s\n%s\n", trainPath, testPath)
	return nil
}

func outputExtension(format string) (string, error) {
	switch format {
	case "csv", "csv.gz", "csv.zst", "csv.lz4":
		return format, nil
	case "cbor":
		return "cbor.zst", nil
	default:
		return "", errors.NewValidationError("format", "must be csv, csv.gz, csv.zst, csv.lz4 or cbor", format)
	}
}

// loadTable picks the reader by extension.
func loadTable(path string, opts ...dataset.LoadOption) (*frame.Frame, error) {
	switch {
	case strings.HasSuffix(path, ".xlsx"):
		return dataset.LoadExcel(path, opts...)
	case strings.HasSuffix(path, ".cbor.zst"):
		return dataset.LoadFrame(path)
	default:
		return dataset.LoadCSV(path, opts...)
	}
}

func saveTable(df *frame.Frame, path string) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	if strings.HasSuffix(path, ".cbor.zst") {
		return dataset.SaveFrame(df, path)
	}
	return dataset.SaveCSV(df, path)
}
