// Package trapi is a toolkit for building tabular features in machine-learning
// competitions.
//
// The center of the library is the feature block: a small object that learns
// an artifact from training data (category counts, label codes, per-group
// target statistics) and turns any table into new, predictably named feature
// columns. Blocks are composed by a Pipeline that fits them on the training
// table and applies them to the test table.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/KenkenGoda/trapi/core/frame"
//	    "github.com/KenkenGoda/trapi/feature"
//	)
//
//	func main() {
//	    train := frame.MustNew(
//	        frame.NewString("city", []string{"tokyo", "osaka", "tokyo"}),
//	        frame.NewFloat("price", []float64{100, 80, 120}),
//	    )
//	    test := frame.MustNew(frame.NewString("city", []string{"osaka"}))
//	    y, _ := train.Col("price")
//
//	    te, err := feature.NewTargetEncodingBlock("city", "price", feature.WithAggs("mean"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    p := feature.NewPipeline([]feature.Block{
//	        feature.NewCountEncodingBlock("city"),
//	        te,
//	    })
//	    xTrain, xTest, err := p.FitTransform(context.Background(), train, test, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(xTrain, xTest) // CE_city, TE_city_price_mean
//	}
//
// # Packages
//
//   - feature: feature blocks, the Pipeline and its YAML configuration
//   - aggregate: groupby statistics used by target and aggregation blocks
//   - preprocessing: label, ordinal, count and hash encoders
//   - core/frame: the column-oriented table the blocks operate on
//   - dataset: CSV/Excel loading and saving, compressed files, frame cache
//   - performance: numeric dtype downcasting (ReduceMemUsage)
//   - train: cross-validation splitters and the Trainer contract
//   - linear: a ridge regression baseline Trainer
//   - metrics: regression metrics used to score folds
//   - plot: feature importance and prediction distribution charts
//   - pkg/errors, pkg/log: structured errors and zerolog logging
//
// The trapi command in cmd/trapi runs a pipeline file over train and test
// tables and cross-validates the baseline on the result.
package trapi
