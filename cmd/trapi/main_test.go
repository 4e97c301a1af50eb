package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KenkenGoda/trapi/dataset"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

const trainCSV = `city,age,price
tokyo,20,100
osaka,35,80
tokyo,41,120
nagoya,28,60
osaka,52,90
tokyo,33,110
nagoya,47,70
osaka,26,85
`

const testCSV = `city,age
osaka,30
tokyo,25
nagoya,60
`

const pipelineYAML = `concurrency: 2
blocks:
  - {type: raw, columns: [age]}
  - {type: count, column: city, use_reference: true}
  - {type: label, column: city}
  - {type: target, column: city, target: price, aggs: [mean]}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("TRAPI_LOG_LEVEL", "error")
	dir := t.TempDir()
	writeFile(t, dir, "train.csv", trainCSV)
	writeFile(t, dir, "test.csv", testCSV)
	writeFile(t, dir, "blocks.yaml", pipelineYAML)
	return dir
}

func TestRun_FeaturesThenCV(t *testing.T) {
	dir := setup(t)
	out := filepath.Join(dir, "features")
	ctx := context.Background()

	var stdout bytes.Buffer
	err := run(ctx, []string{"features",
		"--train", filepath.Join(dir, "train.csv"),
		"--test", filepath.Join(dir, "test.csv"),
		"--config", filepath.Join(dir, "blocks.yaml"),
		"--target", "price",
		"--out", out,
		"--reduce-memory=false",
	}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), filepath.Join(out, "train.csv"))

	xTrain, err := dataset.LoadCSV(filepath.Join(out, "train.csv"), dataset.WithReduceMemory(false))
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "CE_city", "LE_city", "TE_city_price_mean", "price"}, xTrain.Names())
	assert.Equal(t, 8, xTrain.Nrow())

	xTest, err := dataset.LoadCSV(filepath.Join(out, "test.csv"), dataset.WithReduceMemory(false))
	require.NoError(t, err)
	assert.Equal(t, 3, xTest.Nrow())
	ce, err := xTest.Col("CE_city")
	require.NoError(t, err)
	// train と test を合わせた出現回数
	assert.Equal(t, []float64{4, 4, 3}, ce.Floats())

	cvOut := filepath.Join(dir, "cv")
	stdout.Reset()
	err = run(ctx, []string{"cv",
		"--train", filepath.Join(out, "train.csv"),
		"--test", filepath.Join(out, "test.csv"),
		"--target", "price",
		"--folds", "2",
		"--out", cvOut,
	}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "rmse")

	for _, name := range []string{"oof.csv", "importance.csv", "importance.png", "test_pred.csv", "pred_dist.png"} {
		_, err := os.Stat(filepath.Join(cvOut, name))
		assert.NoError(t, err, name)
	}
	pred, err := dataset.LoadCSV(filepath.Join(cvOut, "test_pred.csv"), dataset.WithReduceMemory(false))
	require.NoError(t, err)
	assert.Equal(t, 3, pred.Nrow())
}

func TestRun_CVWithGroups(t *testing.T) {
	t.Setenv("TRAPI_LOG_LEVEL", "error")
	dir := t.TempDir()
	writeFile(t, dir, "train.csv", `g,x,y
1,1,2
1,2,4
2,3,6
2,4,8
3,5,10
3,6,12
`)
	var stdout bytes.Buffer
	err := run(context.Background(), []string{"cv",
		"--train", filepath.Join(dir, "train.csv"),
		"--target", "y",
		"--split", "group",
		"--group", "g",
		"--folds", "3",
		"--alpha", "0.0001",
		"--out", filepath.Join(dir, "cv"),
	}, &stdout)
	require.NoError(t, err)

	imp, err := dataset.LoadCSV(filepath.Join(dir, "cv", "importance.csv"), dataset.WithReduceMemory(false))
	require.NoError(t, err)
	feature, err := imp.Col("feature")
	require.NoError(t, err)
	names, _ := feature.Strings()
	assert.Equal(t, []string{"x", "x", "x"}, names)
}

func TestRun_Errors(t *testing.T) {
	dir := setup(t)
	ctx := context.Background()
	var vErr *errors.ValidationError

	var stdout bytes.Buffer
	err := run(ctx, []string{"frobnicate"}, &stdout)
	assert.True(t, errors.As(err, &vErr))
	assert.Contains(t, stdout.String(), "Usage: trapi")

	err = run(ctx, []string{"features", "--train", filepath.Join(dir, "train.csv")}, &stdout)
	assert.True(t, errors.As(err, &vErr))

	err = run(ctx, []string{"cv", "--train", filepath.Join(dir, "train.csv"), "--target", "price", "--split", "random"}, &stdout)
	assert.True(t, errors.As(err, &vErr))

	err = run(ctx, []string{"features", "--format", "parquet",
		"--train", "a", "--test", "b", "--config", "c", "--target", "d"}, &stdout)
	assert.True(t, errors.As(err, &vErr))
}

func TestRun_Help(t *testing.T) {
	t.Setenv("TRAPI_LOG_LEVEL", "error")
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &stdout))
	assert.True(t, strings.Contains(stdout.String(), "features"))

	stdout.Reset()
	err := run(context.Background(), []string{"cv", "--help"}, &stdout)
	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, stdout.String(), "--folds")
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TRAPI_CONCURRENCY", "3")
	t.Setenv("TRAPI_REDUCE_MEMORY", "false")
	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, env.Concurrency)
	assert.False(t, env.ReduceMemory)
	assert.Equal(t, uint64(42), env.Seed)
	assert.Equal(t, "info", env.LogLevel)
}
