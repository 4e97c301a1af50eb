package feature

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

const pipelineYAML = `
concurrency: 2
blocks:
  - type: raw
    columns: [age]
  - type: count
    column: city
    use_reference: true
  - type: label
    column: city
  - type: target
    column: city
    target: target
    aggs: [mean, max, min]
  - type: aggregation
    columns: [city]
    target: age
    aggs: [sum]
    fill_value: 0
`

func TestLoadPipelineConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineYAML), 0o600))

	cfg, err := LoadPipelineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
	require.Len(t, cfg.Blocks, 5)
	assert.Equal(t, KindTarget, cfg.Blocks[3].Type)
	require.NotNil(t, cfg.Blocks[4].FillValue)
	assert.Equal(t, 0.0, *cfg.Blocks[4].FillValue)
}

func TestBuildPipeline(t *testing.T) {
	cfg, err := ParsePipelineConfig([]byte(pipelineYAML))
	require.NoError(t, err)

	train := trainFrame()
	test := frame.MustNew(
		frame.NewString("city", []string{"B", "B"}),
		frame.NewFloat("age", []float64{1, 2}),
		frame.NewFloat("target", []float64{0, 0}),
	)
	all, err := frame.VConcat(train, test)
	require.NoError(t, err)

	p, err := BuildPipeline(cfg, all)
	require.NoError(t, err)
	assert.Len(t, p.Blocks(), 5)

	xTrain, xTest, err := p.FitTransform(context.Background(), train, test, targetSeries())
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 3}, floats(t, xTrain, "CE_city"))
	assert.Equal(t, []float64{3, 3}, floats(t, xTest, "CE_city"))
	assert.Equal(t, 9, xTrain.Ncol())
}

func TestBuildPipeline_ReferenceRequired(t *testing.T) {
	cfg, err := ParsePipelineConfig([]byte(pipelineYAML))
	require.NoError(t, err)

	_, err = BuildPipeline(cfg, nil)
	var vErr *errors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "use_reference", vErr.ParamName)
}

func TestParsePipelineConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"no blocks", "concurrency: 1\nblocks: []\n"},
		{"unknown type", "blocks:\n  - {type: onehot, column: city}\n"},
		{"unknown key", "blocks:\n  - {type: raw, column: city, colour: red}\n"},
		{"target without target", "blocks:\n  - {type: target, column: city}\n"},
		{"unknown stat", "blocks:\n  - {type: target, column: city, target: y, aggs: [mode]}\n"},
		{"no column", "blocks:\n  - {type: count}\n"},
		{"label with two columns", "blocks:\n  - {type: label, columns: [a, b]}\n"},
		{"negative concurrency", "concurrency: -1\nblocks:\n  - {type: raw, column: a}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePipelineConfig([]byte(tt.yaml))
			var vErr *errors.ValidationError
			assert.True(t, errors.As(err, &vErr), "got %v", err)
		})
	}
}
