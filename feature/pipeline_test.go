package feature

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

type panickingBlock struct{}

func (panickingBlock) Transform(*frame.Frame) (*frame.Frame, error) {
	panic("boom")
}

type shortBlock struct{}

func (shortBlock) Transform(*frame.Frame) (*frame.Frame, error) {
	return frame.MustNew(frame.NewFloat("x", []float64{1})), nil
}

func testBlocks(t *testing.T) []Block {
	return []Block{
		NewRawValueBlock("age"),
		NewCountEncodingBlock("city"),
		NewLabelEncodingBlock("city"),
		mustTarget(t, "city", "target", WithAggs("mean")),
		mustAggregation(t, []string{"city"}, "age", WithAggs("max")),
	}
}

func TestPipeline_FitTransform(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		logger, _ := log.NewTestLogger(log.LevelDebug)
		p := NewPipeline(testBlocks(t), WithConcurrency(concurrency), WithLogger(logger))

		test := frame.MustNew(
			frame.NewString("city", []string{"B", "A"}),
			frame.NewFloat("age", []float64{50, 60}),
		)
		xTrain, xTest, err := p.FitTransform(context.Background(), trainFrame(), test, targetSeries())
		require.NoError(t, err)

		want := []string{"age", "CE_city", "LE_city", "TE_city_target_mean", "city_age_max"}
		assert.Equal(t, want, xTrain.Names())
		assert.Equal(t, want, xTest.Names())
		assert.Equal(t, 3, xTrain.Nrow())
		assert.Equal(t, []float64{1, 2}, floats(t, xTest, "CE_city"))
		assert.Equal(t, []float64{40, 30}, floats(t, xTest, "city_age_max"))

		assert.True(t, logger.ContainsMessage("Features built"))
		assert.True(t, logger.ContainsField(log.BlockKey, "CountEncodingBlock(city)"))
	}
}

func TestPipeline_RecoversPanics(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	p := NewPipeline([]Block{NewRawValueBlock("age"), panickingBlock{}}, WithLogger(logger))

	_, err := p.Fit(context.Background(), trainFrame(), nil)
	require.Error(t, err)
	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "boom", panicErr.PanicValue)
	assert.True(t, logger.ContainsMessage("Pipeline failed"))
}

func TestPipeline_RowCountMismatch(t *testing.T) {
	p := NewPipeline([]Block{shortBlock{}})
	_, err := p.Transform(context.Background(), trainFrame())
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestPipeline_TransformBeforeFit(t *testing.T) {
	p := NewPipeline(testBlocks(t))
	_, err := p.Transform(context.Background(), trainFrame())
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPipeline(testBlocks(t)).Fit(ctx, trainFrame(), targetSeries())
	assert.ErrorIs(t, err, context.Canceled)
}
