package feature

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

// Pipeline fits and applies a list of blocks and concatenates their
// fragments in block order.
type Pipeline struct {
	blocks      []Block
	concurrency int
	logger      log.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithConcurrency sets how many blocks are fitted or transformed at once
// (default 1). Each block is still used by a single goroutine.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger (default log.GetLogger()).
func WithLogger(l log.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// NewPipeline creates a Pipeline over blocks.
func NewPipeline(blocks []Block, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		blocks:      append([]Block(nil), blocks...),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLogger()
	}
	p.logger = p.logger.With(log.ComponentKey, "feature.Pipeline")
	return p
}

// Blocks returns the blocks in order.
func (p *Pipeline) Blocks() []Block { return append([]Block(nil), p.blocks...) }

// Fit fits every block on input and returns the concatenated fragments.
func (p *Pipeline) Fit(ctx context.Context, input *frame.Frame, y *frame.Series) (*frame.Frame, error) {
	return p.run(ctx, "Fit", input, func(b Block) (*frame.Frame, error) {
		return Fit(b, input, y)
	})
}

// Transform applies every fitted block to input.
func (p *Pipeline) Transform(ctx context.Context, input *frame.Frame) (*frame.Frame, error) {
	return p.run(ctx, "Transform", input, func(b Block) (*frame.Frame, error) {
		return b.Transform(input)
	})
}

// FitTransform fits on train and transforms test, the usual way a feature
// matrix pair is built.
func (p *Pipeline) FitTransform(ctx context.Context, train, test *frame.Frame, y *frame.Series) (xTrain, xTest *frame.Frame, err error) {
	if xTrain, err = p.Fit(ctx, train, y); err != nil {
		return nil, nil, err
	}
	if xTest, err = p.Transform(ctx, test); err != nil {
		return nil, nil, err
	}
	return xTrain, xTest, nil
}

func (p *Pipeline) run(ctx context.Context, op string, input *frame.Frame, apply func(Block) (*frame.Frame, error)) (*frame.Frame, error) {
	start := time.Now()
	fragments := make([]*frame.Frame, len(p.blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, b := range p.blocks {
		name := blockName(b)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return errors.SafeExecute(name+"."+op, func() error {
				out, err := apply(b)
				if err != nil {
					return errors.Wrapf(err, "%s %s", op, name)
				}
				if out.Nrow() != input.Nrow() {
					return errors.NewDimensionError(name+"."+op, input.Nrow(), out.Nrow(), 0)
				}
				fragments[i] = out
				p.logger.Debug("Block done",
					log.OperationKey, op,
					log.BlockKey, name,
					log.FeaturesKey, out.Ncol(),
				)
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("Pipeline failed", err, log.OperationKey, op)
		return nil, err
	}

	out, err := frame.HConcat(fragments...)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Features built",
		log.OperationKey, op,
		log.SamplesKey, out.Nrow(),
		log.FeaturesKey, out.Ncol(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

func blockName(b Block) string {
	if s, ok := b.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", b)
}
