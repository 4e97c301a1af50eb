package feature

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Block kinds accepted in a pipeline file.
const (
	KindRaw         = "raw"
	KindCount       = "count"
	KindLabel       = "label"
	KindTarget      = "target"
	KindAggregation = "aggregation"
)

// PipelineConfig is the YAML description of a feature pipeline:
//
//	concurrency: 4
//	blocks:
//	  - {type: raw, columns: [age, height]}
//	  - {type: count, column: city, use_reference: true}
//	  - {type: label, column: city}
//	  - {type: target, column: city, target: price, aggs: [mean, std]}
//	  - {type: aggregation, columns: [city, shop], target: age, fill_value: 0}
type PipelineConfig struct {
	Concurrency int           `yaml:"concurrency" validate:"gte=0"`
	Blocks      []BlockConfig `yaml:"blocks" validate:"required,min=1,dive"`
}

// BlockConfig describes one block. raw blocks accept several columns and
// expand into one RawValueBlock each.
type BlockConfig struct {
	Type         string   `yaml:"type" validate:"required,oneof=raw count label target aggregation"`
	Column       string   `yaml:"column"`
	Columns      []string `yaml:"columns" validate:"omitempty,dive,required"`
	Target       string   `yaml:"target" validate:"required_if=Type target,required_if=Type aggregation"`
	Aggs         []string `yaml:"aggs" validate:"omitempty,dive,oneof=mean max min std sum count median prod corr var"`
	FillValue    *float64 `yaml:"fill_value"`
	UseReference bool     `yaml:"use_reference"`
}

// columns returns Column followed by Columns.
func (c BlockConfig) columns() []string {
	var out []string
	if c.Column != "" {
		out = append(out, c.Column)
	}
	return append(out, c.Columns...)
}

var validate = validator.New()

// ParsePipelineConfig decodes and validates a YAML pipeline. Unknown keys are
// rejected.
func ParsePipelineConfig(data []byte) (*PipelineConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg PipelineConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.NewValidationError("pipeline", "invalid YAML: "+err.Error(), nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPipelineConfig reads a YAML pipeline file.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading pipeline config %s", path)
	}
	return ParsePipelineConfig(data)
}

// Validate checks the struct tags and the column requirements of each block.
func (c *PipelineConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.NewValidationError(fe.Namespace(), describe(fe), fe.Value())
		}
		return errors.Wrap(err, "validating pipeline config")
	}
	for i, b := range c.Blocks {
		n := len(b.columns())
		field := fmt.Sprintf("PipelineConfig.Blocks[%d]", i)
		switch {
		case n == 0:
			return errors.NewValidationError(field, "column or columns is required", b.Type)
		case n > 1 && b.Type != KindRaw && b.Type != KindAggregation:
			return errors.NewValidationError(field, b.Type+" blocks take exactly one column", b.columns())
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// BuildPipeline turns cfg into a Pipeline. reference is used by count and
// aggregation blocks that set use_reference; it may be nil when none do.
func BuildPipeline(cfg *PipelineConfig, reference *frame.Frame, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var blocks []Block
	for i, bc := range cfg.Blocks {
		built, err := buildBlocks(bc, reference)
		if err != nil {
			return nil, errors.Wrapf(err, "block %d (%s)", i, bc.Type)
		}
		blocks = append(blocks, built...)
	}
	if cfg.Concurrency > 0 {
		opts = append([]PipelineOption{WithConcurrency(cfg.Concurrency)}, opts...)
	}
	return NewPipeline(blocks, opts...), nil
}

func buildBlocks(bc BlockConfig, reference *frame.Frame) ([]Block, error) {
	var opts []Option
	if bc.Aggs != nil {
		opts = append(opts, WithAggs(bc.Aggs...))
	}
	if bc.FillValue != nil {
		opts = append(opts, WithFillValue(*bc.FillValue))
	}
	if bc.UseReference {
		if reference == nil {
			return nil, errors.NewValidationError("use_reference", "no reference frame was supplied", true)
		}
		opts = append(opts, WithReference(reference))
	}

	cols := bc.columns()
	switch bc.Type {
	case KindRaw:
		blocks := make([]Block, len(cols))
		for i, c := range cols {
			blocks[i] = NewRawValueBlock(c)
		}
		return blocks, nil
	case KindCount:
		return []Block{NewCountEncodingBlock(cols[0], opts...)}, nil
	case KindLabel:
		return []Block{NewLabelEncodingBlock(cols[0])}, nil
	case KindTarget:
		b, err := NewTargetEncodingBlock(cols[0], bc.Target, opts...)
		if err != nil {
			return nil, err
		}
		return []Block{b}, nil
	case KindAggregation:
		b, err := NewAggregationBlock(cols, bc.Target, opts...)
		if err != nil {
			return nil, err
		}
		return []Block{b}, nil
	}
	return nil, errors.NewValidationError("type", "unknown block type", bc.Type)
}
