package feature

import "github.com/KenkenGoda/trapi/core/frame"

// RawValueBlock passes one column through unchanged.
type RawValueBlock struct {
	column string
}

// NewRawValueBlock creates a RawValueBlock for column.
func NewRawValueBlock(column string) *RawValueBlock {
	return &RawValueBlock{column: column}
}

// Transform returns the column under its own name.
func (b *RawValueBlock) Transform(input *frame.Frame) (*frame.Frame, error) {
	return input.Select(b.column)
}

func (b *RawValueBlock) String() string { return "RawValueBlock(" + b.column + ")" }
