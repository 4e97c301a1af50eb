// Package log defines standard attribute keys used across trapi.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "cv.fold") so logs from loaders, feature blocks and the cross-validation
// driver can be filtered uniformly.

package log

// Operation context
const (
	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "load", "reduce_memory", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "feature", "dataset", "train"
	ComponentKey = "ml.component"

	// BlockKey identifies a feature block by its output prefix.
	BlockKey = "feature.block"

	// RunIDKey is a unique identifier for one cross-validation run.
	RunIDKey = "run.id"
)

// Data shape
const (
	// SamplesKey indicates the number of rows.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of columns.
	FeaturesKey = "data.features"

	// GroupsKey indicates the number of distinct groups in an aggregation.
	GroupsKey = "data.groups"

	// ColumnKey names the column being processed.
	ColumnKey = "data.column"

	// DataTypeKey specifies a storage type, e.g. "float32", "int8".
	DataTypeKey = "data.type"

	// PathKey is the file a dataset was read from or written to.
	PathKey = "data.path"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MemoryMBKey records memory usage in megabytes.
	MemoryMBKey = "perf.memory_mb"

	// ReductionKey records a relative memory reduction in percent.
	ReductionKey = "perf.reduction_pct"
)

// Cross-validation
const (
	// FoldKey is the 1-based fold number.
	FoldKey = "cv.fold"

	// NSplitsKey is the number of folds.
	NSplitsKey = "cv.n_splits"

	// TrainSizeKey and ValidSizeKey are the fold's row counts.
	TrainSizeKey = "cv.train_size"
	ValidSizeKey = "cv.valid_size"

	// MetricKey names the metric a fold was scored with, ScoreKey holds the value.
	MetricKey = "metrics.name"
	ScoreKey  = "metrics.score"
)

// Error context
const (
	// ErrAttrKey carries the error value itself.
	ErrAttrKey = "error"

	// StacktraceAttrKey carries the stack trace extracted from a cockroachdb error.
	StacktraceAttrKey = "stacktrace"
)
