// Package train drives model training on feature frames: cross-validation
// splitters, the Trainer contract a model library plugs into, and the
// cross-validation loop that collects out-of-fold predictions and feature
// importance.
package train

import (
	"math/rand/v2"
	"sort"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Fold holds the row positions of one train/validation split.
type Fold struct {
	Train []int
	Valid []int
}

// Splitter generates cross-validation folds.
type Splitter interface {
	// Split returns NSplits folds over the rows of X. y and groups may be nil
	// for splitters that do not use them.
	Split(X *frame.Frame, y, groups *frame.Series) ([]Fold, error)
	NSplits() int
}

// SplitOption configures KFold and StratifiedKFold.
type SplitOption func(*shuffle)

type shuffle struct {
	enabled bool
	seed    uint64
}

// WithShuffle shuffles rows with the given seed before splitting.
func WithShuffle(seed uint64) SplitOption {
	return func(s *shuffle) {
		s.enabled = true
		s.seed = seed
	}
}

func (s shuffle) apply(indices []int) {
	if !s.enabled {
		return
	}
	r := rand.New(rand.NewPCG(s.seed, s.seed))
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
}

func checkSplits(nSplits int) error {
	if nSplits < 2 {
		return errors.NewValidationError("n_splits", "must be at least 2", nSplits)
	}
	return nil
}

func checkSamples(nSamples, nSplits int) error {
	if nSamples < nSplits {
		return errors.NewValidationError("n_splits", "cannot be greater than the number of samples ("+itoa(nSamples)+")", nSplits)
	}
	return nil
}

// KFold splits rows into consecutive folds of nearly equal size.
type KFold struct {
	nSplits int
	shuffle shuffle
}

// NewKFold creates a k-fold splitter.
func NewKFold(nSplits int, opts ...SplitOption) (*KFold, error) {
	if err := checkSplits(nSplits); err != nil {
		return nil, err
	}
	kf := &KFold{nSplits: nSplits}
	for _, opt := range opts {
		opt(&kf.shuffle)
	}
	return kf, nil
}

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int { return kf.nSplits }

// Split generates the folds. The first n mod k folds get one extra row.
func (kf *KFold) Split(X *frame.Frame, _, _ *frame.Series) ([]Fold, error) {
	n := X.Nrow()
	if err := checkSamples(n, kf.nSplits); err != nil {
		return nil, err
	}
	indices := positions(n)
	kf.shuffle.apply(indices)

	assign := make([]int, n)
	foldSize, remainder := n/kf.nSplits, n%kf.nSplits
	current := 0
	for f := 0; f < kf.nSplits; f++ {
		size := foldSize
		if f < remainder {
			size++
		}
		for _, i := range indices[current : current+size] {
			assign[i] = f
		}
		current += size
	}
	return foldsFromAssignment(assign, kf.nSplits), nil
}

// StratifiedKFold keeps the class proportions of y in every fold.
type StratifiedKFold struct {
	nSplits int
	shuffle shuffle
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, opts ...SplitOption) (*StratifiedKFold, error) {
	if err := checkSplits(nSplits); err != nil {
		return nil, err
	}
	skf := &StratifiedKFold{nSplits: nSplits}
	for _, opt := range opts {
		opt(&skf.shuffle)
	}
	return skf, nil
}

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int { return skf.nSplits }

// Split deals the rows of each class round-robin over the folds, classes in
// sorted order.
func (skf *StratifiedKFold) Split(X *frame.Frame, y, _ *frame.Series) ([]Fold, error) {
	if y == nil {
		return nil, errors.NewValidationError("y", "StratifiedKFold requires class labels", nil)
	}
	n := X.Nrow()
	if y.Len() != n {
		return nil, errors.NewDimensionError("StratifiedKFold.Split", n, y.Len(), 0)
	}
	if err := checkSamples(n, skf.nSplits); err != nil {
		return nil, err
	}

	classes := make(map[string][]int)
	for i := 0; i < n; i++ {
		label, ok := y.Key(i)
		if !ok {
			return nil, errors.NewValueError("StratifiedKFold.Split", "y contains missing labels")
		}
		classes[label] = append(classes[label], i)
	}
	labels := make([]string, 0, len(classes))
	for label := range classes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	assign := make([]int, n)
	next := 0
	for _, label := range labels {
		members := classes[label]
		skf.shuffle.apply(members)
		for _, i := range members {
			assign[i] = next % skf.nSplits
			next++
		}
	}
	return foldsFromAssignment(assign, skf.nSplits), nil
}

// GroupKFold keeps every group entirely inside one validation fold. Groups
// are assigned largest first to the fold with the fewest rows so far.
type GroupKFold struct {
	nSplits int
}

// NewGroupKFold creates a group k-fold splitter.
func NewGroupKFold(nSplits int) (*GroupKFold, error) {
	if err := checkSplits(nSplits); err != nil {
		return nil, err
	}
	return &GroupKFold{nSplits: nSplits}, nil
}

// NSplits returns the number of folds.
func (g *GroupKFold) NSplits() int { return g.nSplits }

// Split generates the folds from the group labels.
func (g *GroupKFold) Split(X *frame.Frame, _, groups *frame.Series) ([]Fold, error) {
	if groups == nil {
		return nil, errors.NewValidationError("groups", "GroupKFold requires group labels", nil)
	}
	n := X.Nrow()
	if groups.Len() != n {
		return nil, errors.NewDimensionError("GroupKFold.Split", n, groups.Len(), 0)
	}

	members := make(map[string][]int)
	for i := 0; i < n; i++ {
		key, ok := groups.Key(i)
		if !ok {
			return nil, errors.NewValueError("GroupKFold.Split", "groups contains missing labels")
		}
		members[key] = append(members[key], i)
	}
	if len(members) < g.nSplits {
		return nil, errors.NewValidationError("n_splits", "cannot be greater than the number of groups ("+itoa(len(members))+")", g.nSplits)
	}

	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if len(members[keys[a]]) != len(members[keys[b]]) {
			return len(members[keys[a]]) > len(members[keys[b]])
		}
		return keys[a] < keys[b]
	})

	sizes := make([]int, g.nSplits)
	assign := make([]int, n)
	for _, k := range keys {
		smallest := 0
		for f := 1; f < g.nSplits; f++ {
			if sizes[f] < sizes[smallest] {
				smallest = f
			}
		}
		for _, i := range members[k] {
			assign[i] = smallest
		}
		sizes[smallest] += len(members[k])
	}
	return foldsFromAssignment(assign, g.nSplits), nil
}

func positions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// foldsFromAssignment builds folds from each row's validation fold. Both
// index lists are ascending.
func foldsFromAssignment(assign []int, nSplits int) []Fold {
	folds := make([]Fold, nSplits)
	for i, f := range assign {
		for k := range folds {
			if k == f {
				folds[k].Valid = append(folds[k].Valid, i)
			} else {
				folds[k].Train = append(folds[k].Train, i)
			}
		}
	}
	return folds
}
