// Package model holds the fitted-state bookkeeping shared by the encoders in
// preprocessing.
package model

import "github.com/KenkenGoda/trapi/pkg/errors"

// EstimatorState はエンコーダの学習状態を表す
type EstimatorState int

const (
	// NotFitted は未学習の状態
	NotFitted EstimatorState = iota
	// Fitted は学習済みの状態
	Fitted
)

// BaseEstimator は全てのエンコーダに埋め込まれる構造体
type BaseEstimator struct {
	state    EstimatorState
	nSamples int
}

// IsFitted は学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted は学習済み状態に設定し、学習に使ったサンプル数を記録する
func (e *BaseEstimator) SetFitted(nSamples int) {
	e.state = Fitted
	e.nSamples = nSamples
}

// NSamples は学習に使ったサンプル数を返す
func (e *BaseEstimator) NSamples() int {
	return e.nSamples
}

// Reset は初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
	e.nSamples = 0
}

// RequireFitted は未学習の場合にNotFittedErrorを返す
func (e *BaseEstimator) RequireFitted(name, method string) error {
	if !e.IsFitted() {
		return errors.NewNotFittedError(name, method)
	}
	return nil
}
