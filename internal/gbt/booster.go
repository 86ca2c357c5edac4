package gbt

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when the training matrix or labels are unusable
var ErrInvalidInput = errors.New("invalid training input")

// Booster is a fitted additive ensemble of regression trees on the logit scale.
// Fit is the only operation that mutates it; prediction is safe for concurrent use.
type Booster struct {
	Params      Params  `json:"params" msgpack:"params"`
	NumFeatures int     `json:"num_features" msgpack:"num_features"`
	BaseMargin  float64 `json:"base_margin" msgpack:"base_margin"`
	Trees       []Tree  `json:"trees" msgpack:"trees"`
}

// Fit trains a booster on rows X with binary labels y. Positive rows carry
// weight Params.ScalePosWeight in both gradient and hessian.
func Fit(X [][]float64, y []int, params Params) (*Booster, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := checkInput(X, y); err != nil {
		return nil, err
	}

	n := len(X)
	weights := make([]float64, n)
	for i, label := range y {
		weights[i] = 1
		if label == 1 {
			weights[i] = params.ScalePosWeight
		}
	}

	b := &Booster{
		Params:      params,
		NumFeatures: len(X[0]),
		BaseMargin:  logit(params.BaseScore),
		Trees:       make([]Tree, 0, params.NEstimators),
	}

	margins := make([]float64, n)
	for i := range margins {
		margins[i] = b.BaseMargin
	}
	grad := make([]float64, n)
	hess := make([]float64, n)
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	for round := 0; round < params.NEstimators; round++ {
		for i := range margins {
			p := sigmoid(margins[i])
			grad[i] = (p - float64(y[i])) * weights[i]
			hess[i] = math.Max(p*(1-p)*weights[i], 1e-16)
		}

		tb := &treeBuilder{x: X, grad: grad, hess: hess, params: params}
		tb.build(rows, 0)
		tree := Tree{Nodes: tb.nodes}
		b.Trees = append(b.Trees, tree)

		for i := range margins {
			margins[i] += tree.Predict(X[i])
		}
	}

	return b, nil
}

func checkInput(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidInput)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrInvalidInput, len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return fmt.Errorf("%w: rows have no features", ErrInvalidInput)
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, expected %d", ErrInvalidInput, i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: row %d feature %d is not finite", ErrInvalidInput, i, j)
			}
		}
		if y[i] != 0 && y[i] != 1 {
			return fmt.Errorf("%w: row %d label %d is not binary", ErrInvalidInput, i, y[i])
		}
	}
	return nil
}

// Margin returns the raw log-odds score of x
func (b *Booster) Margin(x []float64) float64 {
	m := b.BaseMargin
	for i := range b.Trees {
		m += b.Trees[i].Predict(x)
	}
	return m
}

// PredictProba returns P(y=1|x). x must hold NumFeatures values.
func (b *Booster) PredictProba(x []float64) float64 {
	return sigmoid(b.Margin(x))
}

// PredictBatch scores every row, preserving order
func (b *Booster) PredictBatch(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = b.PredictProba(x)
	}
	return out
}

// Validate checks the structure of a decoded booster
func (b *Booster) Validate() error {
	if b.NumFeatures <= 0 {
		return fmt.Errorf("booster has %d features", b.NumFeatures)
	}
	if len(b.Trees) == 0 {
		return fmt.Errorf("booster has no trees")
	}
	for i := range b.Trees {
		if err := b.Trees[i].validate(b.NumFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// FeatureImportance returns the total split gain per feature, normalised to sum to 1.
// A booster made only of leaves returns all zeros.
func (b *Booster) FeatureImportance() []float64 {
	out := make([]float64, b.NumFeatures)
	var total float64
	for _, t := range b.Trees {
		for _, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			out[n.Feature] += n.Gain
			total += n.Gain
		}
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}
