// Package gbt implements gradient-boosted decision trees for binary classification
// with a logistic objective, exact greedy splits and second-order leaf weights.
package gbt

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned for hyperparameters outside their valid range
var ErrInvalidParams = errors.New("invalid booster parameters")

// Params are the booster hyperparameters
type Params struct {
	NEstimators    int     `json:"n_estimators" msgpack:"n_estimators"`
	MaxDepth       int     `json:"max_depth" msgpack:"max_depth"`
	LearningRate   float64 `json:"learning_rate" msgpack:"learning_rate"`
	MinChildWeight float64 `json:"min_child_weight" msgpack:"min_child_weight"`
	RegLambda      float64 `json:"reg_lambda" msgpack:"reg_lambda"`
	Gamma          float64 `json:"gamma" msgpack:"gamma"`
	ScalePosWeight float64 `json:"scale_pos_weight" msgpack:"scale_pos_weight"`
	BaseScore      float64 `json:"base_score" msgpack:"base_score"`
}

// DefaultParams returns 100 trees of depth 3 at learning rate 0.1
func DefaultParams() Params {
	return Params{
		NEstimators:    100,
		MaxDepth:       3,
		LearningRate:   0.1,
		MinChildWeight: 1,
		RegLambda:      1,
		Gamma:          0,
		ScalePosWeight: 1,
		BaseScore:      0.5,
	}
}

// Validate checks every hyperparameter range
func (p Params) Validate() error {
	switch {
	case p.NEstimators <= 0:
		return fmt.Errorf("%w: n_estimators must be positive, got %d", ErrInvalidParams, p.NEstimators)
	case p.MaxDepth <= 0:
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalidParams, p.MaxDepth)
	case !(p.LearningRate > 0 && p.LearningRate <= 1):
		return fmt.Errorf("%w: learning_rate must be in (0, 1], got %v", ErrInvalidParams, p.LearningRate)
	case p.MinChildWeight < 0 || math.IsNaN(p.MinChildWeight):
		return fmt.Errorf("%w: min_child_weight must be non-negative, got %v", ErrInvalidParams, p.MinChildWeight)
	case p.RegLambda < 0 || math.IsNaN(p.RegLambda):
		return fmt.Errorf("%w: reg_lambda must be non-negative, got %v", ErrInvalidParams, p.RegLambda)
	case p.Gamma < 0 || math.IsNaN(p.Gamma):
		return fmt.Errorf("%w: gamma must be non-negative, got %v", ErrInvalidParams, p.Gamma)
	case !(p.ScalePosWeight > 0) || math.IsInf(p.ScalePosWeight, 0):
		return fmt.Errorf("%w: scale_pos_weight must be positive and finite, got %v", ErrInvalidParams, p.ScalePosWeight)
	case !(p.BaseScore > 0 && p.BaseScore < 1):
		return fmt.Errorf("%w: base_score must be in (0, 1), got %v", ErrInvalidParams, p.BaseScore)
	}
	return nil
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
