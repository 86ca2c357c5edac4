package ml

import (
	"fmt"
	"strings"
)

// Class names used in reports
const (
	ClassNotWinner = "Not Winner"
	ClassWinner    = "Winner"
)

// ClassMetrics are precision, recall and F1 for one class, or an average across classes
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a binary classification report on a held-out partition
type Report struct {
	Accuracy    float64      `json:"accuracy"`
	NotWinner   ClassMetrics `json:"not_winner"`
	Winner      ClassMetrics `json:"winner"`
	MacroAvg    ClassMetrics `json:"macro_avg"`
	WeightedAvg ClassMetrics `json:"weighted_avg"`
	// Confusion is indexed [actual][predicted]
	Confusion [2][2]int `json:"confusion"`
	Total     int       `json:"total"`
	Threshold float64   `json:"threshold"`
	// TopPickAccuracy is the share of test races whose highest-probability driver won
	TopPickAccuracy float64 `json:"top_pick_accuracy"`
	Races           int     `json:"races"`
}

// Evaluate compares labels against probabilities; a probability above threshold predicts a winner.
// Ratios with an empty denominator are reported as 0.
func Evaluate(labels []int, probs []float64, threshold float64) (*Report, error) {
	if len(labels) != len(probs) {
		return nil, fmt.Errorf("evaluate: %d labels but %d probabilities", len(labels), len(probs))
	}

	r := &Report{Total: len(labels), Threshold: threshold}
	correct := 0
	for i, actual := range labels {
		predicted := 0
		if probs[i] > threshold {
			predicted = 1
		}
		if actual != 0 && actual != 1 {
			return nil, fmt.Errorf("evaluate: label %d at row %d is not binary", actual, i)
		}
		r.Confusion[actual][predicted]++
		if actual == predicted {
			correct++
		}
	}

	r.Accuracy = ratio(correct, r.Total)
	r.NotWinner = classMetrics(r.Confusion, 0)
	r.Winner = classMetrics(r.Confusion, 1)

	r.MacroAvg = ClassMetrics{
		Precision: (r.NotWinner.Precision + r.Winner.Precision) / 2,
		Recall:    (r.NotWinner.Recall + r.Winner.Recall) / 2,
		F1:        (r.NotWinner.F1 + r.Winner.F1) / 2,
		Support:   r.Total,
	}
	r.WeightedAvg = ClassMetrics{Support: r.Total}
	if r.Total > 0 {
		n0 := float64(r.NotWinner.Support) / float64(r.Total)
		n1 := float64(r.Winner.Support) / float64(r.Total)
		r.WeightedAvg.Precision = n0*r.NotWinner.Precision + n1*r.Winner.Precision
		r.WeightedAvg.Recall = n0*r.NotWinner.Recall + n1*r.Winner.Recall
		r.WeightedAvg.F1 = n0*r.NotWinner.F1 + n1*r.Winner.F1
	}
	return r, nil
}

func classMetrics(cm [2][2]int, class int) ClassMetrics {
	other := 1 - class
	tp := cm[class][class]
	fp := cm[other][class]
	fn := cm[class][other]

	m := ClassMetrics{
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
		Support:   tp + fn,
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Metrics flattens the headline numbers for logging and the model index
func (r *Report) Metrics() map[string]float64 {
	return map[string]float64{
		"accuracy":          r.Accuracy,
		"winner_precision":  r.Winner.Precision,
		"winner_recall":     r.Winner.Recall,
		"winner_f1":         r.Winner.F1,
		"macro_f1":          r.MacroAvg.F1,
		"top_pick_accuracy": r.TopPickAccuracy,
	}
}

// String renders the report as a fixed-width table
func (r *Report) String() string {
	var b strings.Builder
	row := func(name string, m ClassMetrics) {
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", name, m.Precision, m.Recall, m.F1, m.Support)
	}

	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	row(ClassNotWinner, r.NotWinner)
	row(ClassWinner, r.Winner)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.Total)
	row("macro avg", r.MacroAvg)
	row("weighted avg", r.WeightedAvg)
	if r.Races > 0 {
		fmt.Fprintf(&b, "\ntop pick won %d%% of %d races\n", int(r.TopPickAccuracy*100+0.5), r.Races)
	}
	return b.String()
}
