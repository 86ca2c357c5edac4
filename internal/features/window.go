package features

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/f1-form/internal/models"
)

// TrailingMeans shifts values by one and averages a trailing window: out[i] is the mean of
// values[max(0, i-window):i]. Positions with no prior value get 0.
func TrailingMeans(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			continue
		}
		start := max(0, i-window)
		out[i] = stat.Mean(values[start:i], nil)
	}
	return out
}

// chronological returns record indices ordered by (season, round), ties kept in input order
func chronological(records []models.ResultRecord) []int {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].Key().Before(records[order[b]].Key())
	})
	return order
}

// groupBy maps a key to the record indices carrying it, preserving the order of idx
func groupBy(records []models.ResultRecord, idx []int, key func(*models.ResultRecord) string) map[string][]int {
	groups := make(map[string][]int)
	for _, i := range idx {
		k := key(&records[i])
		groups[k] = append(groups[k], i)
	}
	return groups
}
