package gbt

import (
	"fmt"
	"sort"
)

// Node is one tree node. Internal nodes send x[Feature] < Threshold to Left.
type Node struct {
	Feature   int     `json:"feature" msgpack:"feature"`
	Threshold float64 `json:"threshold" msgpack:"threshold"`
	Left      int     `json:"left" msgpack:"left"`
	Right     int     `json:"right" msgpack:"right"`
	Leaf      bool    `json:"leaf" msgpack:"leaf"`
	Value     float64 `json:"value" msgpack:"value"`
	Gain      float64 `json:"gain,omitempty" msgpack:"gain"`
}

// Tree is a regression tree stored as a flat node slice rooted at index 0
type Tree struct {
	Nodes []Node `json:"nodes" msgpack:"nodes"`
}

// Predict returns the leaf value reached by x
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validate checks that every child index is in range, points forward and every split
// feature exists, so Predict always terminates on a leaf
func (t *Tree) validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, numFeatures)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has children %d/%d outside (%d, %d)", i, n.Left, n.Right, i, len(t.Nodes))
		}
	}
	return nil
}

// treeBuilder grows one tree on fixed gradients and hessians
type treeBuilder struct {
	x      [][]float64
	grad   []float64
	hess   []float64
	params Params
	nodes  []Node
}

type candidate struct {
	feature   int
	threshold float64
	gain      float64
	leftSize  int
}

func (b *treeBuilder) build(rows []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	g, h := b.sums(rows)
	if depth < b.params.MaxDepth && len(rows) > 1 {
		if best, ok := b.bestSplit(rows, g, h); ok {
			left := make([]int, 0, best.leftSize)
			right := make([]int, 0, len(rows)-best.leftSize)
			for _, r := range rows {
				if b.x[r][best.feature] < best.threshold {
					left = append(left, r)
				} else {
					right = append(right, r)
				}
			}

			leftID := b.build(left, depth+1)
			rightID := b.build(right, depth+1)
			b.nodes[id] = Node{
				Feature:   best.feature,
				Threshold: best.threshold,
				Left:      leftID,
				Right:     rightID,
				Gain:      best.gain,
			}
			return id
		}
	}

	b.nodes[id] = Node{Leaf: true, Value: b.leafWeight(g, h)}
	return id
}

func (b *treeBuilder) sums(rows []int) (g, h float64) {
	for _, r := range rows {
		g += b.grad[r]
		h += b.hess[r]
	}
	return g, h
}

func (b *treeBuilder) leafWeight(g, h float64) float64 {
	return -g / (h + b.params.RegLambda) * b.params.LearningRate
}

func (b *treeBuilder) score(g, h float64) float64 {
	return g * g / (h + b.params.RegLambda)
}

// bestSplit scans every feature in index order and every midpoint between consecutive
// distinct values; the first strictly best gain wins, which keeps fitting deterministic
func (b *treeBuilder) bestSplit(rows []int, g, h float64) (candidate, bool) {
	parent := b.score(g, h)
	best := candidate{gain: 0}
	found := false

	sorted := make([]int, len(rows))
	numFeatures := len(b.x[rows[0]])
	for f := 0; f < numFeatures; f++ {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		var gl, hl float64
		for k := 0; k < len(sorted)-1; k++ {
			r := sorted[k]
			gl += b.grad[r]
			hl += b.hess[r]

			lo, hi := b.x[r][f], b.x[sorted[k+1]][f]
			if !(lo < hi) {
				continue
			}
			gr, hr := g-gl, h-hl
			if hl < b.params.MinChildWeight || hr < b.params.MinChildWeight {
				continue
			}

			gain := 0.5*(b.score(gl, hl)+b.score(gr, hr)-parent) - b.params.Gamma
			if gain > best.gain {
				threshold := lo + (hi-lo)/2
				if threshold <= lo {
					threshold = hi
				}
				best = candidate{feature: f, threshold: threshold, gain: gain, leftSize: k + 1}
				found = true
			}
		}
	}
	return best, found
}
