package health

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/afroash/moss-monitor/internal/models"
)

// Training and tree-growing parameters. The seed is fixed so every process
// that retrains from scratch arrives at the same decision boundary.
const (
	DefaultTrainingSeed = 42
	trainingSamples     = 500
	maxDepth            = 10
	minSamplesSplit     = 2
	numFeatures         = 3
)

// Node is one node of the decision tree. Leaves have nil children and carry
// the class distribution observed during training.
type Node struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *Node     `json:"left,omitempty"`
	Right     *Node     `json:"right,omitempty"`
	Class     int       `json:"class"`
	Probs     []float64 `json:"probs,omitempty"`
}

func (n *Node) isLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Tree is a CART classifier over (humidity, light, moisture) predicting one
// of the four health classes (indices into models.Labels).
type Tree struct {
	Root *Node `json:"root"`
	Seed int64 `json:"seed"`
}

// Train grows a tree on synthetic training data: 500 uniform samples over
// the sensor space, labeled by RuleLabel. Deterministic for a given seed.
func Train(seed int64) *Tree {
	rng := rand.New(rand.NewSource(seed))

	features := make([][numFeatures]float64, trainingSamples)
	labels := make([]int, trainingSamples)
	for i := range features {
		features[i][0] = 20 + rng.Float64()*(95-20)     // humidity
		features[i][1] = 100 + rng.Float64()*(1500-100) // light
		features[i][2] = 200 + rng.Float64()*(900-200)  // moisture
	}
	for i, f := range features {
		labels[i] = classIndex(RuleLabel(f[0], f[1], f[2]))
	}

	idx := make([]int, trainingSamples)
	for i := range idx {
		idx[i] = i
	}

	return &Tree{
		Root: grow(features, labels, idx, 0),
		Seed: seed,
	}
}

// Predict walks the tree and returns the predicted class index and the leaf
// class-probability distribution.
func (t *Tree) Predict(humidity, light, moisture float64) (int, []float64, error) {
	if t == nil || t.Root == nil {
		return 0, nil, fmt.Errorf("tree has no root")
	}
	features := [numFeatures]float64{humidity, light, moisture}

	n := t.Root
	for !n.isLeaf() {
		if n.Feature < 0 || n.Feature >= numFeatures {
			return 0, nil, fmt.Errorf("corrupt node: feature index %d", n.Feature)
		}
		if features[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}

	probs := make([]float64, len(models.Labels))
	copy(probs, n.Probs)
	return n.Class, probs, nil
}

// grow builds the subtree for the samples selected by idx.
func grow(features [][numFeatures]float64, labels []int, idx []int, depth int) *Node {
	counts := classCounts(labels, idx)

	if depth >= maxDepth || len(idx) < minSamplesSplit || isPure(counts) {
		return leaf(counts, len(idx))
	}

	feature, threshold, ok := bestSplit(features, labels, idx, counts)
	if !ok {
		return leaf(counts, len(idx))
	}

	var left, right []int
	for _, i := range idx {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      grow(features, labels, left, depth+1),
		Right:     grow(features, labels, right, depth+1),
	}
}

// bestSplit finds the (feature, threshold) pair minimizing the weighted Gini
// impurity of the two partitions. Returns ok=false when no split improves on
// the parent impurity.
func bestSplit(features [][numFeatures]float64, labels []int, idx []int, parent []int) (int, float64, bool) {
	n := len(idx)
	bestGini := gini(parent, n)
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, n)
	for f := 0; f < numFeatures; f++ {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool {
			return features[sorted[a]][f] < features[sorted[b]][f]
		})

		leftCounts := make([]int, len(models.Labels))
		rightCounts := append([]int(nil), parent...)
		for i := 1; i < n; i++ {
			c := labels[sorted[i-1]]
			leftCounts[c]++
			rightCounts[c]--

			prev, cur := features[sorted[i-1]][f], features[sorted[i]][f]
			if prev == cur {
				continue
			}
			g := (float64(i)*gini(leftCounts, i) + float64(n-i)*gini(rightCounts, n-i)) / float64(n)
			if g < bestGini-1e-12 {
				bestGini = g
				bestFeature = f
				bestThreshold = (prev + cur) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func leaf(counts []int, total int) *Node {
	probs := make([]float64, len(counts))
	class := 0
	for c, count := range counts {
		if total > 0 {
			probs[c] = float64(count) / float64(total)
		}
		if count > counts[class] {
			class = c
		}
	}
	return &Node{Class: class, Probs: probs}
}

func classCounts(labels []int, idx []int) []int {
	counts := make([]int, len(models.Labels))
	for _, i := range idx {
		counts[labels[i]]++
	}
	return counts
}

func isPure(counts []int) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

func classIndex(label models.HealthLabel) int {
	for i, l := range models.Labels {
		if l == label {
			return i
		}
	}
	return 0
}
