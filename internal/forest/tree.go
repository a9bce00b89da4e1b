package forest

import (
	"math/rand/v2"
	"sort"
)

// node is a single vertex of a regression tree. Leaves carry the mean of
// the training targets that reached them.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	value     float64
	leaf      bool
}

// tree is one CART regression tree.
type tree struct {
	root *node
}

func (t *tree) predict(row []float64) float64 {
	n := t.root
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// grower bundles the immutable state shared while growing one tree.
type grower struct {
	x           [][]float64
	y           []float64
	params      Params
	maxFeatures int
	rng         *rand.Rand
}

// grow recursively builds a subtree over the sample indices.
func (g *grower) grow(indices []int, depth int) *node {
	mean, sse := meanAndSSE(g.y, indices)

	if len(indices) < g.params.MinSamplesSplit ||
		(g.params.MaxDepth > 0 && depth >= g.params.MaxDepth) ||
		sse == 0 {
		return &node{leaf: true, value: mean}
	}

	feature, threshold, ok := g.bestSplit(indices, sse)
	if !ok {
		return &node{leaf: true, value: mean}
	}

	var left, right []int
	for _, idx := range indices {
		if g.x[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      g.grow(left, depth+1),
		right:     g.grow(right, depth+1),
	}
}

// bestSplit searches a random feature subset for the split with the largest
// reduction in sum of squared errors. Splits that would leave fewer than
// MinSamplesLeaf rows on either side are not considered.
func (g *grower) bestSplit(indices []int, parentSSE float64) (feature int, threshold float64, ok bool) {
	numFeatures := len(g.x[0])
	candidates := g.rng.Perm(numFeatures)[:g.maxFeatures]

	bestSSE := parentSSE
	for _, f := range candidates {
		// Sort the sample by this feature to enumerate candidate thresholds
		// as midpoints between consecutive distinct values.
		sorted := make([]int, len(indices))
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool { return g.x[sorted[a]][f] < g.x[sorted[b]][f] })

		// Incremental split statistics: move rows from right to left.
		var leftSum, leftSq float64
		rightSum, rightSq := sumAndSq(g.y, sorted)

		for i := 0; i < len(sorted)-1; i++ {
			yi := g.y[sorted[i]]
			leftSum += yi
			leftSq += yi * yi
			rightSum -= yi
			rightSq -= yi * yi

			if g.x[sorted[i]][f] == g.x[sorted[i+1]][f] {
				continue
			}
			nLeft, nRight := i+1, len(sorted)-i-1
			if nLeft < g.params.MinSamplesLeaf || nRight < g.params.MinSamplesLeaf {
				continue
			}

			sse := (leftSq - leftSum*leftSum/float64(nLeft)) +
				(rightSq - rightSum*rightSum/float64(nRight))
			if sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = (g.x[sorted[i]][f] + g.x[sorted[i+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func meanAndSSE(y []float64, indices []int) (mean, sse float64) {
	sum, sq := 0.0, 0.0
	for _, idx := range indices {
		sum += y[idx]
		sq += y[idx] * y[idx]
	}
	n := float64(len(indices))
	mean = sum / n
	sse = sq - sum*sum/n
	if sse < 0 {
		sse = 0 // guard against floating point cancellation
	}
	return mean, sse
}

func sumAndSq(y []float64, indices []int) (sum, sq float64) {
	for _, idx := range indices {
		sum += y[idx]
		sq += y[idx] * y[idx]
	}
	return sum, sq
}
