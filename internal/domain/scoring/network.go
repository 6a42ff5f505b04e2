package scoring

import (
	"math"
	"math/rand"

	"github.com/edulens/screening/internal/domain/feature"
)

// Network layer sizes. The input layer matches the feature vector width.
const (
	inputSize   = feature.Size
	hidden1Size = 64
	hidden2Size = 32
)

const leakyReLUAlpha = 0.1

// network is a fixed pseudo-random linear cascade: three dense layers whose
// weights are drawn once from a seeded generator. It is not a trained model;
// the seed makes it a deterministic nonlinear aggregator, so identical input
// always yields a bit-identical score.
type network struct {
	w1 [hidden1Size][inputSize]float64
	w2 [hidden2Size][hidden1Size]float64
	w3 [hidden2Size]float64
}

// newNetwork draws the weight matrices in a fixed order (layer one row by
// row, then layer two, then the output layer) so a given seed always produces
// the same network.
func newNetwork(seed int64) *network {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed is the point
	n := &network{}
	for i := range n.w1 {
		for j := range n.w1[i] {
			n.w1[i][j] = rng.NormFloat64()*0.5 + 0.2
		}
	}
	for i := range n.w2 {
		for j := range n.w2[i] {
			n.w2[i][j] = rng.NormFloat64()*0.5 + 0.2
		}
	}
	for i := range n.w3 {
		n.w3[i] = rng.NormFloat64()*0.5 + 0.2
	}
	return n
}

// forward runs the cascade over an importance-weighted feature vector and
// returns a score in (0, 1).
func (n *network) forward(in [inputSize]float64) float64 {
	var h1 [hidden1Size]float64
	for i := range n.w1 {
		sum := 0.0
		for j, w := range n.w1[i] {
			sum += w * in[j]
		}
		h1[i] = leakyReLU(sum)
	}

	var h2 [hidden2Size]float64
	for i := range n.w2 {
		sum := 0.0
		for j, w := range n.w2[i] {
			sum += w * h1[j]
		}
		h2[i] = leakyReLU(sum)
	}

	// Normalize the second hidden layer's activations before the output
	// layer, the way batch normalization would at inference.
	mean := 0.0
	for _, v := range h2 {
		mean += v
	}
	mean /= hidden2Size
	variance := 0.0
	for _, v := range h2 {
		d := v - mean
		variance += d * d
	}
	variance /= hidden2Size
	std := math.Sqrt(variance) + 1e-6

	out := 0.0
	for i, v := range h2 {
		out += n.w3[i] * ((v - mean) / std)
	}

	return sigmoid(out)
}

func leakyReLU(z float64) float64 {
	if z > 0 {
		return z
	}
	return leakyReLUAlpha * z
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
