// Package feature converts raw session traces into fixed-length, normalized
// feature vectors for risk scoring.
//
// Each domain extractor derives exactly Size scalar signals, every one of them
// clamped to [0, 1]. A feature whose source task is absent falls back to the
// neutral value 0.5 so missing data never biases the score toward either
// extreme.
package feature

// Size is the dimensionality of every domain's feature vector. The scoring
// network's input layer is sized to it.
const Size = 20

// Neutral is the fallback value used when a signal cannot be derived.
const Neutral = 0.5

// Vector is an ordered, fixed-length feature vector. Order and meaning are
// part of each domain's contract and must match the importance weights.
type Vector [Size]float64

// Fit builds a Vector from an arbitrary-length value list: shorter inputs are
// padded with Neutral, longer ones truncated, and every element clamped to
// [0, 1].
func Fit(vals []float64) Vector {
	var v Vector
	for i := range v {
		if i < len(vals) {
			v[i] = Clip01(vals[i])
		} else {
			v[i] = Neutral
		}
	}
	return v
}

// Values returns the vector as a slice.
func (v Vector) Values() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Variance returns the population variance of the vector's elements.
func (v Vector) Variance() float64 {
	return Variance(v[:])
}
