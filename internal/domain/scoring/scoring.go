// Package scoring turns feature vectors into risk scores, tiers, and
// confidence values using a seeded deterministic network.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/edulens/screening/internal/domain/feature"
	"github.com/edulens/screening/internal/domain/model"
)

// DefaultSeed generates the stock network weights.
const DefaultSeed = 42

// Thresholds maps a risk score onto a tier. Scores below Low are no risk;
// each bound is exclusive on its upper side.
type Thresholds struct {
	Low    float64
	Medium float64
	High   float64
}

// DefaultThresholds returns the stock tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.83, Medium: 0.87, High: 0.90}
}

// Level maps a score onto its tier.
func (t Thresholds) Level(score float64) model.RiskLevel {
	switch {
	case score < t.Low:
		return model.RiskNone
	case score < t.Medium:
		return model.RiskLow
	case score < t.High:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// Valid reports whether the boundaries are strictly increasing inside (0, 1).
func (t Thresholds) Valid() bool {
	return 0 < t.Low && t.Low < t.Medium && t.Medium < t.High && t.High < 1
}

// Input carries one domain's feature vector into the scorer.
type Input struct {
	Domain   model.Domain
	Features feature.Vector
}

// Result is the scorer's verdict for one domain.
type Result struct {
	Domain     model.Domain
	RiskScore  float64
	RiskLevel  model.RiskLevel
	Confidence float64
}

// Scorer computes a risk result from a feature vector.
type Scorer interface {
	// Score computes a result, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// Option applies a configuration option to the NeuralScorer.
type Option func(*NeuralScorer)

// WithSeed regenerates the network weights from the given seed.
func WithSeed(seed int64) Option {
	return func(s *NeuralScorer) {
		s.net = newNetwork(seed)
	}
}

// WithThresholds overrides the tier boundaries. Invalid boundaries are
// ignored.
func WithThresholds(t Thresholds) Option {
	return func(s *NeuralScorer) {
		if t.Valid() {
			s.thresholds = t
		}
	}
}

// NeuralScorer implements Scorer with the seeded cascade. It is stateless
// after construction and safe for concurrent use.
type NeuralScorer struct {
	net        *network
	thresholds Thresholds
}

// NewNeuralScorer creates a scorer with the stock seed and thresholds.
func NewNeuralScorer(opts ...Option) *NeuralScorer {
	s := &NeuralScorer{
		net:        newNetwork(DefaultSeed),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score weights the features by domain importance, runs the cascade, and
// derives the tier and confidence.
func (s *NeuralScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}

	// Extractor vectors are already in [0,1]; re-clamp so a hand-built
	// vector cannot push activations out of range.
	features := in.Features
	for i, f := range features {
		features[i] = feature.Clip01(f)
	}

	importance := importanceFor(in.Domain)
	var weighted [inputSize]float64
	for i, f := range features {
		weighted[i] = f * importance[i]
	}

	score := s.net.forward(weighted)

	return Result{
		Domain:     in.Domain,
		RiskScore:  score,
		RiskLevel:  s.thresholds.Level(score),
		Confidence: confidence(features, score),
	}, nil
}

// Thresholds returns the scorer's tier boundaries.
func (s *NeuralScorer) Thresholds() Thresholds { return s.thresholds }

// confidence is high when the features agree with each other and the score
// sits far from the decision midpoint. Bounded to [0.5, 0.99] so a report
// never claims certainty or a coin flip.
func confidence(v feature.Vector, score float64) float64 {
	c := (1 - v.Variance()) * (0.5 + math.Abs(score-0.5))
	return feature.Clip(c, 0.5, 0.99)
}
