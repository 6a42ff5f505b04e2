// Package assess orchestrates screening: it normalizes raw sessions, runs
// the domain extractors and the scorer, and assembles per-domain predictions
// and the unified summary.
package assess

import (
	"context"
	"fmt"
	"time"

	"github.com/edulens/screening/internal/domain/advice"
	"github.com/edulens/screening/internal/domain/feature"
	"github.com/edulens/screening/internal/domain/model"
	"github.com/edulens/screening/internal/domain/scoring"
	"github.com/edulens/screening/internal/domain/trace"
	"github.com/edulens/screening/pkg/logger"
	"github.com/edulens/screening/pkg/metrics"
)

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithScorer replaces the default scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(p *Predictor) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithLogger sets the predictor's logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Predictor) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) {
		if now != nil {
			p.now = now
		}
	}
}

// Predictor runs assessments. A failure in one domain never propagates: the
// affected prediction degrades and the others proceed.
type Predictor struct {
	scorer scoring.Scorer
	log    logger.Logger
	now    func() time.Time
}

// New creates a Predictor with the stock scorer.
func New(opts ...Option) *Predictor {
	p := &Predictor{
		scorer: scoring.NewNeuralScorer(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// logger prefers an explicitly configured logger, then the process logger
// once it exists. The predictor stays usable as a plain library either way.
func (p *Predictor) logger() logger.Logger {
	if p.log != nil {
		return p.log
	}
	return logger.Active().Named("assess")
}

// Predict assesses one domain's session. A nil or empty session yields a
// "No data" prediction; any internal failure, panics included, yields an
// "Unable to assess" prediction carrying the error text.
func (p *Predictor) Predict(ctx context.Context, d model.Domain, session map[string]any) (pred model.Prediction) {
	defer func() {
		if r := recover(); r != nil {
			p.logger().Error(ctx, "assessment panicked",
				logger.String("domain", string(d)),
				logger.Any("panic", r))
			pred = p.degraded(d, fmt.Sprintf("assessment panic: %v", r))
		}
	}()

	if len(session) == 0 {
		return model.Prediction{
			Domain:          d,
			RiskLevel:       model.RiskNoData,
			Recommendations: advice.Degraded(),
			Err:             "no session data",
			GeneratedAt:     p.now(),
		}
	}

	sess, ok := trace.ParseSession(session)
	if !ok {
		return p.degraded(d, "malformed session data")
	}

	vec, analysis, err := extract(d, sess)
	if err != nil {
		return p.degraded(d, err.Error())
	}

	start := time.Now()
	result, err := p.scorer.Score(ctx, scoring.Input{Domain: d, Features: vec})
	if err != nil {
		p.logger().Error(ctx, "scoring failed",
			logger.String("domain", string(d)),
			logger.Error(err))
		return p.degraded(d, err.Error())
	}
	metrics.RecordScoringLatency(string(d), float64(time.Since(start).Milliseconds()))
	metrics.RecordRiskTier(string(d), string(result.RiskLevel))

	p.logger().Debug(ctx, "domain assessed",
		logger.String("domain", string(d)),
		logger.String("risk_level", string(result.RiskLevel)),
		logger.Float64("risk_score", result.RiskScore))

	return model.Prediction{
		Domain:          d,
		RiskLevel:       result.RiskLevel,
		RiskScore:       result.RiskScore,
		Confidence:      result.Confidence,
		Analysis:        analysis,
		Recommendations: advice.Recommendations(d, result.RiskLevel),
		GeneratedAt:     p.now(),
	}
}

// Comprehensive assesses every supplied domain and folds the predictions
// into one summary. Domains absent from sessions are skipped entirely.
func (p *Predictor) Comprehensive(ctx context.Context, sessions map[model.Domain]map[string]any) model.Summary {
	predictions := make(map[model.Domain]model.Prediction, len(sessions))
	for _, d := range model.Domains() {
		session, ok := sessions[d]
		if !ok {
			continue
		}
		predictions[d] = p.Predict(ctx, d, session)
	}
	return p.summarize(predictions)
}

func (p *Predictor) summarize(predictions map[model.Domain]model.Prediction) model.Summary {
	var scores, confidences []float64
	var recommendationLists [][]string
	profile := make(map[model.Domain]model.DomainRisk, len(predictions))

	highs, mediums, lows := 0, 0, 0
	for _, d := range model.Domains() {
		pred, ok := predictions[d]
		if !ok {
			continue
		}
		scores = append(scores, pred.RiskScore)
		confidences = append(confidences, pred.Confidence)
		recommendationLists = append(recommendationLists, pred.Recommendations)
		profile[d] = model.DomainRisk{
			RiskLevel:  pred.RiskLevel,
			RiskScore:  pred.RiskScore,
			Confidence: pred.Confidence,
		}
		switch pred.RiskLevel {
		case model.RiskHigh:
			highs++
		case model.RiskMedium:
			mediums++
		case model.RiskLow:
			lows++
		}
	}

	overall := overallRisk(highs, mediums, lows)

	return model.Summary{
		OverallRiskLevel:        overall,
		AverageRiskScore:        feature.Mean(scores, 0),
		AverageConfidence:       feature.Mean(confidences, 0),
		RiskProfile:             profile,
		Predictions:             predictions,
		CombinedRecommendations: advice.Combine(recommendationLists...),
		NextSteps:               advice.NextSteps(overall),
		ClinicalNotes:           clinicalNotes(predictions),
		GeneratedAt:             p.now(),
	}
}

// overallRisk escalates per-domain tiers into one overall tier. Two or more
// High domains dominate; a single High or repeated Medium still warrants
// Medium; any remaining signal surfaces as Low. Degraded predictions count
// as no signal.
func overallRisk(highs, mediums, lows int) model.RiskLevel {
	switch {
	case highs >= 2:
		return model.RiskHigh
	case highs == 1 || mediums >= 2:
		return model.RiskMedium
	case mediums == 1 || lows > 0:
		return model.RiskLow
	default:
		return model.RiskNone
	}
}

func (p *Predictor) degraded(d model.Domain, reason string) model.Prediction {
	metrics.RecordErrorByComponent("assess", "degraded")
	return model.Prediction{
		Domain:          d,
		RiskLevel:       model.RiskUnavailable,
		Recommendations: advice.Degraded(),
		Err:             reason,
		GeneratedAt:     p.now(),
	}
}

// extract dispatches to the domain's feature extractor and analysis builder.
func extract(d model.Domain, sess trace.Session) (feature.Vector, []model.AnalysisGroup, error) {
	switch d {
	case model.DomainReading:
		v := feature.Reading(sess)
		return v, feature.ReadingAnalysis(v), nil
	case model.DomainArithmetic:
		v := feature.Arithmetic(sess)
		return v, feature.ArithmeticAnalysis(v), nil
	case model.DomainHandwriting:
		v := feature.Handwriting(sess)
		return v, feature.HandwritingAnalysis(v), nil
	default:
		return feature.Vector{}, nil, fmt.Errorf("unknown assessment domain %q", d)
	}
}
