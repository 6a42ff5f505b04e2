package assess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edulens/screening/internal/domain/model"
	"github.com/edulens/screening/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// stubScorer returns canned scores so tier combinations can be forced.
type stubScorer struct {
	scores  map[model.Domain]float64
	panicOn model.Domain
	err     error
}

func (s stubScorer) Score(_ context.Context, in scoring.Input) (scoring.Result, error) {
	if in.Domain == s.panicOn {
		panic("scorer blew up")
	}
	if s.err != nil {
		return scoring.Result{}, s.err
	}
	score := s.scores[in.Domain]
	return scoring.Result{
		Domain:     in.Domain,
		RiskScore:  score,
		RiskLevel:  scoring.DefaultThresholds().Level(score),
		Confidence: 0.8,
	}, nil
}

func simpleSession() map[string]any {
	return map[string]any{
		"task": map[string]any{"correct": 5.0, "total": 10.0},
	}
}

func TestPredict(t *testing.T) {
	Convey("Given a predictor with the stock scorer", t, func() {
		p := New()

		Convey("When a populated reading session is assessed", func() {
			pred := p.Predict(context.Background(), model.DomainReading, simpleSession())

			Convey("Then it produces a scored prediction", func() {
				So(pred.RiskLevel.Scored(), ShouldBeTrue)
				So(pred.RiskScore, ShouldBeGreaterThan, 0)
				So(pred.RiskScore, ShouldBeLessThan, 1)
				So(pred.Confidence, ShouldBeBetweenOrEqual, 0.5, 0.99)
				So(pred.Analysis, ShouldNotBeEmpty)
				So(pred.Recommendations, ShouldNotBeEmpty)
				So(pred.GeneratedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the session is nil", func() {
			pred := p.Predict(context.Background(), model.DomainReading, nil)

			Convey("Then it reports no data instead of scoring", func() {
				So(pred.RiskLevel, ShouldEqual, model.RiskNoData)
				So(pred.Degraded(), ShouldBeTrue)
				So(pred.Err, ShouldNotBeEmpty)
				So(pred.Recommendations, ShouldNotBeEmpty)
			})
		})

		Convey("When the domain is unknown", func() {
			pred := p.Predict(context.Background(), model.Domain("music"), simpleSession())

			Convey("Then the prediction degrades", func() {
				So(pred.RiskLevel, ShouldEqual, model.RiskUnavailable)
				So(pred.Err, ShouldContainSubstring, "unknown assessment domain")
			})
		})

		Convey("When identical sessions are assessed twice", func() {
			a := p.Predict(context.Background(), model.DomainReading, simpleSession())
			b := p.Predict(context.Background(), model.DomainReading, simpleSession())

			Convey("Then the scores are identical", func() {
				So(a.RiskScore, ShouldEqual, b.RiskScore)
				So(a.Confidence, ShouldEqual, b.Confidence)
			})
		})
	})

	Convey("Given a predictor whose scorer misbehaves", t, func() {
		Convey("When the scorer returns an error", func() {
			p := New(WithScorer(stubScorer{err: errors.New("model unavailable")}))
			pred := p.Predict(context.Background(), model.DomainReading, simpleSession())

			Convey("Then the prediction degrades with the error text", func() {
				So(pred.RiskLevel, ShouldEqual, model.RiskUnavailable)
				So(pred.Err, ShouldContainSubstring, "model unavailable")
				So(pred.RiskScore, ShouldEqual, 0)
				So(pred.Confidence, ShouldEqual, 0)
			})
		})

		Convey("When the scorer panics", func() {
			p := New(WithScorer(stubScorer{panicOn: model.DomainReading}))
			pred := p.Predict(context.Background(), model.DomainReading, simpleSession())

			Convey("Then the panic is contained in a degraded prediction", func() {
				So(pred.RiskLevel, ShouldEqual, model.RiskUnavailable)
				So(pred.Err, ShouldContainSubstring, "panic")
			})
		})
	})
}

func TestComprehensiveEscalation(t *testing.T) {
	allSessions := func() map[model.Domain]map[string]any {
		return map[model.Domain]map[string]any{
			model.DomainReading:     simpleSession(),
			model.DomainArithmetic:  simpleSession(),
			model.DomainHandwriting: simpleSession(),
		}
	}

	cases := []struct {
		name   string
		scores map[model.Domain]float64
		want   model.RiskLevel
	}{
		{
			name: "two high domains dominate",
			scores: map[model.Domain]float64{
				model.DomainReading:     0.95,
				model.DomainArithmetic:  0.92,
				model.DomainHandwriting: 0.10,
			},
			want: model.RiskHigh,
		},
		{
			name: "a single high domain is medium overall",
			scores: map[model.Domain]float64{
				model.DomainReading:     0.95,
				model.DomainArithmetic:  0.10,
				model.DomainHandwriting: 0.10,
			},
			want: model.RiskMedium,
		},
		{
			name: "two medium domains escalate to medium",
			scores: map[model.Domain]float64{
				model.DomainReading:     0.88,
				model.DomainArithmetic:  0.88,
				model.DomainHandwriting: 0.10,
			},
			want: model.RiskMedium,
		},
		{
			name: "one medium domain surfaces as low",
			scores: map[model.Domain]float64{
				model.DomainReading:     0.88,
				model.DomainArithmetic:  0.10,
				model.DomainHandwriting: 0.10,
			},
			want: model.RiskLow,
		},
		{
			name: "any low domain surfaces as low",
			scores: map[model.Domain]float64{
				model.DomainReading:     0.84,
				model.DomainArithmetic:  0.10,
				model.DomainHandwriting: 0.10,
			},
			want: model.RiskLow,
		},
		{
			name: "all quiet is none",
			scores: map[model.Domain]float64{
				model.DomainReading:     0.10,
				model.DomainArithmetic:  0.10,
				model.DomainHandwriting: 0.10,
			},
			want: model.RiskNone,
		},
	}

	Convey("Given forced per-domain tiers", t, func() {
		for _, tc := range cases {
			Convey("Then "+tc.name, func() {
				p := New(WithScorer(stubScorer{scores: tc.scores}))
				summary := p.Comprehensive(context.Background(), allSessions())
				So(summary.OverallRiskLevel, ShouldEqual, tc.want)
			})
		}
	})
}

func TestComprehensiveSummary(t *testing.T) {
	Convey("Given a comprehensive assessment over all domains", t, func() {
		scores := map[model.Domain]float64{
			model.DomainReading:     0.95,
			model.DomainArithmetic:  0.10,
			model.DomainHandwriting: 0.10,
		}
		p := New(WithScorer(stubScorer{scores: scores}))
		sessions := map[model.Domain]map[string]any{
			model.DomainReading:     simpleSession(),
			model.DomainArithmetic:  simpleSession(),
			model.DomainHandwriting: simpleSession(),
		}
		summary := p.Comprehensive(context.Background(), sessions)

		Convey("Then the risk profile covers every assessed domain", func() {
			So(summary.RiskProfile, ShouldContainKey, model.DomainReading)
			So(summary.RiskProfile, ShouldContainKey, model.DomainArithmetic)
			So(summary.RiskProfile, ShouldContainKey, model.DomainHandwriting)
		})

		Convey("Then averages are over all predictions", func() {
			So(summary.AverageRiskScore, ShouldAlmostEqual, (0.95+0.10+0.10)/3, 1e-9)
			So(summary.AverageConfidence, ShouldAlmostEqual, 0.8, 1e-9)
		})

		Convey("Then shared recommendations are deduplicated", func() {
			counts := map[string]int{}
			for _, rec := range summary.CombinedRecommendations {
				counts[rec]++
			}
			for rec, n := range counts {
				So(n, ShouldEqual, 1)
				So(rec, ShouldNotBeBlank)
			}
		})

		Convey("Then next steps follow the overall tier", func() {
			So(summary.NextSteps, ShouldNotBeEmpty)
		})

		Convey("Then clinical notes cover each domain", func() {
			So(summary.ClinicalNotes, ShouldContainSubstring, "READING ASSESSMENT:")
			So(summary.ClinicalNotes, ShouldContainSubstring, "ARITHMETIC ASSESSMENT:")
			So(summary.ClinicalNotes, ShouldContainSubstring, "HANDWRITING ASSESSMENT:")
			So(summary.ClinicalNotes, ShouldContainSubstring, "Risk Level:")
			So(summary.ClinicalNotes, ShouldContainSubstring, "Confidence:")
		})
	})

	Convey("Given one domain that fails internally", t, func() {
		p := New(WithScorer(stubScorer{
			scores: map[model.Domain]float64{
				model.DomainArithmetic:  0.95,
				model.DomainHandwriting: 0.92,
			},
			panicOn: model.DomainReading,
		}))
		sessions := map[model.Domain]map[string]any{
			model.DomainReading:     simpleSession(),
			model.DomainArithmetic:  simpleSession(),
			model.DomainHandwriting: simpleSession(),
		}
		summary := p.Comprehensive(context.Background(), sessions)

		Convey("Then the failed domain degrades without dragging down siblings", func() {
			So(summary.Predictions[model.DomainReading].Degraded(), ShouldBeTrue)
			So(summary.Predictions[model.DomainArithmetic].RiskLevel, ShouldEqual, model.RiskHigh)
			So(summary.Predictions[model.DomainHandwriting].RiskLevel, ShouldEqual, model.RiskHigh)
		})

		Convey("Then the degraded domain contributes no tier signal", func() {
			So(summary.OverallRiskLevel, ShouldEqual, model.RiskHigh)
		})
	})

	Convey("Given a partial submission", t, func() {
		p := New(WithScorer(stubScorer{scores: map[model.Domain]float64{model.DomainReading: 0.10}}))
		summary := p.Comprehensive(context.Background(), map[model.Domain]map[string]any{
			model.DomainReading: simpleSession(),
		})

		Convey("Then unsubmitted domains are absent from the summary", func() {
			So(summary.Predictions, ShouldContainKey, model.DomainReading)
			So(summary.Predictions, ShouldNotContainKey, model.DomainArithmetic)
			So(len(summary.RiskProfile), ShouldEqual, 1)
		})
	})
}

func TestClinicalNotesFormatting(t *testing.T) {
	Convey("Given a prediction with analysis groups", t, func() {
		preds := map[model.Domain]model.Prediction{
			model.DomainHandwriting: {
				Domain:     model.DomainHandwriting,
				RiskLevel:  model.RiskMedium,
				Confidence: 0.875,
				Analysis: []model.AnalysisGroup{
					{Name: "motor_control", Metrics: []model.Metric{
						{Name: "smoothness", Value: 0.9},
						{Name: "straightness", Value: 0.8},
						{Name: "pressure_consistency", Value: 0.7},
						{Name: "tremor", Value: 0.6},
					}},
				},
			},
		}
		notes := clinicalNotes(preds)

		Convey("Then group names are humanized", func() {
			So(notes, ShouldContainSubstring, "Motor Control:")
		})

		Convey("Then the confidence is a percentage", func() {
			So(notes, ShouldContainSubstring, "Confidence: 87.5%")
		})

		Convey("Then at most three metrics per group are listed", func() {
			So(strings.Count(notes, "    - "), ShouldEqual, 3)
			So(notes, ShouldNotContainSubstring, "tremor")
		})
	})
}

func TestPredictorWithoutProcessLogging(t *testing.T) {
	// This suite never calls logger.Init, so the predictor must work as a
	// plain library against the discard logger.
	Convey("Given no process logger has been configured", t, func() {
		Convey("Then constructing a predictor does not panic", func() {
			So(func() { New() }, ShouldNotPanic)
		})

		Convey("And the logging error path stays contained", func() {
			p := New(WithScorer(stubScorer{panicOn: model.DomainReading}))

			var pred model.Prediction
			So(func() {
				pred = p.Predict(context.Background(), model.DomainReading, simpleSession())
			}, ShouldNotPanic)
			So(pred.RiskLevel, ShouldEqual, model.RiskUnavailable)
			So(pred.Err, ShouldContainSubstring, "assessment panic")
		})
	})
}
