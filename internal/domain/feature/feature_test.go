package feature_test

import (
	"testing"

	"github.com/edulens/screening/internal/domain/feature"
	"github.com/edulens/screening/internal/domain/trace"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFit(t *testing.T) {
	Convey("Given raw feature values", t, func() {
		Convey("When fewer than the vector size are supplied", func() {
			v := feature.Fit([]float64{0.2, 0.8})

			Convey("Then the tail is padded with the neutral value", func() {
				So(v[0], ShouldEqual, 0.2)
				So(v[1], ShouldEqual, 0.8)
				for i := 2; i < feature.Size; i++ {
					So(v[i], ShouldEqual, feature.Neutral)
				}
			})
		})

		Convey("When more than the vector size are supplied", func() {
			vals := make([]float64, feature.Size+5)
			for i := range vals {
				vals[i] = 0.3
			}
			v := feature.Fit(vals)

			Convey("Then the extras are truncated", func() {
				So(len(v.Values()), ShouldEqual, feature.Size)
			})
		})

		Convey("When values stray outside the unit interval", func() {
			v := feature.Fit([]float64{-3, 7, 0.4})

			Convey("Then they are clamped", func() {
				So(v[0], ShouldEqual, 0)
				So(v[1], ShouldEqual, 1)
				So(v[2], ShouldEqual, 0.4)
			})
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given the shared numeric helpers", t, func() {
		Convey("Then Ratio floors the denominator at one", func() {
			So(feature.Ratio(3, 0), ShouldEqual, 3)
			So(feature.Ratio(3, 0.5), ShouldEqual, 3)
			So(feature.Ratio(3, 6), ShouldEqual, 0.5)
		})

		Convey("Then Normalize maps and clamps into the unit interval", func() {
			So(feature.Normalize(150, 0, 300), ShouldEqual, 0.5)
			So(feature.Normalize(-10, 0, 300), ShouldEqual, 0)
			So(feature.Normalize(999, 0, 300), ShouldEqual, 1)
		})

		Convey("Then TrendSlope recovers the slope of a linear series", func() {
			So(feature.TrendSlope([]float64{1, 3, 5, 7}), ShouldAlmostEqual, 2, 1e-9)
			So(feature.TrendSlope([]float64{4}), ShouldEqual, 0)
		})

		Convey("Then Mean honors its fallback on empty input", func() {
			So(feature.Mean(nil, 0.5), ShouldEqual, 0.5)
			So(feature.Mean([]float64{2, 4}, 0), ShouldEqual, 3)
		})
	})
}

func TestGeometry(t *testing.T) {
	Convey("Given point paths", t, func() {
		colinear := []trace.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}}

		Convey("Then a colinear path has near-zero line deviation", func() {
			dev, ok := feature.LineDeviation(colinear)
			So(ok, ShouldBeTrue)
			So(dev, ShouldAlmostEqual, 0, 1e-9)
		})

		Convey("Then a straight path pools zero turn angles", func() {
			angles := feature.TurnAngles(colinear)
			So(feature.TurnSmoothness(angles), ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("Then too-short paths are rejected", func() {
			_, ok := feature.LineDeviation(colinear[:2])
			So(ok, ShouldBeFalse)
			_, ok = feature.SecondDiffVariance(colinear)
			So(ok, ShouldBeFalse)
		})

		Convey("Then path length sums the segments", func() {
			So(feature.PathLength([]trace.Point{{X: 0, Y: 0}, {X: 3, Y: 4}}), ShouldEqual, 5)
		})
	})
}

func TestReading(t *testing.T) {
	Convey("Given a reading session", t, func() {
		Convey("When one task reports eight of ten correct", func() {
			sess := trace.Session{
				"word_match": trace.Record{"correct": 8.0, "total": 10.0, "avg_rt": 1000.0},
			}
			v := feature.Reading(sess)

			Convey("Then the accuracy feature is 0.8", func() {
				So(v[3], ShouldAlmostEqual, 0.8, 1e-9)
			})

			Convey("Then every feature stays in the unit interval", func() {
				for _, f := range v.Values() {
					So(f, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When the session is empty", func() {
			v := feature.Reading(trace.Session{})

			Convey("Then accuracy-like features fall back to neutral", func() {
				So(v[3], ShouldEqual, feature.Neutral)
				So(v[6], ShouldEqual, feature.Neutral)
				So(v[18], ShouldEqual, feature.Neutral)
				So(v[19], ShouldEqual, feature.Neutral)
			})

			Convey("Then the vector still has the full width", func() {
				So(len(v.Values()), ShouldEqual, feature.Size)
			})
		})

		Convey("When tasks carry phoneme and memory work", func() {
			sess := trace.Session{
				"blend":  trace.Record{"task_type": "phoneme_blend", "correct_count": 6.0, "total_count": 10.0},
				"recall": trace.Record{"task_type": "memory_span", "correct_count": 4.0, "total_count": 8.0},
			}
			v := feature.Reading(sess)

			Convey("Then the keyword features reflect their tasks", func() {
				So(v[6], ShouldAlmostEqual, 0.6, 1e-9)
				So(v[18], ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})
}

func TestArithmetic(t *testing.T) {
	Convey("Given an arithmetic session", t, func() {
		Convey("When a fast, accurate subitizing task ran", func() {
			sess := trace.Session{
				"subitizing": trace.Record{"correct": 9.0, "total": 10.0, "avg_rt": 800.0},
			}
			v := feature.Arithmetic(sess)

			Convey("Then subitizing blends accuracy and speed", func() {
				So(v[0], ShouldAlmostEqual, 0.9*0.7+0.3, 1e-9)
			})
		})

		Convey("When only a generic operations task ran", func() {
			sess := trace.Session{
				"operations": trace.Record{"correct": 6.0, "total": 10.0},
			}
			v := feature.Arithmetic(sess)

			Convey("Then all three operation features use it", func() {
				So(v[6], ShouldAlmostEqual, 0.6, 1e-9)
				So(v[7], ShouldAlmostEqual, 0.6, 1e-9)
				So(v[8], ShouldAlmostEqual, 0.6, 1e-9)
			})
		})

		Convey("When the session is empty", func() {
			v := feature.Arithmetic(trace.Session{})

			Convey("Then task-backed features fall back to neutral", func() {
				So(v[0], ShouldEqual, feature.Neutral)
				So(v[6], ShouldEqual, feature.Neutral)
				So(v[19], ShouldEqual, feature.Neutral)
			})

			Convey("Then untimed speed is zero", func() {
				So(v[9], ShouldEqual, 0)
			})
		})

		Convey("When the same error kind repeats", func() {
			sess := trace.Session{
				"drill": trace.Record{
					"error_types": []any{"carry", "carry", "carry", "swap"},
				},
			}
			v := feature.Arithmetic(sess)

			Convey("Then systematic errors register", func() {
				So(v[14], ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestHandwriting(t *testing.T) {
	Convey("Given a handwriting session", t, func() {
		Convey("When a tracing task has one colinear stroke", func() {
			sess := trace.Session{
				"line": trace.Record{
					"type":        "trace_line",
					"duration_ms": 2000.0,
					"strokes": []any{
						map[string]any{
							"points":      []any{[]any{0.0, 0.0}, []any{10.0, 10.0}, []any{20.0, 20.0}},
							"duration_ms": 500.0,
						},
					},
				},
			}
			v := feature.Handwriting(sess)

			Convey("Then the straightness feature is near one", func() {
				So(v[1], ShouldAlmostEqual, 1, 0.01)
			})

			Convey("Then every feature stays in the unit interval", func() {
				for _, f := range v.Values() {
					So(f, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When strokes arrive in the compact summary form", func() {
			sess := trace.Session{
				"copy": trace.Record{
					"time":       4.0,
					"completion": 0.9,
					"strokes": []any{
						map[string]any{
							"smoothness": 0.9, "straightness": 0.8,
							"pressure": 0.6, "tremor": 0.2,
						},
					},
				},
			}
			v := feature.Handwriting(sess)

			Convey("Then the summary metrics are used directly", func() {
				So(v[0], ShouldAlmostEqual, 0.9, 1e-9)
				So(v[1], ShouldAlmostEqual, 0.8, 1e-9)
				So(v[3], ShouldAlmostEqual, 0.8, 1e-9)
			})

			Convey("Then a single pressure sample reads as fully consistent", func() {
				So(v[2], ShouldAlmostEqual, 1, 1e-9)
			})
		})

		Convey("When the session is empty", func() {
			v := feature.Handwriting(trace.Session{})

			Convey("Then geometric features fall back to neutral", func() {
				So(v[0], ShouldEqual, feature.Neutral)
				So(v[2], ShouldEqual, feature.Neutral)
			})

			Convey("Then the bilateral placeholder holds", func() {
				So(v[13], ShouldAlmostEqual, 0.7, 1e-9)
			})

			Convey("Then completion and endurance are zero", func() {
				So(v[14], ShouldEqual, 0)
				So(v[16], ShouldEqual, 0)
			})
		})
	})
}
