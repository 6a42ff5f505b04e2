package feature

import (
	"strings"

	"github.com/edulens/screening/internal/domain/trace"
)

// Handwriting derives the handwriting feature vector from a session. The
// vector covers motor control, writing speed, letter formation, legibility,
// coordination, stamina, task completion, and grip control. Geometric
// signals are computed from raw point paths; strokes carrying precomputed
// summary metrics are averaged directly instead.
func Handwriting(sess trace.Session) Vector {
	vals := []float64{
		overallSmoothness(sess),
		lineStraightness(sess),
		pressureConsistency(sess),
		tremorQuality(sess),
		Normalize(writingSpeed(sess), 0, 500),
		1 - Clip01(strokeSpeedSpread(sess)),
		speedFatigue(sess),
		sizeConsistency(sess),
		spacingUniformity(sess),
		shapeAccuracy(sess),
		legibility(sess),
		shapeAccuracy(sess),
		coordination(sess),
		bilateralCoordination,
		writingEndurance(sess),
		fatigueIndicator(sess),
		completionRate(sess),
		effortRatio(sess),
		gripTension(sess),
		motorPlanning(sess),
	}
	return Fit(vals)
}

// bilateralCoordination has no capture signal yet; assume symmetric
// performance.
const bilateralCoordination = 0.7

func hasMetric(s trace.Stroke, name string) bool {
	_, ok := s.Metrics[name]
	return ok
}

func strokeSmoothness(s trace.Stroke) float64 {
	return TurnSmoothness(TurnAngles(s.Points))
}

// taskSmoothness pools turn angles across every path in the task, so one
// jerky stroke among many still shows up in the variance.
func taskSmoothness(strokes []trace.Stroke) float64 {
	var angles []float64
	for _, s := range strokes {
		angles = append(angles, TurnAngles(s.Points)...)
	}
	return TurnSmoothness(angles)
}

func overallSmoothness(sess trace.Session) float64 {
	var scores []float64
	for _, name := range sess.TaskNames() {
		strokes := sess[name].Strokes()
		if len(strokes) > 0 && hasMetric(strokes[0], trace.MetricSmoothness) {
			var vals []float64
			for _, s := range strokes {
				vals = append(vals, s.Metric(trace.MetricSmoothness, Neutral))
			}
			scores = append(scores, Mean(vals, Neutral))
		} else {
			scores = append(scores, taskSmoothness(strokes))
		}
	}
	return Mean(scores, Neutral)
}

func lineStraightness(sess trace.Session) float64 {
	var scores []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		strokes := r.Strokes()
		if len(strokes) > 0 && hasMetric(strokes[0], trace.MetricStraightness) {
			var vals []float64
			for _, s := range strokes {
				vals = append(vals, s.Metric(trace.MetricStraightness, Neutral))
			}
			scores = append(scores, Mean(vals, Neutral))
		} else if strings.Contains(strings.ToLower(r.Str("type", "")), "trace_line") {
			for _, s := range strokes {
				if dev, ok := LineDeviation(s.Points); ok {
					scores = append(scores, 1-Clip01(dev))
				}
			}
		}
	}
	return Mean(scores, Neutral)
}

// pressureConsistency reads pen pressure where the capture reports it, and
// falls back to velocity steadiness: an even hand moves at an even pace.
func pressureConsistency(sess trace.Session) float64 {
	var scores []float64
	var rawVariations []float64
	for _, name := range sess.TaskNames() {
		strokes := sess[name].Strokes()
		if len(strokes) > 0 && hasMetric(strokes[0], trace.MetricPressure) {
			var pressures []float64
			for _, s := range strokes {
				pressures = append(pressures, s.Metric(trace.MetricPressure, Neutral))
			}
			scores = append(scores, 1-Std(pressures, 0))
		} else {
			for _, s := range strokes {
				if dists := SegmentDistances(s.Points); len(dists) > 0 {
					rawVariations = append(rawVariations, Std(dists, 0))
				}
			}
		}
	}
	if len(rawVariations) > 0 {
		scores = append(scores, 1-Clip01(Mean(rawVariations, 0)/50))
	}
	return Mean(scores, Neutral)
}

func tremorQuality(sess trace.Session) float64 {
	var scores []float64
	var rawMagnitudes []float64
	for _, name := range sess.TaskNames() {
		strokes := sess[name].Strokes()
		if len(strokes) > 0 && hasMetric(strokes[0], trace.MetricTremor) {
			for _, s := range strokes {
				scores = append(scores, 1-s.Metric(trace.MetricTremor, Neutral))
			}
		} else {
			for _, s := range strokes {
				if mag, ok := SecondDiffVariance(s.Points); ok {
					rawMagnitudes = append(rawMagnitudes, mag)
				}
			}
		}
	}
	if len(rawMagnitudes) > 0 {
		avg := Mean(rawMagnitudes, 0)
		if avg < 1 {
			scores = append(scores, 1-avg)
		} else {
			scores = append(scores, Clip01(avg/100))
		}
	}
	return Mean(scores, Neutral)
}

func taskDurationMS(r trace.Record) float64 {
	dur := r.FirstFloat(1000, "time", "duration_ms")
	if dur < 100 {
		// Small values are seconds from newer capture clients.
		dur *= 1000
	}
	return dur
}

// writingSpeed estimates pen travel in pixels per second. Summary-form
// strokes carry no geometry, so completion pace stands in.
func writingSpeed(sess trace.Session) float64 {
	var speeds []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		strokes := r.Strokes()
		dur := taskDurationMS(r)
		if dur <= 0 || len(strokes) == 0 {
			continue
		}
		if strokes[0].HasPath() {
			total := 0.0
			for _, s := range strokes {
				total += PathLength(s.Points)
			}
			speeds = append(speeds, total/(dur/1000))
		} else {
			perCompletion := dur / (r.Float("completion", 1) + 0.1)
			denom := perCompletion / 1000
			if denom < 0.1 {
				denom = 0.1
			}
			speeds = append(speeds, 500/denom)
		}
	}
	return Mean(speeds, 100)
}

// strokeSpeeds lists each path stroke's average speed in task order.
func strokeSpeeds(sess trace.Session, defaultStrokeDur float64) []float64 {
	var speeds []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		strokes := r.Strokes()
		taskDur := r.Float("duration_ms", 1000)
		if taskDur <= 0 {
			continue
		}
		for _, s := range strokes {
			if len(s.Points) < 2 {
				continue
			}
			dur := s.DurationMS
			if dur <= 0 {
				if defaultStrokeDur > 0 {
					dur = defaultStrokeDur
				} else {
					dur = taskDur / float64(len(strokes))
				}
			}
			if dur <= 0 {
				continue
			}
			speeds = append(speeds, PathLength(s.Points)/(dur/1000))
		}
	}
	return speeds
}

func strokeSpeedSpread(sess trace.Session) float64 {
	return Std(strokeSpeeds(sess, 0), 0)
}

// speedFatigue flags pen speed decaying across the session; only a negative
// trend counts.
func speedFatigue(sess trace.Session) float64 {
	speeds := strokeSpeeds(sess, 100)
	if len(speeds) < 2 {
		return 0
	}
	fatigue := -TrendSlope(speeds) / 50
	if fatigue < 0 {
		fatigue = 0
	}
	return Clip01(fatigue)
}

func sizeConsistency(sess trace.Session) float64 {
	var sizes []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		strokes := r.Strokes()
		if len(strokes) > 0 && !strokes[0].HasPath() {
			sizes = append(sizes, r.Float("completion", 1))
			continue
		}
		for _, s := range strokes {
			if size := BoundsDiagonal(s.Points); size > 0 {
				sizes = append(sizes, size)
			}
		}
	}
	return spreadConsistency(sizes)
}

func spacingUniformity(sess trace.Session) float64 {
	var spaces []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		strokes := r.Strokes()
		if len(strokes) > 0 && !strokes[0].HasPath() {
			spaces = append(spaces, r.Float("completion", 1))
			continue
		}
		for i := 1; i < len(strokes); i++ {
			if gap, ok := StrokeGap(strokes[i-1], strokes[i]); ok {
				spaces = append(spaces, gap)
			}
		}
	}
	return spreadConsistency(spaces)
}

// spreadConsistency turns a sample of magnitudes into a [0,1] consistency
// score from their coefficient of variation. A single sample is returned
// as-is; none yields the neutral value.
func spreadConsistency(vals []float64) float64 {
	switch len(vals) {
	case 0:
		return Neutral
	case 1:
		return vals[0]
	}
	m := Mean(vals, 0)
	if m <= 0 {
		return 1
	}
	return 1 - Clip01(Std(vals, 0)/m)
}

func shapeAccuracy(sess trace.Session) float64 {
	var scores []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		strokes := r.Strokes()
		if len(strokes) == 0 {
			continue
		}
		if !strokes[0].HasPath() {
			scores = append(scores, r.Float("completion", 1))
			continue
		}
		var lengths []float64
		for _, s := range strokes {
			if l := PathLength(s.Points); l > 0 {
				lengths = append(lengths, l)
			}
		}
		if len(lengths) > 0 {
			m := Mean(lengths, 0)
			cv := 0.0
			if m > 0 {
				cv = Std(lengths, 0) / m
			}
			scores = append(scores, 1-Clip01(cv))
		}
	}
	return Mean(scores, Neutral)
}

func legibility(sess trace.Session) float64 {
	factors := []float64{
		overallSmoothness(sess),
		sizeConsistency(sess),
		spacingUniformity(sess),
		1 - tremorQuality(sess),
	}
	return Mean(factors, Neutral)
}

func coordination(sess trace.Session) float64 {
	var scores []float64
	for _, name := range sess.TaskNames() {
		for _, s := range sess[name].Strokes() {
			if len(s.Points) > 2 {
				scores = append(scores, strokeSmoothness(s))
			}
		}
	}
	return Mean(scores, Neutral)
}

func writingEndurance(sess trace.Session) float64 {
	var totalMS, strokeCount float64
	for _, r := range sess {
		totalMS += r.Float("duration_ms", 0)
		strokeCount += float64(len(r.Strokes()))
	}
	return Clip01(totalMS / 60_000 * (strokeCount / 50))
}

// fatigueIndicator compares early against late stroke quality within each
// task. Only degradation counts.
func fatigueIndicator(sess trace.Session) float64 {
	var degradations []float64
	for _, name := range sess.TaskNames() {
		strokes := sess[name].Strokes()
		if len(strokes) <= 4 {
			continue
		}
		half := len(strokes) / 2
		var early, late []float64
		for _, s := range strokes[:half] {
			early = append(early, strokeSmoothness(s))
		}
		for _, s := range strokes[half:] {
			late = append(late, strokeSmoothness(s))
		}
		d := Mean(early, 0) - Mean(late, 0)
		if d < 0 {
			d = 0
		}
		degradations = append(degradations, d)
	}
	return Mean(degradations, 0)
}

func completionRate(sess trace.Session) float64 {
	completed := 0.0
	for _, r := range sess {
		if len(r.Strokes()) > 0 {
			completed++
		}
	}
	return Ratio(completed, float64(len(sess)))
}

func effortRatio(sess trace.Session) float64 {
	var totalMS, strokeCount float64
	for _, r := range sess {
		totalMS += r.Float("duration_ms", 0)
		strokeCount += float64(len(r.Strokes()))
	}
	if totalMS <= 0 {
		return Neutral
	}
	return Clip01(strokeCount / (totalMS / 1000) / 10)
}

func gripTension(sess trace.Session) float64 {
	var indicators []float64
	for _, name := range sess.TaskNames() {
		for _, s := range sess[name].Strokes() {
			if len(s.Points) <= 2 {
				continue
			}
			if dists := SegmentDistances(s.Points); len(dists) > 0 {
				indicators = append(indicators, Clip01(Std(dists, 0)/30))
			}
		}
	}
	return Mean(indicators, Neutral)
}

func motorPlanning(sess trace.Session) float64 {
	var scores []float64
	for _, name := range sess.TaskNames() {
		for _, s := range sess[name].Strokes() {
			if len(s.Points) > 5 {
				scores = append(scores, strokeSmoothness(s))
			}
		}
	}
	return Mean(scores, Neutral)
}
