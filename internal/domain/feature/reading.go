package feature

import (
	"strings"

	"github.com/edulens/screening/internal/domain/trace"
)

// Reading derives the reading feature vector from a session. The vector
// covers speed, accuracy and error patterns, consistency, difficulty
// handling, response timing, error recovery, and cognitive load.
func Reading(sess trace.Session) Vector {
	vals := []float64{
		Normalize(readingSpeed(sess), 0, 300),
		1 - Clip01(readingSpeedSpread(sess)),
		Normalize(readingSpeedTrend(sess), -1, 1),
		readingAccuracy(sess),
		letterConfusionRate(sess),
		wordErrorRate(sess),
		taskTypeAccuracy(sess, "phoneme"),
		readingConsistency(sess),
		attentionStability(sess),
		difficultyGap(sess),
		complexityScore(sess),
		Normalize(avgResponseTime(sess), 500, 5000),
		Clip01(responseTimeSpread(sess) / 2000),
		hesitationRate(sess),
		correctionRate(sess),
		learningRate(sess),
		visualProcessing(sess),
		cognitiveLoad(sess),
		taskTypeAccuracy(sess, "memory"),
		planningAccuracy(sess),
	}
	return Fit(vals)
}

func readingCorrectTotal(r trace.Record) (float64, float64) {
	correct := r.FirstFloat(0, "correct", "correct_count")
	total := r.FirstFloat(1, "total", "total_count")
	return correct, total
}

// readingSpeed estimates words per minute. Response-time traces are mapped
// onto WPM inversely; older traces carry word counts directly; anything else
// falls back to accuracy as a proxy.
func readingSpeed(sess trace.Session) float64 {
	var speeds []float64
	for _, r := range sess {
		if rts := r.Floats("response_times"); r.Has("response_times") {
			avgRT := Mean(rts, 1500)
			wpm := 200 - avgRT/10
			if wpm < 50 {
				wpm = 50
			}
			speeds = append(speeds, wpm)
		} else if r.Has("duration_ms") && r.Has("words_read") {
			durMin := r.Float("duration_ms", 0) / 60_000
			if durMin > 0 {
				speeds = append(speeds, r.Float("words_read", 0)/durMin)
			}
		} else {
			correct, total := readingCorrectTotal(r)
			if total > 0 {
				speeds = append(speeds, correct/total*100)
			} else {
				speeds = append(speeds, 50)
			}
		}
	}
	return Mean(speeds, 100)
}

func taskResponseTimes(sess trace.Session) []float64 {
	var times []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		if rts := r.Floats("response_times"); len(rts) > 0 {
			times = append(times, Mean(rts, 0))
		} else if r.Has("avg_speed") {
			times = append(times, r.Float("avg_speed", 0))
		}
	}
	return times
}

func readingSpeedSpread(sess trace.Session) float64 {
	return Std(taskResponseTimes(sess), 0)
}

// readingSpeedTrend reports whether per-task pacing drifts across the
// session, as a slope clipped to [-1, 1].
func readingSpeedTrend(sess trace.Session) float64 {
	times := taskResponseTimes(sess)
	if len(times) < 2 {
		return 0
	}
	return Clip(TrendSlope(times)/50, -1, 1)
}

func readingAccuracy(sess trace.Session) float64 {
	var correct, total float64
	for _, r := range sess {
		c, t := readingCorrectTotal(r)
		correct += c
		total += t
	}
	if total <= 0 {
		return Neutral
	}
	return correct / total
}

func totalErrorCount(sess trace.Session) float64 {
	sum := 0.0
	for _, r := range sess {
		missed := r.Float("total", 1) - r.Float("correct", 0)
		declared := r.Float("total_errors", 1)
		if missed > declared {
			sum += missed
		} else {
			sum += declared
		}
	}
	return sum
}

func letterConfusionRate(sess trace.Session) float64 {
	confusion := 0.0
	for _, r := range sess {
		if r.Has("letter_confusion_errors") {
			confusion += r.Float("letter_confusion_errors", 0)
		} else if errs, ok := r["errors"].([]any); ok {
			confusion += float64(len(errs))
		}
	}
	return Clip01(Ratio(confusion, totalErrorCount(sess)))
}

func wordErrorRate(sess trace.Session) float64 {
	word := 0.0
	for _, r := range sess {
		word += r.Float("word_order_errors", 0)
	}
	return Clip01(Ratio(word, totalErrorCount(sess)))
}

// taskTypeAccuracy averages correct/total over tasks whose task_type contains
// the given keyword, neutral when no such task ran.
func taskTypeAccuracy(sess trace.Session, keyword string) float64 {
	var scores []float64
	for _, r := range sess {
		if strings.Contains(strings.ToLower(r.Str("task_type", "")), keyword) {
			scores = append(scores, Ratio(r.Float("correct_count", 0), r.Float("total_count", 1)))
		}
	}
	return Mean(scores, Neutral)
}

func planningAccuracy(sess trace.Session) float64 {
	var scores []float64
	for _, r := range sess {
		if r.Bool("requires_planning", false) {
			scores = append(scores, Ratio(r.Float("correct_count", 0), r.Float("total_count", 1)))
		}
	}
	return Mean(scores, Neutral)
}

func readingConsistency(sess trace.Session) float64 {
	var accs []float64
	for _, r := range sess {
		correct, total := readingCorrectTotal(r)
		if total > 0 {
			accs = append(accs, correct/total)
		}
	}
	if len(accs) < 2 {
		return 1
	}
	cv := Std(accs, 0) / (Mean(accs, 0) + 0.1)
	if cv > 1 {
		cv = 1
	}
	return 1 - cv
}

// attentionStability looks at how errors spread across each task's item
// sequence. Tightly clustered errors suggest lapses of focus.
func attentionStability(sess trace.Session) float64 {
	var patterns []float64
	for _, r := range sess {
		seq, ok := r["error_sequence"].([]any)
		if !ok || len(seq) <= 5 {
			continue
		}
		var positions []float64
		for i, e := range seq {
			if truthy(e) {
				positions = append(positions, float64(i))
			}
		}
		patterns = append(patterns, Std(positions, 0))
	}
	if len(patterns) == 0 {
		return Neutral
	}
	return Clip01(Mean(patterns, 0) / 10)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != "" && t != "0" && t != "false"
	default:
		return v != nil
	}
}

func difficultyGap(sess trace.Session) float64 {
	var easy, hard []float64
	for _, r := range sess {
		correct, total := readingCorrectTotal(r)
		acc := 0.0
		if total > 0 {
			acc = Ratio(correct, total)
		}
		switch r.Str("difficulty", "medium") {
		case "easy":
			easy = append(easy, acc)
		case "hard":
			hard = append(hard, acc)
		}
	}
	gap := Mean(easy, 0.8) - Mean(hard, 0.4)
	if gap < 0 {
		gap = 0
	}
	return gap
}

func complexityScore(sess trace.Session) float64 {
	var scores []float64
	for _, r := range sess {
		if r.Float("complexity_level", 0) > 7 {
			scores = append(scores, Ratio(r.Float("correct_count", 0), r.Float("total_count", 1)))
		}
	}
	return Mean(scores, Neutral)
}

func avgResponseTime(sess trace.Session) float64 {
	var times []float64
	for _, r := range sess {
		if rts := r.Floats("response_times"); len(rts) > 0 {
			times = append(times, Mean(rts, 0))
		} else if r.Has("avg_response_time_ms") {
			times = append(times, r.Float("avg_response_time_ms", 0))
		}
	}
	return Mean(times, 2000)
}

func responseTimeSpread(sess trace.Session) float64 {
	var times []float64
	for _, r := range sess {
		if rts := r.Floats("response_times"); len(rts) > 0 {
			times = append(times, Mean(rts, 0))
		} else if r.Has("avg_response_time_ms") {
			times = append(times, r.Float("avg_response_time_ms", 0))
		}
	}
	return Std(times, 500)
}

func hesitationRate(sess trace.Session) float64 {
	var hesitations, items float64
	for _, r := range sess {
		hesitations += r.Float("hesitation_count", 0)
		items += r.Float("total_count", 1)
	}
	return Clip01(Ratio(hesitations, items))
}

func correctionRate(sess trace.Session) float64 {
	var corrections, errors float64
	for _, r := range sess {
		corrections += r.Float("self_corrections", 0)
		errors += r.Float("total_errors", 1)
	}
	return Clip01(Ratio(corrections, errors))
}

func learningRate(sess trace.Session) float64 {
	var scores []float64
	for _, r := range sess {
		if r.Has("error_recovery") {
			scores = append(scores, r.Float("error_recovery", 0))
		}
	}
	return Mean(scores, Neutral)
}

func visualProcessing(sess trace.Session) float64 {
	var scores []float64
	for _, r := range sess {
		if r.Has("visual_processing_score") {
			scores = append(scores, r.Float("visual_processing_score", 0))
		}
	}
	return Mean(scores, Neutral)
}

func cognitiveLoad(sess trace.Session) float64 {
	var loads []float64
	for _, r := range sess {
		loads = append(loads, r.Float("cognitive_load", Neutral))
	}
	return Mean(loads, Neutral)
}
