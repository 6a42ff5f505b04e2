package feature

import (
	"strings"

	"github.com/edulens/screening/internal/domain/trace"
)

// Arithmetic derives the arithmetic feature vector from a session. The
// vector covers number sense, counting and sequencing, operation accuracy,
// calculation speed, working memory, error patterns, and reasoning.
func Arithmetic(sess trace.Session) Vector {
	vals := []float64{
		subitizingScore(sess),
		comparisonScore(sess),
		typedTaskScore(sess, "magnitude"),
		countingScore(sess),
		sequencingScore(sess),
		typedTaskScore(sess, "skip_count"),
		operationScore(sess, "addition"),
		operationScore(sess, "subtraction"),
		operationScore(sess, "multiplication"),
		Normalize(calculationSpeed(sess), 0, 20),
		speedAccuracyRatio(sess),
		responseTimeConsistency(sess),
		multistepScore(sess),
		typeKeywordScore(sess, "memory"),
		systematicErrorScore(sess),
		conceptualErrorRate(sess),
		errorRecoveryRate(sess),
		typeKeywordScore(sess, "word_problem"),
		factFluency(sess),
		typeKeywordScore(sess, "reasoning"),
	}
	return Fit(vals)
}

func taskAccuracy(r trace.Record) float64 {
	return Ratio(r.Float("correct", 0), r.Float("total", 1))
}

// findTask returns the first record registered under any of the given task
// names.
func findTask(sess trace.Session, names ...string) (trace.Record, bool) {
	for _, name := range names {
		if r, ok := sess[name]; ok {
			return r, true
		}
	}
	return nil, false
}

// findTypedTask returns the first record, in task-name order, whose declared
// type matches one of the given values.
func findTypedTask(sess trace.Session, types ...string) (trace.Record, bool) {
	for _, name := range sess.TaskNames() {
		r := sess[name]
		for _, t := range types {
			if r.Str("type", "") == t {
				return r, true
			}
		}
	}
	return nil, false
}

// subitizingScore blends accuracy and response speed for the instant number
// recognition task. Genuine subitizing is both fast and accurate.
func subitizingScore(sess trace.Session) float64 {
	r, ok := findTask(sess, "subitizing", "number_sense", "number_recognition")
	if !ok {
		return Neutral
	}
	avgRT := 1000.0
	if r.Has("avg_rt") {
		avgRT = r.Float("avg_rt", 1000)
	} else if rts := r.Floats("response_times"); len(rts) > 0 {
		avgRT = rts[0]
	}
	speedFactor := 1.0
	if avgRT >= 1500 {
		speedFactor = (4000 - avgRT) / 2500
		if speedFactor < 0 {
			speedFactor = 0
		}
	}
	return taskAccuracy(r)*0.7 + speedFactor*0.3
}

func comparisonScore(sess trace.Session) float64 {
	r, ok := findTask(sess, "comparison", "number_comparison")
	if !ok {
		r, ok = findTypedTask(sess, "comparison", "number_comparison")
	}
	if !ok {
		r, ok = findTask(sess, "number_sense")
	}
	if !ok {
		return Neutral
	}
	return taskAccuracy(r)
}

func countingScore(sess trace.Session) float64 {
	r, ok := findTask(sess, "counting", "number_counting", "number_sense")
	if !ok {
		return Neutral
	}
	avgRT := r.Float("avg_rt", 1500)
	if rts := r.Floats("response_times"); len(rts) > 0 {
		avgRT = Mean(rts, 1500)
	}
	speedBonus := Neutral
	if avgRT > 0 {
		speedBonus = Clip01((4000 - avgRT) / 2500)
	}
	return taskAccuracy(r)*0.6 + speedBonus*0.4
}

func sequencingScore(sess trace.Session) float64 {
	r, ok := findTask(sess, "sequencing", "number_sequencing")
	if !ok {
		r, ok = findTypedTask(sess, "sequencing", "number_sequencing")
	}
	if !ok {
		return Neutral
	}
	return taskAccuracy(r)
}

// typedTaskScore averages accuracy over tasks whose type equals typ exactly.
func typedTaskScore(sess trace.Session, typ string) float64 {
	var scores []float64
	for _, r := range sess {
		if r.Str("type", "") == typ {
			scores = append(scores, taskAccuracy(r))
		}
	}
	return Mean(scores, Neutral)
}

// typeKeywordScore averages accuracy over tasks whose type contains the
// keyword.
func typeKeywordScore(sess trace.Session, keyword string) float64 {
	var scores []float64
	for _, r := range sess {
		if strings.Contains(strings.ToLower(r.Str("type", "")), keyword) {
			scores = append(scores, taskAccuracy(r))
		}
	}
	return Mean(scores, Neutral)
}

func operationScore(sess trace.Session, op string) float64 {
	var scores []float64
	for _, r := range sess {
		if r.Str("operation", "") == op || r.Str("type", "") == op {
			scores = append(scores, taskAccuracy(r))
		}
	}
	if len(scores) == 0 {
		if r, ok := sess["operations"]; ok {
			scores = append(scores, taskAccuracy(r))
		}
	}
	return Mean(scores, Neutral)
}

func recordTimeMS(r trace.Record) float64 {
	if rts := r.Floats("response_times"); len(rts) > 0 {
		sum := 0.0
		for _, t := range rts {
			sum += t
		}
		return sum
	}
	if r.Has("duration_ms") {
		return r.Float("duration_ms", 0)
	}
	return r.Float("time", 0) * 1000
}

// calculationSpeed is the count of problems attempted per minute of active
// solving time, zero when no timing data was captured.
func calculationSpeed(sess trace.Session) float64 {
	var problems, timeMS float64
	for _, r := range sess {
		problems += r.Float("total", 0)
		timeMS += recordTimeMS(r)
	}
	if timeMS <= 0 {
		return 0
	}
	return problems / (timeMS / 60_000)
}

// speedAccuracyRatio rewards sessions that are both fast and accurate and
// penalizes trading one for the other.
func speedAccuracyRatio(sess trace.Session) float64 {
	var accs, speeds []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		accs = append(accs, taskAccuracy(r))
		speeds = append(speeds, calculationSpeed(trace.Session{name: r}))
	}
	if len(accs) == 0 {
		return Neutral
	}
	return Mean(accs, 0)*0.6 + Mean(speeds, 0)/20*0.4
}

func responseTimeConsistency(sess trace.Session) float64 {
	var all []float64
	for _, name := range sess.TaskNames() {
		r := sess[name]
		if rts := r.Floats("response_times"); len(rts) > 0 {
			all = append(all, rts...)
		} else if r.Has("avg_rt") && r.Has("rt_std") {
			all = append(all, r.Float("rt_std", 0))
		}
	}
	if len(all) == 0 {
		return Neutral
	}
	cv := Std(all, 0) / (Mean(all, 0) + 1)
	if cv > 1 {
		cv = 1
	}
	return 1 - cv
}

func multistepScore(sess trace.Session) float64 {
	var scores []float64
	for _, r := range sess {
		if r.Str("complexity", "") == "multistep" {
			scores = append(scores, taskAccuracy(r))
		}
	}
	return Mean(scores, Neutral)
}

// systematicErrorScore distinguishes repeated error kinds from one-off slips.
// The same error recurring is the stronger signal.
func systematicErrorScore(sess trace.Session) float64 {
	counts := map[string]int{}
	for _, r := range sess {
		kinds, ok := r["error_types"].([]any)
		if !ok {
			continue
		}
		for _, k := range kinds {
			if s, ok := k.(string); ok {
				counts[s]++
			}
		}
	}
	if len(counts) == 0 {
		return 0
	}
	systematic, total := 0.0, 0.0
	for _, c := range counts {
		if c > 2 {
			systematic++
		}
		total += float64(c)
	}
	return Clip01(Ratio(systematic, total/3))
}

func conceptualErrorRate(sess trace.Session) float64 {
	var conceptual, errors float64
	for _, r := range sess {
		conceptual += r.Float("conceptual_errors", 0)
		errors += r.Float("total_errors", 1)
	}
	return Clip01(Ratio(conceptual, errors))
}

func errorRecoveryRate(sess trace.Session) float64 {
	var recoveries, errors float64
	for _, r := range sess {
		recoveries += r.Float("self_corrections", 0)
		errors += r.Float("total_errors", 1)
	}
	return Clip01(Ratio(recoveries, errors))
}

// factFluency scores recall tasks, expecting fast and accurate answers.
func factFluency(sess trace.Session) float64 {
	var scores []float64
	for _, r := range sess {
		if !strings.Contains(strings.ToLower(r.Str("type", "")), "fact") {
			continue
		}
		speed := 1 - (r.Float("avg_rt", 1000)-500)/2000
		if speed < 0 {
			speed = 0
		}
		scores = append(scores, taskAccuracy(r)*0.7+speed*0.3)
	}
	return Mean(scores, Neutral)
}
