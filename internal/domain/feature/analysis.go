package feature

import "github.com/edulens/screening/internal/domain/model"

// ReadingAnalysis breaks a reading vector into named sub-score groups for
// reporting.
func ReadingAnalysis(v Vector) []model.AnalysisGroup {
	return []model.AnalysisGroup{
		group("reading_speed",
			metric("average_wpm", v[0]*300),
			metric("consistency", v[1]),
			metric("trend", v[2])),
		group("accuracy",
			metric("overall_accuracy", v[3]),
			metric("letter_confusion_rate", v[4]),
			metric("word_error_rate", v[5]),
			metric("phoneme_awareness", v[6])),
		group("consistency",
			metric("performance_consistency", v[7]),
			metric("attention_stability", v[8])),
		group("cognitive",
			metric("working_memory", v[18]),
			metric("executive_function", v[19]),
			metric("cognitive_load", v[17])),
	}
}

// ArithmeticAnalysis breaks an arithmetic vector into named sub-score groups.
func ArithmeticAnalysis(v Vector) []model.AnalysisGroup {
	return []model.AnalysisGroup{
		group("number_sense",
			metric("subitizing", v[0]),
			metric("comparison", v[1]),
			metric("magnitude", v[2])),
		group("operations",
			metric("addition", v[6]),
			metric("subtraction", v[7]),
			metric("multiplication", v[8])),
		group("processing",
			metric("calculation_speed", v[9]),
			metric("accuracy_speed_ratio", v[10]),
			metric("consistency", v[11])),
		group("reasoning",
			metric("working_memory", v[13]),
			metric("multistep_solving", v[12]),
			metric("problem_comprehension", v[17])),
	}
}

// HandwritingAnalysis breaks a handwriting vector into named sub-score
// groups.
func HandwritingAnalysis(v Vector) []model.AnalysisGroup {
	return []model.AnalysisGroup{
		group("motor_control",
			metric("smoothness", v[0]),
			metric("straightness", v[1]),
			metric("pressure_consistency", v[2]),
			metric("tremor", v[3])),
		group("writing_speed",
			metric("overall_speed", v[4]),
			metric("consistency", v[5]),
			metric("fatigue", v[6])),
		group("formation",
			metric("size_consistency", v[7]),
			metric("spacing", v[8]),
			metric("shape_accuracy", v[9])),
		group("quality",
			metric("legibility", v[10]),
			metric("coordination", v[12])),
	}
}

func group(name string, metrics ...model.Metric) model.AnalysisGroup {
	return model.AnalysisGroup{Name: name, Metrics: metrics}
}

func metric(name string, value float64) model.Metric {
	return model.Metric{Name: name, Value: value}
}
