package scoring

import "github.com/edulens/screening/internal/domain/model"

// Per-domain feature importance weights, multiplied element-wise into the
// feature vector before the network runs. The weights are versioned with the
// model: changing them changes every score.
var (
	readingImportance = [inputSize]float64{
		1.3, 1.2, 0.9, // reading speed
		1.4, 1.2, 1.1, // accuracy and error patterns
		1.0, 0.95, 1.1, // consistency
		1.1, 0.9, 0.8, // difficulty handling
		0.7, 0.8, 0.75, // response timing
		0.9, 0.95, 0.85, // error recovery
		1.0, 0.95, // processing and efficiency
	}

	arithmeticImportance = [inputSize]float64{
		1.2, 1.1, 1.0, // number sense
		1.1, 0.95, 0.8, // counting and sequencing
		1.3, 1.2, 1.1, // operation skills
		0.7, 0.9, 0.6, // calculation speed
		1.0, 0.95, 0.7, // working memory
		0.8, 0.75, 0.7, // error patterns
		0.85, 0.9, // reasoning
	}

	handwritingImportance = [inputSize]float64{
		1.3, 1.2, 1.1, 0.6, // motor control
		1.1, 0.95, 0.8, // writing speed
		1.2, 1.1, 1.15, // letter formation
		1.3, 1.1, 0.9, // legibility and coordination
		0.8, 0.7, 0.75, // stamina
		1.0, 0.95, 0.85, 0.9, // task completion and planning
	}
)

// importanceFor returns the importance weights for a domain. Unknown domains
// get flat weights, scoring every feature equally.
func importanceFor(d model.Domain) [inputSize]float64 {
	switch d {
	case model.DomainReading:
		return readingImportance
	case model.DomainArithmetic:
		return arithmeticImportance
	case model.DomainHandwriting:
		return handwritingImportance
	}
	var flat [inputSize]float64
	for i := range flat {
		flat[i] = 1
	}
	return flat
}
